// Package report renders analysis reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text output for terminal display
//   - JSONWriter and FullJSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with inventory tables, a severity pie chart
//     and remediation command blocks
//
// Writers implement the Writer interface, so they can be composed with
// MultiWriter. New selects a writer by Format.
package report
