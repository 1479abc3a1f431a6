package report

import (
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/wlcaudit/internal/model"
)

// Writer defines the interface for report output.
// Implementations write analysis results in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.AnalysisReport) (int, error)
}

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// New returns the Writer for the given format. version is embedded in
// JSON output.
func New(format Format, output io.Writer, version string) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.AnalysisReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// matched returns the matched records of the report.
func matched(report *model.AnalysisReport) []model.Deviation {
	var result []model.Deviation
	for _, d := range report.Deviations {
		if !d.IsMismatch() {
			result = append(result, d)
		}
	}
	return result
}

// titleCase renders an inventory status such as "enabled" as "Enabled".
// A Caser keeps state, so each call builds its own.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
