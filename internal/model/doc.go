// Package model defines the data structures shared by the analyzer, the
// report writers and the history database.
//
// This package contains the following main types:
//   - Inventory: the entities extracted from a running-configuration
//   - Deviation: one best-practice check outcome with remediation commands
//   - Diagnostic: a block or check that was skipped during analysis
//   - AnalysisReport: everything produced by one analysis run
//
// Check metadata (severity, impact, recommendation) lives in a single
// catalog in severity.go so that checks only decide match or mismatch.
package model
