// Package rules evaluates configuration blocks against a fixed set of
// wireless best practices.
//
// # Checks
//
//   - wpa3: every WLAN should enable WPA3
//   - pmf: every WLAN should make Protected Management Frames mandatory
//   - min_data_rate: every RF profile should require at least 12 Mbps
//
// Each Check returns one deviation per block it applies to. Identifiers are
// derived from the check and the block ("wpa3-1", "rf-High-Density") so
// repeated runs over the same text produce the same ids.
//
// By default only mismatches are reported. WithEmitMatched also returns
// passing checks with severity INFO.
//
// # Usage
//
//	evaluator := rules.NewEvaluator(rules.WithDisabledChecks(model.CheckPMF))
//	deviations, diagnostics := evaluator.Evaluate(normalized)
package rules
