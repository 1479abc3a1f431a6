// Package parser is the entry point for analyzing a controller
// running-configuration.
//
// Parse runs the whole analysis:
//
//	raw bytes -> decode -> (blank? sample) -> normalize
//	          -> extract inventory
//	          -> evaluate checks
//	          -> Result
//
// Extraction and evaluation read the same normalized text independently.
// Neither can fail the call: problems with individual blocks or checks
// are collected in Result.Diagnostics. Parse only fails with
// ErrParseFailed when the input is not text at all.
package parser
