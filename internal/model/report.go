package model

import (
	"time"
)

// AnalysisReport is the result of analyzing one running-configuration.
// It carries the extracted inventory, every check outcome and the
// diagnostics for blocks or checks that had to be skipped.
type AnalysisReport struct {
	// === Identification ===

	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	// Source is where the configuration came from, usually a file path.
	Source string `json:"source"`

	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// Device holds the hostname and software version found in the dump.
	Device DeviceInfo `json:"device"`

	// Digest is the SHA3-256 fingerprint of the normalized configuration.
	// Two runs with the same digest analyzed identical text.
	Digest string `json:"digest"`

	// UsedSample is true if the input was blank and the bundled sample
	// configuration was analyzed instead.
	UsedSample bool `json:"used_sample"`

	// === Results ===

	Inventory   Inventory    `json:"inventory"`
	Deviations  []Deviation  `json:"deviations"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// === Severity Summary ===
	// Counters only include mismatched deviations.

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// MatchedCount is the number of checks that passed and were reported.
	MatchedCount int `json:"matched_count"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains the failure message if the analysis could not complete.
	Error string `json:"error,omitempty"`

	// Content is the raw input handed from the load step to the analyze
	// step. It is never serialized.
	Content []byte `json:"-"`
}

// NewAnalysisReport creates an empty report for the given source.
func NewAnalysisReport(runID, source string) *AnalysisReport {
	return &AnalysisReport{
		RunID:        runID,
		Source:       source,
		DateAnalyzed: time.Now(),
		Inventory:    NewInventory(),
		Deviations:   make([]Deviation, 0),
	}
}

// AddDeviation appends a check outcome and updates the summary counters.
// Duplicate declarations produce duplicate records, so no deduplication
// happens here.
func (r *AnalysisReport) AddDeviation(d Deviation) {
	r.Deviations = append(r.Deviations, d)

	if !d.IsMismatch() {
		r.MatchedCount++
		return
	}

	switch d.Severity {
	case SeverityCritical:
		r.CriticalCount++
	case SeverityHigh:
		r.HighCount++
	case SeverityMedium:
		r.MediumCount++
	case SeverityLow:
		r.LowCount++
	case SeverityInfo:
		r.InfoCount++
	}
}

// AddDiagnostic records a skipped block or check.
func (r *AnalysisReport) AddDiagnostic(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// TotalDeviations returns the number of mismatched deviations.
func (r *AnalysisReport) TotalDeviations() int {
	return r.CriticalCount + r.HighCount + r.MediumCount + r.LowCount + r.InfoCount
}

// HasDeviations returns true if any check found a mismatch.
func (r *AnalysisReport) HasDeviations() bool {
	return r.TotalDeviations() > 0
}

// Mismatched returns the mismatched deviations in evaluation order.
func (r *AnalysisReport) Mismatched() []Deviation {
	var result []Deviation
	for _, d := range r.Deviations {
		if d.IsMismatch() {
			result = append(result, d)
		}
	}
	return result
}

// GetDeviationsBySeverity returns mismatched deviations with the given severity.
func (r *AnalysisReport) GetDeviationsBySeverity(severity Severity) []Deviation {
	var result []Deviation
	for _, d := range r.Deviations {
		if d.IsMismatch() && d.Severity == severity {
			result = append(result, d)
		}
	}
	return result
}

// DeviceName returns the hostname if known, otherwise the source.
func (r *AnalysisReport) DeviceName() string {
	if r.Device.Hostname != "" {
		return r.Device.Hostname
	}
	return r.Source
}

// Summary is the compact severity overview of an analysis.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`

	// Total counts mismatched deviations only.
	Total   int `json:"total"`
	Matched int `json:"matched"`

	// Entities is the number of inventory entries.
	Entities int `json:"entities"`

	// Skipped is the number of diagnostics.
	Skipped int `json:"skipped"`
}

// Summary returns the severity overview of the report.
func (r *AnalysisReport) Summary() Summary {
	return Summary{
		Critical: r.CriticalCount,
		High:     r.HighCount,
		Medium:   r.MediumCount,
		Low:      r.LowCount,
		Info:     r.InfoCount,
		Total:    r.TotalDeviations(),
		Matched:  r.MatchedCount,
		Entities: r.Inventory.TotalEntities(),
		Skipped:  len(r.Diagnostics),
	}
}
