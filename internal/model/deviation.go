package model

// DeviationStatus tells whether a check outcome matches best practice.
type DeviationStatus string

const (
	// StatusMatched marks a block that already follows best practice.
	StatusMatched DeviationStatus = "matched"

	// StatusMismatched marks a block that deviates from best practice.
	StatusMismatched DeviationStatus = "mismatched"
)

// Related entity types.
const (
	EntitySSID      = "ssid"
	EntityRFProfile = "rf-profile"
)

// RelatedEntity names the entity a deviation was raised for.
type RelatedEntity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Deviation is one best-practice check outcome for one block.
type Deviation struct {
	// ID is derived from the check and the block identifier, for example
	// "wpa3-1" or "rf-High-Density". It is stable across runs.
	ID string `json:"id"`

	// Check is the catalog key of the check that produced this record.
	Check string `json:"check"`

	Category     string          `json:"category"`
	CurrentValue string          `json:"current_value"`
	BestPractice string          `json:"best_practice"`
	Status       DeviationStatus `json:"status"`

	Description    string `json:"description"`
	Impact         string `json:"impact"`
	Recommendation string `json:"recommendation"`

	// CurrentConfig is the trimmed text of the block the check examined.
	CurrentConfig string `json:"current_config"`

	RelatedTo RelatedEntity `json:"related_to"`

	// CurrentCommand shows the current setting on the controller.
	CurrentCommand string `json:"current_command"`

	// RecommendedCommand applies the fix. It may span several lines.
	RecommendedCommand string `json:"recommended_command"`

	Severity     Severity `json:"severity"`
	SeverityText string   `json:"severity_text"`
}

// IsMismatch reports whether the record describes a real deviation.
func (d Deviation) IsMismatch() bool {
	return d.Status == StatusMismatched
}

// Diagnostic stages.
const (
	StageExtract  = "extract"
	StageEvaluate = "evaluate"
)

// Diagnostic records a field that fell back to its default, or a block or
// check that was skipped because it failed. Diagnostics never abort an
// analysis.
type Diagnostic struct {
	// Stage is StageExtract or StageEvaluate.
	Stage string `json:"stage"`

	// Kind is the block kind, such as "wlan" or "rf-profile".
	Kind string `json:"kind"`

	// Block is the name of the block that failed.
	Block string `json:"block"`

	// Field is set when a single field fell back to its default.
	Field string `json:"field,omitempty"`

	// Check is set for evaluation failures.
	Check string `json:"check,omitempty"`

	Message string `json:"message"`
}
