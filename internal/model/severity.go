package model

import (
	"fmt"
	"strings"
)

// Severity represents how far a configuration strays from best practice.
// Values are ordered so that comparisons and sorting work directly on the int.
type Severity int

const (
	// SeverityInfo indicates informational records such as matched checks.
	SeverityInfo Severity = iota

	// SeverityLow indicates cosmetic or housekeeping deviations.
	SeverityLow

	// SeverityMedium indicates deviations that degrade performance or
	// airtime efficiency, for example low mandatory data rates.
	SeverityMedium

	// SeverityHigh indicates deviations that weaken the network noticeably
	// but do not expose it directly.
	SeverityHigh

	// SeverityCritical indicates security deviations on client-facing SSIDs,
	// for example missing WPA3 or optional PMF.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return SeverityInfo, nil
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Check names used as keys into the check catalog and in configuration files.
const (
	CheckWPA3        = "wpa3"
	CheckPMF         = "pmf"
	CheckMinDataRate = "min_data_rate"
)

// CheckInfo contains the fixed metadata of a best-practice check: the
// severity of a mismatch, the expected value and the explanatory text
// attached to every deviation the check produces.
type CheckInfo struct {
	Severity       Severity
	Category       string
	BestPractice   string
	Impact         string
	Recommendation string
}

// checkInfoMapping is the single source of truth for check metadata.
// Checks only decide whether a block matches; everything a reader sees
// about the outcome comes from here.
var checkInfoMapping = map[string]CheckInfo{
	CheckWPA3: {
		Severity:       SeverityCritical,
		Category:       "Security - WPA3",
		BestPractice:   "WPA3",
		Impact:         "Reduced security protection against modern wireless attacks",
		Recommendation: "Enable WPA3 for enhanced security features",
	},
	CheckPMF: {
		Severity:       SeverityCritical,
		Category:       "Security - PMF",
		BestPractice:   "Mandatory",
		Impact:         "Vulnerability to management frame attacks",
		Recommendation: "Enable mandatory PMF for enhanced security",
	},
	CheckMinDataRate: {
		Severity:       SeverityMedium,
		Category:       "RF Management - Data Rate",
		BestPractice:   "12 Mbps",
		Impact:         "Reduced network performance and increased airtime utilization",
		Recommendation: "Increase minimum data rate to 12 Mbps",
	},
}

// Texts used for checks whose outcome matches best practice.
const (
	MatchedImpact         = "None - configuration matches best practice"
	MatchedRecommendation = "No changes needed"
)

// GetSeverity returns the mismatch severity for a check.
// Returns SeverityInfo if the check is not in the catalog.
func GetSeverity(check string) Severity {
	if info, ok := checkInfoMapping[check]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetCheckInfo returns the full metadata for a check.
// Returns a default CheckInfo with SeverityInfo if the check is unknown.
func GetCheckInfo(check string) CheckInfo {
	if info, ok := checkInfoMapping[check]; ok {
		return info
	}
	return CheckInfo{
		Severity:       SeverityInfo,
		Category:       "Uncategorized",
		Impact:         "Unknown check. Review manually.",
		Recommendation: "Compare the configuration against vendor guidance.",
	}
}

// CheckNames returns the names of all catalogued checks in evaluation order.
func CheckNames() []string {
	return []string{CheckWPA3, CheckPMF, CheckMinDataRate}
}
