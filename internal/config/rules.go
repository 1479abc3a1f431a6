package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nao1215/wlcaudit/internal/model"
)

// RuleConfig tunes the best-practice checks for one controller.
type RuleConfig struct {
	// DisabledChecks lists check names that must not run, e.g. "pmf".
	DisabledChecks []string `yaml:"disabledChecks,omitempty"`

	// EmitMatched also reports passing checks. Nil means "inherit".
	EmitMatched *bool `yaml:"emitMatched,omitempty"`

	// Severity overrides the mismatch severity per check name.
	// Values are severity names such as "high" or "low".
	Severity map[string]string `yaml:"severity,omitempty"`
}

// File represents the structure of the .wlcaudit configuration file.
type File struct {
	// Devices maps controller hostnames to their rule settings.
	Devices map[string]RuleConfig `yaml:"devices,omitempty"`

	// Defaults applies to every controller unless a device entry
	// overrides it.
	Defaults RuleConfig `yaml:"defaults,omitempty"`
}

// GetRuleConfig returns the settings for a controller hostname.
// It merges the device entry over the defaults: disabled checks are
// combined, severity overrides are replaced per check, and EmitMatched is
// replaced when set.
func (cf *File) GetRuleConfig(hostname string) RuleConfig {
	result := RuleConfig{
		DisabledChecks: slices.Clone(cf.Defaults.DisabledChecks),
		EmitMatched:    cf.Defaults.EmitMatched,
		Severity:       maps.Clone(cf.Defaults.Severity),
	}

	device, ok := cf.Devices[hostname]
	if !ok {
		return result
	}

	for _, name := range device.DisabledChecks {
		if !slices.Contains(result.DisabledChecks, name) {
			result.DisabledChecks = append(result.DisabledChecks, name)
		}
	}
	if device.EmitMatched != nil {
		result.EmitMatched = device.EmitMatched
	}
	if len(device.Severity) > 0 {
		if result.Severity == nil {
			result.Severity = make(map[string]string)
		}
		maps.Copy(result.Severity, device.Severity)
	}

	return result
}

// Validate checks every check name and severity in the file.
func (cf *File) Validate() error {
	if err := cf.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for host, rc := range cf.Devices {
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", host, err)
		}
	}
	return nil
}

// Validate checks that every referenced check exists and every severity
// parses.
func (rc RuleConfig) Validate() error {
	known := model.CheckNames()
	for _, name := range rc.DisabledChecks {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: %q", ErrUnknownCheck, name)
		}
	}
	for name, sev := range rc.Severity {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: %q", ErrUnknownCheck, name)
		}
		if _, err := model.ParseSeverity(sev); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeverity, err)
		}
	}
	return nil
}

// Severities returns the parsed severity overrides.
// Entries that do not parse are skipped; call Validate first to reject them.
func (rc RuleConfig) Severities() map[string]model.Severity {
	out := make(map[string]model.Severity, len(rc.Severity))
	for name, s := range rc.Severity {
		if sev, err := model.ParseSeverity(s); err == nil {
			out[name] = sev
		}
	}
	return out
}
