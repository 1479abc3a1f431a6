package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/wlcaudit/internal/model"
)

// stringRule extracts the first capture group of a pattern, falling back
// to a default when the pattern does not match.
type stringRule struct {
	pattern  *regexp.Regexp
	fallback string
	upper    bool
}

func (r stringRule) find(text string) string {
	m := r.pattern.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return r.fallback
	}
	if r.upper {
		// Casers keep state, so each call gets its own.
		return cases.Upper(language.Und).String(m[1])
	}
	return m[1]
}

// FieldError reports a field whose value could not be converted. The
// entity keeps the field's fallback.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q, using default: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// intRule extracts the first capture group of a pattern as a decimal int.
type intRule struct {
	field    string
	pattern  *regexp.Regexp
	fallback int
}

// find always returns a usable value. A match that does not fit in an int
// yields the fallback and a *FieldError.
func (r intRule) find(text string) (int, error) {
	m := r.pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return r.fallback, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return r.fallback, &FieldError{Field: r.field, Value: m[1], Err: err}
	}
	return n, nil
}

// Field rules. Each pattern is applied to a whole block and the first match
// wins, regardless of indentation.
var (
	securityRule = stringRule{
		pattern:  regexp.MustCompile(`(?i)security\s+(wpa\d?(?:-\w+)*|none)`),
		fallback: "NONE",
		upper:    true,
	}
	authenticationRule = stringRule{
		pattern: regexp.MustCompile(`(?i)authentication\s+(\S+)`),
		upper:   true,
	}
	macFilterPattern = regexp.MustCompile(`mac-filtering\s+enable`)

	vlanRule          = intRule{field: "vlan", pattern: regexp.MustCompile(`vlan\s+(\d+)`), fallback: 1}
	policyProfileRule = stringRule{pattern: regexp.MustCompile(`policy-profile\s+([\w-]+)`), fallback: "default-policy"}

	primaryControllerRule = stringRule{pattern: regexp.MustCompile(`primary\s+controller\s+([\w.-]+)`), fallback: "N/A"}
	apCountRule           = intRule{field: "aps count", pattern: regexp.MustCompile(`(?i)aps\s+count:\s*(\d+)`), fallback: 0}

	descriptionRule = stringRule{pattern: regexp.MustCompile(`description\s+"([^"]+)"`), fallback: ""}
	rfProfileRule   = stringRule{pattern: regexp.MustCompile(`rf-profile\s+([\w-]+)`), fallback: "default-rf"}
	siteTagRule     = stringRule{pattern: regexp.MustCompile(`site-tag\s+([\w-]+)`), fallback: "default-site"}

	qosRule = stringRule{pattern: regexp.MustCompile(`qos-policy\s+([\w-]+)`), fallback: "default"}

	tagPolicyPattern = regexp.MustCompile(`wlan\s+[\w-]+\s+policy\s+([\w-]+)`)

	hostnamePattern = regexp.MustCompile(`(?m)^hostname[ \t]+(\S+)`)
	versionPattern  = regexp.MustCompile(`(?m)^version[ \t]+(\S+)`)
)

// authType returns the authentication method, MAC-FILTER when MAC filtering
// is enabled, or OPEN.
func authType(text string) string {
	if v := authenticationRule.find(text); v != "" {
		return v
	}
	if macFilterPattern.MatchString(text) {
		return "MAC-FILTER"
	}
	return "OPEN"
}

// status reports disabled when the block mentions shutdown or disabled
// anywhere, including inside other words.
func status(text string) string {
	if strings.Contains(text, "shutdown") || strings.Contains(text, "disabled") {
		return model.StatusDisabled
	}
	return model.StatusEnabled
}

func switchingType(text string) string {
	if strings.Contains(text, "central") {
		return model.SwitchingCentral
	}
	return model.SwitchingLocal
}

func aaaSource(text string) string {
	if strings.Contains(text, "aaa-override") {
		return "ISE"
	}
	return "Local"
}

func tagPolicies(text string) []string {
	policies := []string{}
	for _, m := range tagPolicyPattern.FindAllStringSubmatch(text, -1) {
		policies = append(policies, m[1])
	}
	return policies
}
