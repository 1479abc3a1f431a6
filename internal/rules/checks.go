package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/segment"
)

// minDataRate is the lowest acceptable mandatory rate in Mbps.
const minDataRate = 12

// defaultDataRate applies when an RF profile sets no mandatory rate.
const defaultDataRate = 6

var (
	securityTokenPattern = regexp.MustCompile(`security\s+(\S+)`)
	mandatoryRatePattern = regexp.MustCompile(`data-rates\s+802\.11[ab]\s+mandatory\s+(\d+)`)
)

// WPA3Check flags WLANs that do not enable WPA3.
type WPA3Check struct{}

// NewWPA3Check creates a new WPA3Check.
func NewWPA3Check() *WPA3Check {
	return &WPA3Check{}
}

// Name returns the check name.
func (c *WPA3Check) Name() string {
	return model.CheckWPA3
}

// Kind returns the block kind.
func (c *WPA3Check) Kind() segment.Kind {
	return segment.KindWLAN
}

// Evaluate reports a mismatch unless the block enables "security wpa3".
// The current value is the first security token in the block.
func (c *WPA3Check) Evaluate(b segment.Block) (model.Deviation, error) {
	current := "NONE"
	if m := securityTokenPattern.FindStringSubmatch(b.Text); len(m) == 2 {
		current = upper(m[1])
	}

	matched := hasDirective(b.Text, "security wpa3")
	d := newDeviation(c.Name(), "wpa3-"+b.ID, b, model.EntitySSID, current, matched)
	if matched {
		d.Description = fmt.Sprintf("SSID %s is using WPA3 encryption", b.Name)
	} else {
		d.Description = fmt.Sprintf("SSID %s is not using WPA3 encryption", b.Name)
	}
	d.CurrentCommand = fmt.Sprintf("show wlan %s security", b.ID)
	d.RecommendedCommand = fmt.Sprintf("config wlan security wpa3 enable %s\nconfig wlan security pmf mandatory %s", b.ID, b.ID)
	return d, nil
}

// PMFCheck flags WLANs where Protected Management Frames are not mandatory.
type PMFCheck struct{}

// NewPMFCheck creates a new PMFCheck.
func NewPMFCheck() *PMFCheck {
	return &PMFCheck{}
}

// Name returns the check name.
func (c *PMFCheck) Name() string {
	return model.CheckPMF
}

// Kind returns the block kind.
func (c *PMFCheck) Kind() segment.Kind {
	return segment.KindWLAN
}

// Evaluate reports a mismatch unless the block contains "pmf mandatory".
func (c *PMFCheck) Evaluate(b segment.Block) (model.Deviation, error) {
	matched := hasDirective(b.Text, "pmf mandatory")

	current := "Optional"
	switch {
	case matched:
		current = "Mandatory"
	case hasDirective(b.Text, "pmf disable"):
		current = "Disabled"
	}

	d := newDeviation(c.Name(), "pmf-"+b.ID, b, model.EntitySSID, current, matched)
	if matched {
		d.Description = fmt.Sprintf("PMF (Protected Management Frames) mandatory on SSID %s", b.Name)
	} else {
		d.Description = fmt.Sprintf("PMF (Protected Management Frames) not mandatory on SSID %s", b.Name)
	}
	d.CurrentCommand = fmt.Sprintf("show wlan %s security", b.ID)
	d.RecommendedCommand = fmt.Sprintf("config wlan security pmf mandatory %s", b.ID)
	return d, nil
}

// DataRateCheck flags RF profiles whose mandatory 802.11a/b rate is below
// 12 Mbps.
type DataRateCheck struct{}

// NewDataRateCheck creates a new DataRateCheck.
func NewDataRateCheck() *DataRateCheck {
	return &DataRateCheck{}
}

// Name returns the check name.
func (c *DataRateCheck) Name() string {
	return model.CheckMinDataRate
}

// Kind returns the block kind.
func (c *DataRateCheck) Kind() segment.Kind {
	return segment.KindRFProfile
}

// Evaluate compares the first mandatory data rate against the minimum.
// A profile without a mandatory rate is treated as 6 Mbps.
func (c *DataRateCheck) Evaluate(b segment.Block) (model.Deviation, error) {
	rate := defaultDataRate
	if m := mandatoryRatePattern.FindStringSubmatch(b.Text); len(m) == 2 {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return model.Deviation{}, fmt.Errorf("invalid mandatory data rate %q: %w", m[1], err)
		}
		rate = n
	}

	matched := rate >= minDataRate
	d := newDeviation(c.Name(), "rf-"+b.Name, b, model.EntityRFProfile, fmt.Sprintf("%d Mbps", rate), matched)
	if matched {
		d.Description = fmt.Sprintf("RF Profile %s meets the minimum data rate", b.Name)
	} else {
		d.Description = fmt.Sprintf("RF Profile %s has low minimum data rate", b.Name)
	}
	d.CurrentCommand = fmt.Sprintf("show rf-profile detailed %s", b.Name)
	d.RecommendedCommand = fmt.Sprintf("config rf-profile data-rates minimum %dMbps profile-name %s", minDataRate, b.Name)
	return d, nil
}

// newDeviation fills the fields shared by every check from the catalog.
func newDeviation(check, id string, b segment.Block, entityType, current string, matched bool) model.Deviation {
	info := model.GetCheckInfo(check)
	d := model.Deviation{
		ID:             id,
		Check:          check,
		Category:       info.Category,
		CurrentValue:   current,
		BestPractice:   info.BestPractice,
		Status:         model.StatusMismatched,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		CurrentConfig:  strings.TrimSpace(b.Text),
		RelatedTo:      model.RelatedEntity{Type: entityType, Name: b.Name},
		Severity:       info.Severity,
	}
	if matched {
		d.Status = model.StatusMatched
		d.Impact = model.MatchedImpact
		d.Recommendation = model.MatchedRecommendation
		d.Severity = model.SeverityInfo
	}
	d.SeverityText = d.Severity.String()
	return d
}

// hasDirective reports whether any non-negated line contains directive.
// Lines starting with "no " turn a feature off and never count.
func hasDirective(text, directive string) bool {
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "no ") {
			continue
		}
		if strings.Contains(line, directive) {
			return true
		}
	}
	return false
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
