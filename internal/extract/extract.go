package extract

import (
	"errors"
	"fmt"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/segment"
)

// Inventory extracts every supported entity from normalized text.
// A field that cannot be converted keeps its default and is reported as a
// diagnostic. Only a block whose extraction panics is left out.
func Inventory(text string) (model.Inventory, []model.Diagnostic) {
	var diags []model.Diagnostic
	inv := model.Inventory{
		WirelessNetworks: collect(text, segment.KindWLAN, WirelessNetwork, &diags),
		RemoteSiteGroups: collect(text, segment.KindRemoteSiteGroup, RemoteSiteGroup, &diags),
		APGroups:         collect(text, segment.KindAPGroup, APGroup, &diags),
		PolicyProfiles:   collect(text, segment.KindPolicyProfile, PolicyProfile, &diags),
		PolicyTags:       collect(text, segment.KindPolicyTag, PolicyTag, &diags),
	}
	return inv, diags
}

// Device extracts the controller hostname and software version from the
// top-level lines of the dump.
func Device(text string) model.DeviceInfo {
	var info model.DeviceInfo
	if m := hostnamePattern.FindStringSubmatch(text); len(m) == 2 {
		info.Hostname = m[1]
	}
	if m := versionPattern.FindStringSubmatch(text); len(m) == 2 {
		info.Version = m[1]
	}
	return info
}

// WirelessNetwork extracts one SSID from a wlan block.
//
// The entity-type extractors always return a complete entity. A non-nil
// error lists the fields that fell back to their defaults, each as a
// *FieldError.
func WirelessNetwork(b segment.Block) (model.WirelessNetwork, error) {
	vlan, err := vlanRule.find(b.Text)
	return model.WirelessNetwork{
		ID:            b.ID,
		Name:          b.Name,
		AuthType:      authType(b.Text),
		Security:      securityRule.find(b.Text),
		VLAN:          vlan,
		Status:        status(b.Text),
		PolicyProfile: policyProfileRule.find(b.Text),
	}, err
}

// RemoteSiteGroup extracts one FlexConnect group.
func RemoteSiteGroup(b segment.Block) (model.RemoteSiteGroup, error) {
	count, err := apCountRule.find(b.Text)
	return model.RemoteSiteGroup{
		Name:              b.Name,
		PrimaryController: primaryControllerRule.find(b.Text),
		APCount:           count,
		Status:            status(b.Text),
	}, err
}

// APGroup extracts one AP group.
func APGroup(b segment.Block) (model.APGroup, error) {
	count, err := apCountRule.find(b.Text)
	return model.APGroup{
		Name:        b.Name,
		Description: descriptionRule.find(b.Text),
		APCount:     count,
		SiteTag:     siteTagRule.find(b.Text),
		RFProfile:   rfProfileRule.find(b.Text),
	}, err
}

// PolicyProfile extracts one policy profile.
func PolicyProfile(b segment.Block) (model.PolicyProfile, error) {
	vlan, err := vlanRule.find(b.Text)
	return model.PolicyProfile{
		Name: b.Name,
		Type: switchingType(b.Text),
		VLAN: vlan,
		QoS:  qosRule.find(b.Text),
		AAA:  aaaSource(b.Text),
	}, err
}

// PolicyTag extracts one policy tag and the policy profiles it maps.
func PolicyTag(b segment.Block) (model.PolicyTag, error) {
	return model.PolicyTag{
		Name:        b.Name,
		Description: descriptionRule.find(b.Text),
		Policies:    tagPolicies(b.Text),
	}, nil
}

// collect runs fn over every block of a kind. Field errors become
// diagnostics and the entity is kept. A block whose extraction panics is
// recorded in diags and skipped.
func collect[T any](text string, kind segment.Kind, fn func(segment.Block) (T, error), diags *[]model.Diagnostic) []T {
	out := []T{}
	for b := range segment.Blocks(text, kind) {
		v, ok, err := guard(b, fn)
		if err != nil {
			*diags = append(*diags, blockDiagnostic(kind, b, err))
		}
		if ok {
			out = append(out, v)
		}
	}
	return out
}

// blockDiagnostic describes an extraction error. Field errors name the
// field that fell back to its default.
func blockDiagnostic(kind segment.Kind, b segment.Block, err error) model.Diagnostic {
	d := model.Diagnostic{
		Stage:   model.StageExtract,
		Kind:    string(kind),
		Block:   b.Name,
		Message: err.Error(),
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		d.Field = fe.Field
	}
	return d
}

// guard calls fn and reports ok=false if it panicked.
func guard[T any](b segment.Block, fn func(segment.Block) (T, error)) (v T, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, ok = zero, false
			err = fmt.Errorf("panic while extracting %s %q: %v", b.Kind, b.Name, r)
		}
	}()
	v, err = fn(b)
	return v, true, err
}
