package model

// Entity status values derived from shutdown or disabled markers in a block.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Policy profile switching modes.
const (
	SwitchingCentral = "Central"
	SwitchingLocal   = "Local"
)

// WirelessNetwork is one SSID declared by a "wlan <name> <id>" block.
type WirelessNetwork struct {
	// ID is the WLAN identifier exactly as written on the declaration line.
	// Deviation IDs such as "wpa3-<id>" use the same text.
	ID string `json:"id"`

	// Name is the profile name from the declaration line.
	Name string `json:"name"`

	// AuthType is the uppercased authentication method, MAC-FILTER or OPEN.
	AuthType string `json:"auth_type"`

	// Security is the uppercased security mode such as WPA2 or NONE.
	Security string `json:"security"`

	// VLAN is the first VLAN number in the block, or 1.
	VLAN int `json:"vlan"`

	// Status is StatusEnabled or StatusDisabled.
	Status string `json:"status"`

	// PolicyProfile names the attached policy profile. It is not resolved.
	PolicyProfile string `json:"policy_profile"`
}

// RemoteSiteGroup is a FlexConnect group of branch access points.
type RemoteSiteGroup struct {
	Name              string `json:"name"`
	PrimaryController string `json:"primary_controller"`
	APCount           int    `json:"ap_count"`
	Status            string `json:"status"`
}

// APGroup groups access points sharing RF and site settings.
type APGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	APCount     int    `json:"ap_count"`
	SiteTag     string `json:"site_tag"`
	RFProfile   string `json:"rf_profile"`
}

// PolicyProfile holds client policy settings referenced by policy tags.
type PolicyProfile struct {
	Name string `json:"name"`

	// Type is SwitchingCentral or SwitchingLocal.
	Type string `json:"type"`

	VLAN int    `json:"vlan"`
	QoS  string `json:"qos"`

	// AAA is "ISE" when AAA override is enabled, otherwise "Local".
	AAA string `json:"aaa"`
}

// PolicyTag maps WLANs to policy profiles.
type PolicyTag struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Policies    []string `json:"policies"`
}

// DeviceInfo holds global facts about the controller that produced the dump.
type DeviceInfo struct {
	Hostname string `json:"hostname,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Inventory is the structured view of every declared entity.
// Each list keeps the order of first appearance in the source text,
// and duplicate declarations are kept as separate entries.
type Inventory struct {
	WirelessNetworks []WirelessNetwork `json:"wireless_networks"`
	RemoteSiteGroups []RemoteSiteGroup `json:"remote_site_groups"`
	APGroups         []APGroup         `json:"ap_groups"`
	PolicyProfiles   []PolicyProfile   `json:"policy_profiles"`
	PolicyTags       []PolicyTag       `json:"policy_tags"`
}

// NewInventory returns an Inventory whose lists are empty rather than nil,
// so JSON output always contains arrays.
func NewInventory() Inventory {
	return Inventory{
		WirelessNetworks: []WirelessNetwork{},
		RemoteSiteGroups: []RemoteSiteGroup{},
		APGroups:         []APGroup{},
		PolicyProfiles:   []PolicyProfile{},
		PolicyTags:       []PolicyTag{},
	}
}

// TotalEntities returns the number of entities across all lists.
func (i Inventory) TotalEntities() int {
	return len(i.WirelessNetworks) + len(i.RemoteSiteGroups) + len(i.APGroups) +
		len(i.PolicyProfiles) + len(i.PolicyTags)
}
