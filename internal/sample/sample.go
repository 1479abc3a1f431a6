// Package sample bundles a representative controller running-configuration.
//
// The parser analyzes it when it is handed blank input, and the HTTP
// adapter serves it so users can see what the tool expects.
package sample

import (
	_ "embed"
)

// Config is a running-configuration of a 9800-series controller with two
// WLANs, two RF profiles, FlexConnect groups, AP groups and policy objects.
//
//go:embed running-config.cfg
var Config string
