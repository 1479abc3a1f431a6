// Package main provides the entry point for the wlcaudit CLI.
//
// wlcaudit reads Cisco wireless LAN controller running-configurations,
// lists the wireless objects they define, and reports where the
// configuration deviates from best practice.
//
// Usage:
//
//	wlcaudit analyze <running-config>
//	wlcaudit compare <hostname>
//	wlcaudit serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
