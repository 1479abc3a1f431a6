// Package config provides configuration structures and utilities for wlcaudit.
// It defines the options for analyzing controller configurations, the
// per-device rule settings read from the .wlcaudit file, and report and
// history database preferences.
package config
