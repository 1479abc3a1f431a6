// Package database provides SQLite-based storage for wlcaudit.
//
// HistoryDB stores every analysis report as JSON next to its severity
// summary and configuration digest, plus one row per mismatched deviation.
// The compare command reads it back to show which deviations appeared or
// were resolved between runs on the same controller.
//
// The driver is modernc.org/sqlite, which needs no cgo, and the database
// is a single file in the XDG data directory.
package database
