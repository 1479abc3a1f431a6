// Package web provides the HTTP upload API for wlcaudit.
//
// Routes:
//
//	POST /api/analyze  multipart form with a "file" field; returns the
//	                   inventory, deviations, skipped blocks and summary
//	GET  /api/sample   the bundled example running-config
//
// Uploads go through the same load and analyze steps as the CLI, so the
// extension and size policy and the per-device rule settings apply
// unchanged. Analysis failures are reported to the client with a generic
// message; details are only logged.
package web
