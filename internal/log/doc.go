// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Controller running-configurations carry pre-shared keys, RADIUS keys,
// SNMP communities and user passwords. Skipped blocks and deviations are
// logged with their configuration text, so the handler masks those
// credentials in place while leaving the surrounding directives readable.
//
// # Security Features
//
// The SecureHandler sanitizes log output in three ways:
//   - Attributes whose key names a secret (password, psk, community, cookie)
//     are replaced entirely
//   - Values that look like tokens (JWT, Bearer, Basic, private key blocks)
//     are replaced entirely
//   - Credentials embedded in configuration text are masked by RedactConfig
//
// Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("deviation",
//	    "current_config", block, // "psk ascii 7 ***REDACTED***"
//	    "check", "wpa3",
//	)
//
//	slog.SetDefault(logger)
package log
