package config

import "errors"

// Configuration validation errors.
// These errors are returned by Validate and ValidateServer so callers can
// use errors.Is.
var (
	// ErrNoTarget is returned when no configuration file is given.
	ErrNoTarget = errors.New("no target specified: provide one or more configuration files")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxFileSize is returned when the file size limit is not positive.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be positive")

	// ErrNoAllowedExtensions is returned when every file type would be rejected.
	ErrNoAllowedExtensions = errors.New("no allowed file extensions configured")

	// ErrNoListenAddress is returned when serve has nowhere to listen.
	ErrNoListenAddress = errors.New("no listen address specified")

	// ErrInvalidRequestTimeout is returned when the request timeout is not positive.
	ErrInvalidRequestTimeout = errors.New("invalid request timeout: must be positive")

	// ErrUnknownCheck is returned when the config file names a check that
	// does not exist.
	ErrUnknownCheck = errors.New("unknown check")

	// ErrInvalidSeverity is returned when a severity override cannot be parsed.
	ErrInvalidSeverity = errors.New("invalid severity")
)
