package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBatchSize is the number of configuration files analyzed at once.
	// Analysis is CPU-bound, so a small pool is enough.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "wlcaudit"

	// DefaultMaxFileSize is the largest configuration file accepted.
	// Controller dumps are rarely above a few hundred kilobytes.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

	// DefaultListenAddress is where the HTTP upload API listens.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultRequestTimeout bounds a single HTTP request, including upload.
	DefaultRequestTimeout = 30 * time.Second
)

// DefaultAllowedExtensions lists the file extensions accepted for analysis.
// It is a function so callers cannot mutate a shared slice.
func DefaultAllowedExtensions() []string {
	return []string{".cfg", ".txt"}
}

// Config holds all options for a wlcaudit run.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of files analyzed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the rule configuration file.
	// If empty, .wlcaudit is searched in the current and home directories.
	ConfigFilePath string

	// Rules holds per-device rule settings loaded from the config file.
	Rules *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Stdout is used when empty.
	ReportFile string

	// Targets is the list of configuration files to analyze.
	Targets []string

	// DBDir is the directory holding the history database.
	// Defaults to XDG data directory (~/.local/share/wlcaudit on Linux).
	DBDir string

	// SaveToDB stores each analysis in the history database.
	SaveToDB bool

	// MaxFileSize is the largest accepted configuration file in bytes.
	MaxFileSize int64

	// AllowedExtensions lists accepted file extensions, with leading dot.
	AllowedExtensions []string

	// EmitMatched also reports checks that passed.
	EmitMatched bool

	// ListenAddress is the host:port of the HTTP upload API.
	ListenAddress string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:         DefaultBatchSize,
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: DefaultAllowedExtensions(),
		ListenAddress:     DefaultListenAddress,
		RequestTimeout:    DefaultRequestTimeout,
	}
}

// XDGDataDir returns the XDG data directory for wlcaudit.
// On Linux: ~/.local/share/wlcaudit
// On macOS: ~/Library/Application Support/wlcaudit
// On Windows: %LOCALAPPDATA%\wlcaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wlcaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the options used by the analyze command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return c.validateUploadPolicy()
}

// ValidateServer checks the options used by the serve command.
func (c *Config) ValidateServer() error {
	if c.ListenAddress == "" {
		return ErrNoListenAddress
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	return c.validateUploadPolicy()
}

func (c *Config) validateUploadPolicy() error {
	if c.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}
	if len(c.AllowedExtensions) == 0 {
		return ErrNoAllowedExtensions
	}
	if c.Rules != nil {
		if err := c.Rules.Validate(); err != nil {
			return err
		}
	}
	return nil
}
