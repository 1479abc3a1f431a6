package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers seen by the upload API
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,

	// Authentication
	"password": true,
	"passwd":   true,
	"secret":   true,
	"token":    true,
	"api_key":  true,

	// Controller credentials
	"psk":            true,
	"preshared_key":  true,
	"shared_secret":  true,
	"community":      true,
	"enable_secret":  true,
	"radius_key":     true,
	"tacacs_key":     true,
	"credential":     true,
	"credentials":    true,
	"wpa_passphrase": true,
}

// sensitivePatterns match values that are secrets in their entirety.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// inlineSecrets match credentials embedded in configuration text. Group 1
// is the directive that stays visible; the secret that follows is masked.
// Block text is logged as a whole, so masking the entire value would hide
// the context needed to debug a skipped block.
var inlineSecrets = []*regexp.Regexp{
	// security wpa psk set-key ascii 7 <key>, security wpa2 psk ascii 7 <key>
	regexp.MustCompile(`(?i)(\bpsk\s+(?:set-key\s+)?(?:ascii|hex)\s+(?:\d+\s+)?)\S+`),

	// username admin password 0 <pw>, enable secret 9 <hash>
	regexp.MustCompile(`(?i)(\b(?:password|secret)\s+(?:\d+\s+)?)\S+`),

	// radius-server key 7 <key>, key 0 <key>
	regexp.MustCompile(`(?i)(\bkey\s+\d+\s+)\S+`),

	// snmp-server community <string> RO
	regexp.MustCompile(`(?i)(\bcommunity\s+)\S+`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It masks attribute values with sensitive key names, values that look
// like tokens, and credentials embedded in configuration text before
// passing records to the underlying handler.
type SecureHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, the returned SecureHandler will use slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, RedactConfig(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if redacted := RedactConfig(strVal); redacted != strVal {
			return slog.String(a.Key, redacted)
		}
	}

	return a
}

// RedactConfig masks credentials inside configuration text, keeping the
// directive itself. Text without credentials is returned unchanged.
func RedactConfig(text string) string {
	for _, pattern := range inlineSecrets {
		text = pattern.ReplaceAllString(text, "${1}"+MaskValue)
	}
	return text
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" keyword is excluded because it matches keys such as
// "cache_key" or "sort_key".
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth",
		"credential", "private", "psk", "passphrase",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger creates a new text slog.Logger with secure handling.
// With verbose set the level is Debug; otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFor(verbose),
	}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, opts)))
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON. The serve command uses it for request logs.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFor(verbose),
	}
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, opts)))
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
