package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/wlcaudit/internal/extract"
	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/rules"
	"github.com/nao1215/wlcaudit/internal/sample"
)

// ErrParseFailed is returned when the input cannot be turned into text.
// It is the only error Parse returns; every other problem is reported
// through Result.Diagnostics.
var ErrParseFailed = errors.New("failed to parse configuration file")

// errBinaryContent marks input that decodes but contains NUL bytes.
var errBinaryContent = errors.New("content is not text")

// trailingSpace matches whitespace in front of a newline, including runs
// of blank lines.
var trailingSpace = regexp.MustCompile(`\s+\n`)

// Result is everything one Parse call produces.
type Result struct {
	// Inventory lists the extracted entities.
	Inventory model.Inventory

	// Issues lists check outcomes in evaluation order.
	Issues []model.Deviation

	// Diagnostics lists blocks and checks that were skipped.
	Diagnostics []model.Diagnostic

	// Device holds the hostname and version lines.
	Device model.DeviceInfo

	// Digest is the SHA3-256 fingerprint of Normalized.
	Digest string

	// Normalized is the text that was segmented.
	Normalized string

	// UsedSample is true if blank input was replaced by the sample.
	UsedSample bool
}

// Parser analyzes controller running-configurations.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	sample    string
	logger    *slog.Logger
	evalOpts  []func(*rules.Options)
	evaluator *rules.Evaluator
}

// Option configures a Parser.
type Option func(*Parser)

// WithSample sets the configuration analyzed when the input is blank.
func WithSample(text string) Option {
	return func(p *Parser) {
		p.sample = text
	}
}

// WithLogger sets the logger used to report skipped blocks and checks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithEmitMatched also reports checks that passed.
func WithEmitMatched(emit bool) Option {
	return func(p *Parser) {
		p.evalOpts = append(p.evalOpts, rules.WithEmitMatched(emit))
	}
}

// WithDisabledChecks turns off the named checks.
func WithDisabledChecks(names ...string) Option {
	return func(p *Parser) {
		p.evalOpts = append(p.evalOpts, rules.WithDisabledChecks(names...))
	}
}

// WithSeverity overrides the mismatch severity of one check.
func WithSeverity(check string, severity model.Severity) Option {
	return func(p *Parser) {
		p.evalOpts = append(p.evalOpts, rules.WithSeverity(check, severity))
	}
}

// New creates a Parser. Without options it substitutes the bundled sample
// for blank input and logs through slog.Default.
func New(opts ...Option) *Parser {
	p := &Parser{
		sample: sample.Config,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.evaluator = rules.NewEvaluator(p.evalOpts...)

	return p
}

// Parse analyzes a running-configuration with default options.
func Parse(content []byte) (*Result, error) {
	return New().Parse(content)
}

// Parse decodes and normalizes content, then extracts the inventory and
// evaluates the checks over the same text. Blank input is replaced by the
// configured sample. Calling Parse twice on the same input returns equal
// results.
//
// Content containing a NUL byte is treated as binary and rejected with
// ErrParseFailed, even when the rest would decode as text.
func (p *Parser) Parse(content []byte) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrParseFailed, r)
		}
	}()

	text, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	usedSample := false
	if strings.TrimSpace(text) == "" {
		text = p.sample
		usedSample = true
		p.logger.Debug("blank configuration, analyzing sample instead")
	}

	normalized := normalize(text)

	inventory, diags := extract.Inventory(normalized)
	issues, evalDiags := p.evaluator.Evaluate(normalized)
	diags = append(diags, evalDiags...)

	for _, d := range diags {
		p.logger.Warn("configuration diagnostic",
			"stage", d.Stage,
			"kind", d.Kind,
			"block", d.Block,
			"field", d.Field,
			"check", d.Check,
			"error", d.Message,
		)
	}

	return &Result{
		Inventory:   inventory,
		Issues:      issues,
		Diagnostics: diags,
		Device:      extract.Device(normalized),
		Digest:      model.Digest(normalized),
		Normalized:  normalized,
		UsedSample:  usedSample,
	}, nil
}

// Normalize decodes content and applies line-ending and whitespace
// normalization. The result never contains carriage returns.
func Normalize(content []byte) (string, error) {
	text, err := decode(content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return normalize(text), nil
}

// decode converts raw bytes to text. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is stripped; otherwise UTF-8 is assumed.
func decode(content []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", err
	}
	if strings.ContainsRune(string(decoded), 0) {
		return "", errBinaryContent
	}
	return string(decoded), nil
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return trailingSpace.ReplaceAllString(text, "\n")
}
