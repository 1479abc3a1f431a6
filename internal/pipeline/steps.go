package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/wlcaudit/internal/config"
	"github.com/nao1215/wlcaudit/internal/extract"
	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/parser"
	"github.com/nao1215/wlcaudit/internal/sample"
)

// Input policy errors.
var (
	// ErrUnsupportedFileType is returned for files whose extension is not allowed.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge is returned for files above the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Policy decides which inputs may be analyzed.
type Policy struct {
	// MaxFileSize is the largest accepted input in bytes.
	MaxFileSize int64

	// AllowedExtensions lists accepted extensions with leading dot.
	// Matching is case-insensitive.
	AllowedExtensions []string
}

// DefaultPolicy returns the policy built from the package defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxFileSize:       config.DefaultMaxFileSize,
		AllowedExtensions: config.DefaultAllowedExtensions(),
	}
}

// Check validates a file name and size against the policy.
func (p Policy) Check(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(p.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(p.AllowedExtensions, ", "))
	}
	if size > p.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, p.MaxFileSize)
	}
	return nil
}

// LoadStep reads the configuration file named by report.Source.
// A report that already carries Content, such as an HTTP upload, is only
// checked against the policy.
type LoadStep struct {
	policy Policy
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadPolicy sets the size and extension policy.
func WithLoadPolicy(policy Policy) LoadStepOption {
	return func(s *LoadStep) {
		s.policy = policy
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step with the default policy.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		policy: DefaultPolicy(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if report.Content != nil {
		return s.policy.Check(report.Source, int64(len(report.Content)))
	}

	info, err := os.Stat(report.Source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", report.Source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("failed to read %s: is a directory", report.Source)
	}
	if err := s.policy.Check(report.Source, info.Size()); err != nil {
		return err
	}

	content, err := os.ReadFile(report.Source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", report.Source, err)
	}
	report.Content = content

	s.logger.Debug("configuration loaded",
		"source", report.Source,
		"bytes", len(content),
	)

	return nil
}

// AnalyzeStep runs the parser over report.Content and records the results.
// Rule settings are chosen by the hostname found in the configuration,
// so one step serves many controllers.
type AnalyzeStep struct {
	// rules holds per-device settings; nil means built-in defaults.
	rules *config.File

	// emitMatched is the default for devices that do not set it.
	emitMatched bool

	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithRules sets the per-device rule settings.
func WithRules(rules *config.File) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.rules = rules
	}
}

// WithAnalyzeEmitMatched reports passing checks unless a device entry
// says otherwise.
func WithAnalyzeEmitMatched(emit bool) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.emitMatched = emit
	}
}

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analyze step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(_ context.Context, report *model.AnalysisReport) error {
	p, err := s.parserFor(report.Content)
	if err != nil {
		return err
	}

	result, err := p.Parse(report.Content)
	if err != nil {
		return err
	}

	report.Inventory = result.Inventory
	report.Device = result.Device
	report.Digest = result.Digest
	report.UsedSample = result.UsedSample
	for _, d := range result.Issues {
		report.AddDeviation(d)
		if d.IsMismatch() {
			s.logger.Debug("deviation",
				"id", d.ID,
				"severity", d.SeverityText,
				"current_config", d.CurrentConfig,
			)
		}
	}
	for _, d := range result.Diagnostics {
		report.AddDiagnostic(d)
	}

	s.logger.Info("analysis completed",
		"device", report.DeviceName(),
		"entities", report.Inventory.TotalEntities(),
		"deviations", report.TotalDeviations(),
		"skipped", len(report.Diagnostics),
	)

	return nil
}

// parserFor builds a parser with the rule settings of the device that
// produced content. Blank content is analyzed as the bundled sample, so the
// sample's hostname selects the rules.
func (s *AnalyzeStep) parserFor(content []byte) (*parser.Parser, error) {
	opts := []parser.Option{
		parser.WithLogger(s.logger),
	}

	if s.rules == nil {
		return parser.New(append(opts, parser.WithEmitMatched(s.emitMatched))...), nil
	}

	normalized, err := parser.Normalize(content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(normalized) == "" {
		normalized = sample.Config
	}
	hostname := extract.Device(normalized).Hostname
	rc := s.rules.GetRuleConfig(hostname)

	emit := s.emitMatched
	if rc.EmitMatched != nil {
		emit = *rc.EmitMatched
	}
	opts = append(opts,
		parser.WithEmitMatched(emit),
		parser.WithDisabledChecks(rc.DisabledChecks...),
	)
	for check, severity := range rc.Severities() {
		opts = append(opts, parser.WithSeverity(check, severity))
	}

	return parser.New(opts...), nil
}

// Saver stores finished analyses. *database.HistoryDB implements it.
type Saver interface {
	Save(ctx context.Context, report *model.AnalysisReport) (int64, error)
}

// SaveStep stores the report in the history database.
type SaveStep struct {
	saver  Saver
	logger *slog.Logger
}

// NewSaveStep creates a new save step.
func NewSaveStep(saver Saver, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{saver: saver, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	id, err := s.saver.Save(ctx, report)
	if err != nil {
		return err
	}

	s.logger.Info("analysis saved",
		"device", report.DeviceName(),
		"id", id,
		"run_id", report.RunID,
	)
	return nil
}

// DefaultPipeline builds the load, analyze and optional save steps from a
// run configuration. saver may be nil to skip storing results.
func DefaultPipeline(cfg *config.Config, saver Saver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewLoadStep(
			WithLoadPolicy(Policy{
				MaxFileSize:       cfg.MaxFileSize,
				AllowedExtensions: cfg.AllowedExtensions,
			}),
			WithLoadLogger(logger),
		),
		NewAnalyzeStep(
			WithRules(cfg.Rules),
			WithAnalyzeEmitMatched(cfg.EmitMatched),
			WithAnalyzeLogger(logger),
		),
	)
	if saver != nil {
		p.AddStep(NewSaveStep(saver, logger))
	}

	return p
}
