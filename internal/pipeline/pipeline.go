package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/wlcaudit/internal/model"
)

// Step is one stage of an analysis.
type Step interface {
	// Do runs the step against report. Problems that still leave a usable
	// report belong in report.Diagnostics; an error ends the analysis.
	Do(ctx context.Context, report *model.AnalysisReport) error

	// Name identifies the step in logs and in report.PerformedSteps.
	Name() string
}

// Pipeline runs steps in order against one report.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. slog.Default is used if unset.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order and stops at the first failure.
// Cancellation is checked before each step, not during one.
//
// The failure message is stored in report.Error and the returned error
// names the failing step. Only steps that succeeded are appended to
// report.PerformedSteps.
func (p *Pipeline) Execute(ctx context.Context, report *model.AnalysisReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis cancelled",
				"step", step.Name(),
				"source", report.Source,
			)
			report.Error = err.Error()
			return err
		}

		p.logger.Debug("running step",
			"step", step.Name(),
			"source", report.Source,
			"run_id", report.RunID,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", report.Source,
				"error", err,
			)
			report.Error = err.Error()
			return fmt.Errorf("%s step: %w", step.Name(), err)
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
