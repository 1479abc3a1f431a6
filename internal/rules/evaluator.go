package rules

import (
	"fmt"
	"slices"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/segment"
)

// Check decides whether one configuration block follows a best practice.
// Each check looks at blocks of a single kind and returns at most one
// deviation per block.
type Check interface {
	// Name returns the catalog key of the check, for example "wpa3".
	Name() string

	// Kind returns the block kind the check applies to.
	Kind() segment.Kind

	// Evaluate inspects a block and returns the outcome.
	// The returned deviation carries Status matched or mismatched.
	Evaluate(b segment.Block) (model.Deviation, error)
}

// Options configures the evaluator.
type Options struct {
	// EmitMatched also reports checks that passed, with severity INFO.
	EmitMatched bool

	// DisabledChecks lists check names that must not run.
	DisabledChecks []string

	// SeverityOverrides replaces the catalog severity of mismatches.
	SeverityOverrides map[string]model.Severity
}

// DefaultOptions returns the default evaluator options:
// every check enabled and only mismatches reported.
func DefaultOptions() Options {
	return Options{
		SeverityOverrides: make(map[string]model.Severity),
	}
}

// WithEmitMatched controls whether passing checks are reported.
func WithEmitMatched(emit bool) func(*Options) {
	return func(o *Options) {
		o.EmitMatched = emit
	}
}

// WithDisabledChecks turns off the named checks.
func WithDisabledChecks(names ...string) func(*Options) {
	return func(o *Options) {
		o.DisabledChecks = append(o.DisabledChecks, names...)
	}
}

// WithSeverity overrides the mismatch severity of one check.
func WithSeverity(check string, severity model.Severity) func(*Options) {
	return func(o *Options) {
		if o.SeverityOverrides == nil {
			o.SeverityOverrides = make(map[string]model.Severity)
		}
		o.SeverityOverrides[check] = severity
	}
}

// Evaluator runs the registered checks over configuration text.
type Evaluator struct {
	checks  []Check
	options Options
}

// NewEvaluator creates an Evaluator with the built-in checks registered in
// evaluation order: WPA3, PMF, then minimum data rate.
func NewEvaluator(opts ...func(*Options)) *Evaluator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	e := &Evaluator{
		options: options,
		checks:  make([]Check, 0),
	}

	e.Register(NewWPA3Check())
	e.Register(NewPMFCheck())
	e.Register(NewDataRateCheck())

	return e
}

// Register adds a check unless it is disabled by the options.
func (e *Evaluator) Register(check Check) {
	if slices.Contains(e.options.DisabledChecks, check.Name()) {
		return
	}
	e.checks = append(e.checks, check)
}

// CheckNames returns the names of the registered checks in order.
func (e *Evaluator) CheckNames() []string {
	names := make([]string, 0, len(e.checks))
	for _, c := range e.checks {
		names = append(names, c.Name())
	}
	return names
}

// Evaluate runs every registered check over normalized text.
//
// Kinds are visited in the order their first check was registered. Within
// a kind, blocks are visited in order and every check for that kind runs
// on a block before moving to the next block, so the two checks of a wlan
// block stay adjacent in the output. A check that fails on a block is
// recorded as a diagnostic and evaluation continues.
func (e *Evaluator) Evaluate(text string) ([]model.Deviation, []model.Diagnostic) {
	deviations := make([]model.Deviation, 0)
	var diags []model.Diagnostic

	for _, kind := range e.kinds() {
		checks := e.checksFor(kind)
		for b := range segment.Blocks(text, kind) {
			for _, check := range checks {
				d, err := guard(check, b)
				if err != nil {
					diags = append(diags, model.Diagnostic{
						Stage:   model.StageEvaluate,
						Kind:    string(kind),
						Block:   b.Name,
						Check:   check.Name(),
						Message: err.Error(),
					})
					continue
				}
				if d.IsMismatch() {
					if sev, ok := e.options.SeverityOverrides[check.Name()]; ok {
						d.Severity = sev
						d.SeverityText = sev.String()
					}
					deviations = append(deviations, d)
					continue
				}
				if e.options.EmitMatched {
					deviations = append(deviations, d)
				}
			}
		}
	}

	return deviations, diags
}

func (e *Evaluator) kinds() []segment.Kind {
	var kinds []segment.Kind
	for _, c := range e.checks {
		if !slices.Contains(kinds, c.Kind()) {
			kinds = append(kinds, c.Kind())
		}
	}
	return kinds
}

func (e *Evaluator) checksFor(kind segment.Kind) []Check {
	var checks []Check
	for _, c := range e.checks {
		if c.Kind() == kind {
			checks = append(checks, c)
		}
	}
	return checks
}

func guard(check Check, b segment.Block) (d model.Deviation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check %s panicked on %s %q: %v", check.Name(), b.Kind, b.Name, r)
		}
	}()
	return check.Evaluate(b)
}
