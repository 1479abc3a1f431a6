package pipeline

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/wlcaudit/internal/model"
)

// mockStep is a Step whose behavior is supplied by the test.
type mockStep struct {
	name   string
	doFunc func(ctx context.Context, report *model.AnalysisReport) error
}

func (m *mockStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

// recordingSteps returns steps that append their name to *ran, failing
// at the step named failAt.
func recordingSteps(ran *[]string, failAt string, failure error, names ...string) []Step {
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, &mockStep{
			name: name,
			doFunc: func(_ context.Context, _ *model.AnalysisReport) error {
				*ran = append(*ran, name)
				if name == failAt {
					return failure
				}
				return nil
			},
		})
	}
	return steps
}

// TestPipelineExecute tests step ordering and failure handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")

	tests := []struct {
		name          string
		failAt        string
		wantRan       []string
		wantPerformed []string
		wantErr       bool
	}{
		{
			name:          "all steps succeed",
			wantRan:       []string{"load", "analyze", "save"},
			wantPerformed: []string{"load", "analyze", "save"},
		},
		{
			name:          "first step fails",
			failAt:        "load",
			wantRan:       []string{"load"},
			wantPerformed: nil,
			wantErr:       true,
		},
		{
			name:          "middle step fails",
			failAt:        "analyze",
			wantRan:       []string{"load", "analyze"},
			wantPerformed: []string{"load"},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ran []string
			p := New(WithLogger(quietLogger()))
			p.AddSteps(recordingSteps(&ran, tt.failAt, errRead, "load", "analyze", "save")...)

			report := model.NewAnalysisReport("run-1", "wlc.cfg")
			err := p.Execute(context.Background(), report)

			if !slices.Equal(ran, tt.wantRan) {
				t.Errorf("ran %v, expected %v", ran, tt.wantRan)
			}
			if !slices.Equal(report.PerformedSteps, tt.wantPerformed) {
				t.Errorf("performed %v, expected %v", report.PerformedSteps, tt.wantPerformed)
			}

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if report.Error != "" {
					t.Errorf("expected no report error, got %q", report.Error)
				}
				return
			}

			if !errors.Is(err, errRead) {
				t.Fatalf("got %v, expected %v", err, errRead)
			}
			if !strings.HasPrefix(err.Error(), tt.failAt+" step:") {
				t.Errorf("expected error to name the %s step, got %q", tt.failAt, err)
			}
			if report.Error != errRead.Error() {
				t.Errorf("got report error %q, expected %q", report.Error, errRead.Error())
			}
		})
	}
}

// TestPipelineExecuteCancelled tests that a cancelled context stops the
// analysis before the next step.
func TestPipelineExecuteCancelled(t *testing.T) {
	t.Parallel()

	t.Run("before the first step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran []string
		p := New(WithLogger(quietLogger()))
		p.AddSteps(recordingSteps(&ran, "", nil, "load")...)

		report := model.NewAnalysisReport("run-1", "wlc.cfg")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
		if len(ran) != 0 {
			t.Errorf("expected no steps to run, got %v", ran)
		}
		if report.Error != context.Canceled.Error() {
			t.Errorf("expected cancellation in report, got %q", report.Error)
		}
	})

	t.Run("between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{
			name: "load",
			doFunc: func(_ context.Context, _ *model.AnalysisReport) error {
				cancel()
				return nil
			},
		})
		analyzed := false
		p.AddStep(&mockStep{
			name: "analyze",
			doFunc: func(_ context.Context, _ *model.AnalysisReport) error {
				analyzed = true
				return nil
			},
		})

		report := model.NewAnalysisReport("run-1", "wlc.cfg")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
		if analyzed {
			t.Error("expected analyze not to run after cancellation")
		}
		if !slices.Equal(report.PerformedSteps, []string{"load"}) {
			t.Errorf("got performed %v", report.PerformedSteps)
		}
	})
}

// TestPipelineStepNames tests that names follow insertion order.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	if names := p.StepNames(); len(names) != 0 {
		t.Errorf("expected no steps, got %v", names)
	}

	p.AddStep(&mockStep{name: "load"})
	p.AddSteps(&mockStep{name: "analyze"}, &mockStep{name: "save"})

	if got := p.StepNames(); !slices.Equal(got, []string{"load", "analyze", "save"}) {
		t.Errorf("got %v", got)
	}
}

// TestPipelineNilLogger tests that a nil logger falls back to the default.
func TestPipelineNilLogger(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(nil))
	p.AddStep(&mockStep{name: "load"})

	if err := p.Execute(context.Background(), model.NewAnalysisReport("run-1", "wlc.cfg")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
