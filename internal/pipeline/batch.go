package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wlcaudit/internal/model"
)

// BatchProcessor analyzes multiple configuration files concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called once per file so pipeline state
// never leaks between analyses.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// NewReport creates an empty report with a fresh run ID.
func NewReport(source string) *model.AnalysisReport {
	return model.NewAnalysisReport(uuid.NewString(), source)
}

// ProcessBatch analyzes multiple files concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Returns one report per source, in input order, even for files that
// failed; the failure is recorded in the report's Error field. A report is
// nil only if the batch was cancelled before its file was started.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.AnalysisReport, error) {
	bp.logger.Info("starting batch processing",
		"total_files", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.AnalysisReport, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing file",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			report := NewReport(source)
			err := bp.pipelineFactory().Execute(ctx, report)

			results[i] = report

			if err != nil {
				// Recorded in the report; other files keep going.
				bp.logger.Warn("analysis failed",
					"source", source,
					"error", err,
				)
				return nil
			}

			bp.logger.Info("analysis completed",
				"source", source,
			)

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_files", len(sources),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
