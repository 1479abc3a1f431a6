package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/wlcaudit/internal/config"
	"github.com/nao1215/wlcaudit/internal/database"
	"github.com/nao1215/wlcaudit/internal/log"
	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/pipeline"
	"github.com/nao1215/wlcaudit/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [running-config...]",
		Short: "Analyze controller running-configurations",
		Long: `Analyze reads one or more Cisco WLC running-configuration dumps
(the output of "show running-config") and reports:
- The inventory of wireless objects (WLANs, tags, profiles)
- Deviations from best practice with the commands to fix them
- Blocks that could not be analyzed

Each analysis is stored in the local history database so that
'wlcaudit compare' can show what changed between runs.

Examples:
  # Analyze a single controller
  wlcaudit analyze wlc-9800.cfg

  # Analyze several controllers, four at a time
  wlcaudit analyze -b 4 site-a.cfg site-b.cfg site-c.cfg

  # Write a Markdown report
  wlcaudit analyze --markdown -o report.md wlc-9800.cfg

  # Use a rule configuration file
  wlcaudit analyze -c rules.yaml wlc-9800.cfg

Configuration file (.wlcaudit) example:
  defaults:
    severity:
      min_data_rate: high
  devices:
    WLC-LAB:
      disabledChecks: [pmf]`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wlcaudit in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("emit-matched", "a", false,
		"Also report checks that passed")
	cmd.Flags().Int64("max-size", config.DefaultMaxFileSize,
		"Largest accepted configuration file in bytes")
	cmd.Flags().Bool("no-save", false,
		"Do not store results in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Rules, err = loadRules(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.EmitMatched, err = cmd.Flags().GetBool("emit-matched")
	if err != nil {
		return nil, err
	}

	cfg.MaxFileSize, err = cmd.Flags().GetInt64("max-size")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = dbDirFlag(cmd)
	if err != nil {
		return nil, err
	}

	cfg.Targets = args

	return cfg, nil
}

// loadRules loads rule settings. An explicit path must exist; without one,
// the default locations are searched and a missing file means built-in
// rules.
func loadRules(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return nil, nil //nolint:nilnil // nil rules select the built-in defaults
	}

	rules, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return rules, nil
}

// runAnalyze analyzes every target and writes the reports to out, or to
// cfg.ReportFile when set. Per-file failures go to errOut and turn into a
// non-nil error after all files were processed.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) error {
	logger.Info("starting analysis",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var saver pipeline.Saver
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		saver = db
		logger.Info("database opened", "path", db.Path())
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, saver, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	failed, err := outputReports(cfg, reports, out, errOut)
	if err != nil {
		return err
	}
	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(cfg.Targets))
	}
	return nil
}

// outputReports writes every analyzed report in input order and returns
// the number of failed analyses.
func outputReports(cfg *config.Config, reports []*model.AnalysisReport, stdout, errOut io.Writer) (failed int, err error) {
	output := stdout
	if cfg.ReportFile != "" {
		f, ferr := createReportFile(cfg.ReportFile)
		if ferr != nil {
			return 0, ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		output = f
	}

	writer, err := report.New(reportFormat(cfg), output, getVersion())
	if err != nil {
		return 0, err
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		if r.Error != "" {
			failed++
			fmt.Fprintf(errOut, "Analysis of %s failed: %s\n", r.Source, r.Error)
		}
		if !slices.Contains(r.PerformedSteps, "analyze") {
			continue
		}
		if _, err := writer.Write(r); err != nil {
			return failed, fmt.Errorf("failed to write report for %s: %w", r.Source, err)
		}
	}

	return failed, nil
}

// createReportFile creates the report file and its parent directories.
// Reports quote configuration text, so the file is only readable by the
// owner.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// reportFormat maps the output flags to a report format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}
