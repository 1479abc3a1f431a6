package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/wlcaudit/internal/config"
	"github.com/nao1215/wlcaudit/internal/database"
	"github.com/nao1215/wlcaudit/internal/log"
	"github.com/nao1215/wlcaudit/internal/web"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload API",
		Long: `Serve starts an HTTP API that analyzes uploaded running-configurations.

Routes:
  POST /api/analyze   multipart form with the configuration in field "file"
  GET  /api/sample    the bundled example running-configuration

Uploads follow the same rules as 'wlcaudit analyze': only .cfg and .txt
files up to --max-size bytes are accepted, and the rule configuration file
is applied per controller hostname.

Examples:
  # Listen on the default address
  wlcaudit serve

  # Listen on all interfaces and keep a history of uploads
  wlcaudit serve --listen :8080 --save

  # Try it
  curl -F file=@wlc-9800.cfg http://127.0.0.1:8080/api/analyze`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each request, including upload")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wlcaudit in current or home directory)")
	cmd.Flags().BoolP("emit-matched", "a", false,
		"Also report checks that passed")
	cmd.Flags().Int64("max-size", config.DefaultMaxFileSize,
		"Largest accepted upload in bytes")
	cmd.Flags().Bool("save", false,
		"Store every upload analysis in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []web.ServerOption{web.WithLogger(logger)}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, web.WithSaver(db))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", cfg.ListenAddress)
	return web.NewServer(cfg, opts...).Run(ctx, cfg.ListenAddress)
}

// buildServeConfig creates a Config from the serve command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.ListenAddress, err = cmd.Flags().GetString("listen")
	if err != nil {
		return nil, err
	}

	cfg.RequestTimeout, err = cmd.Flags().GetDuration("timeout")
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

	cfg.EmitMatched, err = cmd.Flags().GetBool("emit-matched")
	if err != nil {
		return nil, err
	}

	cfg.MaxFileSize, err = cmd.Flags().GetInt64("max-size")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = dbDirFlag(cmd)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
