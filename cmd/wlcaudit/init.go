package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/wlcaudit/internal/config"
)

//go:embed templates/wlcaudit.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new wlcaudit configuration file",
		Long: `Initialize creates a new .wlcaudit rule configuration file.

The generated file documents every check and shows how to disable checks
or override their severity, globally or per controller.

Examples:
  # Create .wlcaudit in current directory
  wlcaudit init

  # Create the per-user file in the XDG config directory
  wlcaudit init --global

  # Create config file at a specific path
  wlcaudit init -o rules.yaml

  # Force overwrite existing file
  wlcaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("global", "g", false,
		"Write the per-user file in the XDG config directory (ignores --output)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	if global {
		outputPath = config.GlobalConfigFile()
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, configTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to:")
	fmt.Fprintln(out, "  - Disable checks globally or per controller")
	fmt.Fprintln(out, "  - Override check severities")
	fmt.Fprintln(out, "  - Report passing checks as well as deviations")

	return nil
}
