package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/wlcaudit/internal/config"
)

// NewRootCmd creates the root command for wlcaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wlcaudit",
		Short: "Best-practice auditor for Cisco wireless LAN controller configurations",
		Long: `wlcaudit analyzes Cisco wireless LAN controller running-configurations.

It builds an inventory of WLANs, site tags, policy tags, policy profiles,
AP join profiles, flex profiles, RF profiles and RF tags, and checks each
WLAN and RF profile against best practice (WPA3, mandatory PMF, minimum
data rate). Results can be stored locally to track a controller over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// dbDirFlag returns the --db-dir value, falling back to the XDG data directory.
func dbDirFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	return dir, nil
}
