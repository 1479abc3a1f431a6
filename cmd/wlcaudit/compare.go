package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wlcaudit/internal/database"
	"github.com/nao1215/wlcaudit/internal/model"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noDeviationsMessage    = "No deviations"
)

// errNoHistory is returned when a device has no stored analyses.
var errNoHistory = errors.New("no analysis history")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [hostname]",
		Short: "Compare analysis results with historical data",
		Long: `Compare displays differences between stored analyses of a controller.

It shows:
- Deviations that appeared since the previous analysis
- Deviations that were resolved
- Whether the configuration text changed at all

Controllers are identified by the hostname in their configuration, or by
the file path when the configuration has no hostname line.

Examples:
  # Compare the latest two analyses of a controller
  wlcaudit compare WLC-9800

  # List stored analyses of a controller
  wlcaudit compare --list WLC-9800

  # Compare the latest analysis with a specific one
  wlcaudit compare --with-id 3 WLC-9800

  # Show every analysis that reported a deviation
  wlcaudit compare --deviation wpa3-1 WLC-9800

  # List all controllers in the database
  wlcaudit compare --list-devices`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List analysis history for the specified controller")
	cmd.Flags().BoolP("list-devices", "L", false,
		"List all controllers in the database")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific analysis by ID (use --list to see available IDs)")
	cmd.Flags().StringP("deviation", "d", "",
		"Show the history of one deviation ID, e.g. wpa3-1")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDevices, err := cmd.Flags().GetBool("list-devices")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var device string
	if !listDevices {
		if len(args) == 0 {
			return errors.New("hostname is required (use --list-devices to see available controllers)")
		}
		device = args[0]
	}

	dbDir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listDevices {
		return listStoredDevices(ctx, db, out)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAnalysisHistory(ctx, db, device, out)
	}

	deviationID, err := cmd.Flags().GetString("deviation")
	if err != nil {
		return err
	}
	if deviationID != "" {
		return showDeviationHistory(ctx, db, device, deviationID, out)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}

	result, err := runComparison(ctx, db, device, withID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputComparisonJSON(result, out)
	}
	return outputComparisonText(result, out)
}

// listStoredDevices lists all controllers that have analyses in the database.
func listStoredDevices(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	devices, err := db.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Fprintln(out, "No analyzed controllers found in the database.")
		fmt.Fprintln(out, "\nUse 'wlcaudit analyze <running-config>' to analyze a controller.")
		return nil
	}

	fmt.Fprintf(out, "Analyzed controllers (%d):\n\n", len(devices))
	for _, device := range devices {
		fmt.Fprintf(out, "  • %s\n", device)
	}
	fmt.Fprintln(out, "\nUse 'wlcaudit compare --list <hostname>' to see the history of a controller.")

	return nil
}

// listAnalysisHistory lists all analyses stored for a controller.
func listAnalysisHistory(ctx context.Context, db *database.HistoryDB, device string, out io.Writer) error {
	history, err := db.HistoryWithMetadata(ctx, device)
	if err != nil {
		return fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No analysis history found for %s\n", device)
		return nil
	}

	fmt.Fprintf(out, "Analysis history for %s (%d analyses):\n\n", device, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-12s  %s\n", "ID", "Date", "Digest", "Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-12s  %s\n",
			meta.ID,
			meta.AnalyzedAt.Local().Format("2006-01-02 15:04:05"),
			shortDigest(meta.Digest),
			formatSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'wlcaudit compare <hostname>' to compare the latest two analyses.")
	fmt.Fprintln(out, "Use 'wlcaudit compare --with-id <id> <hostname>' to compare with a specific analysis.")

	return nil
}

// showDeviationHistory prints every analysis that reported deviationID.
func showDeviationHistory(ctx context.Context, db *database.HistoryDB, device, deviationID string, out io.Writer) error {
	occurrences, err := db.DeviationHistory(ctx, device, deviationID)
	if err != nil {
		return fmt.Errorf("failed to get deviation history: %w", err)
	}

	if len(occurrences) == 0 {
		fmt.Fprintf(out, "Deviation %s was never reported for %s\n", deviationID, device)
		return nil
	}

	fmt.Fprintf(out, "Deviation %s on %s (%d analyses):\n\n", deviationID, device, len(occurrences))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %s\n", "ID", "Date", "Severity", "Current")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))
	for _, occ := range occurrences {
		fmt.Fprintf(out, "  %-6d  %-20s  %-10s  %s\n",
			occ.AnalysisID,
			occ.AnalyzedAt.Local().Format("2006-01-02 15:04:05"),
			occ.Severity,
			occ.CurrentValue,
		)
	}

	return nil
}

// formatSummary formats a severity summary into a compact string.
func formatSummary(summary model.Summary) string {
	var parts []string
	if summary.Critical > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", summary.Critical))
	}
	if summary.High > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", summary.High))
	}
	if summary.Medium > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", summary.Medium))
	}
	if summary.Low > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", summary.Low))
	}
	if summary.Info > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", summary.Info))
	}

	if len(parts) == 0 {
		return noDeviationsMessage
	}
	return strings.Join(parts, " ")
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

// runComparison loads the reports to compare. The latest analysis is
// always the current one; the previous one is the analysis before it, or
// the one with withID when set.
func runComparison(ctx context.Context, db *database.HistoryDB, device string, withID int64) (*ComparisonResult, error) {
	reports, err := db.History(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("%w for %s", errNoHistory, device)
	}

	current := reports[0]
	var previous *model.AnalysisReport

	if withID > 0 {
		previous, err = db.ByID(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get analysis with ID %d: %w", withID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("analysis with ID %d not found", withID)
		}
		if previous.DeviceName() != device {
			return nil, fmt.Errorf("analysis ID %d belongs to %s, not %s", withID, previous.DeviceName(), device)
		}
	} else {
		if len(reports) < 2 {
			return nil, fmt.Errorf("at least 2 analyses are required for comparison (found %d)", len(reports))
		}
		previous = reports[1]
	}

	return compareReports(previous, current), nil
}

// ComparisonResult holds the result of comparing two analyses.
type ComparisonResult struct {
	Device string `json:"device"`

	Previous AnalysisMetadata `json:"previous"`
	Current  AnalysisMetadata `json:"current"`

	// ConfigUnchanged is true when both analyses saw identical text.
	ConfigUnchanged bool `json:"config_unchanged"`

	NewDeviations      []model.Deviation `json:"new_deviations,omitempty"`
	ResolvedDeviations []model.Deviation `json:"resolved_deviations,omitempty"`

	// UnchangedCount is the number of deviations present in both analyses.
	UnchangedCount int `json:"unchanged_count"`

	RiskChange RiskChange `json:"risk_change"`
}

// AnalysisMetadata identifies one side of a comparison.
type AnalysisMetadata struct {
	RunID        string        `json:"run_id"`
	DateAnalyzed time.Time     `json:"date_analyzed"`
	Digest       string        `json:"digest"`
	Summary      model.Summary `json:"summary"`
}

// RiskChange describes the change in risk level between analyses.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	CriticalDelta int `json:"critical_delta"`
	HighDelta     int `json:"high_delta"`
	MediumDelta   int `json:"medium_delta"`
	LowDelta      int `json:"low_delta"`
	InfoDelta     int `json:"info_delta"`
}

// compareReports compares two analyses by deviation ID. Only mismatched
// deviations take part; matched records are ignored.
func compareReports(previous, current *model.AnalysisReport) *ComparisonResult {
	result := &ComparisonResult{
		Device:          current.DeviceName(),
		Previous:        metadataOf(previous),
		Current:         metadataOf(current),
		ConfigUnchanged: previous.Digest != "" && previous.Digest == current.Digest,
	}

	previousIDs := make(map[string]bool)
	for _, d := range previous.Mismatched() {
		previousIDs[d.ID] = true
	}
	currentIDs := make(map[string]bool)
	for _, d := range current.Mismatched() {
		currentIDs[d.ID] = true
	}

	for _, d := range current.Mismatched() {
		if previousIDs[d.ID] {
			result.UnchangedCount++
			continue
		}
		result.NewDeviations = append(result.NewDeviations, d)
	}
	for _, d := range previous.Mismatched() {
		if !currentIDs[d.ID] {
			result.ResolvedDeviations = append(result.ResolvedDeviations, d)
		}
	}

	result.RiskChange = calculateRiskChange(result.Previous.Summary, result.Current.Summary)

	return result
}

func metadataOf(r *model.AnalysisReport) AnalysisMetadata {
	return AnalysisMetadata{
		RunID:        r.RunID,
		DateAnalyzed: r.DateAnalyzed,
		Digest:       r.Digest,
		Summary:      r.Summary(),
	}
}

// riskScore weights severities so that one critical outweighs many lows.
func riskScore(s model.Summary) int {
	return s.Critical*100 + s.High*50 + s.Medium*10 + s.Low*5 + s.Info
}

// calculateRiskChange calculates the change in risk between two analyses.
func calculateRiskChange(previous, current model.Summary) RiskChange {
	change := RiskChange{
		CriticalDelta: current.Critical - previous.Critical,
		HighDelta:     current.High - previous.High,
		MediumDelta:   current.Medium - previous.Medium,
		LowDelta:      current.Low - previous.Low,
		InfoDelta:     current.Info - previous.Info,
	}

	switch previousScore, currentScore := riskScore(previous), riskScore(current); {
	case currentScore < previousScore:
		change.Direction = riskDirectionImproved
	case currentScore > previousScore:
		change.Direction = riskDirectionWorsened
	default:
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult, out io.Writer) error {
	fmt.Fprintf(out, "Analysis Comparison: %s\n", result.Device)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))
	if result.ConfigUnchanged {
		fmt.Fprintln(out, "Configuration: unchanged (identical digest)")
	} else {
		fmt.Fprintln(out, "Configuration: changed")
	}

	fmt.Fprintf(out, "\nPrevious analysis: %s\n", result.Previous.DateAnalyzed.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current analysis:  %s\n", result.Current.DateAnalyzed.Local().Format("2006-01-02 15:04:05"))

	prev, cur := result.Previous.Summary, result.Current.Summary
	rows := []struct {
		name      string
		prev, cur int
		delta     int
	}{
		{"Critical", prev.Critical, cur.Critical, result.RiskChange.CriticalDelta},
		{"High", prev.High, cur.High, result.RiskChange.HighDelta},
		{"Medium", prev.Medium, cur.Medium, result.RiskChange.MediumDelta},
		{"Low", prev.Low, cur.Low, result.RiskChange.LowDelta},
		{"Info", prev.Info, cur.Info, result.RiskChange.InfoDelta},
	}

	fmt.Fprintln(out, "\nDeviation Summary:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	for _, row := range rows {
		fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", row.name, row.prev, row.cur, formatDelta(row.delta))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		prev.Total, cur.Total, formatDelta(cur.Total-prev.Total))

	if len(result.NewDeviations) > 0 {
		fmt.Fprintf(out, "\nNew Deviations (%d):\n", len(result.NewDeviations))
		for _, d := range result.NewDeviations {
			fmt.Fprintf(out, "  [+] [%s] %s: %s\n", d.SeverityText, d.ID, d.Description)
		}
	}

	if len(result.ResolvedDeviations) > 0 {
		fmt.Fprintf(out, "\nResolved Deviations (%d):\n", len(result.ResolvedDeviations))
		for _, d := range result.ResolvedDeviations {
			fmt.Fprintf(out, "  [-] [%s] %s: %s\n", d.SeverityText, d.ID, d.Description)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d deviations\n", result.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
