package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/sample"
)

// fixedConfig is the sample with the High-Density RF profile raised to a
// 24 Mbps mandatory rate.
var fixedConfig = strings.Replace(sample.Config, "data-rates 802.11a mandatory 6", "data-rates 802.11a mandatory 24", 1)

// seedHistory analyzes every content in order into a fresh database and
// returns the database directory.
func seedHistory(t *testing.T, contents ...string) string {
	t.Helper()

	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db")
	for i, content := range contents {
		path := writeConfig(t, dir, "wlc"+string(rune('a'+i))+".cfg", content)
		if _, _, err := executeAnalyze(t, "--db-dir", dbDir, path); err != nil {
			t.Fatalf("failed to seed analysis %d: %v", i, err)
		}
	}
	return dbDir
}

// executeCompare runs the compare command and returns stdout.
func executeCompare(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cmd := NewCompareCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return stdout.String(), err
}

// TestCompareCmd tests comparisons against stored history.
func TestCompareCmd(t *testing.T) {
	t.Parallel()

	// Subtests share one database and run in sequence.
	dbDir := seedHistory(t, sample.Config, fixedConfig)

	t.Run("text comparison", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Analysis Comparison: WLC-9800",
			"IMPROVED",
			"Configuration: changed",
			"Resolved Deviations (1)",
			"rf-High-Density",
			"Unchanged: 4 deviations",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("json comparison", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "--json", "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result ComparisonResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("failed to decode comparison: %v", err)
		}
		if result.RiskChange.Direction != riskDirectionImproved {
			t.Errorf("got direction %q", result.RiskChange.Direction)
		}
		if result.RiskChange.MediumDelta != -1 {
			t.Errorf("got medium delta %d", result.RiskChange.MediumDelta)
		}
		if len(result.ResolvedDeviations) != 1 || result.ResolvedDeviations[0].ID != "rf-High-Density" {
			t.Errorf("got resolved %v", result.ResolvedDeviations)
		}
		if len(result.NewDeviations) != 0 {
			t.Errorf("got new %v", result.NewDeviations)
		}
	})

	t.Run("list history", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "--list", "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(2 analyses)") {
			t.Errorf("expected two analyses, got:\n%s", out)
		}
		if !strings.Contains(out, "C:4 M:1") || !strings.Contains(out, "C:4") {
			t.Errorf("expected summaries, got:\n%s", out)
		}
	})

	t.Run("list devices", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "--list-devices")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "• WLC-9800") {
			t.Errorf("expected device listing, got:\n%s", out)
		}
	})

	t.Run("deviation history", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "--deviation", "wpa3-1", "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Deviation wpa3-1 on WLC-9800 (2 analyses)") {
			t.Errorf("got:\n%s", out)
		}

		out, err = executeCompare(t, "--db-dir", dbDir, "--deviation", "rf-High-Density", "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(1 analyses)") {
			t.Errorf("expected only the first analysis, got:\n%s", out)
		}
	})

	t.Run("with id", func(t *testing.T) {
		out, err := executeCompare(t, "--db-dir", dbDir, "--with-id", "1", "WLC-9800")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Resolved Deviations (1)") {
			t.Errorf("got:\n%s", out)
		}

		if _, err := executeCompare(t, "--db-dir", dbDir, "--with-id", "99", "WLC-9800"); err == nil {
			t.Error("expected error for unknown ID")
		}
	})
}

// TestCompareCmdErrors tests comparisons that cannot run.
func TestCompareCmdErrors(t *testing.T) {
	t.Parallel()

	t.Run("hostname required", func(t *testing.T) {
		t.Parallel()

		if _, err := executeCompare(t, "--db-dir", t.TempDir()); err == nil {
			t.Error("expected error without hostname")
		}
	})

	t.Run("no history", func(t *testing.T) {
		t.Parallel()

		_, err := executeCompare(t, "--db-dir", t.TempDir(), "WLC-NONE")
		if !errors.Is(err, errNoHistory) {
			t.Errorf("got %v, expected errNoHistory", err)
		}
	})

	t.Run("single analysis", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t, sample.Config)
		_, err := executeCompare(t, "--db-dir", dbDir, "WLC-9800")
		if err == nil || !strings.Contains(err.Error(), "at least 2 analyses") {
			t.Errorf("got %v", err)
		}
	})
}

// TestCompareReports tests the deviation diff.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	mismatch := func(id string, sev model.Severity) model.Deviation {
		return model.Deviation{ID: id, Status: model.StatusMismatched, Severity: sev, SeverityText: sev.String()}
	}

	previous := model.NewAnalysisReport("run-1", "wlc.cfg")
	previous.Digest = "aaa"
	previous.AddDeviation(mismatch("wpa3-1", model.SeverityCritical))
	previous.AddDeviation(mismatch("rf-Lobby", model.SeverityMedium))

	current := model.NewAnalysisReport("run-2", "wlc.cfg")
	current.Digest = "aaa"
	current.AddDeviation(mismatch("wpa3-1", model.SeverityCritical))
	current.AddDeviation(mismatch("pmf-2", model.SeverityCritical))
	current.AddDeviation(model.Deviation{ID: "pmf-1", Status: model.StatusMatched, Severity: model.SeverityInfo})

	result := compareReports(previous, current)

	if len(result.NewDeviations) != 1 || result.NewDeviations[0].ID != "pmf-2" {
		t.Errorf("got new %v", result.NewDeviations)
	}
	if len(result.ResolvedDeviations) != 1 || result.ResolvedDeviations[0].ID != "rf-Lobby" {
		t.Errorf("got resolved %v", result.ResolvedDeviations)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("got unchanged %d", result.UnchangedCount)
	}
	if !result.ConfigUnchanged {
		t.Error("expected equal digests to mark the configuration unchanged")
	}
	if result.RiskChange.Direction != riskDirectionWorsened {
		t.Errorf("got direction %q", result.RiskChange.Direction)
	}
}

// TestFormatHelpers tests the small formatting helpers.
func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	if got := formatDelta(3); got != "+3" {
		t.Errorf("formatDelta(3) = %q", got)
	}
	if got := formatDelta(-2); got != "-2" {
		t.Errorf("formatDelta(-2) = %q", got)
	}
	if got := formatDelta(0); got != "0" {
		t.Errorf("formatDelta(0) = %q", got)
	}
	if got := formatSummary(model.Summary{}); got != noDeviationsMessage {
		t.Errorf("formatSummary(empty) = %q", got)
	}
	if got := formatSummary(model.Summary{Critical: 1, Low: 2}); got != "C:1 L:2" {
		t.Errorf("formatSummary = %q", got)
	}
	if got := shortDigest("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortDigest = %q", got)
	}
	if got := formatRiskDirection(riskDirectionImproved); !strings.HasPrefix(got, "IMPROVED") {
		t.Errorf("formatRiskDirection = %q", got)
	}
}
