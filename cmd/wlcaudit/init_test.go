package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/wlcaudit/internal/config"
)

// executeInit runs the init command and returns stdout.
func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// TestNewInitCmd tests the init command flags.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	output := cmd.Flags().Lookup("output")
	if output == nil {
		t.Fatal("expected output flag")
	}
	if output.DefValue != config.DefaultConfigFile {
		t.Errorf("expected default %q, got %q", config.DefaultConfigFile, output.DefValue)
	}

	for _, name := range []string{"force", "global"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".wlcaudit")

		out, err := executeInit(t, "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Created configuration file") {
			t.Errorf("unexpected output %q", out)
		}

		rules, err := config.LoadConfigFile(outputPath)
		if err != nil {
			t.Fatalf("generated file does not load: %v", err)
		}
		if len(rules.Defaults.DisabledChecks) != 0 || len(rules.Devices) != 0 {
			t.Errorf("expected no active rules, got %+v", rules)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600, got %v", perm)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", "dir", "rules.yaml")
		if _, err := executeInit(t, "-o", outputPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(outputPath); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".wlcaudit")
		if err := os.WriteFile(outputPath, []byte("devices: {}\n"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := executeInit(t, "-o", outputPath)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("got %v, expected already exists error", err)
		}

		if _, err := executeInit(t, "-o", outputPath, "-f"); err != nil {
			t.Fatalf("unexpected error with force: %v", err)
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(content, configTemplate) {
			t.Error("expected the template after forced overwrite")
		}
	})
}
