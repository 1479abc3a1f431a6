package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "wlcaudit" {
		t.Errorf("expected use 'wlcaudit', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" || cmd.Version == "" {
		t.Error("expected descriptions and version to be set")
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("expected usage and errors to be silenced")
	}

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"analyze": false, "compare": false, "init": false, "serve": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}
