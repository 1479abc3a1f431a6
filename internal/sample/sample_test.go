package sample

import (
	"strings"
	"testing"
)

// TestConfigEmbedded tests that the bundled configuration is present.
func TestConfigEmbedded(t *testing.T) {
	t.Parallel()

	if strings.TrimSpace(Config) == "" {
		t.Fatal("expected embedded sample configuration")
	}

	for _, want := range []string{
		"hostname WLC-9800",
		"wlan Corporate-Main 1",
		"wlan Guest-Network 2",
		"rf-profile High-Density",
		"rf-profile Standard-Office",
		"policy-tag Corporate-Policy",
	} {
		if !strings.Contains(Config, want) {
			t.Errorf("sample configuration is missing %q", want)
		}
	}
}
