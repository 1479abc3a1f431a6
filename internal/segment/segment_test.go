package segment

import (
	"slices"
	"strings"
	"testing"
)

const twoWLANs = "wlan A 1\n security wpa2\n!\nwlan B 2\n security wpa3\n"

// TestBlocksBoundary tests that a block stops before the next declaration.
func TestBlocksBoundary(t *testing.T) {
	t.Parallel()

	blocks := slices.Collect(Blocks(twoWLANs, KindWLAN))
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, expected 2", len(blocks))
	}

	t.Run("first block excludes second declaration", func(t *testing.T) {
		t.Parallel()
		if strings.Contains(blocks[0].Text, "wpa3") {
			t.Errorf("first block leaked into the second: %q", blocks[0].Text)
		}
		if !strings.HasPrefix(blocks[0].Text, "wlan A 1") {
			t.Errorf("got %q, expected block to start at its declaration", blocks[0].Text)
		}
	})

	t.Run("last block runs to end of text", func(t *testing.T) {
		t.Parallel()
		if blocks[1].End != len(twoWLANs) {
			t.Errorf("got end %d, expected %d", blocks[1].End, len(twoWLANs))
		}
		if !strings.Contains(blocks[1].Text, "security wpa3") {
			t.Errorf("got %q, expected second block body", blocks[1].Text)
		}
	})

	t.Run("names and ids come from the header", func(t *testing.T) {
		t.Parallel()
		if blocks[0].Name != "A" || blocks[0].ID != "1" {
			t.Errorf("got name %q id %q, expected A 1", blocks[0].Name, blocks[0].ID)
		}
		if blocks[1].Name != "B" || blocks[1].ID != "2" {
			t.Errorf("got name %q id %q, expected B 2", blocks[1].Name, blocks[1].ID)
		}
	})

	t.Run("offsets match text", func(t *testing.T) {
		t.Parallel()
		for _, b := range blocks {
			if twoWLANs[b.Start:b.End] != b.Text {
				t.Errorf("offsets [%d:%d] do not match block text", b.Start, b.End)
			}
		}
	})
}

// TestBlocksBoundaryAcrossBlankLines tests that blank and whitespace-only
// lines between declarations stay in the earlier block.
func TestBlocksBoundaryAcrossBlankLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gap  string
	}{
		{"no gap", ""},
		{"blank lines", "\n\n"},
		{"blank and whitespace-only lines", "\n\n  \n"},
		{"tabs and bang", "\t\n!\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text := "wlan A 1\n security wpa2\n" + tt.gap + "wlan B 2\n security wpa3\n"
			blocks := slices.Collect(Blocks(text, KindWLAN))
			if len(blocks) != 2 {
				t.Fatalf("got %d blocks, expected 2", len(blocks))
			}

			second := strings.Index(text, "wlan B 2")
			if blocks[0].End != second || blocks[1].Start != second {
				t.Errorf("got first end %d and second start %d, expected both at %d",
					blocks[0].End, blocks[1].Start, second)
			}
			if strings.Contains(blocks[0].Text, "wpa3") {
				t.Errorf("first block leaked into the second: %q", blocks[0].Text)
			}
			if !strings.HasSuffix(blocks[0].Text, tt.gap) {
				t.Errorf("got %q, expected the gap to stay in the first block", blocks[0].Text)
			}
		})
	}
}

// TestBlocksKindsAreIndependent tests that kinds do not terminate each other.
func TestBlocksKindsAreIndependent(t *testing.T) {
	t.Parallel()

	text := "wlan A 1\n vlan 10\n!\nrf-profile R\n data-rates 802.11a mandatory 6\n!\n"

	wlans := slices.Collect(Blocks(text, KindWLAN))
	if len(wlans) != 1 {
		t.Fatalf("got %d wlan blocks, expected 1", len(wlans))
	}
	if !strings.Contains(wlans[0].Text, "rf-profile R") {
		t.Error("expected wlan block to run to end of text across other kinds")
	}

	rfs := slices.Collect(Blocks(text, KindRFProfile))
	if len(rfs) != 1 || rfs[0].Name != "R" {
		t.Fatalf("got %+v, expected a single rf-profile block named R", rfs)
	}
	if rfs[0].ID != "" {
		t.Errorf("got id %q, expected empty id for rf-profile", rfs[0].ID)
	}
}

// TestBlocksHeaderPatterns tests each declaration keyword.
func TestBlocksHeaderPatterns(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     Kind
		text     string
		expected []string
	}{
		{KindWLAN, "wlan Corp-1 10\n", []string{"Corp-1"}},
		{KindWLAN, "wlan NoID\n", nil},
		{KindRemoteSiteGroup, "flexconnect group Branch-1\n aps count: 5\n", []string{"Branch-1"}},
		{KindAPGroup, "ap group Floor-1\nap group Floor-2\n", []string{"Floor-1", "Floor-2"}},
		{KindPolicyProfile, "policy-profile Employee\n", []string{"Employee"}},
		{KindPolicyTag, "policy-tag Corp\n", []string{"Corp"}},
		{KindRFProfile, "rf-profile High-Density\n", []string{"High-Density"}},
		{KindRFProfile, "ap group X\n rf-profile Referenced\n", nil},
		{KindPolicyProfile, "wlan A 1\n policy-profile Referenced\n", nil},
		{Kind("unknown"), "unknown X\n", nil},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind)+"/"+tc.text, func(t *testing.T) {
			t.Parallel()
			var names []string
			for b := range Blocks(tc.text, tc.kind) {
				names = append(names, b.Name)
			}
			if !slices.Equal(names, tc.expected) {
				t.Errorf("got %v, expected %v", names, tc.expected)
			}
		})
	}
}

// TestBlocksEmpty tests that text without declarations yields nothing.
func TestBlocksEmpty(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		if n := len(slices.Collect(Blocks("hostname WLC\n!\nend\n", kind))); n != 0 {
			t.Errorf("kind %q: got %d blocks, expected 0", kind, n)
		}
	}
}

// TestBlocksEarlyStop tests that iteration can be stopped.
func TestBlocksEarlyStop(t *testing.T) {
	t.Parallel()

	count := 0
	for range Blocks(twoWLANs, KindWLAN) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("got %d iterations, expected 1", count)
	}
}

// TestBlocksMalformedBody tests that unknown directives still form a block.
func TestBlocksMalformedBody(t *testing.T) {
	t.Parallel()

	text := "wlan Odd 3\n %%% garbage ###\n\x00\n"
	blocks := slices.Collect(Blocks(text, KindWLAN))
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, expected 1", len(blocks))
	}
	if blocks[0].Text != text {
		t.Errorf("got %q, expected whole text", blocks[0].Text)
	}
}
