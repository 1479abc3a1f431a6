package parser

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/sample"
	"github.com/nao1215/wlcaudit/internal/segment"
)

func quietParser(opts ...Option) *Parser {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func issueIDs(issues []model.Deviation) []string {
	ids := make([]string, 0, len(issues))
	for _, d := range issues {
		ids = append(ids, d.ID)
	}
	return ids
}

// TestParseSample tests the end-to-end scenario on the bundled config.
func TestParseSample(t *testing.T) {
	t.Parallel()

	result, err := quietParser().Parse([]byte(sample.Config))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("two wireless networks", func(t *testing.T) {
		t.Parallel()
		nets := result.Inventory.WirelessNetworks
		if len(nets) != 2 || nets[0].Name != "Corporate-Main" || nets[1].Name != "Guest-Network" {
			t.Errorf("got %+v, expected Corporate-Main and Guest-Network", nets)
		}
	})

	t.Run("expected issues", func(t *testing.T) {
		t.Parallel()
		expected := []string{"wpa3-1", "pmf-1", "wpa3-2", "pmf-2", "rf-High-Density"}
		if got := issueIDs(result.Issues); !reflect.DeepEqual(got, expected) {
			t.Errorf("got %v, expected %v", got, expected)
		}
		for _, d := range result.Issues {
			if d.ID == "rf-Standard-Office" {
				t.Error("Standard-Office meets the minimum rate and must not be reported")
			}
		}
	})

	t.Run("device metadata", func(t *testing.T) {
		t.Parallel()
		if result.Device.Hostname != "WLC-9800" || result.Device.Version != "17.6" {
			t.Errorf("got %+v", result.Device)
		}
	})

	t.Run("no diagnostics", func(t *testing.T) {
		t.Parallel()
		if len(result.Diagnostics) != 0 {
			t.Errorf("got %+v", result.Diagnostics)
		}
		if result.UsedSample {
			t.Error("sample was passed explicitly and must not be flagged as substituted")
		}
	})
}

// TestParseBlankUsesSample tests blank input substitution.
func TestParseBlankUsesSample(t *testing.T) {
	t.Parallel()

	p := quietParser()
	want, err := p.Parse([]byte(sample.Config))
	if err != nil {
		t.Fatal(err)
	}

	for _, input := range []string{"", "   ", "\n\r\n\t \n"} {
		got, err := p.Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", input, err)
		}
		if !got.UsedSample {
			t.Errorf("Parse(%q) did not flag sample substitution", input)
		}
		if !reflect.DeepEqual(got.Inventory, want.Inventory) || !reflect.DeepEqual(got.Issues, want.Issues) {
			t.Errorf("Parse(%q) differs from parsing the sample", input)
		}
	}
}

// TestParseInjectedSample tests that the blank-input fallback is injectable.
func TestParseInjectedSample(t *testing.T) {
	t.Parallel()

	p := quietParser(WithSample("wlan Only 9\n security wpa3\n security pmf mandatory\n"))
	result, err := p.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Inventory.WirelessNetworks) != 1 || result.Inventory.WirelessNetworks[0].ID != "9" {
		t.Errorf("got %+v, expected the injected sample", result.Inventory.WirelessNetworks)
	}
	if len(result.Issues) != 0 {
		t.Errorf("got %v, expected no issues", issueIDs(result.Issues))
	}
}

// TestParseIdempotent tests that parsing twice gives equal results.
func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	input := []byte("wlan A 1\r\n security wpa2\r\n vlan 5  \r\n")
	first, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical input")
	}
}

// TestParseTotal tests that arbitrary text never fails.
func TestParseTotal(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"random words without structure",
		"wlan",
		"wlan X\n",
		"rf-profile\n data-rates 802.11a mandatory\n",
		"wlan A 1\n vlan 99999999999999999999999999\n",
		strings.Repeat("!\n", 1000),
		"\xc3\x28 invalid utf-8",
	}

	p := quietParser()
	for _, input := range inputs {
		result, err := p.Parse([]byte(input))
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", input, err)
			continue
		}
		if result == nil {
			t.Errorf("Parse(%q) returned nil result", input)
		}
	}
}

// TestParseOutOfRangeNumbersKeepEntities tests that a numeric field that
// does not fit falls back to its default without losing the entity.
func TestParseOutOfRangeNumbersKeepEntities(t *testing.T) {
	t.Parallel()

	const huge = "99999999999999999999999999"

	tests := []struct {
		name      string
		input     string
		count     func(model.Inventory) int
		wantField string
	}{
		{
			name:  "wlan id beyond int range",
			input: "wlan Big 12345678901234567890\n security wpa3\n",
			count: func(inv model.Inventory) int { return len(inv.WirelessNetworks) },
		},
		{
			name:      "wlan vlan",
			input:     "wlan A 1\n vlan " + huge + "\n",
			count:     func(inv model.Inventory) int { return len(inv.WirelessNetworks) },
			wantField: "vlan",
		},
		{
			name:      "policy profile vlan",
			input:     "policy-profile P\n vlan " + huge + "\n",
			count:     func(inv model.Inventory) int { return len(inv.PolicyProfiles) },
			wantField: "vlan",
		},
		{
			name:      "ap group count",
			input:     "ap group G\n aps count: " + huge + "\n",
			count:     func(inv model.Inventory) int { return len(inv.APGroups) },
			wantField: "aps count",
		},
		{
			name:      "flexconnect group count",
			input:     "flexconnect group F\n aps count: " + huge + "\n",
			count:     func(inv model.Inventory) int { return len(inv.RemoteSiteGroups) },
			wantField: "aps count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := quietParser().Parse([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if got := tt.count(result.Inventory); got != 1 {
				t.Fatalf("got %d entities, expected the entity to be kept", got)
			}

			if tt.wantField == "" {
				if len(result.Diagnostics) != 0 {
					t.Errorf("unexpected diagnostics: %+v", result.Diagnostics)
				}
				return
			}
			if len(result.Diagnostics) != 1 {
				t.Fatalf("got %+v, expected one diagnostic", result.Diagnostics)
			}
			d := result.Diagnostics[0]
			if d.Stage != model.StageExtract || d.Field != tt.wantField {
				t.Errorf("got %+v, expected an extract diagnostic for %s", d, tt.wantField)
			}
		})
	}

	t.Run("defaults and ids", func(t *testing.T) {
		t.Parallel()

		result, err := quietParser().Parse([]byte("wlan Spy 007\n vlan " + huge + "\n!\npolicy-profile P\n vlan " + huge + "\n!\nap group G\n aps count: " + huge + "\n"))
		if err != nil {
			t.Fatal(err)
		}
		inv := result.Inventory
		wn := inv.WirelessNetworks[0]
		if wn.ID != "007" || wn.VLAN != 1 {
			t.Errorf("got id %q vlan %d, expected 007 and the default vlan", wn.ID, wn.VLAN)
		}
		if inv.PolicyProfiles[0].VLAN != 1 {
			t.Errorf("got policy profile vlan %d, expected 1", inv.PolicyProfiles[0].VLAN)
		}
		if inv.APGroups[0].APCount != 0 {
			t.Errorf("got ap count %d, expected 0", inv.APGroups[0].APCount)
		}
		if !slices.Contains(issueIDs(result.Issues), "wpa3-"+wn.ID) {
			t.Errorf("got %v, expected issues keyed by the inventory id", issueIDs(result.Issues))
		}
	})
}

// TestParseBoundaryAcrossBlankLines tests that whitespace between two wlan
// declarations neither merges nor splits them after normalization.
func TestParseBoundaryAcrossBlankLines(t *testing.T) {
	t.Parallel()

	result, err := quietParser().Parse([]byte("wlan A 1\n security wpa2\n\n\n  \nwlan B 2\n security wpa3\n pmf mandatory\n"))
	if err != nil {
		t.Fatal(err)
	}

	blocks := slices.Collect(segment.Blocks(result.Normalized, segment.KindWLAN))
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks in %q, expected 2", len(blocks), result.Normalized)
	}
	second := strings.Index(result.Normalized, "wlan B 2")
	if blocks[0].End != second {
		t.Errorf("got first block end %d, expected %d", blocks[0].End, second)
	}

	wlans := result.Inventory.WirelessNetworks
	if len(wlans) != 2 || wlans[0].Security != "WPA2" || wlans[1].Security != "WPA3" {
		t.Errorf("got %+v, expected WPA2 then WPA3", wlans)
	}
	if got := issueIDs(result.Issues); !slices.Equal(got, []string{"wpa3-1", "pmf-1"}) {
		t.Errorf("got %v, expected only the first network to deviate", got)
	}
}

// TestParseLogsDiagnostics tests that skipped blocks are logged.
func TestParseLogsDiagnostics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	if _, err := p.Parse([]byte("wlan Big 1\n vlan 123456789012345678901234567890\n")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "configuration diagnostic") || !strings.Contains(buf.String(), "block=Big") || !strings.Contains(buf.String(), "field=vlan") {
		t.Errorf("expected warning in log, got %q", buf.String())
	}
}

// TestParseBinaryFails tests the only surfaced error.
func TestParseBinaryFails(t *testing.T) {
	t.Parallel()

	// "hostname X\n" as UTF-16LE with a byte order mark.
	utf16 := []byte{0xff, 0xfe}
	for _, r := range "hostname X\n" {
		utf16 = append(utf16, byte(r), 0)
	}

	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{"control bytes", []byte("wlan A 1\x00\x00\x01"), true},
		{"single NUL in a valid config", []byte(sample.Config + "\x00"), true},
		{"UTF-16 text decodes without NULs", utf16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := quietParser().Parse(tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Device.Hostname != "X" {
					t.Errorf("got hostname %q, expected X", result.Device.Hostname)
				}
				return
			}
			if !errors.Is(err, ErrParseFailed) || result != nil {
				t.Errorf("got %v, %v, expected ErrParseFailed and no result", result, err)
			}
		})
	}
}

// TestParseOptions tests evaluator options passed through the parser.
func TestParseOptions(t *testing.T) {
	t.Parallel()

	t.Run("emit matched", func(t *testing.T) {
		t.Parallel()
		result, err := quietParser(WithEmitMatched(true)).Parse([]byte(sample.Config))
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Issues) != 6 {
			t.Errorf("got %v, expected 6 records", issueIDs(result.Issues))
		}
	})

	t.Run("disabled checks", func(t *testing.T) {
		t.Parallel()
		result, err := quietParser(WithDisabledChecks(model.CheckWPA3, model.CheckPMF)).Parse([]byte(sample.Config))
		if err != nil {
			t.Fatal(err)
		}
		if got := issueIDs(result.Issues); !reflect.DeepEqual(got, []string{"rf-High-Density"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("severity override", func(t *testing.T) {
		t.Parallel()
		result, err := quietParser(WithSeverity(model.CheckPMF, model.SeverityLow)).Parse([]byte(sample.Config))
		if err != nil {
			t.Fatal(err)
		}
		for _, d := range result.Issues {
			if d.Check == model.CheckPMF && d.Severity != model.SeverityLow {
				t.Errorf("got %v for %s, expected LOW", d.Severity, d.ID)
			}
		}
	})
}

// TestNormalize tests line ending and whitespace normalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"crlf", []byte("a\r\nb\r\n"), "a\nb\n"},
		{"lone cr", []byte("a\rb"), "a\nb"},
		{"trailing spaces", []byte("a   \nb\t\n"), "a\nb\n"},
		{"blank lines collapse", []byte("a\n\n\n b\n"), "a\n b\n"},
		{"indentation kept", []byte("wlan A 1\n security wpa2\n"), "wlan A 1\n security wpa2\n"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\n")...), "a\n"},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'a', 0, '\r', 0, '\n', 0}, "a\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
			if strings.Contains(got, "\r") {
				t.Error("normalized text contains a carriage return")
			}
		})
	}
}

// TestParseDigest tests that equivalent inputs share a digest.
func TestParseDigest(t *testing.T) {
	t.Parallel()

	a, err := Parse([]byte("hostname X\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte("hostname X   \n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Digest != b.Digest {
		t.Error("expected line-ending differences to normalize to the same digest")
	}
}
