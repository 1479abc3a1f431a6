package segment

import (
	"iter"
	"regexp"
)

// Kind identifies an entity declaration keyword.
type Kind string

const (
	KindWLAN            Kind = "wlan"
	KindRemoteSiteGroup Kind = "flexconnect group"
	KindAPGroup         Kind = "ap group"
	KindPolicyProfile   Kind = "policy-profile"
	KindPolicyTag       Kind = "policy-tag"
	KindRFProfile       Kind = "rf-profile"
)

// headerPatterns match declaration lines. Headers must start at column 0:
// indented lines such as " rf-profile X" inside an ap group are references,
// not declarations. Group 1 is the name; for wlan, group 2 is the numeric id.
var headerPatterns = map[Kind]*regexp.Regexp{
	KindWLAN:            regexp.MustCompile(`(?m)^wlan[ \t]+([\w-]+)[ \t]+(\d+)`),
	KindRemoteSiteGroup: regexp.MustCompile(`(?m)^flexconnect[ \t]+group[ \t]+([\w-]+)`),
	KindAPGroup:         regexp.MustCompile(`(?m)^ap[ \t]+group[ \t]+([\w-]+)`),
	KindPolicyProfile:   regexp.MustCompile(`(?m)^policy-profile[ \t]+([\w-]+)`),
	KindPolicyTag:       regexp.MustCompile(`(?m)^policy-tag[ \t]+([\w-]+)`),
	KindRFProfile:       regexp.MustCompile(`(?m)^rf-profile[ \t]+([\w-]+)`),
}

// Kinds returns every supported kind in inventory order.
func Kinds() []Kind {
	return []Kind{
		KindWLAN,
		KindRemoteSiteGroup,
		KindAPGroup,
		KindPolicyProfile,
		KindPolicyTag,
		KindRFProfile,
	}
}

// Block is the contiguous text of one entity declaration.
type Block struct {
	Kind Kind

	// Name is the entity name from the declaration line.
	Name string

	// ID is the numeric identifier for wlan blocks, as written.
	// It is empty for every other kind.
	ID string

	// Text runs from the declaration line up to, not including, the next
	// declaration of the same kind, or to the end of the input.
	Text string

	// Start and End are byte offsets of Text within the input.
	Start int
	End   int
}

// Blocks returns the blocks of one kind in order of appearance.
// Kinds are segmented independently, so a wlan block may contain an
// rf-profile declaration that also appears as its own rf-profile block.
// Unknown kinds and inputs without declarations yield nothing.
func Blocks(text string, kind Kind) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		re, ok := headerPatterns[kind]
		if !ok {
			return
		}

		matches := re.FindAllStringSubmatchIndex(text, -1)
		for i, m := range matches {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}

			b := Block{
				Kind:  kind,
				Name:  text[m[2]:m[3]],
				Text:  text[m[0]:end],
				Start: m[0],
				End:   end,
			}
			if len(m) >= 6 && m[4] >= 0 {
				b.ID = text[m[4]:m[5]]
			}

			if !yield(b) {
				return
			}
		}
	}
}
