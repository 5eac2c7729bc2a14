package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold normalizes text for case-insensitive matching. NFKC expands
// ligatures ("ﬁ" -> "fi") that PDF decoders keep as single glyphs.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// markerSet is a list of folded substrings
type markerSet []string

func newMarkerSet(phrases []string) markerSet {
	set := make(markerSet, 0, len(phrases))
	for _, p := range phrases {
		p = fold(strings.TrimSpace(p))
		if p != "" {
			set = append(set, p)
		}
	}
	return set
}

// matchAny reports whether folded text contains one of the markers
func (m markerSet) matchAny(folded string) bool {
	for _, marker := range m {
		if strings.Contains(folded, marker) {
			return true
		}
	}
	return false
}

// isPageNumber reports whether text with whitespace removed is made of
// digits only
func isPageNumber(text string) bool {
	digits := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		digits++
	}
	return digits > 0
}
