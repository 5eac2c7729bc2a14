package layout

import (
	"errors"
	"fmt"
)

// Rules holds the tunable heuristics of header/footer detection. Marker
// lists are document-family specific and are matched case-insensitively as
// substrings.
type Rules struct {
	// HeaderMarkers: a header candidate must contain at least one of these
	HeaderMarkers []string `yaml:"header_markers"`

	// ExcludeMarkers: a header candidate must contain none of these
	ExcludeMarkers []string `yaml:"exclude_markers"`

	// CandidateExclusions removes blocks from the header candidates before
	// marker matching (copyright notices often sit high on a page)
	CandidateExclusions []string `yaml:"candidate_exclusions"`

	// HeaderBand is the fraction of the page height, from the top, where a
	// header block may start
	HeaderBand float64 `yaml:"header_band"`

	// FooterBand is the fraction of the page height, from the top, below
	// which a block starts in the footer zone
	FooterBand float64 `yaml:"footer_band"`

	// MaxHeaderGap stops header accumulation once a candidate starts this far
	// below the lowest matched block (points)
	MaxHeaderGap float64 `yaml:"max_header_gap"`

	HeaderMargin float64 `yaml:"header_margin"`
	FooterMargin float64 `yaml:"footer_margin"`

	// HeaderFooterFallback is the footer height, as a fraction of the page
	// height, reported together with a matched header by MarkerDetector
	HeaderFooterFallback float64 `yaml:"header_footer_fallback"`
}

// DefaultRules returns the rules tuned for ISTQB syllabus documents
func DefaultRules() Rules {
	return Rules{
		HeaderMarkers: []string{
			"certified tester",
			"test management",
			"advanced level",
			"software testing qualifications board",
		},
		ExcludeMarkers:       []string{"copyright", "notice", "revision"},
		CandidateExclusions:  []string{"copyright"},
		HeaderBand:           0.15,
		FooterBand:           0.85,
		MaxHeaderGap:         20,
		HeaderMargin:         2,
		FooterMargin:         5,
		HeaderFooterFallback: 0.15,
	}
}

// Validate checks that the rules describe non-overlapping bands
func (r Rules) Validate() error {
	if len(r.HeaderMarkers) == 0 {
		return errors.New("header_markers must not be empty")
	}
	if r.HeaderBand <= 0 || r.HeaderBand >= 1 {
		return fmt.Errorf("header_band must be in (0,1), got %v", r.HeaderBand)
	}
	if r.FooterBand <= 0 || r.FooterBand >= 1 {
		return fmt.Errorf("footer_band must be in (0,1), got %v", r.FooterBand)
	}
	if r.HeaderBand >= r.FooterBand {
		return fmt.Errorf("header_band (%v) must be above footer_band (%v)", r.HeaderBand, r.FooterBand)
	}
	if r.HeaderFooterFallback < 0 || r.HeaderFooterFallback >= 1 {
		return fmt.Errorf("header_footer_fallback must be in [0,1), got %v", r.HeaderFooterFallback)
	}
	if r.MaxHeaderGap < 0 || r.HeaderMargin < 0 || r.FooterMargin < 0 {
		return errors.New("gaps and margins must not be negative")
	}
	return nil
}
