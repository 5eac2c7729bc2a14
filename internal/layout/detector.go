package layout

import "sort"

// Detector computes the header cut and footer band of a page
type Detector interface {
	Detect(page Page) Detection
}

// textBlock is a non-empty block with its folded text
type textBlock struct {
	Block
	folded string
}

// heuristics holds the compiled rules shared by the detector strategies
type heuristics struct {
	rules         Rules
	headerMarkers markerSet
	excludes      markerSet
	candidateExcl markerSet
}

func newHeuristics(rules Rules) heuristics {
	return heuristics{
		rules:         rules,
		headerMarkers: newMarkerSet(rules.HeaderMarkers),
		excludes:      newMarkerSet(rules.ExcludeMarkers),
		candidateExcl: newMarkerSet(rules.CandidateExclusions),
	}
}

// textBlocks drops blank blocks and returns the rest sorted by top edge.
// Some decoders emit blocks out of vertical order.
func textBlocks(blocks []Block) []textBlock {
	out := make([]textBlock, 0, len(blocks))
	for _, b := range blocks {
		if blockText(b) == "" {
			continue
		}
		out = append(out, textBlock{Block: b, folded: fold(b.Text)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rect.Y0 < out[j].Rect.Y0
	})
	return out
}

// header walks the header candidates top-down and returns the cut height
// of the contiguous run of marker blocks, or false if none matched.
func (h heuristics) header(pageHeight float64, blocks []textBlock) (float64, bool) {
	limit := pageHeight * h.rules.HeaderBand

	matched := 0
	maxY := 0.0
	for _, b := range blocks {
		if b.Rect.Y0 > limit || h.candidateExcl.matchAny(b.folded) {
			continue
		}
		if h.headerMarkers.matchAny(b.folded) && !h.excludes.matchAny(b.folded) {
			matched++
			maxY = max(maxY, b.Rect.Y1)
		} else if matched > 0 && b.Rect.Y0 > maxY+h.rules.MaxHeaderGap {
			break
		}
	}

	if matched == 0 {
		return 0, false
	}
	return maxY + h.rules.HeaderMargin, true
}

// footer returns the height of the band holding every block that starts in
// the footer zone, or 0.
func (h heuristics) footer(pageHeight float64, blocks []textBlock) float64 {
	zone := pageHeight * h.rules.FooterBand

	found := false
	minY := pageHeight
	for _, b := range blocks {
		if b.Rect.Y0 >= zone {
			found = true
			minY = min(minY, b.Rect.Y0)
		}
	}

	if !found {
		return 0
	}
	return pageHeight - minY + h.rules.FooterMargin
}

// MarkerDetector finds headers by marker phrases and falls back to a
// positional footer when no header matched. A matched header is reported
// with a fixed footer height (Rules.HeaderFooterFallback).
type MarkerDetector struct {
	heuristics
}

func NewMarkerDetector(rules Rules) *MarkerDetector {
	return &MarkerDetector{heuristics: newHeuristics(rules)}
}

func (d *MarkerDetector) Detect(page Page) Detection {
	// title page
	if page.Index == 0 {
		return Detection{}
	}

	blocks := textBlocks(page.Blocks)
	if len(blocks) == 0 {
		return Detection{}
	}

	if header, ok := d.header(page.Height, blocks); ok {
		return Detection{
			HeaderHeight: header,
			FooterHeight: page.Height * d.rules.HeaderFooterFallback,
		}.Clamp(page.Height)
	}

	return Detection{FooterHeight: d.footer(page.Height, blocks)}.Clamp(page.Height)
}

// SplitDetector runs header and footer detection independently and
// composes the results.
type SplitDetector struct {
	heuristics
}

func NewSplitDetector(rules Rules) *SplitDetector {
	return &SplitDetector{heuristics: newHeuristics(rules)}
}

func (d *SplitDetector) Detect(page Page) Detection {
	if page.Index == 0 {
		return Detection{}
	}

	blocks := textBlocks(page.Blocks)
	if len(blocks) == 0 {
		return Detection{}
	}

	header, _ := d.header(page.Height, blocks)
	return Detection{
		HeaderHeight: header,
		FooterHeight: d.footer(page.Height, blocks),
	}.Clamp(page.Height)
}

// Clamp keeps both heights within the page. Overlapping bands drop the
// footer.
func (d Detection) Clamp(pageHeight float64) Detection {
	d.HeaderHeight = min(max(d.HeaderHeight, 0), pageHeight)
	d.FooterHeight = min(max(d.FooterHeight, 0), pageHeight)
	if d.HeaderHeight+d.FooterHeight > pageHeight {
		d.FooterHeight = 0
	}
	return d
}
