package layout

import "strings"

// Classification partitions the text blocks of a page. A block appears in
// at most one of the sets.
type Classification struct {
	Header  []Block
	Footer  []Block
	Content []Block
}

func blockText(b Block) string {
	return strings.TrimSpace(b.Text)
}

// Classify assigns each non-empty block to the header, the footer or the
// content of the page. A block that touches the header cut counts as header
// so that no sliver of header text survives redaction.
func Classify(blocks []Block, det Detection, pageHeight float64, pageIndex int) Classification {
	var cls Classification

	skip := pageIndex == 0 || det.IsEmpty()
	footerTop := pageHeight - det.FooterHeight

	for _, b := range blocks {
		text := blockText(b)
		if text == "" {
			continue
		}
		if skip {
			cls.Content = append(cls.Content, b)
			continue
		}

		switch {
		case det.HeaderHeight > 0 && (b.Rect.Y0 <= det.HeaderHeight || b.Rect.Y1 <= det.HeaderHeight):
			cls.Header = append(cls.Header, b)
		case det.FooterHeight > 0 && b.Rect.Y0 >= footerTop:
			// page numbers are accepted on their own; the band test above
			// already covers them
			if isPageNumber(text) || b.Rect.Y0 >= footerTop {
				cls.Footer = append(cls.Footer, b)
			}
		default:
			cls.Content = append(cls.Content, b)
		}
	}

	return cls
}

// Plan turns a classification into regions to blank: one full-width band
// for the header blocks, and the own box of every footer block.
func Plan(page Page, cls Classification, det Detection) []Region {
	var regions []Region

	if len(cls.Header) > 0 && det.HeaderHeight > 0 {
		bottom := 0.0
		for _, b := range cls.Header {
			bottom = max(bottom, b.Rect.Y1)
		}
		regions = append(regions, Region{
			Kind: HeaderRegion,
			Rect: Rect{X0: 0, Y0: 0, X1: page.Width, Y1: bottom},
		})
	}

	for _, b := range cls.Footer {
		regions = append(regions, Region{Kind: FooterRegion, Rect: b.Rect})
	}

	return regions
}

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Blank returns a copy of the page as it reads after the regions were
// painted over: blocks covered by a region lose their text.
func Blank(page Page, regions []Region) Page {
	out := page
	out.Blocks = make([]Block, len(page.Blocks))
	for i, b := range page.Blocks {
		for _, r := range regions {
			if r.Rect.Contains(b.Rect) {
				b.Text = ""
				b.Lines = nil
				break
			}
		}
		out.Blocks[i] = b
	}
	return out
}
