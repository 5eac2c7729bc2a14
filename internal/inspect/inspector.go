package inspect

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/source"
)

const maxTextRunes = 60

// Inspect detects the bands of one page and describes its blocks
func Inspect(src source.Source, pageIndex int, det layout.Detector) (*Report, error) {
	if pageIndex < 0 || pageIndex >= src.PageCount() {
		return nil, fmt.Errorf("страница %d вне диапазона (страниц: %d)", pageIndex, src.PageCount())
	}

	page, err := src.Page(pageIndex)
	if err != nil {
		return nil, err
	}

	detection := det.Detect(page)
	report := &Report{
		Page:      pageIndex,
		Width:     page.Width,
		Height:    page.Height,
		Detection: detection,
	}

	if detection.HeaderHeight > 0 {
		report.HeaderText, err = src.ClipText(pageIndex, layout.Rect{X1: page.Width, Y1: detection.HeaderHeight})
		if err != nil {
			return nil, err
		}
	}
	if detection.FooterHeight > 0 {
		report.FooterText, err = src.ClipText(pageIndex, layout.Rect{
			Y0: page.Height - detection.FooterHeight,
			X1: page.Width,
			Y1: page.Height,
		})
		if err != nil {
			return nil, err
		}
	}

	report.Blocks = describeBlocks(page, detection)
	return report, nil
}

// describeBlocks tags every non-empty block by the band it falls in
func describeBlocks(page layout.Page, det layout.Detection) []BlockInfo {
	var out []BlockInfo
	for _, b := range page.Blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}

		kind := KindContent
		switch {
		case b.Rect.Y0 < det.HeaderHeight:
			kind = KindHeader
		case b.Rect.Y1 > page.Height-det.FooterHeight:
			kind = KindFooter
		}

		out = append(out, BlockInfo{
			Index:      len(out),
			Kind:       kind,
			Rect:       b.Rect,
			FromTop:    b.Rect.Y0,
			FromBottom: page.Height - b.Rect.Y1,
			Font:       b.Font,
			Size:       b.Size,
			Text:       truncate(text, maxTextRunes),
		})
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Print writes the human-readable listing: the first three and the last
// four meaningful blocks
func Print(w io.Writer, r *Report) {
	fmt.Fprintln(w, "\nPage Information:")
	fmt.Fprintf(w, "Dimensions: %.2f x %.2f\n", r.Width, r.Height)
	fmt.Fprintf(w, "Detected header height: %.2f\n", r.Detection.HeaderHeight)
	fmt.Fprintf(w, "Detected footer height: %.2f\n", r.Detection.FooterHeight)

	if r.HeaderText != "" {
		fmt.Fprintf(w, "\nHeader text found: %s\n", r.HeaderText)
	}
	if r.FooterText != "" {
		fmt.Fprintf(w, "Footer text found: %s\n", r.FooterText)
	}

	fmt.Fprintf(w, "\nTotal meaningful blocks: %d\n", len(r.Blocks))

	fmt.Fprintln(w, "\nFirst blocks:")
	for _, b := range r.Blocks[:min(3, len(r.Blocks))] {
		printBlock(w, b)
	}

	if len(r.Blocks) > 3 {
		fmt.Fprintln(w, "\nLast blocks:")
		for _, b := range r.Blocks[max(0, len(r.Blocks)-4):] {
			printBlock(w, b)
		}
	}
}

func printBlock(w io.Writer, b BlockInfo) {
	fmt.Fprintf(w, "Block %d (%s): y0=%.2f, y1=%.2f (from top: %.2f, from bottom: %.2f), Text: %s\n",
		b.Index, b.Kind, b.Rect.Y0, b.Rect.Y1, b.FromTop, b.FromBottom, b.Text)
}
