package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ivlev/pdfredact/internal/layout"
)

// MuPDF HTML does not carry line widths; the right edge is estimated from
// an average glyph advance of half the font size.
const glyphAdvance = 0.5

// stextPage is a page decoded from MuPDF's structured-text HTML
type stextPage struct {
	Width  float64
	Height float64
	Lines  []layout.Line
}

// lineBuilder accumulates one positioned <p> element
type lineBuilder struct {
	top, left, lineHeight float64
	hasTop                bool
	font                  string
	size                  float64
	text                  strings.Builder
}

func (b *lineBuilder) line() (layout.Line, bool) {
	if !b.hasTop {
		return layout.Line{}, false
	}

	height := b.lineHeight
	if height <= 0 {
		height = b.size * 1.2
	}
	if height <= 0 {
		height = 12
	}

	size := b.size
	if size <= 0 {
		size = height / 1.2
	}

	text := strings.TrimSpace(b.text.String())
	width := float64(utf8.RuneCountInString(text)) * size * glyphAdvance

	return layout.Line{
		Rect: layout.Rect{X0: b.left, Y0: b.top, X1: b.left + width, Y1: b.top + height},
		Text: text,
		Font: b.font,
		Size: b.size,
	}, true
}

// parseStextHTML reads the output of fz_print_stext_page_as_html. Missing
// or malformed style values fall back to zero values instead of failing.
func parseStextHTML(r io.Reader) (*stextPage, error) {
	page := &stextPage{}
	z := html.NewTokenizer(r)

	var cur *lineBuilder
	flush := func() {
		if cur == nil {
			return
		}
		if l, ok := cur.line(); ok {
			page.Lines = append(page.Lines, l)
		}
		cur = nil
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				flush()
				return page, nil
			}
			return nil, fmt.Errorf("parse page html: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			style := parseStyle(attr(tok, "style"))

			switch tok.Data {
			case "div":
				if strings.HasPrefix(attr(tok, "id"), "page") {
					page.Width, _ = parseLength(style["width"])
					page.Height, _ = parseLength(style["height"])
				}
			case "p":
				flush()
				cur = &lineBuilder{}
				cur.top, cur.hasTop = parseLength(style["top"])
				cur.left, _ = parseLength(style["left"])
				cur.lineHeight, _ = parseLength(style["line-height"])
			case "span":
				// font of the first span wins
				if cur != nil && cur.font == "" {
					cur.font = fontFamily(style["font-family"])
					cur.size, _ = parseLength(style["font-size"])
				}
			}

		case html.TextToken:
			if cur != nil {
				cur.text.WriteString(z.Token().Data)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "p" {
				flush()
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseStyle splits an inline CSS declaration list
func parseStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// parseLength parses "12.5pt" or "12.5" into points
func parseLength(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "pt")
	v = strings.TrimSuffix(v, "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// fontFamily returns the first family of a CSS font-family list
func fontFamily(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// groupBlocks merges consecutive lines into blocks. A new block starts when
// a line begins above the previous one or after a gap larger than half the
// previous line height.
func groupBlocks(lines []layout.Line, pageWidth float64) []layout.Block {
	var blocks []layout.Block
	var cur []layout.Line

	closeBlock := func() {
		if len(cur) > 0 {
			blocks = append(blocks, newBlock(cur, pageWidth))
		}
		cur = nil
	}

	for _, l := range lines {
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			if l.Rect.Y0 < prev.Rect.Y0 || l.Rect.Y0-prev.Rect.Y1 > prev.Rect.Height()*0.5 {
				closeBlock()
			}
		}
		cur = append(cur, l)
	}
	closeBlock()

	return blocks
}

func newBlock(lines []layout.Line, pageWidth float64) layout.Block {
	b := layout.Block{Lines: make([]layout.Line, len(lines))}
	texts := make([]string, 0, len(lines))

	for i, l := range lines {
		if pageWidth > 0 && l.Rect.X1 > pageWidth {
			l.Rect.X1 = pageWidth
		}
		b.Lines[i] = l

		if i == 0 {
			b.Rect = l.Rect
		} else {
			b.Rect.X0 = min(b.Rect.X0, l.Rect.X0)
			b.Rect.Y0 = min(b.Rect.Y0, l.Rect.Y0)
			b.Rect.X1 = max(b.Rect.X1, l.Rect.X1)
			b.Rect.Y1 = max(b.Rect.Y1, l.Rect.Y1)
		}

		if b.Font == "" && l.Font != "" {
			b.Font, b.Size = l.Font, l.Size
		}
		if l.Text != "" {
			texts = append(texts, l.Text)
		}
	}

	b.Text = strings.Join(texts, " ")
	return b
}

// clipLines returns the text of lines whose vertical midpoint lies inside
// the rectangle
func clipLines(lines []layout.Line, rect layout.Rect) string {
	var out []string
	for _, l := range lines {
		mid := (l.Rect.Y0 + l.Rect.Y1) / 2
		if mid < rect.Y0 || mid > rect.Y1 {
			continue
		}
		if l.Rect.X1 < rect.X0 || l.Rect.X0 > rect.X1 {
			continue
		}
		if l.Text != "" {
			out = append(out, l.Text)
		}
	}
	return strings.Join(out, "\n")
}
