package inspect

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/redact"
)

var (
	bandTint = color.NRGBA{R: 255, G: 200, B: 0, A: 70}

	kindColors = map[string]color.RGBA{
		KindHeader:  {R: 220, G: 30, B: 30, A: 255},
		KindFooter:  {R: 30, G: 60, B: 220, A: 255},
		KindContent: {R: 40, G: 160, B: 40, A: 255},
	}
)

// RenderPreview draws the detected bands and the block outlines of a report
// over the rendered page. scale converts points to pixels.
func RenderPreview(img image.Image, r *Report, scale float64) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	det := r.Detection
	if det.HeaderHeight > 0 {
		band := redact.PixelRect(layout.Rect{X1: r.Width, Y1: det.HeaderHeight}, scale)
		draw.Draw(dst, band.Intersect(dst.Bounds()), image.NewUniform(bandTint), image.Point{}, draw.Over)
		label(dst, band.Min.X+4, band.Max.Y-4, fmt.Sprintf("header %.1f", det.HeaderHeight), kindColors[KindHeader])
	}
	if det.FooterHeight > 0 {
		band := redact.PixelRect(layout.Rect{Y0: r.Height - det.FooterHeight, X1: r.Width, Y1: r.Height}, scale)
		draw.Draw(dst, band.Intersect(dst.Bounds()), image.NewUniform(bandTint), image.Point{}, draw.Over)
		label(dst, band.Min.X+4, band.Min.Y+13, fmt.Sprintf("footer %.1f", det.FooterHeight), kindColors[KindFooter])
	}

	for _, blk := range r.Blocks {
		outline(dst, redact.PixelRect(blk.Rect, scale), kindColors[blk.Kind])
	}

	return dst
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}

func label(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
