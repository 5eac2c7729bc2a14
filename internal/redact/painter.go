package redact

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/system"
)

// Painter blanks regions on a rendered page
type Painter struct {
	Fill color.Color
}

func NewPainter() *Painter {
	return &Painter{Fill: color.White}
}

// Paint copies the page into a pooled canvas and fills every region. scale
// converts page points to pixels (dpi / 72). The caller returns the canvas
// with system.PutImage.
func (p *Painter) Paint(img image.Image, regions []layout.Region, scale float64) *image.RGBA {
	bounds := img.Bounds()
	canvas := system.GetImage(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	fill := image.NewUniform(p.Fill)
	for _, r := range regions {
		px := PixelRect(r.Rect, scale).Intersect(canvas.Bounds())
		if px.Empty() {
			continue
		}
		draw.Draw(canvas, px, fill, image.Point{}, draw.Src)
	}

	return canvas
}

// PixelRect scales a page rectangle to pixels, rounding outward so that no
// partially covered pixel row keeps its ink
func PixelRect(r layout.Rect, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X0*scale)),
		int(math.Floor(r.Y0*scale)),
		int(math.Ceil(r.X1*scale)),
		int(math.Ceil(r.Y1*scale)),
	)
}
