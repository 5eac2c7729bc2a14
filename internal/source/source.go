package source

import (
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/pdfredact/internal/layout"
)

type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	Page(index int) (layout.Page, error)
	RenderPage(index int, dpi int) (image.Image, error)
	ClipText(index int, rect layout.Rect) (string, error)
	Close() error
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// GetPageDimensions returns the page bounds in points. go-fitz rounds the
// bounds to whole points, so A4 (595.28 x 841.89) reads as 595 x 841; decode
// prefers the fractional size carried by the page HTML.
func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// decode reads the structured text of a page
func (f *FitzPDFSource) decode(index int) (*stextPage, error) {
	markup, err := f.doc.HTML(index, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index, err)
	}

	sp, err := parseStextHTML(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index, err)
	}

	if sp.Width <= 0 || sp.Height <= 0 {
		sp.Width, sp.Height, err = f.GetPageDimensions(index)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", index, err)
		}
	}
	return sp, nil
}

func (f *FitzPDFSource) Page(index int) (layout.Page, error) {
	sp, err := f.decode(index)
	if err != nil {
		return layout.Page{}, err
	}

	return layout.Page{
		Index:  index,
		Width:  sp.Width,
		Height: sp.Height,
		Blocks: groupBlocks(sp.Lines, sp.Width),
	}, nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) ClipText(index int, rect layout.Rect) (string, error) {
	sp, err := f.decode(index)
	if err != nil {
		return "", err
	}
	return clipLines(sp.Lines, rect), nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
