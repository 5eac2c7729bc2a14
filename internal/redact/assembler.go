package redact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageImage is a committed page: the rendered image on disk and the size of
// the source page in points
type PageImage struct {
	Path   string
	Width  float64
	Height float64
}

// Assembler writes the committed page images into the output document
type Assembler interface {
	Assemble(pages []PageImage, outPath string) error
}

// PDFCPUAssembler builds a PDF with one page per image using pdfcpu. Every
// page keeps the size of the source page whatever the render DPI was.
type PDFCPUAssembler struct{}

func (a *PDFCPUAssembler) Assemble(pages []PageImage, outPath string) error {
	if len(pages) == 0 {
		return errors.New("нет страниц для сборки")
	}

	// собираем во временный файл рядом с результатом, чтобы при ошибке
	// не оставить обрезанный PDF
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".pdfredact-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	// pdfcpu дописывает страницы в существующий файл, начинаем с пустого места
	if err := os.Remove(tmpPath); err != nil {
		return err
	}

	if err := importRuns(pages, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось записать %s: %w", outPath, err)
	}
	return nil
}

// importRuns imports consecutive pages of equal size in one call each
func importRuns(pages []PageImage, outPath string) error {
	conf := model.NewDefaultConfiguration()

	for start := 0; start < len(pages); {
		end := start + 1
		for end < len(pages) && pages[end].Width == pages[start].Width && pages[end].Height == pages[start].Height {
			end++
		}

		paths := make([]string, 0, end-start)
		for _, p := range pages[start:end] {
			paths = append(paths, p.Path)
		}

		if err := api.ImportImagesFile(paths, outPath, pageImport(pages[start]), conf); err != nil {
			return fmt.Errorf("pdfcpu import error: %w", err)
		}
		start = end
	}
	return nil
}

// pageImport fits the image onto a page of the source size. The render
// keeps the page aspect ratio, so relative scale 1 covers the whole page.
func pageImport(p PageImage) *pdfcpu.Import {
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: p.Width, Height: p.Height}
	imp.UserDim = true
	imp.Pos = types.Center
	imp.Scale = 1.0
	imp.ScaleAbs = false
	imp.InpUnit = types.POINTS
	return imp
}
