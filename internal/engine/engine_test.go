package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ivlev/pdfredact/internal/config"
	"github.com/ivlev/pdfredact/internal/inspect"
	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/metrics"
	"github.com/ivlev/pdfredact/internal/redact"
	"github.com/ivlev/pdfredact/internal/source"
)

// fakeSource renders every page as solid black so painted regions show up white
type fakeSource struct {
	pages  []layout.Page
	closed int
	order  []int
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) GetPageDimensions(i int) (float64, float64, error) {
	return s.pages[i].Width, s.pages[i].Height, nil
}

func (s *fakeSource) Page(i int) (layout.Page, error) {
	s.order = append(s.order, i)
	return s.pages[i], nil
}

func (s *fakeSource) RenderPage(i int, dpi int) (image.Image, error) {
	scale := float64(dpi) / 72.0
	p := s.pages[i]
	img := image.NewRGBA(image.Rect(0, 0, int(p.Width*scale), int(p.Height*scale)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img, nil
}

func (s *fakeSource) ClipText(i int, rect layout.Rect) (string, error) {
	var out []string
	for _, b := range s.pages[i].Blocks {
		if b.Text != "" && b.Rect.Y0 >= rect.Y0 && b.Rect.Y1 <= rect.Y1 {
			out = append(out, b.Text)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

// fakeAssembler decodes the committed pages while they still exist
type fakeAssembler struct {
	pages []image.Image
	names []string
	sizes [][2]float64
	calls int
	err   error
}

func (a *fakeAssembler) Assemble(pages []redact.PageImage, outPath string) error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	for _, page := range pages {
		path := page.Path
		a.sizes = append(a.sizes, [2]float64{page.Width, page.Height})
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return err
		}
		a.pages = append(a.pages, img)
		a.names = append(a.names, filepath.Base(path))
	}
	return os.WriteFile(outPath, []byte("%PDF-1.7\n"), 0644)
}

func blk(text string, y0, y1 float64) layout.Block {
	return layout.Block{Rect: layout.Rect{X0: 72, Y0: y0, X1: 500, Y1: y1}, Text: text}
}

func contentPage(index int, body string) layout.Page {
	return layout.Page{
		Index:  index,
		Width:  600,
		Height: 800,
		Blocks: []layout.Block{
			blk("Certified Tester Foundation Level", 10, 30),
			blk(body, 200, 220),
			blk("3", 770, 785),
		},
	}
}

func testDocument() *fakeSource {
	title := layout.Page{
		Index:  0,
		Width:  600,
		Height: 800,
		Blocks: []layout.Block{blk("Certified Tester Foundation Level", 10, 30), blk("Cover", 300, 320)},
	}
	return &fakeSource{pages: []layout.Page{title, contentPage(1, "Body one"), contentPage(2, "Body two")}}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DPI = 72
	return cfg
}

func newTestProject(t *testing.T, cfg *config.Config, src *fakeSource, asm *fakeAssembler) *Project {
	t.Helper()
	det, err := layout.NewDetector("marker", cfg.Rules)
	require.NoError(t, err)

	p := NewProject(cfg, src, det, asm, metrics.New("pdfredact", zap.NewNop()), zap.NewNop())
	p.InputPath = "doc.pdf"
	p.OutputPath = filepath.Join(t.TempDir(), "out", "doc_redacted.pdf")
	return p
}

func isWhite(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestProjectRun(t *testing.T) {
	src := testDocument()
	asm := &fakeAssembler{}
	p := newTestProject(t, testConfig(), src, asm)

	stats, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, src.order)
	assert.Equal(t, []string{"p00000.png", "p00001.png", "p00002.png"}, asm.names)
	require.Len(t, asm.pages, 3)
	assert.FileExists(t, p.OutputPath)

	// титульная страница не изменяется
	assert.False(t, isWhite(asm.pages[0], 5, 5))

	for _, page := range asm.pages[1:] {
		assert.True(t, isWhite(page, 5, 5), "header band")
		assert.True(t, isWhite(page, 100, 777), "page number")
		assert.False(t, isWhite(page, 300, 210), "body")
		assert.False(t, isWhite(page, 5, 790), "margin outside footer block")
	}

	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 2, stats.HeaderPages)
	assert.Equal(t, 2, stats.FooterPages)
	assert.Equal(t, 4, stats.Regions)
	assert.Equal(t, 1, stats.HeaderVariants)
}

func TestProjectRun_Scale(t *testing.T) {
	cfg := testConfig()
	cfg.DPI = 144
	asm := &fakeAssembler{}
	p := newTestProject(t, cfg, testDocument(), asm)

	_, err := p.Run()
	require.NoError(t, err)

	require.Len(t, asm.pages, 3)
	assert.Equal(t, image.Rect(0, 0, 1200, 1600), asm.pages[1].Bounds())
	assert.Equal(t, [2]float64{600, 800}, asm.sizes[1], "page size stays in points")
	assert.True(t, isWhite(asm.pages[1], 10, 59))
	assert.False(t, isWhite(asm.pages[1], 10, 61))
}

func TestProjectRun_TextSidecar(t *testing.T) {
	cfg := testConfig()
	cfg.WriteText = true
	p := newTestProject(t, cfg, testDocument(), &fakeAssembler{})

	_, err := p.Run()
	require.NoError(t, err)

	data, err := os.ReadFile(strings.TrimSuffix(p.OutputPath, ".pdf") + ".txt")
	require.NoError(t, err)

	pages := strings.Split(string(data), "\f")
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "Cover")
	assert.Equal(t, "Body one", pages[1])
	assert.Equal(t, "Body two", pages[2])
}

func TestProjectRun_AssembleFailure(t *testing.T) {
	asm := &fakeAssembler{err: errors.New("disk full")}
	p := newTestProject(t, testConfig(), testDocument(), asm)

	_, err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoFileExists(t, p.OutputPath)
}

func TestProjectRun_EmptyDocument(t *testing.T) {
	p := newTestProject(t, testConfig(), &fakeSource{}, &fakeAssembler{})

	_, err := p.Run()
	assert.Error(t, err)
}

func newTestRunner(t *testing.T, cfg *config.Config, asm *fakeAssembler, opened *[]string) *Runner {
	t.Helper()
	det, err := layout.NewDetector(cfg.Strategy, cfg.Rules)
	require.NoError(t, err)

	r := NewRunner(cfg, det, metrics.New("pdfredact", zap.NewNop()), zap.NewNop())
	r.Assembler = asm
	r.Open = func(path string) (source.Source, error) {
		*opened = append(*opened, path)
		return testDocument(), nil
	}
	return r
}

func TestRedactFile_NotFound(t *testing.T) {
	var opened []string
	r := newTestRunner(t, testConfig(), &fakeAssembler{}, &opened)

	_, err := r.RedactFile(filepath.Join(t.TempDir(), "missing.pdf"), filepath.Join(t.TempDir(), "out.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Contains(t, err.Error(), "missing.pdf")
	assert.Empty(t, opened)
}

func TestRedactFile_ClosesSource(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF"), 0644))

	src := testDocument()
	r := newTestRunner(t, testConfig(), &fakeAssembler{}, new([]string))
	r.Open = func(string) (source.Source, error) { return src, nil }

	stats, err := r.RedactFile(input, filepath.Join(dir, "doc_redacted.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 1, src.closed)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	require.NoError(t, os.WriteFile(good, []byte("%PDF"), 0644))
	missing := filepath.Join(dir, "gone.pdf")

	cfg := testConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Workers = 2

	var opened []string
	r := newTestRunner(t, cfg, &fakeAssembler{}, &opened)

	err := r.RunBatch(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Contains(t, err.Error(), "gone.pdf")

	assert.Equal(t, []string{good}, opened)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "good_redacted.pdf"))

	count, err := testutil.GatherAndCount(r.Metrics.Registry(), "pdfredact_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunBatch_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
		files = append(files, path)
	}

	cfg := testConfig()
	var opened []string
	r := newTestRunner(t, cfg, &fakeAssembler{}, &opened)

	require.NoError(t, r.RunBatch(context.Background(), files))
	for _, name := range []string{"a", "b", "c"} {
		assert.FileExists(t, filepath.Join(dir, name+"_redacted.pdf"))
	}
}

func TestInspectFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF"), 0644))

	cfg := testConfig()
	cfg.ReportPath = filepath.Join(dir, "report.yaml")
	cfg.PreviewPath = filepath.Join(dir, "preview.png")
	r := newTestRunner(t, cfg, &fakeAssembler{}, new([]string))

	var out strings.Builder
	report, err := r.InspectFile(input, 1, &out)
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", report.Source)
	assert.Contains(t, out.String(), "Certified Tester Foundation Level")

	saved, err := inspect.ReadReport(cfg.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, report, saved)
	assert.FileExists(t, cfg.PreviewPath)
}

func TestInspectBatch(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.pdf", "b.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
		files = append(files, path)
	}
	files = append(files, filepath.Join(dir, "gone.pdf"))

	cfg := testConfig()
	cfg.Inspect = true
	cfg.ReportPath = filepath.Join(dir, "report.yaml")

	asm := &fakeAssembler{}
	var opened []string
	r := newTestRunner(t, cfg, asm, &opened)

	var out strings.Builder
	err := r.InspectBatch(files, 1, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))

	assert.Zero(t, asm.calls, "inspection never assembles")
	assert.Equal(t, files[:2], opened)
	assert.FileExists(t, filepath.Join(dir, "report_a.yaml"))
	assert.FileExists(t, filepath.Join(dir, "report_b.yaml"))

	redacted, err := filepath.Glob(filepath.Join(dir, "*_redacted.pdf"))
	require.NoError(t, err)
	assert.Empty(t, redacted)

	assert.Contains(t, out.String(), "[1/3] a.pdf")
	assert.Contains(t, out.String(), "[2/3] b.pdf")
	assert.Contains(t, out.String(), "Header text found: Certified Tester Foundation Level")
	assert.Contains(t, out.String(), "[!] gone.pdf")
}

func TestPerInputPath(t *testing.T) {
	tests := []struct {
		path, input, want string
	}{
		{"", "/in/a.pdf", ""},
		{"out/report.yaml", "/in/a.pdf", "out/report_a.yaml"},
		{"preview.png", "/in/Syllabus v2.pdf", "preview_Syllabus v2.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, perInputPath(tt.path, tt.input))
	}
}
