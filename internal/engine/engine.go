package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/ivlev/pdfredact/internal/config"
	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/metrics"
	"github.com/ivlev/pdfredact/internal/redact"
	"github.com/ivlev/pdfredact/internal/source"
	"github.com/ivlev/pdfredact/internal/system"
)

// pageSeparator разделяет страницы в текстовом файле
const pageSeparator = "\f"

type Project struct {
	Config     *config.Config
	Source     source.Source
	Detector   layout.Detector
	Painter    *redact.Painter
	Assembler  redact.Assembler
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	InputPath  string
	OutputPath string
	StatsLog   io.Writer
	tempDir    string
}

// Stats собирается за один документ
type Stats struct {
	Pages          int
	HeaderPages    int
	FooterPages    int
	Regions        int
	HeaderVariants int
	Render         time.Duration
	Assemble       time.Duration
	Total          time.Duration
}

func NewProject(cfg *config.Config, src source.Source, det layout.Detector, asm redact.Assembler, m *metrics.Metrics, logger *zap.Logger) *Project {
	return &Project{
		Config:    cfg,
		Source:    src,
		Detector:  det,
		Painter:   redact.NewPainter(),
		Assembler: asm,
		Metrics:   m,
		Logger:    logger,
	}
}

// Run обрабатывает страницы строго по очереди: каждая страница
// закрашивается и записывается до чтения следующей.
func (p *Project) Run() (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{}

	var err error
	p.tempDir, err = os.MkdirTemp("", "pdfredact_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(p.tempDir)

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("документ не содержит страниц")
	}

	log := p.Logger.With(zap.String("input", filepath.Base(p.InputPath)))
	log.Info("Processing document", zap.Int("pages", pageCount), zap.Int("dpi", p.Config.DPI))

	scale := float64(p.Config.DPI) / 72.0
	pages := make([]redact.PageImage, 0, pageCount)
	contentText := make([]string, 0, pageCount)
	headerVariants := make(map[uint64]struct{})

	renderStart := time.Now()
	for i := 0; i < pageCount; i++ {
		pageStart := time.Now()

		page, err := p.Source.Page(i)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения страницы %d: %w", i, err)
		}

		det := p.Detector.Detect(page)
		cls := layout.Classify(page.Blocks, det, page.Height, page.Index)
		regions := layout.Plan(page, cls, det)

		if len(regions) > 0 {
			if residual := p.Detector.Detect(layout.Blank(page, regions)); !residual.IsEmpty() {
				log.Debug("Residual header/footer after blanking",
					zap.Int("page", i),
					zap.Float64("header", residual.HeaderHeight),
					zap.Float64("footer", residual.FooterHeight))
			}
		}

		img, err := p.Source.RenderPage(i, p.Config.DPI)
		if err != nil {
			return nil, fmt.Errorf("ошибка рендеринга страницы %d: %w", i, err)
		}

		canvas := p.Painter.Paint(img, regions, scale)
		pagePath := filepath.Join(p.tempDir, fmt.Sprintf("p%05d.png", i))
		err = system.WritePNG(canvas, pagePath)
		system.PutImage(canvas)
		if err != nil {
			return nil, fmt.Errorf("ошибка записи страницы %d: %w", i, err)
		}
		pages = append(pages, redact.PageImage{Path: pagePath, Width: page.Width, Height: page.Height})

		hasHeader, hasFooter := false, false
		for _, r := range regions {
			p.Metrics.RecordRegion(r.Kind.String())
			hasHeader = hasHeader || r.Kind == layout.HeaderRegion
			hasFooter = hasFooter || r.Kind == layout.FooterRegion
		}
		if hasHeader {
			stats.HeaderPages++
			headerVariants[fingerprint(cls.Header)] = struct{}{}
		}
		if hasFooter {
			stats.FooterPages++
		}
		stats.Regions += len(regions)
		stats.Pages++

		if p.Config.WriteText {
			contentText = append(contentText, joinText(cls.Content))
		}

		p.Metrics.RecordPage(metrics.PageLayout(hasHeader, hasFooter), time.Since(pageStart))
		log.Debug("Page committed",
			zap.Int("page", i),
			zap.Float64("header_height", det.HeaderHeight),
			zap.Float64("footer_height", det.FooterHeight),
			zap.Int("header_blocks", len(cls.Header)),
			zap.Int("footer_blocks", len(cls.Footer)))
		fmt.Printf("[>] Ready: %d/%d\n", i+1, pageCount)
	}
	stats.Render = time.Since(renderStart)
	stats.HeaderVariants = len(headerVariants)

	if err := os.MkdirAll(filepath.Dir(p.OutputPath), 0755); err != nil {
		return nil, err
	}

	fmt.Println("[*] Сборка итогового PDF...")
	assembleStart := time.Now()
	if err := p.Assembler.Assemble(pages, p.OutputPath); err != nil {
		return nil, fmt.Errorf("ошибка сборки PDF: %w", err)
	}
	stats.Assemble = time.Since(assembleStart)

	if p.Config.WriteText {
		textPath := system.SidecarPath(p.OutputPath, ".txt")
		if err := os.WriteFile(textPath, []byte(strings.Join(contentText, pageSeparator)), 0644); err != nil {
			return nil, fmt.Errorf("ошибка записи текста: %w", err)
		}
		fmt.Printf("[*] Текст без колонтитулов: %s\n", textPath)
	}

	stats.Total = time.Since(startTime)

	if p.Config.ShowStats {
		p.report(stats)
	}

	return stats, nil
}

func (p *Project) report(stats *Stats) {
	var rss uint64
	if v, err := system.ProcessRSS(); err == nil {
		rss = v
	} else {
		p.Logger.Warn("Failed to read process memory", zap.Error(err))
	}

	report := fmt.Sprintf(
		"--- [REDACTION REPORT] ---\n"+
			"Pages: %d (header: %d, footer: %d)\n"+
			"Regions blanked: %d\n"+
			"Header variants: %d\n"+
			"Rendering: %.2fs\n"+
			"Assembling: %.2fs\n"+
			"Total Time: %.2fs\n"+
			"RSS: %.1f MB\n"+
			"--------------------------\n",
		stats.Pages, stats.HeaderPages, stats.FooterPages, stats.Regions, stats.HeaderVariants,
		stats.Render.Seconds(), stats.Assemble.Seconds(), stats.Total.Seconds(), float64(rss)/(1<<20),
	)
	fmt.Print(report)

	if p.StatsLog == nil {
		return
	}
	logEntry := fmt.Sprintf("[%s] Input: %s | Pages: %d | Header: %d | Footer: %d | Regions: %d | Total: %.2fs | RSS: %d\n",
		time.Now().Format("2006-01-02 15:04:05"),
		filepath.Base(p.InputPath),
		stats.Pages,
		stats.HeaderPages,
		stats.FooterPages,
		stats.Regions,
		stats.Total.Seconds(),
		rss,
	)
	if _, err := io.WriteString(p.StatsLog, logEntry); err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

// fingerprint хэширует нормализованный текст колонтитула, чтобы считать
// варианты заголовков в документе
func fingerprint(blocks []layout.Block) uint64 {
	return xxhash.Sum64String(strings.ToLower(strings.Join(strings.Fields(joinText(blocks)), " ")))
}

func joinText(blocks []layout.Block) string {
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	return strings.Join(texts, "\n")
}
