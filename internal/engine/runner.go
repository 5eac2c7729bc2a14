package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pdfredact/internal/config"
	"github.com/ivlev/pdfredact/internal/inspect"
	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/logger"
	"github.com/ivlev/pdfredact/internal/metrics"
	"github.com/ivlev/pdfredact/internal/redact"
	"github.com/ivlev/pdfredact/internal/source"
	"github.com/ivlev/pdfredact/internal/system"
)

const benchmarkLog = "benchmark.log"

var ErrFileNotFound = errors.New("file not found")

// Opener открывает документ по пути
type Opener func(path string) (source.Source, error)

func openFitz(path string) (source.Source, error) {
	return source.NewFitzPDFSource(path)
}

// Runner связывает конфигурацию с проектами отдельных документов
type Runner struct {
	Config    *config.Config
	Detector  layout.Detector
	Assembler redact.Assembler
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Open      Opener
	StatsLog  io.Writer
}

func NewRunner(cfg *config.Config, det layout.Detector, m *metrics.Metrics, log *zap.Logger) *Runner {
	r := &Runner{
		Config:    cfg,
		Detector:  det,
		Assembler: &redact.PDFCPUAssembler{},
		Metrics:   m,
		Logger:    log,
		Open:      openFitz,
	}
	if cfg.ShowStats {
		r.StatsLog = logger.NewFileWriter(benchmarkLog, cfg.Log.Rotation)
	}
	return r
}

// open проверяет наличие файла до декодирования
func (r *Runner) open(input string) (source.Source, error) {
	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, input)
		}
		return nil, err
	}
	return r.Open(input)
}

// RedactFile удаляет колонтитулы из одного документа и пишет результат в output
func (r *Runner) RedactFile(input, output string) (*Stats, error) {
	src, err := r.open(input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	project := NewProject(r.Config, src, r.Detector, r.Assembler, r.Metrics, r.Logger)
	project.InputPath = input
	project.OutputPath = output
	project.StatsLog = r.StatsLog

	return project.Run()
}

// RunBatch обрабатывает независимые документы, не более Workers одновременно.
// Ошибка одного файла не останавливает остальные.
func (r *Runner) RunBatch(ctx context.Context, files []string) error {
	if r.Config.OutputDir != "" {
		if err := os.MkdirAll(r.Config.OutputDir, 0755); err != nil {
			return err
		}
	}

	workers := r.Config.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		errs []error
	)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Printf("[*] [%d/%d] %s\n", i+1, len(files), filepath.Base(file))
			output := system.OutputPath(file, r.Config.OutputDir, "")
			if _, err := r.RedactFile(file, output); err != nil {
				r.Metrics.RecordDocument("failed")
				r.Logger.Error("Document failed", zap.String("input", file), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
				return nil
			}
			r.Metrics.RecordDocument("ok")
			fmt.Printf("[+] %s\n", output)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// InspectFile печатает отчёт по странице и при необходимости сохраняет YAML и превью
func (r *Runner) InspectFile(input string, pageIndex int, w io.Writer) (*inspect.Report, error) {
	return r.inspectFile(input, pageIndex, w, r.Config.ReportPath, r.Config.PreviewPath)
}

// InspectBatch печатает отчёты по всем файлам, ничего не изменяя. Пути
// отчёта и превью получают имя исходного файла, чтобы не перезаписывать
// друг друга.
func (r *Runner) InspectBatch(files []string, pageIndex int, w io.Writer) error {
	var errs []error
	for i, file := range files {
		fmt.Fprintf(w, "[*] [%d/%d] %s\n", i+1, len(files), filepath.Base(file))
		_, err := r.inspectFile(file, pageIndex, w,
			perInputPath(r.Config.ReportPath, file),
			perInputPath(r.Config.PreviewPath, file))
		if err != nil {
			r.Logger.Error("Inspection failed", zap.String("input", file), zap.Error(err))
			fmt.Fprintf(w, "[!] %s: %v\n", filepath.Base(file), err)
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}

// perInputPath превращает report.yaml в report_<stem>.yaml
func perInputPath(path, input string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + stem + ext
}

func (r *Runner) inspectFile(input string, pageIndex int, w io.Writer, reportPath, previewPath string) (*inspect.Report, error) {
	src, err := r.open(input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	report, err := inspect.Inspect(src, pageIndex, r.Detector)
	if err != nil {
		return nil, err
	}
	report.Source = filepath.Base(input)
	inspect.Print(w, report)

	if reportPath != "" {
		if err := inspect.WriteReport(report, reportPath); err != nil {
			return nil, fmt.Errorf("ошибка записи отчёта: %w", err)
		}
		fmt.Fprintf(w, "[*] Отчёт: %s\n", reportPath)
	}

	if previewPath != "" {
		img, err := src.RenderPage(pageIndex, r.Config.DPI)
		if err != nil {
			return nil, fmt.Errorf("ошибка рендеринга превью: %w", err)
		}
		preview := inspect.RenderPreview(img, report, float64(r.Config.DPI)/72.0)
		if err := system.WritePNG(preview, previewPath); err != nil {
			return nil, fmt.Errorf("ошибка записи превью: %w", err)
		}
		fmt.Fprintf(w, "[*] Превью: %s\n", previewPath)
	}

	return report, nil
}
