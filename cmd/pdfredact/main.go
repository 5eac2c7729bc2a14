package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ivlev/pdfredact/internal/config"
	"github.com/ivlev/pdfredact/internal/engine"
	"github.com/ivlev/pdfredact/internal/layout"
	"github.com/ivlev/pdfredact/internal/logger"
	"github.com/ivlev/pdfredact/internal/metrics"
	"github.com/ivlev/pdfredact/internal/system"
)

const defaultInputDir = "input/pdf"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()
	config.ApplyEnv(cfg)

	flag.StringVar(&cfg.InputPath, "input", "", "Путь к PDF или папке (по умолчанию: самый свежий файл в input/pdf/)")
	flag.BoolVar(&cfg.Batch, "batch", false, "Обработать все PDF в папке")
	flag.BoolVar(&cfg.Inspect, "inspect", false, "Показать структуру страницы вместо обработки")
	flag.IntVar(&cfg.InspectPage, "page", cfg.InspectPage, "Страница для -inspect (с нуля)")
	flag.StringVar(&cfg.OutputPath, "output", "", "Путь результата (только для одного файла)")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Папка для результатов")
	flag.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "YAML с маркерами и порогами")
	flag.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "Детектор: marker, split")
	flag.IntVar(&cfg.DPI, "dpi", cfg.DPI, "DPI рендеринга")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Документов одновременно в режиме -batch")
	flag.BoolVar(&cfg.WriteText, "text", cfg.WriteText, "Сохранить текст без колонтитулов рядом с результатом (-text=false чтобы отключить)")
	flag.BoolVar(&cfg.ShowStats, "stats", false, "Отчёт о производительности")
	flag.StringVar(&cfg.MetricsFile, "metrics-file", "", "Файл для метрик Prometheus (textfile)")
	flag.StringVar(&cfg.ReportPath, "report", "", "YAML-отчёт для -inspect")
	flag.StringVar(&cfg.PreviewPath, "preview", "", "PNG-превью для -inspect")
	flag.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Уровень логов: debug, info, warn, error")
	flag.StringVar(&cfg.Log.FilePath, "log-file", cfg.Log.FilePath, "Файл логов (JSON, с ротацией)")

	flag.Parse()

	log := logger.NewLogger(cfg.Log)
	defer log.Sync()

	// Увеличиваем лимит открытых файлов (для macOS/Linux)
	if limit, err := system.InitResourceLimits(); err != nil {
		log.Warn("Failed to raise file limit", zap.Error(err))
	} else {
		log.Debug("File limit", zap.Uint64("nofile", limit))
	}

	if cfg.RulesPath != "" {
		rules, err := config.LoadRules(cfg.RulesPath)
		if err != nil {
			fmt.Printf("[-] Ошибка правил: %v\n", err)
			return 1
		}
		cfg.Rules = rules
	}

	detector, err := layout.NewDetector(cfg.Strategy, cfg.Rules)
	if err != nil {
		fmt.Printf("[-] Ошибка: %v\n", err)
		return 1
	}

	m := metrics.New("pdfredact", log)
	runner := engine.NewRunner(cfg, detector, m, log)

	code := dispatch(cfg, runner)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return code
}

func dispatch(cfg *config.Config, runner *engine.Runner) int {
	inputPath := cfg.InputPath
	if inputPath == "" {
		latest, err := system.FindLatestPDF(defaultInputDir)
		if err != nil {
			fmt.Printf("[-] Ошибка: %v. Положите PDF в input/pdf/\n", err)
			return 1
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		fmt.Printf("[-] Ошибка: file not found: %s\n", inputPath)
		return 1
	}

	if info.IsDir() {
		if !cfg.Batch {
			fmt.Println("[!] Указана папка. Используйте -batch для обработки всех PDF.")
			return 0
		}

		files, err := system.FindPDFs(inputPath)
		if err != nil {
			fmt.Printf("[!] %v\n", err)
			return 0
		}

		if cfg.Inspect {
			if err := runner.InspectBatch(files, cfg.InspectPage, os.Stdout); err != nil {
				fmt.Printf("[-] Ошибки инспекции:\n%v\n", err)
				return 1
			}
			return 0
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("[*] Найдено PDF: %d (потоков: %d)\n", len(files), cfg.Workers)
		if err := runner.RunBatch(ctx, files); err != nil {
			fmt.Printf("[-] Ошибки пакетной обработки:\n%v\n", err)
			return 1
		}
		fmt.Println("[+++] Пакетная обработка завершена")
		return 0
	}

	if cfg.Inspect {
		if _, err := runner.InspectFile(inputPath, cfg.InspectPage, os.Stdout); err != nil {
			fmt.Printf("[-] Ошибка: %v\n", err)
			return 1
		}
		return 0
	}

	output := system.OutputPath(inputPath, cfg.OutputDir, cfg.OutputPath)
	if _, err := runner.RedactFile(inputPath, output); err != nil {
		if errors.Is(err, engine.ErrFileNotFound) {
			fmt.Printf("[-] Ошибка: %v\n", err)
		} else {
			fmt.Printf("[-] Ошибка обработки: %v\n", err)
		}
		runner.Metrics.RecordDocument("failed")
		return 1
	}
	runner.Metrics.RecordDocument("ok")

	fmt.Printf("[+++] Готово! Файл: %s\n", output)
	return 0
}
