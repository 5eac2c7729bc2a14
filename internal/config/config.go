package config

import "github.com/ivlev/pdfredact/internal/layout"

type Config struct {
	InputPath   string
	OutputPath  string // явный путь результата (только для одного файла)
	OutputDir   string
	Batch       bool
	Inspect     bool
	InspectPage int
	Strategy    string
	RulesPath   string
	Rules       layout.Rules
	DPI         int
	Workers     int
	WriteText   bool
	ShowStats   bool
	MetricsFile string
	ReportPath  string
	PreviewPath string
	Log         LogConfig
}

// LogConfig описывает вывод логов: консоль всегда, файл по желанию
type LogConfig struct {
	Level    string
	FilePath string
	Rotation RotationConfig
}

type RotationConfig struct {
	MaxSize    int // MB
	MaxAge     int // дни
	MaxBackups int
	Compress   bool
}

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

func Default() *Config {
	return &Config{
		InspectPage: 1,
		Strategy:    "marker",
		Rules:       layout.DefaultRules(),
		DPI:         150,
		Workers:     1,
		WriteText:   true,
		Log: LogConfig{
			Level: LogLevelInfo,
			Rotation: RotationConfig{
				MaxSize:    10,
				MaxAge:     30,
				MaxBackups: 3,
			},
		},
	}
}
