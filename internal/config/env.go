package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv читает .env (если есть) и переменные окружения PDFREDACT_*,
// которые задают значения по умолчанию для флагов.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := env("PDFREDACT_RULES"); v != "" {
		cfg.RulesPath = v
	}
	if v := env("PDFREDACT_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := env("PDFREDACT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := env("PDFREDACT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := env("PDFREDACT_LOG_FILE"); v != "" {
		cfg.Log.FilePath = v
	}
	if n, err := strconv.Atoi(env("PDFREDACT_DPI")); err == nil && n > 0 {
		cfg.DPI = n
	}
	if n, err := strconv.Atoi(env("PDFREDACT_WORKERS")); err == nil && n > 0 {
		cfg.Workers = n
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
