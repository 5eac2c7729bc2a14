package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/pdfredact/internal/layout"
)

// ParseRules накладывает YAML поверх правил по умолчанию. Неизвестные
// поля считаются ошибкой.
func ParseRules(data []byte) (layout.Rules, error) {
	rules := layout.DefaultRules()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		errStr := err.Error()
		if strings.Contains(errStr, "field") && strings.Contains(errStr, "not found") {
			return layout.Rules{}, fmt.Errorf("unknown rules field (check for typos): %w", err)
		}
		return layout.Rules{}, err
	}

	if err := rules.Validate(); err != nil {
		return layout.Rules{}, err
	}
	return rules, nil
}

func LoadRules(path string) (layout.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Rules{}, err
	}

	rules, err := ParseRules(data)
	if err != nil {
		return layout.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func WriteRules(rules layout.Rules, path string) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
