package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds overridable prompt template text. Empty fields fall back
// to the built-in templates in the ai adapter.
type PromptConfig struct {
	Evaluation string `yaml:"evaluation"`
	Generation string `yaml:"generation"`
}

// promptYAML represents the structure of a prompt override YAML file.
type promptYAML struct {
	Evaluation []string `yaml:"evaluation"`
	Generation []string `yaml:"generation"`
}

// LoadPromptConfig loads prompt template overrides from the YAML file at path.
// A missing path (empty string) yields an empty config without error, so
// deployments that never override prompts need no file at all.
func LoadPromptConfig(path string) (PromptConfig, error) {
	if path == "" {
		return PromptConfig{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return PromptConfig{}, fmt.Errorf("prompt config file not found: %s", path)
	}
	// #nosec G304 -- Configuration files are expected to be safe
	content, err := os.ReadFile(path)
	if err != nil {
		return PromptConfig{}, fmt.Errorf("failed to read prompt config: %w", err)
	}
	var py promptYAML
	if err := yaml.Unmarshal(content, &py); err != nil {
		return PromptConfig{}, fmt.Errorf("failed to parse prompt config YAML: %w", err)
	}
	return PromptConfig{
		Evaluation: joinTexts(py.Evaluation),
		Generation: joinTexts(py.Generation),
	}, nil
}

func joinTexts(texts []string) string {
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
