package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPromptConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadPromptConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Evaluation)
	assert.Empty(t, cfg.Generation)
}

func TestLoadPromptConfig_MissingFile(t *testing.T) {
	_, err := LoadPromptConfig("/nonexistent/prompts.yaml")
	require.Error(t, err)
}

func TestLoadPromptConfig_JoinsLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := []byte(`
evaluation:
  - "line one"
  - "line two"
generation:
  - "generate {{.Count}} questions"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadPromptConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", cfg.Evaluation)
	assert.Equal(t, "generate {{.Count}} questions", cfg.Generation)
}

func TestLoadPromptConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaluation: [unclosed"), 0o600))

	_, err := LoadPromptConfig(path)
	require.Error(t, err)
}
