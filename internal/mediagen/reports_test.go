package mediagen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thai.json"), []byte(`[
		{"name": "Pad Thai", "cuisine": "Thai"},
		{"name": "Green Curry", "cuisine": "Thai"}
	]`), 0o644))

	cfg := Default()
	cfg.OutputRoot = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.OutputRoot, "thai"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputRoot, "thai", "pad_thai.jpg"), []byte("x"), 0o644))

	missing, err := MissingImages(cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, []Missing{{File: "thai.json", Name: "Green Curry"}}, missing)
}

func TestWritePrompts(t *testing.T) {
	dir := t.TempDir()
	var records []string
	for i := 0; i < 25; i++ {
		records = append(records, `{"name": "Dish", "cuisine": "Greek", "ingredients": ["Feta", "Olive"]}`)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greek.json"), []byte("["+strings.Join(records, ",")+"]"), 0o644))

	cfg := Default()
	cfg.Prompts.OutputDir = filepath.Join(t.TempDir(), "prompts")

	written, err := WritePrompts(cfg, dir)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, 20, written[0].Prompts)
	assert.Equal(t, filepath.Join(cfg.Prompts.OutputDir, "prompts_greek.txt"), written[0].Path)

	data, err := os.ReadFile(written[0].Path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "describe Dish Greek Feta, Olive in about 20 words: how the dish looks, comma separated, for stable diffusion", lines[0])
	assert.Equal(t, "answer in JSON with the keys name, image_prompt. context: Greek cuisine", lines[20])
}
