package mediagen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pageza/nocapcooking/backend/internal/recipefile"
)

// Missing is a recipe without a generated image.
type Missing struct {
	File string
	Name string
}

// MissingImages lists the records of the source files in dir that have no
// image under the configured output root. Unreadable files are an error.
func MissingImages(cfg Config, dir string) ([]Missing, error) {
	paths, err := recipefile.Paths(dir)
	if err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg}
	var missing []Missing
	for _, p := range paths {
		file, err := recipefile.ReadFile(p)
		if err != nil {
			return nil, err
		}
		for _, rec := range file.Records {
			if rec.Name == "" {
				continue
			}
			if _, err := os.Stat(r.OutputPath(file.Stem(), rec.Name, recipefile.ExtImage)); err != nil {
				missing = append(missing, Missing{File: filepath.Base(p), Name: rec.Name})
			}
		}
	}
	return missing, nil
}

// DescribePrompt asks a language model for a short visual description of a
// dish, suitable as an image prompt.
func DescribePrompt(rec recipefile.Record) string {
	return fmt.Sprintf("describe %s %s %s in about 20 words: how the dish looks, comma separated, for stable diffusion",
		rec.Name, rec.Cuisine, strings.Join(rec.Ingredients, ", "))
}

// PromptFile is one written prompt list.
type PromptFile struct {
	Path    string
	Prompts int
}

// WritePrompts writes, for every source file in dir, a text file holding a
// describe prompt for each of its first cfg.Prompts.Limit records followed
// by the answer-format instruction.
func WritePrompts(cfg Config, dir string) ([]PromptFile, error) {
	paths, err := recipefile.Paths(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Prompts.OutputDir, 0o755); err != nil {
		return nil, err
	}

	written := make([]PromptFile, 0, len(paths))
	for _, p := range paths {
		file, err := recipefile.ReadFile(p)
		if err != nil {
			return written, err
		}

		records := file.Records
		if len(records) > cfg.Prompts.Limit {
			records = records[:cfg.Prompts.Limit]
		}

		lines := make([]string, 0, len(records)+1)
		cuisine := ""
		for _, rec := range records {
			lines = append(lines, DescribePrompt(rec))
			cuisine = rec.Cuisine
		}
		lines = append(lines, fmt.Sprintf("answer in JSON with the keys name, image_prompt. context: %s cuisine", cuisine))

		out := filepath.Join(cfg.Prompts.OutputDir, "prompts_"+file.Stem()+".txt")
		if err := os.WriteFile(out, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return written, err
		}
		written = append(written, PromptFile{Path: out, Prompts: len(records)})
	}
	return written, nil
}
