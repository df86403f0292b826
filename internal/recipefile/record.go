// Package recipefile reads and maintains the JSON recipe source files that
// feed the catalog import and the offline media jobs.
package recipefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Record is one recipe as written in a source file.
type Record struct {
	Name         string
	Cuisine      string
	Instructions string
	Image        string
	Audio        string
	Diets        []string
	Ingredients  []string
}

// UnmarshalJSON accepts the field aliases found across source file
// generations: recipe/instructions, image/photo and diet/diets.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string   `json:"name"`
		Cuisine      string   `json:"cuisine"`
		Recipe       *string  `json:"recipe"`
		Instructions *string  `json:"instructions"`
		Image        *string  `json:"image"`
		Photo        *string  `json:"photo"`
		Audio        *string  `json:"audio"`
		Diet         nameList `json:"diet"`
		Diets        nameList `json:"diets"`
		Ingredients  nameList `json:"ingredients"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{
		Name:         strings.TrimSpace(raw.Name),
		Cuisine:      strings.TrimSpace(raw.Cuisine),
		Instructions: first(raw.Recipe, raw.Instructions),
		Image:        first(raw.Image, raw.Photo),
		Audio:        first(raw.Audio),
		Diets:        raw.Diet,
		Ingredients:  raw.Ingredients,
	}
	if len(r.Diets) == 0 {
		r.Diets = raw.Diets
	}
	return nil
}

func first(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

// nameList decodes either an array of names or a single name.
type nameList []string

func (l *nameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = compactNames([]string{single})
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = compactNames(many)
	return nil
}

// compactNames trims names and drops blanks and repeats.
func compactNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// File is one parsed source file.
type File struct {
	Path    string
	Records []Record
}

// Stem is the file name without directory and extension. Media produced for
// the file's records is grouped under it.
func (f *File) Stem() string {
	return Stem(f.Path)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile parses path. The file may hold a single record object or an
// array of records, optionally preceded by a UTF-8 byte order mark.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))

	var records []Record
	if len(data) > 0 && data[0] == '{' {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = []Record{rec}
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &File{Path: path, Records: records}, nil
}

// Paths lists the *.json files directly inside dir, sorted by name.
func Paths(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
