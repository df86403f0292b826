package recipefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FileCount is the number of records in one source file.
type FileCount struct {
	File    string
	Records int
	Err     error
}

// Count tallies the records of every source file in dir, largest first.
// Unreadable files are listed with their error and count zero.
func Count(dir string) ([]FileCount, int, error) {
	paths, err := Paths(dir)
	if err != nil {
		return nil, 0, err
	}

	counts := make([]FileCount, 0, len(paths))
	total := 0
	for _, p := range paths {
		f, err := ReadFile(p)
		if err != nil {
			counts = append(counts, FileCount{File: p, Err: err})
			continue
		}
		counts = append(counts, FileCount{File: p, Records: len(f.Records)})
		total += len(f.Records)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Records > counts[j].Records
	})
	return counts, total, nil
}

// UpdateMediaKeys rewrites the image and audio keys of every record in the
// source files of dir to the generated media layout and drops the legacy
// photo key. Other keys are kept. It returns the number of records updated.
func UpdateMediaKeys(dir string) (int, error) {
	paths, err := Paths(dir)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range paths {
		n, err := updateFile(p)
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}

func updateFile(p string) (int, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", p, err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))

	single := len(data) > 0 && data[0] == '{'
	var records []map[string]interface{}
	if single {
		var rec map[string]interface{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return 0, fmt.Errorf("parse %s: %w", p, err)
		}
		records = []map[string]interface{}{rec}
	} else if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse %s: %w", p, err)
	}

	stem := Stem(p)
	updated := 0
	for _, rec := range records {
		name, _ := rec["name"].(string)
		if name == "" {
			continue
		}
		rec["image"] = MediaPath(stem, name, ExtImage)
		rec["audio"] = MediaPath(stem, name, ExtAudio)
		delete(rec, "photo")
		updated++
	}

	var out interface{} = records
	if single {
		out = records[0]
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return 0, fmt.Errorf("encode %s: %w", p, err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", p, err)
	}
	return updated, nil
}
