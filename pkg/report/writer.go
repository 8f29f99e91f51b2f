/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Persists reports as timestamped JSON files under a report directory.
Ensures the directory exists and names files after the run and source so batches
stay easy to browse.
*/

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteResult writes one report to dir and returns the file path
func WriteResult(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// 2024-06-11_01-30-00_<run>_<source>.json
	timestamp := r.Timestamp.Format("2006-01-02_15-04-05")
	runID := r.RunID
	if len(runID) > 8 {
		runID = runID[:8]
	}
	filename := fmt.Sprintf("%s_%s_%s.json", timestamp, runID, slug(r.Source))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// slug turns a path or URL into a safe file name fragment
func slug(source string) string {
	base := filepath.Base(source)
	if base == "-" {
		return "stdin"
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if s == "" || s == "." {
		return "source"
	}
	return s
}
