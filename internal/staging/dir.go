// Package staging owns the directories that hand records from one stage to
// the next and the names of the files inside them.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// RawName is the staged name for the raw document taken from source row n.
func RawName(n int) string { return fmt.Sprintf("file%d.txt", n) }

// NormalizedName is the staged name for the n-th normalized record.
func NormalizedName(n int) string { return fmt.Sprintf("%d.json", n) }

// NormalizedIndex parses n back out of a NormalizedName.
func NormalizedIndex(name string) (int, bool) {
	s, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// RawIndex parses n back out of a RawName.
func RawIndex(name string) (int, bool) {
	s, ok := strings.CutPrefix(name, "file")
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, ".txt")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// List returns the staged files in dir in directory listing order. Hidden
// files (the run lock, temp files) are not staged records.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// SortNormalized orders normalized file names by their index. Names that do
// not parse go last, by name.
func SortNormalized(names []string) { sortByIndex(names, NormalizedIndex) }

// SortRaw orders raw file names by source row.
func SortRaw(names []string) { sortByIndex(names, RawIndex) }

func sortByIndex(names []string, index func(string) (int, bool)) {
	sort.SliceStable(names, func(i, j int) bool {
		a, aok := index(names[i])
		b, bok := index(names[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return names[i] < names[j]
		}
	})
}

// Reset makes sure dir exists and holds no staged files from an earlier run.
func Reset(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	names, err := List(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("reset %s: %w", dir, err)
		}
	}
	return nil
}

// WriteFile writes through a hidden temp file and renames it into place, so a
// crash never leaves a half-written staged record behind.
func WriteFile(path string, b []byte) error {
	dir, name := filepath.Split(path)
	tmp := filepath.Join(dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
