package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOutsideRoot is returned when a relative path escapes its root directory.
var ErrOutsideRoot = errors.New("path escapes root directory")

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DirExists checks if path exists and is a directory
func DirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, os.ModePerm)
}

// WriteFileAtomic writes the output of write to path through a temporary file
// in the same directory, renaming it into place only after a clean close.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// FindFiles returns the regular files directly inside dir whose names match
// any of the comma-separated glob patterns, sorted by name.
func FindFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	patterns := strings.Split(pattern, ",")

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			matched, err := filepath.Match(p, entry.Name())
			if err != nil {
				return nil, err
			}
			if matched {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// SafeJoin joins a slash-separated relative path onto root and refuses any
// result that would land outside root.
func SafeJoin(root, rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimPrefix(rel, "/"))
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", ErrOutsideRoot
	}
	joined := filepath.Join(root, rel)

	back, err := filepath.Rel(root, joined)
	if err != nil {
		return "", ErrOutsideRoot
	}
	if back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}
