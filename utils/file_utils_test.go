package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("got %q, %v", data, err)
	}
}

func TestWriteFileAtomicKeepsOldContentOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Fatalf("original file modified: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"titles_b.csv", "titles_a.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "titles_dir.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := FindFiles(dir, "titles_*.csv")
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "titles_a.csv"), filepath.Join(dir, "titles_b.csv")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("got %v, want %v", files, want)
	}
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		rel     string
		wantErr bool
	}{
		{"course/section/a.m3u8", false},
		{"/course/a.m3u8", false},
		{"course/../other/a.m3u8", false},
		{"../secret", true},
		{"course/../../secret", true},
		{"..", true},
	}
	for _, tc := range cases {
		got, err := SafeJoin(root, tc.rel)
		if tc.wantErr {
			if !errors.Is(err, ErrOutsideRoot) {
				t.Errorf("SafeJoin(%q) = %q, %v; want ErrOutsideRoot", tc.rel, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("SafeJoin(%q) unexpected error: %v", tc.rel, err)
		}
	}
}
