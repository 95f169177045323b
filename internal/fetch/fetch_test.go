package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := os.WriteFile(path, []byte("seed: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := File(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("File(%q) = %q, want unchanged", path, got)
	}
}

func TestFileURL(t *testing.T) {
	src := filepath.Join(t.TempDir(), "noise.lua")
	if err := os.WriteFile(src, []byte("function noise(x, y) return x end\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	got, err := File(context.Background(), "file://"+src, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(got) != dir || filepath.Base(got) != "noise.lua" {
		t.Errorf("File = %q, want noise.lua in %q", got, dir)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "function noise(x, y) return x end\n" {
		t.Errorf("content = %q", data)
	}
}

func TestFileMissing(t *testing.T) {
	missing := "file://" + filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := File(context.Background(), missing, t.TempDir()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"https://example.com/maps/island.yaml?ref=v1": "island.yaml",
		"git::https://example.com/repo.git//scripts/ridge.lua": "ridge.lua",
		"s3::https://s3.amazonaws.com/bucket/dir/":             "dir",
		"https://example.com/":                                 "example.com",
	}
	for src, want := range tests {
		if got := baseName(src); got != want {
			t.Errorf("baseName(%q) = %q, want %q", src, got, want)
		}
	}
}
