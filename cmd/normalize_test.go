package cmd

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestCollectPhotos(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.txt", "a_thumb.jpg", "nested/d.webp"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	single := filepath.Join(t.TempDir(), "single.jpeg")
	if err := os.WriteFile(single, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := collectPhotos([]string{dir, single})
	if err != nil {
		t.Fatalf("collectPhotos: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "nested", "d.webp"),
		single,
	}
	slices.Sort(files)
	slices.Sort(want)
	if !slices.Equal(files, want) {
		t.Errorf("collectPhotos = %v, want %v", files, want)
	}

	if _, err := collectPhotos([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected an error for a missing path")
	}
}

func TestThumbnailPath(t *testing.T) {
	tests := map[string]string{
		"uploads/r1/p1.png": "uploads/r1/p1_thumb.jpg",
		"photo.jpeg":        "photo_thumb.jpg",
	}
	for in, want := range tests {
		if got := thumbnailPath(in); got != want {
			t.Errorf("thumbnailPath(%q) = %q, want %q", in, got, want)
		}
	}
}
