package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	xtiff "golang.org/x/image/tiff"
)

// writeFixture writes a single-page 8-bit grayscale TIFF.
func writeFixture(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()
	if err := xtiff.Encode(f, img, nil); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
}

func TestIsTIFFName(t *testing.T) {
	for _, name := range []string{"a.tif", "b.tiff", "c.TIF", "d.TIFF", "dir/e.tif"} {
		if !isTIFFName(name) {
			t.Errorf("isTIFFName(%q) = false", name)
		}
	}
	for _, name := range []string{"a.png", "b.tif.png", "tif", "notes.txt"} {
		if isTIFFName(name) {
			t.Errorf("isTIFFName(%q) = true", name)
		}
	}
}

func TestFindTIFFFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, filepath.Join(dir, "one.tif"), 2, 2)
	writeFixture(t, filepath.Join(sub, "two.tiff"), 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := findTIFFFiles(dir, true)
	if err != nil {
		t.Fatalf("findTIFFFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(files), files)
	}

	flat, err := findTIFFFiles(dir, false)
	if err != nil {
		t.Fatalf("findTIFFFiles failed: %v", err)
	}
	if len(flat) != 1 {
		t.Errorf("non-recursive found %d files, want 1: %v", len(flat), flat)
	}
}

func TestProcessTIFFFile(t *testing.T) {
	dir := t.TempDir()
	tiffPath := filepath.Join(dir, "scan.tif")
	writeFixture(t, tiffPath, 6, 4)
	outDir := filepath.Join(dir, "out")

	if err := processTIFFFile(tiffPath, outDir, 0); err != nil {
		t.Fatalf("processTIFFFile failed: %v", err)
	}

	pagePath := filepath.Join(outDir, "scan", "page_000.png")
	f, err := os.Open(pagePath)
	if err != nil {
		t.Fatalf("expected output %s: %v", pagePath, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("output is %dx%d, want 6x4", b.Dx(), b.Dy())
	}
}

func TestProcessTIFFFileScaled(t *testing.T) {
	dir := t.TempDir()
	tiffPath := filepath.Join(dir, "scan.tif")
	writeFixture(t, tiffPath, 8, 4)
	outDir := filepath.Join(dir, "out")

	if err := processTIFFFile(tiffPath, outDir, 0.5); err != nil {
		t.Fatalf("processTIFFFile failed: %v", err)
	}

	f, err := os.Open(filepath.Join(outDir, "scan", "page_000.png"))
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("output is %dx%d, want 4x2", b.Dx(), b.Dy())
	}
}

func TestLoadPagesRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tif")
	if err := os.WriteFile(path, []byte("definitely not a tiff"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadPages(path); err == nil {
		t.Fatal("loadPages accepted garbage input")
	}
}
