package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/merridan/tiffgo/internal/config"
	"github.com/merridan/tiffgo/internal/logging"
	"github.com/merridan/tiffgo/internal/raster"
	"github.com/merridan/tiffgo/internal/tiff"
	"github.com/merridan/tiffgo/internal/viewer"
)

// findTIFFFiles finds all .tif/.tiff files under a directory.
func findTIFFFiles(dir string, recursive bool) ([]string, error) {
	var tiffFiles []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isTIFFName(path) {
				tiffFiles = append(tiffFiles, path)
			}
			return nil
		})
		return tiffFiles, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && isTIFFName(entry.Name()) {
			tiffFiles = append(tiffFiles, filepath.Join(dir, entry.Name()))
		}
	}
	return tiffFiles, nil
}

func isTIFFName(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tif") || strings.HasSuffix(lower, ".tiff")
}

func main() {
	in := flag.String("in", "", "input TIFF file or directory (uses tiff_path from config.json if blank)")
	outDir := flag.String("out-dir", "", "output directory for all generated PNG files")
	logLevel := flag.String("log-level", "info", "logging level: debug, info, warn, error")
	numWorkers := flag.Int("workers", 8, "number of parallel workers for converting files")
	scale := flag.Float64("scale", 0, "rescale factor applied to exported pages (0 keeps original size)")
	preview := flag.Bool("preview", false, "view pages in the terminal instead of writing PNGs")
	flag.Parse()

	logging.SetLevel(*logLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	resolvedInput := *in
	if resolvedInput == "" {
		if cfg.TiffPath == "" {
			log.Fatal("tiff_path not configured in config.json and no input provided")
		}
		resolvedInput = cfg.TiffPath
	}

	info, err := os.Stat(resolvedInput)
	if err != nil {
		log.Fatal(err)
	}

	factor := *scale
	if factor == 0 {
		factor = cfg.DefaultScale
	}
	if factor < 0 {
		log.Fatalf("scale factor %v is negative", factor)
	}

	var tiffFiles []string
	if info.IsDir() {
		tiffFiles, err = findTIFFFiles(resolvedInput, true)
		if err != nil {
			log.Fatalf("failed to find TIFF files in directory: %v", err)
		}
		if len(tiffFiles) == 0 {
			log.Fatalf("no TIFF files found in directory: %s", resolvedInput)
		}
	} else {
		tiffFiles = []string{resolvedInput}
	}
	logging.Info("Found %d TIFF file(s)", len(tiffFiles))

	if *preview {
		if err := previewFile(tiffFiles[0]); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Parallel worker pool over independent files.
	jobs := make(chan string, *numWorkers)
	results := make(chan error, len(tiffFiles))

	worker := func(id int) {
		for tiffFile := range jobs {
			logging.Info("Worker %d processing: %s", id, filepath.Base(tiffFile))
			err := processTIFFFile(tiffFile, *outDir, factor)
			if err != nil {
				logging.Error("failed to process %s: %v", tiffFile, err)
			}
			results <- err
		}
	}

	for w := 0; w < *numWorkers; w++ {
		go worker(w)
	}

	for _, tiffFile := range tiffFiles {
		jobs <- tiffFile
	}
	close(jobs)

	for i := 0; i < len(tiffFiles); i++ {
		<-results
	}
}

// processTIFFFile converts every page of one TIFF file to PNG.
func processTIFFFile(inputPath string, outDir string, factor float64) error {
	pages, err := loadPages(inputPath)
	if err != nil {
		return err
	}

	// Create a subdirectory for this file's pages.
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	fileDir := baseName
	if outDir != "" {
		fileDir = filepath.Join(outDir, baseName)
	}

	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", fileDir, err)
	}

	for pageNum, page := range pages {
		if factor > 0 && factor != 1 {
			page = page.Scale(factor)
		}
		pageOutputPath := filepath.Join(fileDir, fmt.Sprintf("page_%03d.png", pageNum))
		if err := savePage(page, pageOutputPath); err != nil {
			logging.Error("failed to save page %d in %s: %v", pageNum, inputPath, err)
			continue
		}
		logging.Info("wrote %s", pageOutputPath)
	}
	return nil
}

// loadPages reads all pages of a TIFF file as grayscale rasters.
func loadPages(inputPath string) ([]*raster.Raster, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", inputPath, err)
	}
	defer f.Close()

	pages, err := tiff.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}
	return pages, nil
}

// previewFile shows one file's pages in the terminal.
func previewFile(inputPath string) error {
	pages, err := loadPages(inputPath)
	if err != nil {
		return err
	}
	return viewer.Run(pages)
}

// savePage saves a raster to a PNG file.
func savePage(page *raster.Raster, filename string) error {
	outF, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outF.Close()

	return png.Encode(outF, page.Image())
}
