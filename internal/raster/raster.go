package raster

import (
	"errors"
	"fmt"
	"image"
)

// ErrDimensionMismatch is returned when a pixel buffer's length disagrees
// with the requested rows*cols.
var ErrDimensionMismatch = errors.New("raster: pixel count does not match dimensions")

// Raster is a 2D grayscale image with row-major pixel storage: the sample
// at (row i, column j) lives at pix[i*cols + j], 0=black 255=white.
type Raster struct {
	rows int
	cols int
	pix  []uint8
}

// New returns a rows x cols raster with all pixels zero.
func New(rows, cols int) *Raster {
	return &Raster{rows: rows, cols: cols, pix: make([]uint8, rows*cols)}
}

// NewFromPix builds a raster around an existing row-major pixel buffer.
// The raster takes ownership of pix.
func NewFromPix(rows, cols int, pix []uint8) (*Raster, error) {
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensionMismatch, len(pix), rows, cols)
	}
	return &Raster{rows: rows, cols: cols, pix: pix}, nil
}

// Rows returns the number of rows.
func (r *Raster) Rows() int { return r.rows }

// Cols returns the number of columns.
func (r *Raster) Cols() int { return r.cols }

// Pix returns the underlying flat pixel buffer for read-only iteration.
func (r *Raster) Pix() []uint8 { return r.pix }

// At returns the pixel at (row i, column j). Indices outside
// [0,rows)x[0,cols) are a caller bug and panic.
func (r *Raster) At(i, j int) uint8 {
	r.check(i, j)
	return r.pix[i*r.cols+j]
}

// Set writes the pixel at (row i, column j), panicking on out-of-range
// indices like At.
func (r *Raster) Set(i, j int, v uint8) {
	r.check(i, j)
	r.pix[i*r.cols+j] = v
}

func (r *Raster) check(i, j int) {
	if i < 0 || i >= r.rows || j < 0 || j >= r.cols {
		panic(fmt.Sprintf("raster: index (%d,%d) out of range %dx%d", i, j, r.rows, r.cols))
	}
}

// Image wraps the raster's pixel buffer in an image.Gray sharing the same
// storage, suitable for image/png encoding.
func (r *Raster) Image() *image.Gray {
	return &image.Gray{Pix: r.pix, Stride: r.cols, Rect: image.Rect(0, 0, r.cols, r.rows)}
}
