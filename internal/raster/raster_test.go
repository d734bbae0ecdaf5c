package raster

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewZeroFilled(t *testing.T) {
	r := New(3, 4)
	if r.Rows() != 3 || r.Cols() != 4 {
		t.Fatalf("got %dx%d, want 3x4", r.Rows(), r.Cols())
	}
	if len(r.Pix()) != 12 {
		t.Fatalf("got %d pixels, want 12", len(r.Pix()))
	}
	for i, v := range r.Pix() {
		if v != 0 {
			t.Errorf("pixel %d = %d, want 0", i, v)
		}
	}
}

func TestNewFromPixRoundTrip(t *testing.T) {
	pix := []uint8{10, 20, 30, 40, 50, 60}
	r, err := NewFromPix(2, 3, pix)
	if err != nil {
		t.Fatalf("NewFromPix failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got, want := r.At(i, j), pix[i*3+j]; got != want {
				t.Errorf("At(%d,%d) = %d, want %d", i, j, got, want)
			}
		}
	}
}

func TestNewFromPixDimensionMismatch(t *testing.T) {
	_, err := NewFromPix(2, 3, make([]uint8, 5))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestSetAt(t *testing.T) {
	r := New(2, 2)
	r.Set(1, 0, 99)
	if got := r.At(1, 0); got != 99 {
		t.Errorf("At(1,0) = %d, want 99", got)
	}
	if got := r.Pix()[2]; got != 99 {
		t.Errorf("Pix()[2] = %d, want 99", got)
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	r := New(2, 3)
	cases := [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 3}}
	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%d,%d) did not panic", c[0], c[1])
				}
			}()
			r.At(c[0], c[1])
		}()
	}
}

func TestImageSharesPixels(t *testing.T) {
	r, err := NewFromPix(2, 2, []uint8{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewFromPix failed: %v", err)
	}
	img := r.Image()
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds %v, want 2x2", b)
	}
	r.Set(0, 1, 42)
	if img.Pix[1] != 42 {
		t.Errorf("image pixel not shared with raster")
	}
	if diff := cmp.Diff([]uint8{1, 42, 3, 4}, img.Pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}
