package viewer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/merridan/tiffgo/internal/raster"
)

// Terminal page viewer. Each page is scaled to fit the terminal and
// rendered with Unicode half blocks, packing two pixel rows into every
// text row via 24-bit foreground/background grays.

// rescaleEpsilon is how far the fit factor must move before the cached
// scaled page is recomputed.
const rescaleEpsilon = 0.01

type viewer struct {
	pages      []*raster.Raster
	index      int
	scaled     *raster.Raster
	lastFactor float64
}

// Run displays the pages interactively on the controlling terminal.
// Right arrow / n steps forward, left arrow / p steps back (both wrap
// around), q / Esc / Ctrl-C quits.
func Run(pages []*raster.Raster) error {
	if len(pages) == 0 {
		return fmt.Errorf("viewer: no pages to display")
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("viewer: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("viewer: raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)
	defer fmt.Print("\x1b[0m\x1b[2J\x1b[H")

	v := &viewer{pages: pages}
	key := make([]byte, 3)
	for {
		cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return fmt.Errorf("viewer: terminal size: %w", err)
		}
		v.show(os.Stdout, cols, rows)

		n, err := os.Stdin.Read(key)
		if err != nil {
			return err
		}
		switch {
		case n == 1 && (key[0] == 'q' || key[0] == 0x03 || key[0] == 0x1b):
			return nil
		case n == 1 && (key[0] == 'n' || key[0] == ' '):
			v.navigate(1)
		case n == 1 && key[0] == 'p':
			v.navigate(-1)
		case n == 3 && key[0] == 0x1b && key[1] == '[' && key[2] == 'C':
			v.navigate(1)
		case n == 3 && key[0] == 0x1b && key[1] == '[' && key[2] == 'D':
			v.navigate(-1)
		}
	}
}

// navigate steps delta pages, wrapping around at both ends, and drops
// the scaled-page cache when the page actually changed.
func (v *viewer) navigate(delta int) {
	n := len(v.pages)
	next := ((v.index+delta)%n + n) % n
	if next != v.index {
		v.index = next
		v.scaled = nil
		v.lastFactor = 0
	}
}

// show renders the current page into a cols x rows terminal, rescaling
// only when the fit factor moved by more than rescaleEpsilon.
func (v *viewer) show(w io.Writer, cols, rows int) {
	page := v.pages[v.index]
	// One header line; every remaining text row carries two pixel rows.
	// A degenerate terminal still scales against one pixel row so the
	// page never renders past the viewport.
	maxRows := (rows - 1) * 2
	if maxRows < 1 {
		maxRows = 1
	}
	factor := raster.FitFactor(page.Rows(), page.Cols(), maxRows, cols)
	if v.scaled == nil || abs(factor-v.lastFactor) > rescaleEpsilon {
		v.scaled = page.Scale(factor)
		v.lastFactor = factor
	}

	var b strings.Builder
	b.WriteString("\x1b[H\x1b[2J")
	fmt.Fprintf(&b, "Page %d of %d  %dx%d  (n/p navigate, q quits)\r\n",
		v.index+1, len(v.pages), page.Cols(), page.Rows())
	renderHalfBlocks(&b, v.scaled)
	io.WriteString(w, b.String())
}

// renderHalfBlocks writes the raster as lines of "▀" cells, upper pixel
// in the foreground color and lower pixel in the background color.
func renderHalfBlocks(b *strings.Builder, r *raster.Raster) {
	for i := 0; i < r.Rows(); i += 2 {
		for j := 0; j < r.Cols(); j++ {
			top := r.At(i, j)
			var bottom uint8
			if i+1 < r.Rows() {
				bottom = r.At(i+1, j)
			}
			fmt.Fprintf(b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top, top, top, bottom, bottom, bottom)
		}
		b.WriteString("\x1b[0m\r\n")
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
