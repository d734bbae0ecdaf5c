package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/merridan/tiffgo/internal/raster"
)

// Baseline grayscale TIFF reader: classic (non-Big) TIFF, both byte
// orders, strip-based uncompressed data, one sample per pixel, 8/16/32/64
// bits in unsigned, signed or float sample format. Multi-page via the
// next-IFD chain.

var (
	// ErrNoMorePages reports that the IFD chain has ended. It is loop
	// termination, not a decode failure.
	ErrNoMorePages = errors.New("tiff: no more pages")
	// ErrUnsupported marks containers outside the baseline grayscale
	// subset (compression, tiling, color, palette).
	ErrUnsupported = errors.New("tiff: unsupported feature")
)

// Tag IDs (TIFF 6.0 baseline).
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSampleFormat    = 339
)

// IFD entry data types we interpret; everything else is skipped.
const (
	dtByte  = 1
	dtShort = 3
	dtLong  = 4
)

// SampleFormat values.
const (
	fmtUnsigned = 1
	fmtSigned   = 2
	fmtFloat    = 3
)

const compNone = 1

const headerMagic = 42

// Plausibility bounds on directory-supplied sizes, in the spirit of the
// value-count cap in entryValues.
const (
	maxDimension = 1 << 24 // pixels per side
	maxPageBytes = 2 << 30 // raw sample bytes for one page
)

// page holds the tags of the current IFD that decoding needs.
type page struct {
	width       int
	height      int
	bits        int
	format      int
	compression int
	samples     int
	photometric int
	stripOffs   []int64
	stripCounts []int64
}

// Reader decodes one page at a time from a seekable TIFF stream.
type Reader struct {
	r       io.ReadSeeker
	bo      binary.ByteOrder
	cur     page
	nextIFD int64
}

// NewReader parses the header and the first page's directory.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("tiff: header: %w", err)
	}
	var bo binary.ByteOrder
	switch string(hdr[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, fmt.Errorf("tiff: bad byte order mark %q", hdr[0:2])
	}
	if m := bo.Uint16(hdr[2:4]); m != headerMagic {
		return nil, fmt.Errorf("tiff: bad magic %d", m)
	}
	d := &Reader{r: r, bo: bo, nextIFD: int64(bo.Uint32(hdr[4:8]))}
	if d.nextIFD == 0 {
		return nil, fmt.Errorf("tiff: container has no pages")
	}
	if err := d.readIFD(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dimensions returns the current page's width and height.
func (d *Reader) Dimensions() (width, height int) {
	return d.cur.width, d.cur.height
}

// NextPage advances to the next directory in the chain, returning
// ErrNoMorePages when the chain ends.
func (d *Reader) NextPage() error {
	if d.nextIFD == 0 {
		return ErrNoMorePages
	}
	return d.readIFD()
}

// readIFD parses the directory at nextIFD into cur and records the
// following directory's offset.
func (d *Reader) readIFD() error {
	if _, err := d.r.Seek(d.nextIFD, io.SeekStart); err != nil {
		return err
	}
	var count uint16
	if err := binary.Read(d.r, d.bo, &count); err != nil {
		return fmt.Errorf("tiff: directory: %w", err)
	}
	raw := make([]byte, int(count)*12+4)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return fmt.Errorf("tiff: directory: %w", err)
	}
	// TIFF 6.0 tag defaults.
	d.cur = page{bits: 1, format: fmtUnsigned, compression: compNone, samples: 1}
	for i := 0; i < int(count); i++ {
		ent := raw[i*12 : i*12+12]
		tag := d.bo.Uint16(ent[0:2])
		typ := d.bo.Uint16(ent[2:4])
		n := d.bo.Uint32(ent[4:8])
		switch tag {
		case tagImageWidth, tagImageLength, tagBitsPerSample, tagCompression,
			tagPhotometric, tagStripOffsets, tagSamplesPerPixel,
			tagStripByteCounts, tagSampleFormat:
		default:
			continue
		}
		vals, err := d.entryValues(typ, n, ent[8:12])
		if err != nil {
			return fmt.Errorf("tiff: tag %d: %w", tag, err)
		}
		if len(vals) == 0 {
			continue
		}
		switch tag {
		case tagImageWidth:
			d.cur.width = int(vals[0])
		case tagImageLength:
			d.cur.height = int(vals[0])
		case tagBitsPerSample:
			d.cur.bits = int(vals[0])
		case tagCompression:
			d.cur.compression = int(vals[0])
		case tagPhotometric:
			d.cur.photometric = int(vals[0])
		case tagStripOffsets:
			d.cur.stripOffs = vals
		case tagSamplesPerPixel:
			d.cur.samples = int(vals[0])
		case tagStripByteCounts:
			d.cur.stripCounts = vals
		case tagSampleFormat:
			d.cur.format = int(vals[0])
		}
	}
	d.nextIFD = int64(d.bo.Uint32(raw[int(count)*12:]))
	return nil
}

// entryValues decodes an entry's integer values, following the offset
// indirection when they do not fit in the four inline bytes. Non-integer
// entry types yield no values.
func (d *Reader) entryValues(typ uint16, count uint32, inline []byte) ([]int64, error) {
	var size int
	switch typ {
	case dtByte:
		size = 1
	case dtShort:
		size = 2
	case dtLong:
		size = 4
	default:
		return nil, nil
	}
	if count > 1<<24 {
		return nil, fmt.Errorf("implausible value count %d", count)
	}
	total := int(count) * size
	buf := inline[:min(total, 4)]
	if total > 4 {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		buf = make([]byte, total)
		if _, err := d.r.Seek(int64(d.bo.Uint32(inline)), io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		if _, err := d.r.Seek(pos, io.SeekStart); err != nil {
			return nil, err
		}
	}
	vals := make([]int64, count)
	for i := range vals {
		switch typ {
		case dtByte:
			vals[i] = int64(buf[i])
		case dtShort:
			vals[i] = int64(d.bo.Uint16(buf[i*2:]))
		case dtLong:
			vals[i] = int64(d.bo.Uint32(buf[i*4:]))
		}
	}
	return vals, nil
}

// ReadPage decodes the current page's strips into a typed sample buffer.
func (d *Reader) ReadPage() (*SampleBuffer, error) {
	p := d.cur
	if p.compression != compNone {
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, p.compression)
	}
	if p.samples != 1 {
		return nil, fmt.Errorf("%w: %d samples per pixel", ErrUnsupported, p.samples)
	}
	if p.photometric > 1 {
		return nil, fmt.Errorf("%w: photometric interpretation %d", ErrUnsupported, p.photometric)
	}
	switch p.bits {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupported, p.bits)
	}
	switch p.format {
	case fmtUnsigned, fmtSigned:
	case fmtFloat:
		if p.bits < 32 {
			return nil, fmt.Errorf("%w: %d-bit float samples", ErrUnsupported, p.bits)
		}
	default:
		return nil, fmt.Errorf("%w: sample format %d", ErrUnsupported, p.format)
	}
	if p.width < 0 || p.height < 0 {
		return nil, fmt.Errorf("tiff: negative dimensions %dx%d", p.width, p.height)
	}
	// Dimensions come straight from 32-bit directory values; bound them
	// before sizing any allocation so the product cannot overflow.
	if p.width > maxDimension || p.height > maxDimension {
		return nil, fmt.Errorf("tiff: implausible dimensions %dx%d", p.width, p.height)
	}
	need64 := int64(p.width) * int64(p.height) * int64(p.bits/8)
	if need64 > maxPageBytes {
		return nil, fmt.Errorf("tiff: page needs %d bytes of sample data, limit is %d",
			need64, maxPageBytes)
	}
	if len(p.stripOffs) != len(p.stripCounts) {
		return nil, fmt.Errorf("tiff: %d strip offsets but %d byte counts",
			len(p.stripOffs), len(p.stripCounts))
	}

	need := int(need64)
	raw := make([]byte, 0, need)
	for i, off := range p.stripOffs {
		if len(raw) >= need {
			break
		}
		n := p.stripCounts[i]
		if n < 0 || n > int64(need-len(raw)) {
			n = int64(need - len(raw))
		}
		if _, err := d.r.Seek(off, io.SeekStart); err != nil {
			return nil, err
		}
		start := len(raw)
		raw = raw[:start+int(n)]
		if _, err := io.ReadFull(d.r, raw[start:]); err != nil {
			return nil, fmt.Errorf("tiff: strip %d: %w", i, err)
		}
	}
	if len(raw) != need {
		return nil, fmt.Errorf("tiff: strips hold %d bytes, page needs %d", len(raw), need)
	}
	return d.samplesOf(raw)
}

// samplesOf reinterprets raw strip bytes as the page's sample type.
func (d *Reader) samplesOf(raw []byte) (*SampleBuffer, error) {
	p := d.cur
	buf := &SampleBuffer{Width: p.width, Height: p.height}
	n := p.width * p.height
	switch {
	case p.format == fmtUnsigned && p.bits == 8:
		buf.Kind, buf.U8s = U8, raw
	case p.format == fmtUnsigned && p.bits == 16:
		s := make([]uint16, n)
		for i := range s {
			s[i] = d.bo.Uint16(raw[i*2:])
		}
		buf.Kind, buf.U16s = U16, s
	case p.format == fmtUnsigned && p.bits == 32:
		s := make([]uint32, n)
		for i := range s {
			s[i] = d.bo.Uint32(raw[i*4:])
		}
		buf.Kind, buf.U32s = U32, s
	case p.format == fmtUnsigned && p.bits == 64:
		s := make([]uint64, n)
		for i := range s {
			s[i] = d.bo.Uint64(raw[i*8:])
		}
		buf.Kind, buf.U64s = U64, s
	case p.format == fmtSigned && p.bits == 8:
		s := make([]int8, n)
		for i := range s {
			s[i] = int8(raw[i])
		}
		buf.Kind, buf.I8s = I8, s
	case p.format == fmtSigned && p.bits == 16:
		s := make([]int16, n)
		for i := range s {
			s[i] = int16(d.bo.Uint16(raw[i*2:]))
		}
		buf.Kind, buf.I16s = I16, s
	case p.format == fmtSigned && p.bits == 32:
		s := make([]int32, n)
		for i := range s {
			s[i] = int32(d.bo.Uint32(raw[i*4:]))
		}
		buf.Kind, buf.I32s = I32, s
	case p.format == fmtSigned && p.bits == 64:
		s := make([]int64, n)
		for i := range s {
			s[i] = int64(d.bo.Uint64(raw[i*8:]))
		}
		buf.Kind, buf.I64s = I64, s
	case p.format == fmtFloat && p.bits == 32:
		s := make([]float32, n)
		for i := range s {
			s[i] = math.Float32frombits(d.bo.Uint32(raw[i*4:]))
		}
		buf.Kind, buf.F32s = F32, s
	case p.format == fmtFloat && p.bits == 64:
		s := make([]float64, n)
		for i := range s {
			s[i] = math.Float64frombits(d.bo.Uint64(raw[i*8:]))
		}
		buf.Kind, buf.F64s = F64, s
	default:
		return nil, fmt.Errorf("%w: sample format %d at %d bits", ErrUnsupported, p.format, p.bits)
	}
	return buf, nil
}

// ReadAll decodes every page of a TIFF stream into normalized grayscale
// rasters, in container order. A genuine decode failure aborts the load;
// the end of the page chain does not.
func ReadAll(r io.ReadSeeker) ([]*raster.Raster, error) {
	d, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	var pages []*raster.Raster
	for {
		width, height := d.Dimensions()
		buf, err := d.ReadPage()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(pages), err)
		}
		img, err := raster.NewFromPix(height, width, buf.Gray())
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(pages), err)
		}
		pages = append(pages, img)
		if err := d.NextPage(); err != nil {
			if errors.Is(err, ErrNoMorePages) {
				break
			}
			return nil, err
		}
	}
	return pages, nil
}
