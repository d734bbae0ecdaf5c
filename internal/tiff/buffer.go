package tiff

// Kind identifies the numeric encoding of a page's raw samples. The set
// is closed: the reader produces nothing else.
type Kind int

const (
	U8 Kind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

func (k Kind) String() string {
	switch k {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	return "unknown"
}

// SampleBuffer holds one decoded page: its dimensions plus the raw
// samples in exactly one of the typed slices, selected by Kind.
type SampleBuffer struct {
	Kind   Kind
	Width  int
	Height int

	U8s  []uint8
	U16s []uint16
	U32s []uint32
	U64s []uint64
	I8s  []int8
	I16s []int16
	I32s []int32
	I64s []int64
	F32s []float32
	F64s []float64
}

// Len returns the number of samples in the active slice.
func (b *SampleBuffer) Len() int {
	switch b.Kind {
	case U8:
		return len(b.U8s)
	case U16:
		return len(b.U16s)
	case U32:
		return len(b.U32s)
	case U64:
		return len(b.U64s)
	case I8:
		return len(b.I8s)
	case I16:
		return len(b.I16s)
	case I32:
		return len(b.I32s)
	case I64:
		return len(b.I64s)
	case F32:
		return len(b.F32s)
	case F64:
		return len(b.F64s)
	}
	return 0
}
