package npz

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Array is an n-dimensional numeric array in C (row-major) order. All
// supported element types are widened to float64 on read. Arrays are
// immutable snapshots once constructed.
type Array struct {
	Shape []int     // extent per axis; empty for a 0-d scalar
	Data  []float64 // flat row-major storage
}

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.Shape) }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.Data) }

// At2 returns the element at (row, col) of a rank-2 array.
func (a *Array) At2(row, col int) float64 {
	return a.Data[row*a.Shape[1]+col]
}

// Row returns the row of a rank-2 array as a shared slice.
func (a *Array) Row(row int) []float64 {
	n := a.Shape[1]
	return a.Data[row*n : (row+1)*n]
}

// Slice returns the sub-array spanning [lo, hi) along the leading axis.
// The backing storage is shared with the parent.
func (a *Array) Slice(lo, hi int) *Array {
	stride := 1
	for _, d := range a.Shape[1:] {
		stride *= d
	}
	shape := append([]int{hi - lo}, a.Shape[1:]...)
	return &Array{Shape: shape, Data: a.Data[lo*stride : hi*stride]}
}

// Matrix returns a gonum dense-matrix view of a rank-2 array. The matrix
// shares the array's backing storage.
func (a *Array) Matrix() (*mat.Dense, error) {
	if a.Rank() != 2 {
		return nil, fmt.Errorf("array rank %d, want 2", a.Rank())
	}
	if a.Shape[0] == 0 || a.Shape[1] == 0 {
		return nil, fmt.Errorf("empty array has no matrix view")
	}
	return mat.NewDense(a.Shape[0], a.Shape[1], a.Data), nil
}

// Ints returns the elements rounded to the nearest integer. Intended for
// vectors that carry identifiers such as channel numbers.
func (a *Array) Ints() []int {
	out := make([]int, len(a.Data))
	for i, v := range a.Data {
		out[i] = int(math.Round(v))
	}
	return out
}

// readNPY decodes one NPY stream into an Array. Little-endian integer,
// unsigned, float and bool dtypes are accepted; Fortran-ordered arrays are
// rejected since the writers in scope always emit C order.
func readNPY(r io.Reader) (*Array, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}
	h := nr.Header
	if h.Descr.Fortran {
		return nil, fmt.Errorf("fortran-ordered array not supported")
	}
	shape := append([]int(nil), h.Descr.Shape...)
	n := 1
	for _, d := range shape {
		n *= d
	}

	size, decode, err := decoderFor(h.Descr.Type)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, n*size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("array payload: %w", err)
	}
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = decode(raw[i*size:])
	}
	return &Array{Shape: shape, Data: data}, nil
}

// decoderFor maps a NumPy dtype string to an element size and a widening
// decoder.
func decoderFor(dtype string) (int, func([]byte) float64, error) {
	le := binary.LittleEndian
	switch dtype {
	case "<f8":
		return 8, func(b []byte) float64 { return math.Float64frombits(le.Uint64(b)) }, nil
	case "<f4":
		return 4, func(b []byte) float64 { return float64(math.Float32frombits(le.Uint32(b))) }, nil
	case "<i8":
		return 8, func(b []byte) float64 { return float64(int64(le.Uint64(b))) }, nil
	case "<i4":
		return 4, func(b []byte) float64 { return float64(int32(le.Uint32(b))) }, nil
	case "<i2":
		return 2, func(b []byte) float64 { return float64(int16(le.Uint16(b))) }, nil
	case "|i1", "<i1":
		return 1, func(b []byte) float64 { return float64(int8(b[0])) }, nil
	case "<u8":
		return 8, func(b []byte) float64 { return float64(le.Uint64(b)) }, nil
	case "<u4":
		return 4, func(b []byte) float64 { return float64(le.Uint32(b)) }, nil
	case "<u2":
		return 2, func(b []byte) float64 { return float64(le.Uint16(b)) }, nil
	case "|u1", "<u1":
		return 1, func(b []byte) float64 { return float64(b[0]) }, nil
	case "|b1":
		return 1, func(b []byte) float64 {
			if b[0] != 0 {
				return 1
			}
			return 0
		}, nil
	default:
		return 0, nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
}
