// Package npztest writes small NPZ fixtures for tests.
package npztest

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/sbinet/npyio"
)

// Entry is one named bundle member. Value types:
//   - []float64, []float32, []int32, []int64: 1-d NPY arrays via npyio
//   - Shaped: NPY array with an explicit shape
//   - []byte: a plain side file written verbatim (no ".npy" suffix)
//   - NPYBytes: a byte blob encoded as an NPY unsigned-byte vector
type Entry struct {
	Name  string
	Value interface{}
}

// Shaped is an explicitly shaped float64 array. It covers the cases npyio's
// slice writer cannot express directly: rank-2/3 arrays and zero extents.
type Shaped struct {
	Shape []int
	Data  []float64
}

// NPYBytes is written as an NPY unsigned-byte vector rather than a plain
// side file, mimicking writers that stuff JSON blobs through the array
// serializer.
type NPYBytes []byte

// Write creates an NPZ file at path with the given entries in order.
func Write(t testing.TB, path string, entries []Entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if err := writeEntry(zw, e); err != nil {
			t.Fatalf("write entry %q: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func writeEntry(zw *zip.Writer, e Entry) error {
	switch v := e.Value.(type) {
	case NPYBytes:
		w, err := zw.Create(e.Name + ".npy")
		if err != nil {
			return err
		}
		return npyio.Write(w, []uint8(v))
	case []byte:
		w, err := zw.Create(e.Name)
		if err != nil {
			return err
		}
		_, err = w.Write(v)
		return err
	case Shaped:
		w, err := zw.Create(e.Name + ".npy")
		if err != nil {
			return err
		}
		return writeShaped(w, v)
	default:
		w, err := zw.Create(e.Name + ".npy")
		if err != nil {
			return err
		}
		return npyio.Write(w, e.Value)
	}
}

// writeShaped emits a minimal NPY v1.0 stream with dtype "<f8" and the
// given shape.
func writeShaped(w io.Writer, s Shaped) error {
	n := 1
	dims := make([]string, len(s.Shape))
	for i, d := range s.Shape {
		n *= d
		dims[i] = fmt.Sprintf("%d", d)
	}
	if n != len(s.Data) {
		return fmt.Errorf("shape %v wants %d elements, have %d", s.Shape, n, len(s.Data))
	}
	shape := strings.Join(dims, ", ")
	if len(s.Shape) == 1 {
		shape += ","
	}
	hdr := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shape)
	// Pad so magic+prefix+header is a multiple of 64, newline terminated.
	total := 10 + len(hdr) + 1
	pad := (64 - total%64) % 64
	hdr += strings.Repeat(" ", pad) + "\n"

	buf := make([]byte, 0, 10+len(hdr)+8*n)
	buf = append(buf, "\x93NUMPY"...)
	buf = append(buf, 1, 0)
	buf = append(buf, byte(len(hdr)), byte(len(hdr)>>8))
	buf = append(buf, hdr...)
	for _, v := range s.Data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	_, err := w.Write(buf)
	return err
}
