package npz_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettviren/teepeesee/internal/npz"
	"github.com/brettviren/teepeesee/internal/npz/npztest"
)

func TestOpenNotFound(t *testing.T) {
	_, err := npz.Open(filepath.Join(t.TempDir(), "missing.npz"))
	require.Error(t, err)
	assert.ErrorIs(t, err, npz.ErrNotFound)
}

func TestOpenBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.npz")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	_, err := npz.Open(path)
	require.Error(t, err)
	var ferr *npz.FormatError
	assert.ErrorAs(t, err, &ferr)
	assert.Equal(t, path, ferr.Path)
}

func TestKeysStripNPYSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{
		{Name: "frame_raw_0", Value: npztest.Shaped{Shape: []int{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}},
		{Name: "channels_raw_0", Value: []int32{10, 11}},
		{Name: "notes.json", Value: []byte(`{"k":1}`)},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{"frame_raw_0", "channels_raw_0", "notes.json"}, b.Keys())
	assert.True(t, b.Has("frame_raw_0"))
	assert.False(t, b.Has("frame_raw_1"))
}

func TestKeyCollisionKeepsFirstMember(t *testing.T) {
	// Members "x" and "x.npy" both strip to key "x"; the first member in
	// archive order wins and the shadowed one is logged, not surfaced.
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{
		{Name: "x", Value: []byte(`plain`)},
		{Name: "x", Value: []float64{1, 2, 3}},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{"x"}, b.Keys())
	raw, err := b.Raw("x")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(raw))
}

func TestArrayDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{
		{Name: "f64", Value: npztest.Shaped{Shape: []int{2, 2}, Data: []float64{1.5, -2, 3, 4}}},
		{Name: "i32", Value: []int32{-7, 0, 42}},
		{Name: "f32", Value: []float32{0.5, 1.5}},
		{Name: "i64", Value: []int64{1 << 40}},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	a, err := b.Array("f64")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, a.Shape)
	assert.Equal(t, 1.5, a.At2(0, 0))
	assert.Equal(t, 4.0, a.At2(1, 1))

	i, err := b.Array("i32")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, i.Shape)
	assert.Equal(t, []int{-7, 0, 42}, i.Ints())

	f, err := b.Array("f32")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, f.Data)

	l, err := b.Array("i64")
	require.NoError(t, err)
	assert.Equal(t, float64(1<<40), l.Data[0])
}

func TestArrayCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{
		{Name: "x", Value: []float64{1, 2, 3}},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	a1, err := b.Array("x")
	require.NoError(t, err)
	a2, err := b.Array("x")
	require.NoError(t, err)
	assert.Same(t, a1, a2, "second access should hit the cache")
}

func TestArrayUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{
		{Name: "x", Value: []float64{1}},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Array("nope")
	var kerr *npz.KeyError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "nope", kerr.Key)
}

func TestRawSideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	meta := []byte(`{"channels": [1, 2, 3]}`)
	npztest.Write(t, path, []npztest.Entry{
		{Name: "tensor_0_0_metadata.json", Value: meta},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	raw, err := b.Raw("tensor_0_0_metadata.json")
	require.NoError(t, err)
	assert.Equal(t, meta, raw)
}

func TestRawNPYByteString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	payload := []byte(`{"time": 0}`)
	npztest.Write(t, path, []npztest.Entry{
		{Name: "tensor_0_0_metadata.json", Value: npztest.NPYBytes(payload)},
	})

	b, err := npz.Open(path)
	require.NoError(t, err)
	defer b.Close()

	raw, err := b.Raw("tensor_0_0_metadata.json")
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
}

func TestSliceSharesStorage(t *testing.T) {
	a := &npz.Array{Shape: []int{4, 2}, Data: []float64{0, 1, 2, 3, 4, 5, 6, 7}}
	s := a.Slice(1, 3)
	assert.Equal(t, []int{2, 2}, s.Shape)
	assert.Equal(t, []float64{2, 3, 4, 5}, s.Data)
}

func TestMatrixView(t *testing.T) {
	a := &npz.Array{Shape: []int{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}
	m, err := a.Matrix()
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6.0, m.At(1, 2))

	rank1 := &npz.Array{Shape: []int{3}, Data: []float64{1, 2, 3}}
	_, err = rank1.Matrix()
	assert.Error(t, err)
}

func TestCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.npz")
	npztest.Write(t, path, []npztest.Entry{{Name: "x", Value: []float64{1}}})

	b, err := npz.Open(path)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
