package tpc_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettviren/teepeesee/internal/npz/npztest"
	"github.com/brettviren/teepeesee/internal/tpc"
)

func TestUnknownSchemaRejected(t *testing.T) {
	b := writeBundle(t, []npztest.Entry{
		{Name: "something_else", Value: []float64{1, 2, 3}},
	})
	_, err := tpc.NewDataSource(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, tpc.ErrUnknownSchema)
}

func TestGetIdempotent(t *testing.T) {
	b := writeBundle(t, apaFrameEntries("raw", 0, 10))
	src, err := tpc.NewDataSource(b)
	require.NoError(t, err)

	first, err := src.Get(0)
	require.NoError(t, err)
	second, err := src.Get(0)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated Get differs (-first +second):\n%s", diff)
	}
}

func TestGetBoundary(t *testing.T) {
	b := writeBundle(t, apaFrameEntries("raw", 0, 10))
	src, err := tpc.NewDataSource(b)
	require.NoError(t, err)
	require.Equal(t, 1, src.Len())

	var rerr *tpc.RangeError
	_, err = src.Get(src.Len())
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Len)

	_, err = src.Get(-1)
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, -1, rerr.Index)

	_, err = src.EventNumber(99)
	assert.ErrorAs(t, err, &rerr)
}

func TestObserversInRegistrationOrder(t *testing.T) {
	b := writeBundle(t, apaFrameEntries("raw", 0, 10))
	src, err := tpc.NewDataSource(b)
	require.NoError(t, err)

	var calls []string
	src.OnDataReady(func(parts []tpc.Part) {
		calls = append(calls, "first")
		assert.Len(t, parts, 3)
	})
	src.OnDataReady(func(parts []tpc.Part) {
		calls = append(calls, "second")
	})

	_, err = src.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls, "synchronous, in registration order")

	// A failed Get notifies nobody.
	calls = nil
	_, err = src.Get(5)
	require.Error(t, err)
	assert.Empty(t, calls)

	// Cached Gets still notify.
	_, err = src.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestLabel(t *testing.T) {
	b := writeBundle(t, apaFrameEntries("raw", 3, 10))
	src, err := tpc.NewDataSource(b)
	require.NoError(t, err)

	label := src.Label(0)
	assert.True(t, strings.Contains(label, "bundle.npz"), "label %q names the file", label)
	assert.True(t, strings.Contains(label, "[3]"), "label %q names the event", label)
	assert.Equal(t, "no data", src.Label(9))
}
