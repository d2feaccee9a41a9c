// Package display renders normalized events for human consumption. It
// consumes only the tpc.Source surface and never reaches into bundle or
// normalizer internals.
package display

import (
	"sort"

	"github.com/brettviren/teepeesee/internal/npz"
)

// Transform maps a samples array to a derived one. Transforms never
// modify their input; parts are shared-read.
type Transform func(*npz.Array) *npz.Array

// Rebaseline subtracts the per-channel median from each channel's
// samples, flattening electronics baselines so signal stands out.
func Rebaseline(a *npz.Array) *npz.Array {
	out := &npz.Array{Shape: append([]int(nil), a.Shape...), Data: make([]float64, len(a.Data))}
	forEachRow(a, func(row []float64, off int) {
		med := median(row)
		for i, v := range row {
			out.Data[off+i] = v - med
		}
	})
	return out
}

// UnitNorm rescales samples into [0, 1]. A constant array maps to all
// zeros.
func UnitNorm(a *npz.Array) *npz.Array {
	out := &npz.Array{Shape: append([]int(nil), a.Shape...), Data: make([]float64, len(a.Data))}
	if len(a.Data) == 0 {
		return out
	}
	lo, hi := a.Data[0], a.Data[0]
	for _, v := range a.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi > lo {
		span := hi - lo
		for i, v := range a.Data {
			out.Data[i] = (v - lo) / span
		}
	}
	return out
}

// forEachRow visits each run along the final (tick) axis.
func forEachRow(a *npz.Array, fn func(row []float64, offset int)) {
	if a.Rank() == 0 || len(a.Data) == 0 {
		return
	}
	w := a.Shape[a.Rank()-1]
	if w == 0 {
		return
	}
	for off := 0; off < len(a.Data); off += w {
		fn(a.Data[off:off+w], off)
	}
}

func median(row []float64) float64 {
	tmp := append([]float64(nil), row...)
	sort.Float64s(tmp)
	n := len(tmp)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return tmp[n/2]
	}
	return (tmp[n/2-1] + tmp[n/2]) / 2
}
