// Package tpc normalizes detector-readout array bundles into indexed
// events of ordered channel-plane parts.
//
// Two on-disk key schemas are recognized. The frame schema stores each
// event as one concatenated samples array plus channel-ID and tickinfo
// arrays per tag; the channel axis is partitioned into planes with a
// geometry table. The tensor schema stores each plane as its own array
// with an optional JSON metadata sibling. Both normalize to the same
// model: an ordinal event index addressing an ordered slice of Parts.
package tpc

import (
	"fmt"

	"github.com/brettviren/teepeesee/internal/npz"
)

// Tickinfo describes the common time axis of a part's samples.
type Tickinfo struct {
	Start  float64 // time of the first tick, fixed time units
	Period float64 // sampling period, same units
	Count  int     // number of ticks
}

// Part is one channel-plane slice of one event. Samples has rank 2
// (channels, ticks) or rank 3 (features, channels, ticks); Channels is
// index-aligned with the channel axis. Parts are immutable snapshots and
// may be handed to many observers; they are shared-read, never
// shared-write.
type Part struct {
	Samples  *npz.Array
	Channels []int
	Tick     Tickinfo
}

// NChannels returns the extent of the channel axis.
func (p Part) NChannels() int {
	if p.Samples.Rank() < 2 {
		return 0
	}
	return p.Samples.Shape[p.Samples.Rank()-2]
}

// NTicks returns the extent of the tick axis.
func (p Part) NTicks() int {
	if p.Samples.Rank() < 1 {
		return 0
	}
	return p.Samples.Shape[p.Samples.Rank()-1]
}

// tickinfoFromArray decodes a stored (start, period, count) triple.
func tickinfoFromArray(a *npz.Array) (Tickinfo, error) {
	if a.Len() < 3 {
		return Tickinfo{}, fmt.Errorf("tickinfo has %d values, want 3", a.Len())
	}
	return Tickinfo{
		Start:  a.Data[0],
		Period: a.Data[1],
		Count:  int(a.Data[2]),
	}, nil
}
