package tpc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/brettviren/teepeesee/internal/npz"
)

// frameGroup is one (tag, event) trio of array keys.
type frameGroup struct {
	tag      string
	event    int
	frameKey string
	chanKey  string
	tickKey  string
}

// frameNormalizer reassembles frame-schema bundles. Each event's
// concatenated samples and channel arrays are partitioned into planes
// using the geometry table; the unsplit tickinfo is shared across the
// planes of one readout since time sampling is common to all of them.
type frameNormalizer struct {
	bundle  *npz.Bundle
	geom    *GeometryTable
	lenient bool

	evs    []int               // event numbers, ascending
	groups map[int][]frameGroup // per event, tags in first-seen order
}

// newFrameNormalizer scans the bundle's keys and builds the event
// inventory. A group missing any of its three arrays fails with
// *IncompleteFrameError, or is skipped with a warning in lenient mode.
// Only keys are touched here; arrays are read at materialize time.
func newFrameNormalizer(b *npz.Bundle, geom *GeometryTable, lenient bool) (*frameNormalizer, error) {
	n := &frameNormalizer{
		bundle:  b,
		geom:    geom,
		lenient: lenient,
		groups:  make(map[int][]frameGroup),
	}
	for _, key := range b.Keys() {
		tag, event, ok := parseFrameKey(key, "frame")
		if !ok {
			continue
		}
		// Sibling keys reuse the key text verbatim so zero-padded event
		// suffixes like "007" keep matching their trio.
		rest := strings.TrimPrefix(key, "frame_")
		g := frameGroup{
			tag:      tag,
			event:    event,
			frameKey: key,
			chanKey:  "channels_" + rest,
			tickKey:  "tickinfo_" + rest,
		}
		if missing := n.missingKey(g); missing != "" {
			err := &IncompleteFrameError{Tag: tag, Event: event, Missing: missing}
			if !n.lenient {
				return nil, err
			}
			log.Printf("skipping frame group: %v", err)
			continue
		}
		if _, seen := n.groups[event]; !seen {
			n.evs = append(n.evs, event)
		}
		n.groups[event] = append(n.groups[event], g)
	}
	sort.Ints(n.evs)
	return n, nil
}

func (n *frameNormalizer) missingKey(g frameGroup) string {
	for _, key := range []string{g.frameKey, g.chanKey, g.tickKey} {
		if !n.bundle.Has(key) {
			return key
		}
	}
	return ""
}

func (n *frameNormalizer) events() []int { return n.evs }

// materialize loads one event's arrays and splits them into parts, one per
// geometry plane, in geometry order; parts from multiple tags follow in
// first-seen tag order.
func (n *frameNormalizer) materialize(event int) ([]Part, error) {
	var parts []Part
	for _, g := range n.groups[event] {
		ps, err := n.groupParts(g)
		if err != nil {
			if n.lenient {
				log.Printf("skipping frame group tag=%q event=%d: %v", g.tag, g.event, err)
				continue
			}
			return nil, err
		}
		parts = append(parts, ps...)
	}
	return parts, nil
}

func (n *frameNormalizer) groupParts(g frameGroup) ([]Part, error) {
	samples, err := n.bundle.Array(g.frameKey)
	if err != nil {
		return nil, err
	}
	if samples.Rank() != 2 {
		return nil, fmt.Errorf("%s: rank %d, want 2 (channels, ticks)", g.frameKey, samples.Rank())
	}
	total := samples.Shape[0]
	if total == 0 {
		return nil, &EmptyFrameError{Tag: g.tag, Event: g.event}
	}

	chans, err := n.bundle.Array(g.chanKey)
	if err != nil {
		return nil, err
	}
	if chans.Len() != total {
		return nil, fmt.Errorf("%s: %d channel IDs for %d channels", g.chanKey, chans.Len(), total)
	}

	tickArr, err := n.bundle.Array(g.tickKey)
	if err != nil {
		return nil, err
	}
	tick, err := tickinfoFromArray(tickArr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.tickKey, err)
	}
	if tick.Count != samples.Shape[1] {
		return nil, fmt.Errorf("%s: tick count %d != %d sample ticks", g.tickKey, tick.Count, samples.Shape[1])
	}

	channelIDs := chans.Ints()
	_, splits := n.geom.SplitFor(total)
	parts := make([]Part, 0, len(splits))
	offset := 0
	for _, size := range splits {
		parts = append(parts, Part{
			Samples:  samples.Slice(offset, offset+size),
			Channels: channelIDs[offset : offset+size],
			Tick:     tick,
		})
		offset += size
	}
	return parts, nil
}
