package tpc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/brettviren/teepeesee/internal/npz"
)

// tensorNormalizer maps tensor-schema bundles, where each plane is stored
// as its own already-separated array. No geometry table is needed.
type tensorNormalizer struct {
	bundle *npz.Bundle

	evs    []int                 // event numbers, ascending
	planes map[int][]tensorPlane // per event, plane ordinals ascending
}

// tensorPlane records one plane's array key as matched, so lookups keep
// any zero padding the writer used in the ordinals.
type tensorPlane struct {
	plane    int
	arrayKey string
}

// tensorMeta is the optional metadata sibling of a tensor array. The
// explicit channels/tickinfo fields are honored when present; time/period
// is the older writer convention for the same tick information.
type tensorMeta struct {
	Channels []int     `json:"channels"`
	Tickinfo []float64 `json:"tickinfo"`
	Time     *float64  `json:"time"`
	Period   *float64  `json:"period"`
}

func newTensorNormalizer(b *npz.Bundle) *tensorNormalizer {
	n := &tensorNormalizer{
		bundle: b,
		planes: make(map[int][]tensorPlane),
	}
	for _, key := range b.Keys() {
		event, plane, ok := parseTensorArrayKey(key)
		if !ok {
			continue
		}
		if _, seen := n.planes[event]; !seen {
			n.evs = append(n.evs, event)
		}
		n.planes[event] = append(n.planes[event], tensorPlane{plane: plane, arrayKey: key})
	}
	sort.Ints(n.evs)
	for _, ps := range n.planes {
		sort.Slice(ps, func(i, j int) bool { return ps[i].plane < ps[j].plane })
	}
	return n
}

func (n *tensorNormalizer) events() []int { return n.evs }

// materialize loads each plane of one event as a part. Metadata is
// optional by schema design: absent channels default to the ascending
// range 0..n-1 and absent tickinfo to (0, 1, nticks).
func (n *tensorNormalizer) materialize(event int) ([]Part, error) {
	parts := make([]Part, 0, len(n.planes[event]))
	for _, p := range n.planes[event] {
		key := p.arrayKey
		samples, err := n.bundle.Array(key)
		if err != nil {
			return nil, err
		}
		if samples.Rank() != 2 && samples.Rank() != 3 {
			return nil, fmt.Errorf("%s: rank %d, want 2 or 3", key, samples.Rank())
		}
		nchan := samples.Shape[samples.Rank()-2]
		nticks := samples.Shape[samples.Rank()-1]

		part := Part{
			Samples: samples,
			Tick:    Tickinfo{Start: 0, Period: 1, Count: nticks},
		}
		meta, err := n.readMeta(key)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			switch {
			case len(meta.Tickinfo) >= 3:
				part.Tick = Tickinfo{
					Start:  meta.Tickinfo[0],
					Period: meta.Tickinfo[1],
					Count:  int(meta.Tickinfo[2]),
				}
			case meta.Time != nil && meta.Period != nil:
				part.Tick = Tickinfo{Start: *meta.Time, Period: *meta.Period, Count: nticks}
			}
			if len(meta.Channels) > 0 {
				if len(meta.Channels) != nchan {
					return nil, fmt.Errorf("tensor event=%d plane=%d: %d channel IDs for %d channels",
						event, p.plane, len(meta.Channels), nchan)
				}
				part.Channels = append([]int(nil), meta.Channels...)
			}
		}
		if part.Channels == nil {
			part.Channels = make([]int, nchan)
			for i := range part.Channels {
				part.Channels[i] = i
			}
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// readMeta loads the metadata sibling of an array key, derived by swapping
// the "_array" suffix so padded ordinals carry over.
func (n *tensorNormalizer) readMeta(arrayKey string) (*tensorMeta, error) {
	key := strings.TrimSuffix(arrayKey, "_array") + "_metadata.json"
	if !n.bundle.Has(key) {
		return nil, nil
	}
	raw, err := n.bundle.Raw(key)
	if err != nil {
		return nil, err
	}
	var meta tensorMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &meta, nil
}
