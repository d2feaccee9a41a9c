package tpc

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/brettviren/teepeesee/internal/npz"
)

// RandomSource generates synthetic events for exercising displays without
// a file. Each event index seeds its own generator, so Get is
// deterministic and idempotent per index.
type RandomSource struct {
	shapes    [][2]int // (channels, ticks) per part
	n         int
	observers []func([]Part)
}

// NewRandomSource returns a source of n synthetic events with one part per
// shape.
func NewRandomSource(shapes [][2]int, n int) *RandomSource {
	return &RandomSource{shapes: shapes, n: n}
}

func (s *RandomSource) Len() int { return s.n }

// Get builds the event at index: Gaussian baseline noise with a few hot
// channels, channel IDs 0..n-1 and unit tick period.
func (s *RandomSource) Get(index int) ([]Part, error) {
	if index < 0 || index >= s.n {
		return nil, &RangeError{Index: index, Len: s.n}
	}
	src := rand.NewSource(uint64(index))
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 100, Sigma: 10, Src: src}
	boost := distuv.Uniform{Min: 20, Max: 50, Src: src}

	parts := make([]Part, 0, len(s.shapes))
	for _, shape := range s.shapes {
		h, w := shape[0], shape[1]
		data := make([]float64, h*w)
		for i := range data {
			data[i] = noise.Rand()
		}
		for hot := 1 + rng.Intn(4); hot > 0; hot-- {
			row, bump := rng.Intn(h), boost.Rand()
			for i := row * w; i < (row+1)*w; i++ {
				data[i] += bump
			}
		}
		channels := make([]int, h)
		for i := range channels {
			channels[i] = i
		}
		parts = append(parts, Part{
			Samples:  &npz.Array{Shape: []int{h, w}, Data: data},
			Channels: channels,
			Tick:     Tickinfo{Start: 0, Period: 1, Count: w},
		})
	}
	for _, fn := range s.observers {
		fn(parts)
	}
	return parts, nil
}

func (s *RandomSource) OnDataReady(fn func([]Part)) {
	s.observers = append(s.observers, fn)
}
