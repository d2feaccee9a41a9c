package display

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/brettviren/teepeesee/internal/npz"
	"github.com/brettviren/teepeesee/internal/tpc"
)

// seismic is the blue-white-red scale used for signed detector samples.
var seismic = []string{"#0000ff", "#ffffff", "#ff0000"}

// Heatmap writes one HTML page per event with a heatmap chart per part.
// Large parts are downsampled by stride to stay within the cell budget.
type Heatmap struct {
	OutPath   string
	Label     string
	Transform Transform // optional; applied to samples before rendering
	MaxRows   int       // channel cells per chart; default 128
	MaxCols   int       // tick cells per chart; default 256

	Err error // first render failure, surfaced from observer dispatch
}

// Observe renders the event to OutPath.
func (h *Heatmap) Observe(parts []tpc.Part) {
	if err := h.render(parts); err != nil && h.Err == nil {
		h.Err = err
	}
}

func (h *Heatmap) render(parts []tpc.Part) error {
	page := components.NewPage()
	for i, part := range parts {
		samples := part.Samples
		if samples.Rank() == 3 {
			// Render the leading feature layer.
			layer := samples.Slice(0, 1)
			samples = &npz.Array{Shape: layer.Shape[1:], Data: layer.Data}
		}
		if h.Transform != nil {
			samples = h.Transform(samples)
		}
		page.AddCharts(h.partChart(samples, part, i))
	}
	f, err := os.Create(h.OutPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

// partChart builds one downsampled heatmap chart for a rank-2 samples
// array.
func (h *Heatmap) partChart(samples *npz.Array, part tpc.Part, ordinal int) *charts.HeatMap {
	maxRows, maxCols := h.MaxRows, h.MaxCols
	if maxRows <= 0 {
		maxRows = 128
	}
	if maxCols <= 0 {
		maxCols = 256
	}
	nchan, nticks := 0, 0
	if samples.Rank() == 2 {
		nchan, nticks = samples.Shape[0], samples.Shape[1]
	}
	strideY := strideFor(nchan, maxRows)
	strideX := strideFor(nticks, maxCols)

	var (
		data []opts.HeatMapData
		xs   []string
		lo   = math.Inf(1)
		hi   = math.Inf(-1)
	)
	for x := 0; x < nticks; x += strideX {
		xs = append(xs, fmt.Sprintf("%g", part.Tick.Start+float64(x)*part.Tick.Period))
	}
	for yi, y := 0, 0; y < nchan; yi, y = yi+1, y+strideY {
		for xi, x := 0, 0; x < nticks; xi, x = xi+1, x+strideX {
			v := samples.At2(y, x)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, v}})
		}
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s part %d", h.Label, ordinal),
			Subtitle: fmt.Sprintf("%d channels x %d ticks, stride %dx%d", nchan, nticks, strideY, strideX),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "channel"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: seismic},
		}),
	)
	hm.SetXAxis(xs).AddSeries("samples", data)
	return hm
}

// strideFor picks the smallest stride that keeps n cells within budget.
func strideFor(n, budget int) int {
	if n <= budget {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(budget)))
}
