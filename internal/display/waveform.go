package display

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/brettviren/teepeesee/internal/tpc"
)

// Waveform writes single-channel trace plots. It is registered on a
// source via OnDataReady and renders each event it is notified of.
type Waveform struct {
	Row     int    // channel row within each part
	OutPath string // PNG destination; multi-part events get the ordinal before the extension

	// Err holds the first render failure; observer dispatch has no error
	// return so it is surfaced here.
	Err error
}

// Observe renders every part of the event to PNG.
func (wf *Waveform) Observe(parts []tpc.Part) {
	for i, part := range parts {
		path := wf.OutPath
		if len(parts) > 1 {
			ext := filepath.Ext(wf.OutPath)
			path = fmt.Sprintf("%s.part%d%s", strings.TrimSuffix(wf.OutPath, ext), i, ext)
		}
		if err := WaveformPNG(part, wf.Row, path); err != nil && wf.Err == nil {
			wf.Err = err
		}
	}
}

// WaveformPNG plots one channel of a rank-2 part against time and saves
// it as a PNG.
func WaveformPNG(part tpc.Part, row int, path string) error {
	if part.Samples.Rank() != 2 {
		return fmt.Errorf("waveform wants rank-2 samples, got rank %d", part.Samples.Rank())
	}
	if row < 0 || row >= part.NChannels() {
		return fmt.Errorf("channel row %d out of range [0, %d)", row, part.NChannels())
	}

	trace := part.Samples.Row(row)
	pts := make(plotter.XYs, len(trace))
	for i, v := range trace {
		pts[i] = plotter.XY{X: part.Tick.Start + float64(i)*part.Tick.Period, Y: v}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Channel %d", part.Channels[row])
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "ADC"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(8*vg.Inch, 3*vg.Inch, path)
}
