package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/brettviren/teepeesee/internal/display"
	"github.com/brettviren/teepeesee/internal/tpc"
)

// runRender wires display observers onto a source and pulls one event
// through it. With -random the synthetic source stands in for a file.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	index := fs.Int("index", 0, "event index to render")
	channel := fs.Int("channel", 0, "channel row for the waveform plot")
	outDir := fs.String("out", ".", "output directory")
	random := fs.Bool("random", false, "use the synthetic source instead of a file")
	transform := fs.String("transform", "none", "samples transform for the heatmap: none, rebaseline, unitnorm")
	fs.Parse(args)

	var (
		src   tpc.Source
		label string
	)
	switch {
	case *random:
		src = tpc.NewRandomSource([][2]int{{800, 1000}, {800, 1000}, {960, 1000}}, *index+1)
		label = fmt.Sprintf("random [%d]", *index)
	case fs.NArg() == 1:
		ds, err := openSource(fs.Arg(0))
		if err != nil {
			return err
		}
		defer ds.Close()
		label = ds.Label(*index)
		src = ds
	default:
		return fmt.Errorf("render: one bundle path (or -random) required")
	}

	heat := &display.Heatmap{
		OutPath: filepath.Join(*outDir, fmt.Sprintf("event%d.html", *index)),
		Label:   label,
	}
	switch *transform {
	case "none":
	case "rebaseline":
		heat.Transform = display.Rebaseline
	case "unitnorm":
		heat.Transform = display.UnitNorm
	default:
		return fmt.Errorf("render: unknown transform %q", *transform)
	}
	wave := &display.Waveform{
		Row:     *channel,
		OutPath: filepath.Join(*outDir, fmt.Sprintf("event%d.png", *index)),
	}
	src.OnDataReady(heat.Observe)
	src.OnDataReady(wave.Observe)

	if _, err := src.Get(*index); err != nil {
		return err
	}
	if heat.Err != nil {
		return heat.Err
	}
	if wave.Err != nil {
		return wave.Err
	}
	log.Printf("wrote %s and %s", heat.OutPath, wave.OutPath)
	return nil
}
