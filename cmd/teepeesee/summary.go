package main

import (
	"flag"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// runSummary prints per-part sample statistics for one event.
func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	index := fs.Int("index", 0, "event index")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("summary: exactly one bundle path required")
	}

	src, err := openSource(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	parts, err := src.Get(*index)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", src.Label(*index))
	for i, p := range parts {
		data := p.Samples.Data
		if len(data) == 0 {
			fmt.Printf("  part %d: empty\n", i)
			continue
		}
		mean, std := stat.MeanStdDev(data, nil)
		lo, hi := data[0], data[0]
		for _, v := range data {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		fmt.Printf("  part %d: %d x %d mean=%.3f std=%.3f min=%.3f max=%.3f\n",
			i, p.NChannels(), p.NTicks(), mean, std, lo, hi)
	}
	return nil
}
