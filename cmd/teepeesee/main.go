// Command teepeesee inspects and renders detector-readout array bundles.
//
// Subcommands:
//
//	info    print the event inventory of a bundle
//	summary print per-part sample statistics for one event
//	render  write heatmap HTML and waveform PNG for one event
//	scan    record bundle inventories in a sqlite database
//	version print the version
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/brettviren/teepeesee/internal/npz"
	"github.com/brettviren/teepeesee/internal/tpc"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("teepeesee: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "summary":
		err = runSummary(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "version":
		fmt.Println(version)
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: teepeesee <command> [flags] [args]

commands:
  info <bundle.npz>              print the event inventory
  summary [-index N] <bundle.npz>  per-part sample statistics
  render [flags] [bundle.npz]    write heatmap/waveform renderings
  scan [-db path] <bundle.npz>...  record inventories in sqlite
  version                        print the version`)
}

// openSource opens a bundle and wraps it in a data source. The caller
// closes the source, which releases the bundle.
func openSource(path string, opts ...tpc.Option) (*tpc.DataSource, error) {
	bundle, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := tpc.NewDataSource(bundle, opts...)
	if err != nil {
		bundle.Close()
		return nil, err
	}
	return src, nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	lenient := fs.Bool("lenient", false, "skip malformed frame groups instead of failing")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("info: exactly one bundle path required")
	}

	var opts []tpc.Option
	if *lenient {
		opts = append(opts, tpc.Lenient())
	}
	src, err := openSource(fs.Arg(0), opts...)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Printf("%s: schema=%s events=%d\n", fs.Arg(0), src.Schema(), src.Len())
	geom := tpc.DefaultGeometry()
	for i := 0; i < src.Len(); i++ {
		parts, err := src.Get(i)
		if err != nil {
			return err
		}
		total := 0
		for _, p := range parts {
			total += p.NChannels()
		}
		name, _ := geom.SplitFor(total)
		fmt.Printf("  [%d] %s: %d parts, %d channels (%s)\n", i, src.Label(i), len(parts), total, name)
		for j, p := range parts {
			fmt.Printf("      part %d: %d x %d, tick start=%g period=%g\n",
				j, p.NChannels(), p.NTicks(), p.Tick.Start, p.Tick.Period)
		}
	}
	return nil
}
