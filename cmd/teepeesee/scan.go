package main

import (
	"flag"
	"fmt"

	"github.com/brettviren/teepeesee/internal/inventory"
)

// runScan records bundle inventories into a sqlite database.
func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	dbPath := fs.String("db", "inventory.db", "inventory database path")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("scan: at least one bundle path required")
	}

	db, err := inventory.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	scanID, err := db.Scan(fs.Args())
	if err != nil {
		return err
	}
	bundles, err := db.Bundles(scanID)
	if err != nil {
		return err
	}
	fmt.Printf("scan %s: %d bundles\n", scanID, len(bundles))
	for _, b := range bundles {
		fmt.Printf("  %s: schema=%s events=%d\n", b.Path, b.Schema, b.Events)
	}
	return nil
}
