// Package inventory records bundle scan results in a sqlite database so
// tools can answer "what is in these files" without re-reading them. The
// database is a tool artifact; source bundles are never written.
package inventory

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/brettviren/teepeesee/internal/npz"
	"github.com/brettviren/teepeesee/internal/tpc"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) an inventory database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			scan_id TEXT PRIMARY KEY,
			started TIMESTAMP,
			bundles INTEGER
		);
		CREATE TABLE IF NOT EXISTS bundles (
			scan_id TEXT,
			path TEXT,
			schema TEXT,
			events INTEGER,
			FOREIGN KEY(scan_id) REFERENCES scans(scan_id)
		);
		CREATE TABLE IF NOT EXISTS events (
			scan_id TEXT,
			path TEXT,
			idx INTEGER,
			event INTEGER,
			parts INTEGER,
			channels INTEGER,
			ticks INTEGER,
			FOREIGN KEY(scan_id) REFERENCES scans(scan_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// Scan normalizes each bundle and records its inventory under a fresh
// scan ID. Unreadable or unrecognized bundles are logged and skipped; the
// scan carries on.
func (db *DB) Scan(paths []string) (string, error) {
	scanID := uuid.NewString()
	started := time.Now().UTC()

	recorded := 0
	for _, path := range paths {
		if err := db.scanBundle(scanID, path); err != nil {
			log.Printf("scan: skipping %s: %v", path, err)
			continue
		}
		recorded++
	}

	_, err := db.Exec("INSERT INTO scans (scan_id, started, bundles) VALUES (?, ?, ?)",
		scanID, started, recorded)
	if err != nil {
		return "", fmt.Errorf("record scan: %w", err)
	}
	return scanID, nil
}

func (db *DB) scanBundle(scanID, path string) error {
	bundle, err := npz.Open(path)
	if err != nil {
		return err
	}
	src, err := tpc.NewDataSource(bundle, tpc.Lenient())
	if err != nil {
		bundle.Close()
		return err
	}
	defer src.Close()

	for i := 0; i < src.Len(); i++ {
		parts, err := src.Get(i)
		if err != nil {
			return err
		}
		event, err := src.EventNumber(i)
		if err != nil {
			return err
		}
		channels, ticks := 0, 0
		for _, p := range parts {
			channels += p.NChannels()
			if p.NTicks() > ticks {
				ticks = p.NTicks()
			}
		}
		_, err = db.Exec(
			"INSERT INTO events (scan_id, path, idx, event, parts, channels, ticks) VALUES (?, ?, ?, ?, ?, ?, ?)",
			scanID, path, i, event, len(parts), channels, ticks)
		if err != nil {
			return fmt.Errorf("record event: %w", err)
		}
	}

	_, err = db.Exec("INSERT INTO bundles (scan_id, path, schema, events) VALUES (?, ?, ?, ?)",
		scanID, path, src.Schema().String(), src.Len())
	if err != nil {
		return fmt.Errorf("record bundle: %w", err)
	}
	return nil
}

// BundleRecord is one scanned bundle row.
type BundleRecord struct {
	Path   string
	Schema string
	Events int
}

// Bundles returns the bundles recorded under a scan.
func (db *DB) Bundles(scanID string) ([]BundleRecord, error) {
	rows, err := db.Query("SELECT path, schema, events FROM bundles WHERE scan_id = ? ORDER BY path", scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BundleRecord
	for rows.Next() {
		var r BundleRecord
		if err := rows.Scan(&r.Path, &r.Schema, &r.Events); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
