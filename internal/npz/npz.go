// Package npz reads NumPy ".npz" array bundles: zip archives whose members
// are ".npy" binary arrays, optionally alongside plain JSON side files.
//
// A Bundle exposes key-addressed access to the arrays it contains. Keys are
// the member names with any ".npy" suffix stripped, matching the array names
// used by the writers. Arrays are materialized lazily on first access and
// cached for the lifetime of the Bundle; the bundle is treated as read-only
// so the cache is never invalidated.
package npz

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/sbinet/npyio"
)

// ErrNotFound indicates the bundle path does not exist or cannot be read.
var ErrNotFound = errors.New("bundle not found")

// FormatError indicates the file exists but cannot be parsed as a numeric
// array bundle.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("not a numeric array bundle: %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// KeyError indicates a lookup for a key the bundle does not contain.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("no such bundle entry: %q", e.Key)
}

// Bundle is an open array bundle. It owns the underlying zip handle and an
// internal read cache. Not safe for concurrent use; the expected model is
// one reader per opened file.
type Bundle struct {
	path    string
	zr      *zip.ReadCloser
	members map[string]*zip.File
	keys    []string // archive order
	arrays  map[string]*Array
	raws    map[string][]byte
}

// Open opens the named bundle. It fails with ErrNotFound when the path is
// missing or unreadable and with *FormatError when the file is not a zip
// container.
func Open(path string) (*Bundle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	// Faster flate than the stdlib for the common deflated members.
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	b := &Bundle{
		path:    path,
		zr:      zr,
		members: make(map[string]*zip.File, len(zr.File)),
		arrays:  make(map[string]*Array),
		raws:    make(map[string][]byte),
	}
	for _, f := range zr.File {
		key := strings.TrimSuffix(f.Name, ".npy")
		if prev, dup := b.members[key]; dup {
			log.Printf("%s: member %q shadowed by %q under key %q", path, f.Name, prev.Name, key)
			continue
		}
		b.members[key] = f
		b.keys = append(b.keys, key)
	}
	return b, nil
}

// Path returns the filesystem path the bundle was opened from.
func (b *Bundle) Path() string { return b.path }

// Keys returns the bundle's entry names in archive order.
func (b *Bundle) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// Has reports whether the bundle contains the key.
func (b *Bundle) Has(key string) bool {
	_, ok := b.members[key]
	return ok
}

// Array returns the numeric array stored under key, reading and decoding it
// on first access. Unknown keys fail with *KeyError.
func (b *Bundle) Array(key string) (*Array, error) {
	if a, ok := b.arrays[key]; ok {
		return a, nil
	}
	f, ok := b.members[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("bundle entry %q: %w", key, err)
	}
	defer rc.Close()
	a, err := readNPY(rc)
	if err != nil {
		return nil, fmt.Errorf("bundle entry %q: %w", key, err)
	}
	b.arrays[key] = a
	return a, nil
}

// Raw returns the bytes of a non-numeric entry such as a JSON metadata
// blob. The entry may be a plain side file or an NPY byte-string member;
// trailing NUL padding is trimmed either way.
func (b *Bundle) Raw(key string) ([]byte, error) {
	if raw, ok := b.raws[key]; ok {
		return raw, nil
	}
	f, ok := b.members[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("bundle entry %q: %w", key, err)
	}
	defer rc.Close()

	var raw []byte
	if strings.HasSuffix(f.Name, ".npy") {
		raw, err = readNPYBytes(rc)
	} else {
		raw, err = io.ReadAll(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("bundle entry %q: %w", key, err)
	}
	raw = bytes.TrimRight(raw, "\x00")
	b.raws[key] = raw
	return raw, nil
}

// Close releases the underlying file handle. The bundle must not be used
// afterwards.
func (b *Bundle) Close() error {
	if b.zr == nil {
		return nil
	}
	err := b.zr.Close()
	b.zr = nil
	return err
}

// readNPYBytes reads an NPY member holding a byte string ("|Sn" or
// unsigned-byte vector) and returns its payload verbatim.
func readNPYBytes(r io.Reader) ([]byte, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}
	dt := nr.Header.Descr.Type
	switch {
	case strings.HasPrefix(dt, "|S"), strings.HasPrefix(dt, "<S"):
	case dt == "|u1", dt == "<u1", dt == "|i1", dt == "<i1":
	default:
		return nil, fmt.Errorf("entry is not a byte string (dtype %q)", dt)
	}
	return io.ReadAll(r)
}
