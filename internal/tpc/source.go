package tpc

import (
	"fmt"
	"path/filepath"

	"github.com/brettviren/teepeesee/internal/npz"
)

// Source is the entire surface display collaborators may consume. They
// must not reach into bundle or normalizer internals.
type Source interface {
	// Len returns the number of events.
	Len() int
	// Get returns the ordered parts of one event.
	Get(index int) ([]Part, error)
	// OnDataReady registers an observer called with the part list each
	// time Get succeeds, synchronously and in registration order.
	OnDataReady(fn func([]Part))
}

// normalizer is the narrow extraction interface a schema implementation
// provides: the event inventory and per-event part construction.
type normalizer interface {
	events() []int
	materialize(event int) ([]Part, error)
}

// DataSource normalizes one open bundle into index-addressed events. The
// event inventory is built eagerly from keys alone; arrays are read and
// split lazily on first Get and memoized append-only, so repeated Gets are
// idempotent and parts are never recomputed or mutated.
type DataSource struct {
	bundle    *npz.Bundle
	schema    SchemaKind
	norm      normalizer
	evs       []int
	cache     map[int][]Part
	observers []func([]Part)
}

type sourceOptions struct {
	geom    *GeometryTable
	lenient bool
}

// Option configures a DataSource.
type Option func(*sourceOptions)

// WithGeometry substitutes the geometry table used to split frame-schema
// channel planes.
func WithGeometry(t *GeometryTable) Option {
	return func(o *sourceOptions) { o.geom = t }
}

// Lenient makes the frame normalizer skip malformed groups with a logged
// warning instead of failing. Nothing is ever fabricated for a skipped
// group; it simply contributes no parts.
func Lenient() Option {
	return func(o *sourceOptions) { o.lenient = true }
}

// NewDataSource classifies the bundle's schema and prepares the event
// inventory. An unrecognized key set fails with ErrUnknownSchema; a
// strict-mode incomplete frame group fails with *IncompleteFrameError.
// The DataSource owns the bundle and releases it on Close.
func NewDataSource(b *npz.Bundle, opts ...Option) (*DataSource, error) {
	o := sourceOptions{geom: DefaultGeometry()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &DataSource{
		bundle: b,
		cache:  make(map[int][]Part),
	}
	s.schema = DetectSchema(b.Keys())
	switch s.schema {
	case SchemaTensor:
		s.norm = newTensorNormalizer(b)
	case SchemaFrame:
		fn, err := newFrameNormalizer(b, o.geom, o.lenient)
		if err != nil {
			return nil, err
		}
		s.norm = fn
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, b.Path())
	}
	s.evs = s.norm.events()
	return s, nil
}

// Schema returns the detected schema kind.
func (s *DataSource) Schema() SchemaKind { return s.schema }

// Len returns the number of events in the bundle.
func (s *DataSource) Len() int { return len(s.evs) }

// EventNumber returns the on-disk event number stored at an ordinal index.
func (s *DataSource) EventNumber(index int) (int, error) {
	if index < 0 || index >= len(s.evs) {
		return 0, &RangeError{Index: index, Len: len(s.evs)}
	}
	return s.evs[index], nil
}

// Label returns a short human-readable description of one event.
func (s *DataSource) Label(index int) string {
	if index < 0 || index >= len(s.evs) {
		return "no data"
	}
	return fmt.Sprintf("%s | %s [%d]", filepath.Base(s.bundle.Path()), s.schema, s.evs[index])
}

// Get returns the ordered parts of the event at index, normalizing them on
// first access. Out-of-range indices fail with *RangeError without
// invalidating the source. Observers run after normalization completes,
// never on a partial result.
func (s *DataSource) Get(index int) ([]Part, error) {
	if index < 0 || index >= len(s.evs) {
		return nil, &RangeError{Index: index, Len: len(s.evs)}
	}
	parts, ok := s.cache[index]
	if !ok {
		var err error
		parts, err = s.norm.materialize(s.evs[index])
		if err != nil {
			return nil, err
		}
		s.cache[index] = parts
	}
	for _, fn := range s.observers {
		fn(parts)
	}
	return parts, nil
}

// OnDataReady registers an observer for successful Gets. Observers must
// treat the parts they receive as read-only.
func (s *DataSource) OnDataReady(fn func([]Part)) {
	s.observers = append(s.observers, fn)
}

// Close releases the underlying bundle.
func (s *DataSource) Close() error {
	return s.bundle.Close()
}
