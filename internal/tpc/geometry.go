package tpc

// Geometry names a detector readout span and its per-plane channel counts
// in canonical order (induction 1, induction 2, collection).
type Geometry struct {
	Name   string
	Splits []int
}

// GeometryTable maps a total channel count to its detector geometry. The
// table is immutable after construction and is passed explicitly to the
// frame normalizer so tests can substitute alternate geometries.
type GeometryTable struct {
	entries map[int]Geometry
}

// NewGeometryTable builds a table from explicit entries. The entries are
// copied.
func NewGeometryTable(entries map[int]Geometry) *GeometryTable {
	t := &GeometryTable{entries: make(map[int]Geometry, len(entries))}
	for total, g := range entries {
		t.entries[total] = Geometry{Name: g.Name, Splits: append([]int(nil), g.Splits...)}
	}
	return t
}

// DefaultGeometry returns the table of known DUNE-style anode geometries.
func DefaultGeometry() *GeometryTable {
	return NewGeometryTable(map[int]Geometry{
		2560: {Name: "apa", Splits: []int{800, 800, 960}},
		1600: {Name: "apauv", Splits: []int{800, 800}},
		800:  {Name: "apaind", Splits: []int{800}},
		960:  {Name: "apacol", Splits: []int{960}},
	})
}

// SplitFor returns the geometry name and ordered per-plane channel counts
// for a total channel count. Unrecognized totals get a near-equal 3-way
// split (remainder to the leading partitions) named "unknown". The splits
// always sum to total; there is no failure mode.
func (t *GeometryTable) SplitFor(total int) (string, []int) {
	if g, ok := t.entries[total]; ok {
		return g.Name, append([]int(nil), g.Splits...)
	}
	base, rem := total/3, total%3
	splits := make([]int, 3)
	for i := range splits {
		splits[i] = base
		if i < rem {
			splits[i]++
		}
	}
	return "unknown", splits
}
