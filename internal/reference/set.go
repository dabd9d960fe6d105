package reference

import (
	"fmt"

	"example.com/sleeveselector/internal/sizing"
)

// Set is the immutable collection of reference tables loaded at start-up.
type Set struct {
	tables    []sizing.Table
	resolvers map[string]*sizing.Resolver
	overlaps  []Overlap
}

func newSet(tables []sizing.Table) *Set {
	set := &Set{
		tables:    tables,
		resolvers: make(map[string]*sizing.Resolver, len(tables)),
	}
	for _, table := range tables {
		set.resolvers[table.Name] = sizing.NewResolver(table)
		set.overlaps = append(set.overlaps, findOverlaps(table)...)
	}
	return set
}

// Tables returns the tables in document order.
func (s *Set) Tables() []sizing.Table {
	out := make([]sizing.Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// Table returns a table by name.
func (s *Set) Table(name string) (sizing.Table, error) {
	resolver, err := s.Resolver(name)
	if err != nil {
		return sizing.Table{}, err
	}
	return resolver.Table(), nil
}

// Resolver returns the resolver for a table.
func (s *Set) Resolver(name string) (*sizing.Resolver, error) {
	resolver, ok := s.resolvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return resolver, nil
}

// Overlaps lists range overlaps detected while loading. They are data
// quality warnings; affected lookups resolve with an ambiguous fit.
func (s *Set) Overlaps() []Overlap {
	return s.overlaps
}

func findOverlaps(table sizing.Table) []Overlap {
	var out []Overlap
	for _, dim := range table.Dimensions {
		for i := 0; i < len(table.Entries); i++ {
			for j := i + 1; j < len(table.Entries); j++ {
				a, b := table.Entries[i], table.Entries[j]
				if a.Ranges[dim.Name].Overlaps(b.Ranges[dim.Name]) {
					out = append(out, Overlap{
						Table:     table.Name,
						Dimension: dim.Name,
						First:     a.Label,
						Second:    b.Label,
					})
				}
			}
		}
	}
	return out
}
