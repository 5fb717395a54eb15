package core

import (
	"iter"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// Observation is one (year, key, value) tuple of the long form.
type Observation struct {
	Year  int    `json:"year" yaml:"year"`
	Key   string `json:"key" yaml:"key"`
	Value Value  `json:"value" yaml:"value"`
}

// Default trend window.
const (
	DefaultSeriesFrom = 2000
	DefaultSeriesTo   = 2020
)

// KeyFunc selects the grouping key of a row for the long form.
type KeyFunc func(Row) string

// Common keys.
var (
	ByRegion      KeyFunc = func(r Row) string { return r.Region }
	ByCountry     KeyFunc = func(r Row) string { return r.CountryName }
	ByIncomeGroup KeyFunc = func(r Row) string { return r.IncomeGroup }
)

// Long yields rows in long form, row by row and years ascending.
// Nothing is materialized; missing values are yielded as-is.
func Long(rows []Row, key KeyFunc) iter.Seq[Observation] {
	return func(yield func(Observation) bool) {
		for _, r := range rows {
			k := key(r)
			for i, v := range r.Values {
				if !yield(Observation{Year: schema.FirstYear + i, Key: k, Value: v}) {
					return
				}
			}
		}
	}
}

// Long reshapes rows, or the whole table when rows is nil.
func (t *Table) Long(rows []Row, key KeyFunc) iter.Seq[Observation] {
	if rows == nil {
		rows = t.Rows
	}
	return Long(rows, key)
}

// CollectLong gathers the valid observations with from <= Year <= to.
func CollectLong(seq iter.Seq[Observation], from, to int) []Observation {
	var out []Observation
	for o := range seq {
		if o.Year < from || o.Year > to || !o.Value.Valid {
			continue
		}
		out = append(out, o)
	}
	return out
}
