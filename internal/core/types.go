package core

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// Value is a numeric-or-missing cell of a year column.
type Value struct {
	Float float64
	Valid bool
}

// Missing is the zero Value.
var Missing = Value{}

// Num returns a valid Value holding f.
func Num(f float64) Value {
	return Value{Float: f, Valid: true}
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// String formats the value for display and CSV output. Missing is "".
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// Row is one (country, indicator) record of the merged table.
// Year values are kept wide: Values[i] holds year schema.FirstYear+i.
type Row struct {
	CountryName   string `json:"country_name"`
	CountryCode   string `json:"country_code"`
	IndicatorName string `json:"indicator_name"`
	IndicatorCode string `json:"indicator_code"`

	Values [schema.YearCount]Value `json:"values"`

	// From country metadata; never empty.
	Region      string `json:"region"`
	IncomeGroup string `json:"income_group"`

	// From indicator metadata. IndicatorMatched is false when the
	// indicator code had no metadata row, in which case the label is empty.
	IndicatorLabel   string `json:"indicator_label,omitempty"`
	IndicatorMatched bool   `json:"indicator_matched"`
}

// Value returns the cell for year. ok is false when year is outside the
// declared range.
func (r Row) Value(year int) (v Value, ok bool) {
	idx := schema.YearIndex(year)
	if idx < 0 {
		return Missing, false
	}
	return r.Values[idx], true
}

// Table is the merged dataset for one age group.
// It is built fresh by every Load and must be treated as read-only.
type Table struct {
	AgeGroup string    `json:"age_group"`
	LoadID   string    `json:"load_id"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     []Row     `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HeaderIndex maps normalized column names to their position in a CSV row.
type HeaderIndex map[string]int

// Lookup returns the position of a column by any spelling that normalizes
// to the same key ("INDICATOR_CODE", "Indicator Code").
func (h HeaderIndex) Lookup(name string) (int, bool) {
	pos, ok := h[schema.NormalizeHeader(name)]
	return pos, ok
}
