package core

import (
	"fmt"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// CountryValue is one country's rate for a single indicator and year.
type CountryValue struct {
	CountryName string  `json:"country_name" yaml:"country_name"`
	CountryCode string  `json:"country_code" yaml:"country_code"`
	Region      string  `json:"region" yaml:"region"`
	IncomeGroup string  `json:"income_group" yaml:"income_group"`
	Rate        float64 `json:"rate" yaml:"rate"`
}

// IndicatorNames returns the distinct Indicator Name values in first-seen order.
func (t *Table) IndicatorNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range t.Rows {
		if _, ok := seen[r.IndicatorName]; ok {
			continue
		}
		seen[r.IndicatorName] = struct{}{}
		names = append(names, r.IndicatorName)
	}
	return names
}

// HasIndicator reports whether any row carries the indicator name.
func (t *Table) HasIndicator(name string) bool {
	for _, r := range t.Rows {
		if r.IndicatorName == name {
			return true
		}
	}
	return false
}

// ForIndicator returns the rows whose Indicator Name equals name.
// The returned rows are copies; the table is not modified.
func (t *Table) ForIndicator(name string) []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.IndicatorName == name {
			out = append(out, r)
		}
	}
	return out
}

// YearSlice returns every country's value for indicator in year.
// Rows whose value is missing for that year are left out.
func (t *Table) YearSlice(indicator string, year int) ([]CountryValue, error) {
	idx := schema.YearIndex(year)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d not in %d-%d",
			ErrYearOutOfRange, year, schema.FirstYear, schema.LastYear)
	}

	var out []CountryValue
	for _, r := range t.Rows {
		if r.IndicatorName != indicator {
			continue
		}
		v := r.Values[idx]
		if !v.Valid {
			continue
		}
		out = append(out, CountryValue{
			CountryName: r.CountryName,
			CountryCode: r.CountryCode,
			Region:      r.Region,
			IncomeGroup: r.IncomeGroup,
			Rate:        v.Float,
		})
	}
	return out, nil
}
