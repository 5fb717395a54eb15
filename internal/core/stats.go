package core

import (
	"fmt"
	"sort"
)

// Summary describes the spread of one indicator in one year.
type Summary struct {
	Count   int          `json:"count" yaml:"count"`
	Mean    float64      `json:"mean" yaml:"mean"`
	Highest CountryValue `json:"highest" yaml:"highest"`
	Lowest  CountryValue `json:"lowest" yaml:"lowest"`
}

// Summarize computes the highest, lowest and mean rate. Ties keep the
// first country encountered.
func Summarize(values []CountryValue) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoData
	}

	s := Summary{
		Count:   len(values),
		Highest: values[0],
		Lowest:  values[0],
	}
	var sum float64
	for _, v := range values {
		sum += v.Rate
		if v.Rate > s.Highest.Rate {
			s.Highest = v
		}
		if v.Rate < s.Lowest.Rate {
			s.Lowest = v
		}
	}
	s.Mean = sum / float64(len(values))
	return s, nil
}

// GroupBy names a categorical column used for aggregation.
type GroupBy string

const (
	GroupRegion      GroupBy = "region"
	GroupIncomeGroup GroupBy = "income"
	GroupCountry     GroupBy = "country"
)

// ParseGroupBy accepts the names used on the command line and in queries.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupRegion, GroupIncomeGroup, GroupCountry:
		return GroupBy(s), nil
	case "income_group", "incomegroup":
		return GroupIncomeGroup, nil
	}
	return "", fmt.Errorf("unknown grouping %q", s)
}

// KeyFunc returns the row key for g.
func (g GroupBy) KeyFunc() KeyFunc {
	switch g {
	case GroupIncomeGroup:
		return ByIncomeGroup
	case GroupCountry:
		return ByCountry
	default:
		return ByRegion
	}
}

func (g GroupBy) key(v CountryValue) string {
	switch g {
	case GroupIncomeGroup:
		return v.IncomeGroup
	case GroupCountry:
		return v.CountryName
	default:
		return v.Region
	}
}

// GroupMean is the mean rate of one category.
type GroupMean struct {
	Key   string  `json:"key" yaml:"key"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Count int     `json:"count" yaml:"count"`
}

// GroupMeans averages rates per category, sorted by key.
// "Unknown" is a regular category.
func GroupMeans(values []CountryValue, by GroupBy) []GroupMean {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for _, v := range values {
		k := by.key(v)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += v.Rate
		a.n++
	}

	out := make([]GroupMean, 0, len(groups))
	for k, a := range groups {
		out = append(out, GroupMean{Key: k, Mean: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// YearGroupMean is the mean value of one category in one year.
type YearGroupMean struct {
	Year  int     `json:"year" yaml:"year"`
	Key   string  `json:"key" yaml:"key"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Count int     `json:"count" yaml:"count"`
}

// YearGroupMeans averages valid observations per (year, key), sorted by
// year then key. Missing values are ignored.
func YearGroupMeans(obs []Observation) []YearGroupMean {
	type groupKey struct {
		year int
		key  string
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[groupKey]*acc)
	for _, o := range obs {
		if !o.Value.Valid {
			continue
		}
		k := groupKey{o.Year, o.Key}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += o.Value.Float
		a.n++
	}

	out := make([]YearGroupMean, 0, len(groups))
	for k, a := range groups {
		out = append(out, YearGroupMean{
			Year:  k.year,
			Key:   k.key,
			Mean:  a.sum / float64(a.n),
			Count: a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Key < out[j].Key
	})
	return out
}
