package schema

import "strconv"

// Year range covered by the primary dataset, inclusive.
const (
	FirstYear = 1960
	LastYear  = 2023
	YearCount = LastYear - FirstYear + 1
)

// Unknown is the sentinel category for a missing Region, IncomeGroup or
// indicator metadata value.
const Unknown = "Unknown"

// Canonical column names.
const (
	ColCountryName   = "Country Name"
	ColCountryCode   = "Country Code"
	ColIndicatorName = "Indicator Name"
	ColIndicatorCode = "Indicator Code"
	ColRegion        = "Region"
	ColIncomeGroup   = "IncomeGroup"

	ColMetaIndicatorCode = "INDICATOR_CODE"
	ColMetaIndicatorName = "INDICATOR_NAME"
)

// IdentifierColumns are the leading, positional columns of the primary file.
var IdentifierColumns = []string{
	ColCountryName,
	ColCountryCode,
	ColIndicatorName,
	ColIndicatorCode,
}

// PrimaryColumnCount is the number of columns the primary file must have
// once trailing empty columns are dropped.
var PrimaryColumnCount = len(IdentifierColumns) + YearCount

// API is the wide-format primary dataset.
var API = FileSpec{
	FileName:  "API.csv",
	SkipLines: 4,
	Fields:    primaryFields(),
}

// CountryMetadata carries Region and IncomeGroup per country code.
var CountryMetadata = FileSpec{
	FileName: "Metadata_Country.csv",
	Fields: []FieldSpec{
		{Name: ColCountryCode, Type: FieldText, Required: true},
		{Name: ColRegion, Type: FieldText, Required: true},
		{Name: ColIncomeGroup, Type: FieldText, Required: true},
	},
}

// IndicatorMetadata carries the human readable name per indicator code.
var IndicatorMetadata = FileSpec{
	FileName: "Metadata_Indicator.csv",
	Fields: []FieldSpec{
		{Name: ColMetaIndicatorCode, Type: FieldText, Required: true},
		{Name: ColMetaIndicatorName, Type: FieldText, Required: true},
	},
}

// Files lists every file a dataset folder must contain.
var Files = []FileSpec{API, CountryMetadata, IndicatorMetadata}

func primaryFields() []FieldSpec {
	fields := make([]FieldSpec, 0, len(IdentifierColumns)+YearCount)
	for _, name := range IdentifierColumns {
		fields = append(fields, FieldSpec{Name: name, Type: FieldText, Required: true})
	}
	for _, col := range YearColumns() {
		fields = append(fields, FieldSpec{Name: col, Type: FieldNumeric, Required: true})
	}
	return fields
}

// YearColumns returns the year column names in ascending order.
func YearColumns() []string {
	cols := make([]string, YearCount)
	for i := range cols {
		cols[i] = strconv.Itoa(FirstYear + i)
	}
	return cols
}

// IsYear reports whether year falls inside the declared range.
func IsYear(year int) bool {
	return year >= FirstYear && year <= LastYear
}

// YearIndex returns the position of year within a row's values, or -1.
func YearIndex(year int) int {
	if !IsYear(year) {
		return -1
	}
	return year - FirstYear
}
