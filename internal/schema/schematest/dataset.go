// Package schematest writes World Bank style dataset folders for tests.
package schematest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// Incidence is the indicator name used by Sample.
const Incidence = "Incidence of HIV, ages 15-49 (per 1,000 uninfected population ages 15-49)"

// Dataset holds the rows of the three files of one age-group folder.
// A nil slice writes no file.
type Dataset struct {
	API        [][]string
	Countries  [][]string
	Indicators [][]string
}

// PrimaryHeader is the 68-column API.csv header.
func PrimaryHeader() []string {
	return append(append([]string{}, schema.IdentifierColumns...), schema.YearColumns()...)
}

// PrimaryRow builds an API.csv row with the given year cells; others are empty.
func PrimaryRow(name, code, indicator, indicatorCode string, years map[int]string) []string {
	row := make([]string, schema.PrimaryColumnCount)
	row[0], row[1], row[2], row[3] = name, code, indicator, indicatorCode
	for y, v := range years {
		row[len(schema.IdentifierColumns)+schema.YearIndex(y)] = v
	}
	return row
}

// Line quotes every cell and keeps the trailing delimiter of the source files.
func Line(cells ...string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + ",\n"
}

func body(rows [][]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(Line(r...))
	}
	return b.String()
}

// Write creates <root>/<ageGroup> with the dataset files.
func (d Dataset) Write(t testing.TB, root, ageGroup string) {
	t.Helper()
	dir := filepath.Join(root, ageGroup)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	if d.API != nil {
		preamble := "\"Data Source\",\"World Development Indicators\",\n\n\"Last Updated Date\",\"2024-06-28\",\n\n"
		WriteFile(t, filepath.Join(dir, schema.API.FileName), preamble+body(d.API))
	}
	if d.Countries != nil {
		WriteFile(t, filepath.Join(dir, schema.CountryMetadata.FileName), body(d.Countries))
	}
	if d.Indicators != nil {
		WriteFile(t, filepath.Join(dir, schema.IndicatorMetadata.FileName), body(d.Indicators))
	}
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Sample has three countries of one indicator. Nowhere (XXX) has no
// country metadata. Every 2022 cell is missing.
//
//	         2020   2021  2022
//	AFG      0.03   0.04  ..
//	BWA      5.67   4.5   ..
//	XXX      1.5    ..    ..
func Sample() Dataset {
	return Dataset{
		API: [][]string{
			PrimaryHeader(),
			PrimaryRow("Afghanistan", "AFG", Incidence, "SH.HIV.INCD.ZS", map[int]string{2020: "0.03", 2021: "0.04", 2022: ".."}),
			PrimaryRow("Botswana", "BWA", Incidence, "SH.HIV.INCD.ZS", map[int]string{2020: "5.67", 2021: "4.5", 2022: ".."}),
			PrimaryRow("Nowhere", "XXX", Incidence, "SH.HIV.INCD.ZS", map[int]string{2020: "1.5", 2021: "..", 2022: ".."}),
		},
		Countries: [][]string{
			{"Country Code", "Region", "IncomeGroup", "TableName"},
			{"AFG", "South Asia", "Low income", "Afghanistan"},
			{"BWA", "Sub-Saharan Africa", "Upper middle income", "Botswana"},
		},
		Indicators: [][]string{
			{"INDICATOR_CODE", "INDICATOR_NAME", "SOURCE_NOTE"},
			{"SH.HIV.INCD.ZS", Incidence, ""},
		},
	}
}
