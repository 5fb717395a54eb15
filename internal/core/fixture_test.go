package core

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/hivdash/internal/logging"
	"github.com/JonMunkholm/hivdash/internal/schema"
)

// dataset describes the three files of an age-group folder for tests.
// Nil slices write no file at all.
type dataset struct {
	api        [][]string
	countries  [][]string
	indicators [][]string
	bom        bool
}

// preamble mimics the World Bank export header block, blank lines included.
var preamble = []string{
	`"Data Source","World Development Indicators",`,
	``,
	`"Last Updated Date","2024-06-28",`,
	``,
}

func apiHeader() []string {
	return append(append([]string{}, schema.IdentifierColumns...), schema.YearColumns()...)
}

// apiRow builds a primary row with the given year cells set; all others are empty.
func apiRow(name, code, indicator, indicatorCode string, years map[int]string) []string {
	row := make([]string, schema.PrimaryColumnCount)
	row[0], row[1], row[2], row[3] = name, code, indicator, indicatorCode
	for y, v := range years {
		row[len(schema.IdentifierColumns)+schema.YearIndex(y)] = v
	}
	return row
}

func countryHeader() []string {
	return []string{"Country Code", "Region", "IncomeGroup", "SpecialNotes", "TableName"}
}

func indicatorHeader() []string {
	return []string{"INDICATOR_CODE", "INDICATOR_NAME", "SOURCE_NOTE", "SOURCE_ORGANIZATION"}
}

// csvLine quotes every cell and appends the trailing delimiter the source
// files carry.
func csvLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + ","
}

func csvBody(rows [][]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(csvLine(r))
		b.WriteString("\r\n")
	}
	return b.String()
}

// write creates <root>/<ageGroup>/ with the dataset files.
func (d dataset) write(t testing.TB, root, ageGroup string) {
	t.Helper()
	dir := filepath.Join(root, ageGroup)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	if d.api != nil {
		var b strings.Builder
		if d.bom {
			b.Write(utf8BOM)
		}
		for _, line := range preamble {
			b.WriteString(line)
			b.WriteString("\r\n")
		}
		b.WriteString(csvBody(d.api))
		writeFile(t, filepath.Join(dir, schema.API.FileName), b.String())
	}
	if d.countries != nil {
		writeFile(t, filepath.Join(dir, schema.CountryMetadata.FileName), csvBody(d.countries))
	}
	if d.indicators != nil {
		writeFile(t, filepath.Join(dir, schema.IndicatorMetadata.FileName), csvBody(d.indicators))
	}
}

func writeFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// sampleDataset is a small, well-formed folder used across tests.
func sampleDataset() dataset {
	return dataset{
		api: [][]string{
			apiHeader(),
			apiRow("Afghanistan", "AFG", "Incidence of HIV, ages 15-49 (per 1,000 uninfected population ages 15-49)", "SH.HIV.INCD.ZS",
				map[int]string{1960: "0.5", 2020: "0.03", 2021: "0.04"}),
			apiRow("Botswana", "BWA", "Incidence of HIV, ages 15-49 (per 1,000 uninfected population ages 15-49)", "SH.HIV.INCD.ZS",
				map[int]string{2020: "5.67", 2021: ".."}),
			apiRow("Nowhere", "XXX", "Incidence of HIV, ages 15-49 (per 1,000 uninfected population ages 15-49)", "SH.HIV.INCD.ZS",
				map[int]string{2020: "1,250.5"}),
			apiRow("Afghanistan", "AFG", "Adults (ages 15-49) newly infected with HIV", "SH.HIV.INCD",
				map[int]string{2020: "100"}),
		},
		countries: [][]string{
			countryHeader(),
			{"AFG", "South Asia", "Low income", "", "Afghanistan"},
			{"BWA", "Sub-Saharan Africa", "", "", "Botswana"},
		},
		indicators: [][]string{
			indicatorHeader(),
			{"SH.HIV.INCD.ZS", "Incidence of HIV, ages 15-49 (per 1,000 uninfected population ages 15-49)", "", "UNAIDS"},
		},
	}
}

// newTestLoader writes ds as age group "15_49" and returns a loader over it.
func newTestLoader(t *testing.T, ds dataset) *Loader {
	t.Helper()
	root := t.TempDir()
	ds.write(t, root, "15_49")
	return NewLoader(root, testLogger())
}

func testLogger() *slog.Logger {
	return logging.Discard()
}
