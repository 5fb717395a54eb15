package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

func TestReadCSV_DropsTrailingEmptyColumn(t *testing.T) {
	input := "\"Country Code\",\"Region\",\n\"AFG\",\"South Asia\",\n"

	tbl, err := readCSV(strings.NewReader(input), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country Code", "Region"}, tbl.Header)
	assert.Equal(t, [][]string{{"AFG", "South Asia"}}, tbl.Rows)
}

func TestReadCSV_KeepsNamedOrNonEmptyColumns(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantWidth int
	}{
		{
			name:      "no trailing column",
			input:     "a,b\n1,2\n",
			wantWidth: 2,
		},
		{
			name:      "unnamed column with data",
			input:     "a,b,\n1,2,3\n",
			wantWidth: 3,
		},
		{
			name:      "named empty column",
			input:     "a,b,c\n1,2,\n",
			wantWidth: 3,
		},
		{
			name:      "two unnamed empty columns",
			input:     "a,b,,\n1,2,,\n",
			wantWidth: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := readCSV(strings.NewReader(tt.input), 0)
			require.NoError(t, err)
			assert.Len(t, tbl.Header, tt.wantWidth)
			for _, row := range tbl.Rows {
				assert.Len(t, row, tt.wantWidth)
			}
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "wider row", input: "a,b\n1,2,3\n"},
		{name: "bare quote", input: "a,b\n1,\"2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readCSV(strings.NewReader(tt.input), 0)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestRequireColumns(t *testing.T) {
	idx := MakeHeaderIndex([]string{"INDICATOR_NAME", "Source", "indicator_code"})

	pos, err := requireColumns(idx, schema.IndicatorMetadata)
	require.NoError(t, err)
	assert.Equal(t, 2, pos[schema.ColMetaIndicatorCode])
	assert.Equal(t, 0, pos[schema.ColMetaIndicatorName])

	_, err = requireColumns(MakeHeaderIndex([]string{"Country Code"}), schema.CountryMetadata)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "Region")
}

func TestCheckPrimaryHeader(t *testing.T) {
	good := apiHeader()
	require.NoError(t, checkPrimaryHeader(good))

	lower := apiHeader()
	lower[0] = "country_name"
	assert.NoError(t, checkPrimaryHeader(lower), "names compare normalized")

	renamed := apiHeader()
	renamed[1] = "ISO3"
	assert.ErrorIs(t, checkPrimaryHeader(renamed), ErrSchemaMismatch)

	extra := append(apiHeader(), "2024")
	assert.ErrorIs(t, checkPrimaryHeader(extra), ErrSchemaMismatch)
}
