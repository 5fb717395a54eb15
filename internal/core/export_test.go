package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportValues = []CountryValue{
	{CountryName: "Afghanistan", Rate: 0.03},
	{CountryName: "Botswana", Rate: 5.67},
	{CountryName: "Côte d'Ivoire", Rate: 0.1},
	{CountryName: "Korea, Rep.", Rate: 1250.5},
}

func TestWriteCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportValues))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "filtered_data.csv", buf.Bytes())
}

func TestWriteCSV_EmptySelection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Country Name,Incidence Rate\n", buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := loadSample(t)
	slice, err := tbl.YearSlice(incidenceName, 2020)
	require.NoError(t, err)
	require.NotEmpty(t, slice)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, slice))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(slice))
	for i := range slice {
		assert.Equal(t, slice[i].CountryName, back[i].CountryName)
		assert.Equal(t, slice[i].Rate, back[i].Rate)
	}
}

func TestReadCSV_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "wrong header", input: "Country,Rate\nAfghanistan,1\n", wantErr: ErrSchemaMismatch},
		{name: "non numeric rate", input: "Country Name,Incidence Rate\nAfghanistan,..\n", wantErr: ErrParse},
		{name: "extra column", input: "Country Name,Incidence Rate\nAfghanistan,1,2\n", wantErr: ErrParse},
		{name: "empty", input: "", wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	sheet := ExportSheetName(2020)
	require.NoError(t, WriteXLSX(&buf, sheet, exportValues))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, len(exportValues)+1)
	assert.Equal(t, []string{"Country Name", "Incidence Rate"}, rows[0])
	assert.Equal(t, []string{"Korea, Rep.", "1250.5"}, rows[4])
}
