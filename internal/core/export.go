package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// ExportFileName is the download name of a filtered CSV export.
const ExportFileName = "filtered_data.csv"

// Export column headers.
const (
	ColIncidenceRate = "Incidence Rate"
)

// ExportHeader is the header row of every export.
var ExportHeader = []string{schema.ColCountryName, ColIncidenceRate}

func formatRate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSV writes country and rate pairs as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, values []CountryValue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range values {
		if err := cw.Write([]string{v.CountryName, formatRate(v.Rate)}); err != nil {
			return fmt.Errorf("write row %s: %w", v.CountryName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV. Only CountryName and Rate are set.
func ReadCSV(r io.Reader) ([]CountryValue, error) {
	br, err := newSourceReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(ExportHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrParse, err)
	}
	idx := MakeHeaderIndex(header)
	nameCol, okName := idx.Lookup(schema.ColCountryName)
	rateCol, okRate := idx.Lookup(ColIncidenceRate)
	if !okName || !okRate {
		return nil, fmt.Errorf("%w: export header is %q", ErrSchemaMismatch, header)
	}

	var out []CountryValue
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		rate := ParseNumber(rec[rateCol])
		if !rate.Valid {
			line, _ := cr.FieldPos(rateCol)
			return nil, fmt.Errorf("%w: line %d: rate %q is not a number", ErrParse, line, rec[rateCol])
		}
		out = append(out, CountryValue{CountryName: rec[nameCol], Rate: rate.Float})
	}
	return out, nil
}

// WriteXLSX writes the same two columns as WriteCSV to a single-sheet workbook.
func WriteXLSX(w io.Writer, sheet string, values []CountryValue) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	for i, h := range ExportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, v := range values {
		row := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), v.CountryName); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), v.Rate); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportSheetName builds the sheet title for a year's export.
func ExportSheetName(year int) string {
	return fmt.Sprintf("Incidence %d", year)
}
