package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// rawTable is a tokenized CSV file: a header and its data rows, all cells
// cleaned and every row padded to the header width.
type rawTable struct {
	Header []string
	Rows   [][]string
	Bytes  int64
}

// Index builds the normalized header index.
func (t *rawTable) Index() HeaderIndex {
	return MakeHeaderIndex(t.Header)
}

// readFile opens path and tokenizes it per spec. A missing file is
// reported as ErrNotFound, a structurally broken one as ErrParse.
func readFile(path string, spec schema.FileSpec) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, spec.FileName)
		}
		return nil, err
	}
	defer f.Close()

	cr := &countingReader{reader: f}
	tbl, err := readCSV(cr, spec.SkipLines)
	if err != nil {
		return nil, err
	}
	tbl.Bytes = cr.BytesRead
	return tbl, nil
}

// readCSV skips skip physical lines, then reads a header row and all data rows.
func readCSV(r io.Reader, skip int) (*rawTable, error) {
	br, err := newSourceReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := skipLines(br, skip); err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1 // widths are checked against the header below
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for i := range header {
		header[i] = CleanCell(header[i])
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrParse, line, len(rec), len(header))
		}
		row := make([]string, len(header))
		for i, cell := range rec {
			row[i] = CleanCell(cell)
		}
		rows = append(rows, row)
	}

	tbl := &rawTable{Header: header, Rows: rows}
	tbl.dropTrailingEmptyColumns()
	return tbl, nil
}

// dropTrailingEmptyColumns removes unnamed, empty columns at the right edge.
// They come from a trailing delimiter on every line of the export.
func (t *rawTable) dropTrailingEmptyColumns() {
	width := len(t.Header)
	for width > 0 && t.Header[width-1] == "" && t.columnEmpty(width-1) {
		width--
	}
	if width == len(t.Header) {
		return
	}
	t.Header = t.Header[:width]
	for i := range t.Rows {
		t.Rows[i] = t.Rows[i][:width]
	}
}

func (t *rawTable) columnEmpty(col int) bool {
	for _, row := range t.Rows {
		if row[col] != "" {
			return false
		}
	}
	return true
}

// requireColumns checks that every required field of spec is present and
// returns the position of each by field name.
func requireColumns(idx HeaderIndex, spec schema.FileSpec) (map[string]int, error) {
	pos := make(map[string]int, len(spec.Fields))
	var missing []string
	for _, f := range spec.Fields {
		p, ok := idx.Lookup(f.Name)
		if !ok {
			if f.Required {
				missing = append(missing, f.Name)
			}
			continue
		}
		pos[f.Name] = p
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing required column(s) %q",
			ErrSchemaMismatch, spec.FileName, missing)
	}
	return pos, nil
}
