// Package schema declares the expected shape of the World Development
// Indicators style CSV files that make up one age-group dataset.
//
// The loader checks every file against these declarations before it trusts
// column positions, so a file whose layout drifts fails loudly instead of
// silently mis-aligning values.
package schema

import "strings"

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec describes a single column of a source file.
type FieldSpec struct {
	Name     string    // Canonical column name
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the file header
}

// FileSpec describes one source file of a dataset folder.
type FileSpec struct {
	FileName  string      // File name inside the age-group folder
	SkipLines int         // Physical lines preceding the header row
	Fields    []FieldSpec // Columns the loader reads
}

// NormalizeHeader folds a header cell into the form used for matching:
// lower case, underscores treated as spaces, surrounding space trimmed.
// "INDICATOR_CODE" and "Indicator Code" normalize to the same key.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}
