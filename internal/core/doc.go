// Package core loads, merges and queries HIV incidence datasets.
//
// This package holds all domain logic independent of any transport layer.
// It is used by the HTTP API, the hivctl CLI and tests without modification.
//
// # Datasets
//
// Each age group is a folder under a data root holding three CSV files:
//
//	data/15_49/API.csv                  wide indicator values, 1960-2023
//	data/15_49/Metadata_Country.csv     Region and IncomeGroup per country code
//	data/15_49/Metadata_Indicator.csv   human readable name per indicator code
//
// The set of served age groups is a [Catalog] built from configuration.
//
// # Loading
//
// [Loader.Load] reads the three files and returns a fresh [Table]:
//
//  1. The primary file's preamble is skipped and its header is checked
//     against the declared layout in package schema
//  2. Year cells are imputed: empty becomes 0, unparseable becomes missing
//  3. Country metadata is left-joined on Country Code
//  4. Indicator metadata is left-joined on the indicator code
//  5. Region and IncomeGroup fall back to "Unknown"
//
// No row is dropped. Nothing is cached between loads.
//
// # Querying
//
// A loaded table is read-only. [Table.YearSlice] picks one indicator and year,
// [Table.Long] reshapes wide rows into (year, key, value) observations lazily, and
// [Summarize], [GroupMeans] and [YearGroupMeans] aggregate them.
// [WriteCSV] and [WriteXLSX] export a year slice.
//
// # Error Handling
//
// Only a missing file ([ErrNotFound]), an untokenizable file ([ErrParse]) and
// a header that deviates from the declared layout ([ErrSchemaMismatch]) fail a
// load. Technical errors are mapped to user-friendly messages using [MapError].
package core
