package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/hivdash/internal/logging"
	"github.com/JonMunkholm/hivdash/internal/schema"
)

// LoadObserver receives the outcome of every Load call.
// err is nil on success, in which case rows is the table length.
type LoadObserver interface {
	ObserveLoad(ageGroup string, elapsed time.Duration, rows int, err error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithObserver reports each load to o.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = o
	}
}

// Loader reads and merges the files of one age-group folder.
// It holds no state besides its configuration and is safe for concurrent use.
type Loader struct {
	root     string
	logger   *slog.Logger
	observer LoadObserver
	now      func() time.Time
}

// NewLoader creates a Loader rooted at the directory holding one folder per
// age group. A nil logger falls back to slog.Default.
func NewLoader(root string, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		root:   root,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the data root directory.
func (l *Loader) Root() string {
	return l.root
}

// Load builds the merged table for ageGroup.
//
// The primary file's year cells are imputed (empty becomes 0, unparseable
// becomes missing) and every row survives the metadata joins. Region and
// IncomeGroup are never empty in the result. On error no table is returned.
func (l *Loader) Load(ctx context.Context, ageGroup string) (*Table, error) {
	start := l.now()
	tbl, err := l.load(ctx, ageGroup)

	if l.observer != nil {
		l.observer.ObserveLoad(ageGroup, l.now().Sub(start), tbl.Len(), err)
	}
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func (l *Loader) load(ctx context.Context, ageGroup string) (*Table, error) {
	if err := ValidateAgeGroup(ageGroup); err != nil {
		return nil, &LoadError{AgeGroup: ageGroup, Op: "resolve", Err: err}
	}

	loadID := uuid.New().String()
	logger := logging.Enrich(ctx, l.logger).With(
		"load_id", loadID,
		"age_group", ageGroup,
	)

	dir := filepath.Join(l.root, ageGroup)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, &LoadError{
			AgeGroup: ageGroup,
			Path:     dir,
			Op:       "resolve",
			Err:      fmt.Errorf("%w: no folder for age group", ErrNotFound),
		}
	}

	// All three files are read before any joining so a missing file is
	// reported no matter which one it is.
	files := make(map[string]*rawTable, len(schema.Files))
	for _, spec := range schema.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, spec.FileName)
		raw, err := readFile(path, spec)
		if err != nil {
			return nil, &LoadError{AgeGroup: ageGroup, Path: path, Op: "read", Err: err}
		}
		logger.Debug("read source file",
			"file", spec.FileName,
			"rows", len(raw.Rows),
			"columns", len(raw.Header),
			"bytes", raw.Bytes,
		)
		files[spec.FileName] = raw
	}

	rows, err := primaryRows(files[schema.API.FileName])
	if err != nil {
		return nil, &LoadError{
			AgeGroup: ageGroup,
			Path:     filepath.Join(dir, schema.API.FileName),
			Op:       "schema",
			Err:      err,
		}
	}

	countries, dups, err := countryIndex(files[schema.CountryMetadata.FileName])
	if err != nil {
		return nil, &LoadError{
			AgeGroup: ageGroup,
			Path:     filepath.Join(dir, schema.CountryMetadata.FileName),
			Op:       "schema",
			Err:      err,
		}
	}
	if dups > 0 {
		logger.Warn("duplicate country codes in metadata, first occurrence kept",
			"file", schema.CountryMetadata.FileName,
			"duplicates", dups,
		)
	}

	indicators, dups, err := indicatorIndex(files[schema.IndicatorMetadata.FileName])
	if err != nil {
		return nil, &LoadError{
			AgeGroup: ageGroup,
			Path:     filepath.Join(dir, schema.IndicatorMetadata.FileName),
			Op:       "schema",
			Err:      err,
		}
	}
	if dups > 0 {
		logger.Warn("duplicate indicator codes in metadata, first occurrence kept",
			"file", schema.IndicatorMetadata.FileName,
			"duplicates", dups,
		)
	}

	var unmatchedCountries, unmatchedIndicators int
	for i := range rows {
		r := &rows[i]

		if meta, ok := countries[r.CountryCode]; ok {
			r.Region = meta.region
			r.IncomeGroup = meta.incomeGroup
		} else {
			unmatchedCountries++
		}
		r.Region = orUnknown(r.Region)
		r.IncomeGroup = orUnknown(r.IncomeGroup)

		if name, ok := indicators[r.IndicatorCode]; ok {
			r.IndicatorLabel = name
			r.IndicatorMatched = true
		} else {
			unmatchedIndicators++
		}
	}

	tbl := &Table{
		AgeGroup: ageGroup,
		LoadID:   loadID,
		LoadedAt: l.now().UTC(),
		Rows:     rows,
	}

	logger.Info("dataset loaded",
		"rows", tbl.Len(),
		"countries", len(countries),
		"indicators", len(indicators),
		"unmatched_countries", unmatchedCountries,
		"unmatched_indicators", unmatchedIndicators,
	)
	return tbl, nil
}

// checkPrimaryHeader enforces the declared layout of the primary file:
// the identifier columns in order followed by every year, ascending.
func checkPrimaryHeader(header []string) error {
	if len(header) != schema.PrimaryColumnCount {
		return fmt.Errorf("%w: %s has %d columns, want %d",
			ErrSchemaMismatch, schema.API.FileName, len(header), schema.PrimaryColumnCount)
	}
	for i, want := range schema.IdentifierColumns {
		if schema.NormalizeHeader(header[i]) != schema.NormalizeHeader(want) {
			return fmt.Errorf("%w: %s column %d is %q, want %q",
				ErrSchemaMismatch, schema.API.FileName, i+1, header[i], want)
		}
	}
	offset := len(schema.IdentifierColumns)
	for i, want := range schema.YearColumns() {
		got := header[offset+i]
		if y, err := strconv.Atoi(got); err != nil || strconv.Itoa(y) != want {
			return fmt.Errorf("%w: %s column %d is %q, want year %s",
				ErrSchemaMismatch, schema.API.FileName, offset+i+1, got, want)
		}
	}
	return nil
}

// primaryRows converts the primary file into rows with imputed year values.
// Column positions are trusted only after the header check passes.
func primaryRows(raw *rawTable) ([]Row, error) {
	if err := checkPrimaryHeader(raw.Header); err != nil {
		return nil, err
	}

	offset := len(schema.IdentifierColumns)
	rows := make([]Row, len(raw.Rows))
	for i, rec := range raw.Rows {
		r := &rows[i]
		r.CountryName = rec[0]
		r.CountryCode = rec[1]
		r.IndicatorName = rec[2]
		r.IndicatorCode = rec[3]
		for y := 0; y < schema.YearCount; y++ {
			r.Values[y] = yearCell(rec[offset+y])
		}
	}
	return rows, nil
}

type countryMeta struct {
	region      string
	incomeGroup string
}

// countryIndex keys country metadata by Country Code.
// It returns the number of duplicate codes that were ignored.
func countryIndex(raw *rawTable) (map[string]countryMeta, int, error) {
	pos, err := requireColumns(raw.Index(), schema.CountryMetadata)
	if err != nil {
		return nil, 0, err
	}

	idx := make(map[string]countryMeta, len(raw.Rows))
	dups := 0
	for _, rec := range raw.Rows {
		code := rec[pos[schema.ColCountryCode]]
		if code == "" {
			continue // matches no primary row
		}
		if _, seen := idx[code]; seen {
			dups++
			continue
		}
		idx[code] = countryMeta{
			region:      orUnknown(rec[pos[schema.ColRegion]]),
			incomeGroup: orUnknown(rec[pos[schema.ColIncomeGroup]]),
		}
	}
	return idx, dups, nil
}

// indicatorIndex maps indicator codes to their metadata name. Empty cells
// of the metadata file are read as Unknown, keys included.
func indicatorIndex(raw *rawTable) (map[string]string, int, error) {
	pos, err := requireColumns(raw.Index(), schema.IndicatorMetadata)
	if err != nil {
		return nil, 0, err
	}

	idx := make(map[string]string, len(raw.Rows))
	dups := 0
	for _, rec := range raw.Rows {
		code := orUnknown(rec[pos[schema.ColMetaIndicatorCode]])
		if _, seen := idx[code]; seen {
			dups++
			continue
		}
		idx[code] = orUnknown(rec[pos[schema.ColMetaIndicatorName]])
	}
	return idx, dups, nil
}
