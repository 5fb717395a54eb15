package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleListAgeGroups lists the served age groups in configured order.
func (s *Server) handleListAgeGroups(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.catalog.All())
}

// handleIndicators lists the indicator names of one dataset.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	t := tableFromContext(r.Context())
	render.JSON(w, r, t.IndicatorNames())
}

// handleRows returns merged rows, optionally restricted to one indicator.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	t := tableFromContext(r.Context())
	q := rowsQuery{Indicator: strings.TrimSpace(r.URL.Query().Get("indicator"))}

	rows := t.Rows
	if q.Indicator != "" {
		if err := requireIndicator(t, q.Indicator); err != nil {
			s.fail(w, r, err)
			return
		}
		rows = t.ForIndicator(q.Indicator)
	}

	render.JSON(w, r, rows)
}

// yearSlice binds a yearQuery and returns the matching slice.
func (s *Server) yearSlice(r *http.Request) (yearQuery, []core.CountryValue, error) {
	q, err := s.bindYearQuery(r)
	if err != nil {
		return q, nil, err
	}
	t := tableFromContext(r.Context())
	if err := requireIndicator(t, q.Indicator); err != nil {
		return q, nil, err
	}
	values, err := t.YearSlice(q.Indicator, q.Year)
	return q, values, err
}

// handleSlice returns the countries with a value at the selected year.
func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	_, values, err := s.yearSlice(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if values == nil {
		values = []core.CountryValue{}
	}
	render.JSON(w, r, values)
}

// handleSummary returns count, mean, highest and lowest for a year slice.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, values, err := s.yearSlice(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	summary, err := core.Summarize(values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// handleGroups returns mean rates per region or income group.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	q, err := s.bindGroupsQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	by, err := core.ParseGroupBy(q.By)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidQuery, err))
		return
	}

	t := tableFromContext(r.Context())
	if err := requireIndicator(t, q.Indicator); err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := t.YearSlice(q.Indicator, q.Year)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	means := core.GroupMeans(values, by)
	if means == nil {
		means = []core.GroupMean{}
	}
	render.JSON(w, r, means)
}

// handleSeries returns the long form of one indicator over a year window.
// Country grouping returns the observations themselves; region and income
// grouping return per-year means.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, err := s.bindSeriesQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	by, err := core.ParseGroupBy(q.By)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidQuery, err))
		return
	}

	t := tableFromContext(r.Context())
	if err := requireIndicator(t, q.Indicator); err != nil {
		s.fail(w, r, err)
		return
	}

	obs := core.CollectLong(t.Long(t.ForIndicator(q.Indicator), by.KeyFunc()), q.From, q.To)
	if by == core.GroupCountry {
		if obs == nil {
			obs = []core.Observation{}
		}
		render.JSON(w, r, obs)
		return
	}

	means := core.YearGroupMeans(obs)
	if means == nil {
		means = []core.YearGroupMean{}
	}
	render.JSON(w, r, means)
}

// handleExportCSV streams the year slice as filtered_data.csv.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	q, values, err := s.yearSlice(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Buffer so a write error can still become a JSON error response.
	var buf bytes.Buffer
	if err := core.WriteCSV(&buf, values); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logExport(r, q, "csv", len(values))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(core.ExportFileName))
	_, _ = w.Write(buf.Bytes())
}

// handleExportXLSX writes the year slice as a one-sheet workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	q, values, err := s.yearSlice(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := core.WriteXLSX(&buf, core.ExportSheetName(q.Year), values); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logExport(r, q, "xlsx", len(values))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(strings.TrimSuffix(core.ExportFileName, ".csv")+".xlsx"))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logExport(r *http.Request, q yearQuery, format string, rows int) {
	t := tableFromContext(r.Context())
	logging.WithFields(r.Context(),
		"age_group", t.AgeGroup,
		"load_id", t.LoadID,
		"format", format,
	).Info("export written", "indicator", q.Indicator, "year", q.Year, "rows", rows)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
