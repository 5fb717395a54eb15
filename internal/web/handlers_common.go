package web

// handlers_common.go contains query binding and validation shared by the handlers.

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/schema"
)

// rowsQuery selects merged rows. An empty indicator returns every row.
type rowsQuery struct {
	Indicator string `json:"indicator"`
}

// yearQuery selects one indicator at one year.
type yearQuery struct {
	Indicator string `json:"indicator" validate:"required"`
	Year      int    `json:"year" validate:"required,year"`
}

// groupsQuery aggregates a year slice by a categorical column.
type groupsQuery struct {
	Indicator string `json:"indicator" validate:"required"`
	Year      int    `json:"year" validate:"required,year"`
	By        string `json:"by" validate:"required,oneof=region income income_group incomegroup"`
}

// seriesQuery selects a year window of the long form of one indicator.
type seriesQuery struct {
	Indicator string `json:"indicator" validate:"required"`
	By        string `json:"by" validate:"required,oneof=region country income income_group incomegroup"`
	From      int    `json:"from" validate:"year"`
	To        int    `json:"to" validate:"year,gtefield=From"`
}

// newValidator builds the validator used for query structs.
// Field names in errors follow the json tags, which match the query keys.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		return schema.IsYear(int(fl.Field().Int()))
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateQuery runs struct validation and converts failures to core
// sentinels: a failed year rule is ErrYearOutOfRange, anything else is
// ErrInvalidQuery.
func (s *Server) validateQuery(q any) error {
	err := s.validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", core.ErrInvalidQuery, err)
	}

	fe := verrs[0]
	if fe.Tag() == "year" {
		return fmt.Errorf("%w: %s=%v", core.ErrYearOutOfRange, fe.Field(), fe.Value())
	}
	return fmt.Errorf("%w: %s failed %q", core.ErrInvalidQuery, fe.Field(), fe.Tag())
}

// queryInt parses an integer query parameter. A missing parameter yields def.
func queryInt(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", core.ErrInvalidQuery, name, raw)
	}
	return i, nil
}

func (s *Server) bindYearQuery(r *http.Request) (yearQuery, error) {
	q := r.URL.Query()
	year, err := queryInt(q, "year", 0)
	if err != nil {
		return yearQuery{}, err
	}
	out := yearQuery{
		Indicator: strings.TrimSpace(q.Get("indicator")),
		Year:      year,
	}
	return out, s.validateQuery(out)
}

func (s *Server) bindGroupsQuery(r *http.Request) (groupsQuery, error) {
	yq, err := s.bindYearQuery(r)
	if err != nil {
		return groupsQuery{}, err
	}
	out := groupsQuery{
		Indicator: yq.Indicator,
		Year:      yq.Year,
		By:        strings.ToLower(strings.TrimSpace(r.URL.Query().Get("by"))),
	}
	return out, s.validateQuery(out)
}

func (s *Server) bindSeriesQuery(r *http.Request) (seriesQuery, error) {
	q := r.URL.Query()
	from, err := queryInt(q, "from", core.DefaultSeriesFrom)
	if err != nil {
		return seriesQuery{}, err
	}
	to, err := queryInt(q, "to", core.DefaultSeriesTo)
	if err != nil {
		return seriesQuery{}, err
	}
	out := seriesQuery{
		Indicator: strings.TrimSpace(q.Get("indicator")),
		By:        strings.ToLower(strings.TrimSpace(q.Get("by"))),
		From:      from,
		To:        to,
	}
	return out, s.validateQuery(out)
}

// requireIndicator reports ErrNoData when t has no rows for name.
func requireIndicator(t *core.Table, name string) error {
	if !t.HasIndicator(name) {
		return fmt.Errorf("%w: indicator %q", core.ErrNoData, name)
	}
	return nil
}
