package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/logging"
)

type ctxKey int

const tableKey ctxKey = iota

// withTable resolves {ageGroup} against the catalog, loads its dataset and
// stores the table in the request context. Every request loads afresh.
func (s *Server) withTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ageGroup := chi.URLParam(r, "ageGroup")

		if _, ok := s.catalog.Get(ageGroup); !ok {
			s.fail(w, r, fmt.Errorf("%w: age group %q is not served", core.ErrNotFound, ageGroup))
			return
		}

		table, err := s.loads.Load(r.Context(), s.loader, ageGroup)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		logging.FromContext(r.Context()).Debug("table ready",
			"age_group", ageGroup,
			"load_id", table.LoadID,
			"rows", table.Len(),
		)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tableKey, table)))
	})
}

// tableFromContext returns the table stored by withTable.
func tableFromContext(ctx context.Context) *core.Table {
	t, _ := ctx.Value(tableKey).(*core.Table)
	return t
}
