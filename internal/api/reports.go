package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arung-agamani/yuuka/internal/reports"
)

const dayLayout = "2006-01-02"

// balances handles GET /reports/balances.
func (s *Server) balances(w http.ResponseWriter, r *http.Request) {
	bs, err := s.reports.Balances(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": toBalances(bs)})
}

// trialBalance handles GET /reports/trial-balance.
func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := s.reports.TrialBalance(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trial_balance": toTrialBalance(tb)})
}

// incomeStatement handles GET /reports/income-statement?start=&end=.
func (s *Server) incomeStatement(w http.ResponseWriter, r *http.Request) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}
	is, err := s.reports.IncomeStatement(r.Context(), ownerFrom(r.Context()), period)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"income_statement": toIncomeStatement(is)})
}

// balanceSheet handles GET /reports/balance-sheet.
func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	bs, err := s.reports.BalanceSheet(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance_sheet": toBalanceSheet(bs)})
}

// spending handles GET /reports/spending?start=&end=.
func (s *Server) spending(w http.ResponseWriter, r *http.Request) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}
	items, err := s.reports.SpendingByCategory(r.Context(), ownerFrom(r.Context()), period)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spending": toLines(items)})
}

// ledger handles GET /reports/ledger/{name}?limit=.
func (s *Server) ledger(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit")
			return
		}
		limit = n
	}
	l, err := s.reports.AccountLedger(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "name"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledger": toLedger(l)})
}

// queryPeriod reads optional start and end dates (YYYY-MM-DD).
func queryPeriod(w http.ResponseWriter, r *http.Request) (reports.Period, bool) {
	var p reports.Period
	for _, f := range []struct {
		key string
		dst *time.Time
	}{{"start", &p.Start}, {"end", &p.End}} {
		v := r.URL.Query().Get(f.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(dayLayout, v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+f.key+" date, want YYYY-MM-DD")
			return reports.Period{}, false
		}
		*f.dst = t
	}
	return p, true
}
