package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/model"
)

type postRequest struct {
	Action      string          `json:"action"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Description string          `json:"description"`
	Confidence  *float64        `json:"confidence"`
	RawText     string          `json:"raw_text"`
	Ref         refJSON         `json:"external_ref"`
}

type updateRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Source      *string          `json:"source"`
	Destination *string          `json:"destination"`
	Description *string          `json:"description"`
}

// postTransaction handles POST /transactions. Confidence defaults to 1 and
// a missing message reference is replaced by the request ID.
func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	action, err := model.ParseAction(req.Action)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	ref := model.ExternalRef(req.Ref)
	if ref.Message == "" {
		ref.Message = middleware.GetReqID(r.Context())
	}

	txn, err := s.journal.Post(r.Context(), model.Intent{
		Action:      action,
		Amount:      req.Amount,
		Source:      req.Source,
		Destination: req.Destination,
		Description: req.Description,
		Confidence:  confidence,
		RawText:     req.RawText,
	}, ownerFrom(r.Context()), ref)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": toTransaction(*txn)})
}

// listTransactions handles GET /transactions?limit=&offset=&action=.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts journal.ListOptions
	var err error
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid offset")
			return
		}
	}
	if v := q.Get("action"); v != "" {
		if opts.Action, err = model.ParseAction(v); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	owner := ownerFrom(r.Context())
	views, err := s.journal.List(r.Context(), owner, opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	total, err := s.journal.Count(r.Context(), owner, opts.Action)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toViews(views),
		"total":        total,
	})
}

// getTransaction handles GET /transactions/{id}.
func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, ok := pathID(w, r)
	if !ok {
		return
	}
	txn, err := s.journal.Get(r.Context(), txnID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if txn == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": toTransaction(*txn)})
}

// updateTransaction handles PATCH /transactions/{id}. Omitted fields keep
// their values.
func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	txn, err := s.journal.Update(r.Context(), txnID, ownerFrom(r.Context()), journal.UpdateParams(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if txn == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": toTransaction(*txn)})
}

// deleteTransaction handles DELETE /transactions/{id}.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.journal.Delete(r.Context(), txnID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// summary handles GET /transactions/summary.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.journal.Summary(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": toSummary(sum)})
}
