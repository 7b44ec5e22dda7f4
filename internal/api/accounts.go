package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/model"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type aliasRequest struct {
	Alias   string `json:"alias"`
	GroupID int64  `json:"group_id"`
}

type assignRequest struct {
	Name    string `json:"name"`
	GroupID int64  `json:"group_id"`
}

// listGroups handles GET /groups.
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.accounts.ListGroups(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]groupJSON, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroup(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// createGroup handles POST /groups. The type is inferred from the name when
// omitted.
func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	typ := s.accounts.InferType(req.Name)
	if strings.TrimSpace(req.Type) != "" {
		var err error
		if typ, err = model.ParseAccountType(req.Type); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	g, err := s.accounts.CreateGroup(r.Context(), accounts.CreateGroupParams{
		Name:        req.Name,
		Owner:       ownerFrom(r.Context()),
		Type:        typ,
		Description: req.Description,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"group": toGroup(*g)})
}

// getGroup handles GET /groups/{id}.
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := s.accounts.GroupByID(r.Context(), groupID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if g == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account group not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroup(*g)})
}

// listGroupAliases handles GET /groups/{id}/aliases.
func (s *Server) listGroupAliases(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r)
	if !ok {
		return
	}
	aliases, err := s.accounts.AliasesForGroup(r.Context(), groupID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeAliases(w, aliases)
}

// listAliases handles GET /aliases.
func (s *Server) listAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := s.accounts.ListAliases(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeAliases(w, aliases)
}

// addAlias handles POST /aliases.
func (s *Server) addAlias(w http.ResponseWriter, r *http.Request) {
	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	a, err := s.accounts.AddAlias(r.Context(), req.Alias, req.GroupID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"alias": toAlias(*a)})
}

// removeAlias handles DELETE /aliases/{alias}.
func (s *Server) removeAlias(w http.ResponseWriter, r *http.Request) {
	removed, err := s.accounts.RemoveAlias(r.Context(), chi.URLParam(r, "alias"), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeJSONError(w, http.StatusNotFound, "not_found", "Alias not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolve handles GET /resolve?name=.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing name")
		return
	}
	g, err := s.accounts.Resolve(r.Context(), name, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if g == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Name does not resolve to an account group")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroup(*g)})
}

// inferType handles GET /infer?name=.
func (s *Server) inferType(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	writeJSON(w, http.StatusOK, map[string]any{
		"name": name,
		"type": string(s.accounts.InferType(name)),
	})
}

// pendingNames handles GET /pending.
func (s *Server) pendingNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.accounts.UnresolvedNames(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"names": names})
}

// assignName handles POST /pending/assign.
func (s *Server) assignName(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	n, err := s.accounts.AssignName(r.Context(), req.Name, req.GroupID, ownerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries_updated": n})
}

func writeAliases(w http.ResponseWriter, aliases []model.AccountAlias) {
	out := make([]aliasJSON, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, toAlias(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliases": out})
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid ID")
		return 0, false
	}
	return n, true
}
