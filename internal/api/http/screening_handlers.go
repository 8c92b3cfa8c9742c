package httpapi

import (
	"net/http"

	"github.com/Knetic/govaluate"

	"github.com/freightboard/freightboard/internal/domain/screening"
)

func (s *Server) listScreeningRules(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	rules, err := s.ruleRepo.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})
}

func (s *Server) createScreeningRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Expression string `json:"expression"`
		Priority   int    `json:"priority,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	rule := screening.NewRule(req.Name, req.Expression, req.Priority, &u.UserID)
	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	// A rule that does not parse never reaches the screener.
	if _, err := govaluate.NewEvaluableExpression(rule.Expression); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid expression: "+err.Error())
		return
	}
	if err := s.ruleRepo.Create(r.Context(), rule); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}
