package httpapi

import (
	"net/http"

	"github.com/freightboard/freightboard/internal/domain/user"
)

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u, err := s.users.Register(r.Context(), req.Name, user.Role(req.Role))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// The api key is handed out exactly once, here.
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"userId": u.UserID,
		"name":   u.Name,
		"role":   u.Role,
		"apiKey": u.APIKey,
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	var filter user.Filter
	q := r.URL.Query()
	if v := q.Get("role"); v != "" {
		role := user.Role(v)
		filter.Role = &role
	}
	if v := q.Get("status"); v != "" {
		status := user.Status(v)
		filter.Status = &status
	}
	limit, offset := parseLimitOffset(r, 100, 200)
	users, err := s.users.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
