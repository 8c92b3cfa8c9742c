package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/freightboard/freightboard/internal/domain/otp"
)

func (s *Server) createOtpRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoadID      uuid.UUID `json:"loadId"`
		RequestType string    `json:"requestType"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	created, err := s.otpSvc.Request(r.Context(), req.LoadID, u.UserID, otp.RequestType(req.RequestType))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listOtpRequests(w http.ResponseWriter, r *http.Request) {
	var filter otp.RequestFilter
	q := r.URL.Query()
	if v := q.Get("loadId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
			return
		}
		filter.LoadID = &id
	}
	if v := q.Get("carrierId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid carrierId")
			return
		}
		filter.CarrierID = &id
	}
	if v := q.Get("status"); v != "" {
		st := otp.RequestStatus(v)
		filter.Status = &st
	}
	if v := q.Get("requestType"); v != "" {
		rt := otp.RequestType(v)
		filter.RequestType = &rt
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	requests, err := s.otpSvc.ListRequests(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// approveOtpRequest issues the code. The plaintext appears in this
// response and nowhere else; notifications carry only the otp id.
func (s *Server) approveOtpRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var req struct {
		ValidityMinutes *int `json:"validityMinutes,omitempty"`
	}
	_ = decodeBody(r, &req)
	u := authUserFromContext(r.Context())
	res, err := s.otpSvc.Approve(r.Context(), id, u.Actor(), req.ValidityMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"request":   res.Request,
		"otpId":     res.OtpID,
		"code":      res.Code,
		"expiresAt": res.ExpiresAt,
	})
}

func (s *Server) rejectOtpRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var req struct {
		Notes *string `json:"notes,omitempty"`
	}
	_ = decodeBody(r, &req)
	u := authUserFromContext(r.Context())
	rejected, err := s.otpSvc.Reject(r.Context(), id, u.Actor(), req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rejected)
}

func (s *Server) regenerateOtpRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var req struct {
		ValidityMinutes *int `json:"validityMinutes,omitempty"`
	}
	_ = decodeBody(r, &req)
	u := authUserFromContext(r.Context())
	res, err := s.otpSvc.Regenerate(r.Context(), id, u.Actor(), req.ValidityMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"request":   res.Request,
		"otpId":     res.OtpID,
		"code":      res.Code,
		"expiresAt": res.ExpiresAt,
	})
}

func (s *Server) verifyOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OtpID uuid.UUID `json:"otpId"`
		Code  string    `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "code is required")
		return
	}
	u := authUserFromContext(r.Context())
	res, err := s.otpSvc.Verify(r.Context(), req.OtpID, req.Code, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := map[string]interface{}{
		"otpId":       res.Verification.OtpID,
		"status":      res.Verification.Status,
		"requestType": res.Request.RequestType,
		"loadId":      res.Request.LoadID,
	}
	if res.Load != nil {
		resp["loadStatus"] = res.Load.Status
	}
	respondJSON(w, http.StatusOK, resp)
}
