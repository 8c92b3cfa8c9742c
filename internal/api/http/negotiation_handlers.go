package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appNegotiation "github.com/freightboard/freightboard/internal/application/negotiation"
	"github.com/freightboard/freightboard/internal/domain/user"
)

func (s *Server) placeBid(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return
	}
	var req struct {
		Amount    int64      `json:"amount"`
		Simulated bool       `json:"simulated,omitempty"`
		CarrierID *uuid.UUID `json:"carrierId,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	// Carriers always bid as themselves; only an admin seeding a simulated
	// bid may name another carrier.
	u := authUserFromContext(r.Context())
	carrierID := u.UserID
	if req.CarrierID != nil && u.Role == user.RoleAdmin {
		carrierID = *req.CarrierID
	}

	b, thread, err := s.negotiationSvc.PlaceBid(r.Context(), appNegotiation.PlaceBidParams{
		LoadID:    id,
		CarrierID: carrierID,
		Amount:    req.Amount,
		Simulated: req.Simulated,
	}, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"bid":    b,
		"thread": thread,
	})
}

func (s *Server) getThread(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForViewer(w, r)
	if ld == nil {
		return
	}
	thread, bids, err := s.negotiationSvc.GetThread(r.Context(), ld.LoadID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"thread": thread,
		"bids":   bids,
	})
}

func (s *Server) counterBid(w http.ResponseWriter, r *http.Request) {
	loadID, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return
	}
	bidID, err := parseUUIDParam(r, "bidId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid bidId")
		return
	}
	var req struct {
		CounterAmount  int64   `json:"counterAmount"`
		CounterMessage *string `json:"counterMessage,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	b, err := s.negotiationSvc.CounterBid(r.Context(), loadID, bidID, req.CounterAmount, req.CounterMessage, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) acceptBid(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForOwner(w, r)
	if ld == nil {
		return
	}
	bidID, err := parseUUIDParam(r, "bidId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid bidId")
		return
	}
	var req struct {
		TruckID *string `json:"truckId,omitempty"`
	}
	_ = decodeBody(r, &req)
	u := authUserFromContext(r.Context())
	b, err := s.negotiationSvc.AcceptBid(r.Context(), ld.LoadID, bidID, req.TruckID, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bid":    b,
		"loadId": ld.LoadID,
		"status": "awarded",
	})
}
