package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appPricing "github.com/freightboard/freightboard/internal/application/pricing"
	"github.com/freightboard/freightboard/internal/domain/load"
)

func (s *Server) estimatePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DistanceKm float64 `json:"distanceKm"`
		WeightTons float64 `json:"weightTons"`
		LoadType   string  `json:"loadType"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	quote, err := s.pricingSvc.Estimate(req.DistanceKm, req.WeightTons, load.Type(req.LoadType))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

type loadPostRequest struct {
	FinalPrice        int64       `json:"finalPrice"`
	PostMode          string      `json:"postMode"`
	InvitedCarrierIDs []uuid.UUID `json:"invitedCarrierIds,omitempty"`
	AllowCounterBids  bool        `json:"allowCounterBids,omitempty"`
	CarrierID         *uuid.UUID  `json:"carrierId,omitempty"`
	TruckID           *string     `json:"truckId,omitempty"`
	Comment           *string     `json:"comment,omitempty"`
}

func (s *Server) postLoad(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return
	}
	var req loadPostRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	ld, err := s.pricingSvc.LockAndPost(r.Context(), appPricing.LockAndPostParams{
		LoadID:            id,
		FinalPrice:        req.FinalPrice,
		PostMode:          load.PostMode(req.PostMode),
		InvitedCarrierIDs: req.InvitedCarrierIDs,
		AllowCounterBids:  req.AllowCounterBids,
		CarrierID:         req.CarrierID,
		TruckID:           req.TruckID,
		Comment:           req.Comment,
	}, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ld)
}

func (s *Server) assignLoad(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return
	}
	var req struct {
		CarrierID  uuid.UUID `json:"carrierId"`
		TruckID    *string   `json:"truckId,omitempty"`
		FinalPrice int64     `json:"finalPrice"`
		Comment    *string   `json:"comment,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.CarrierID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "carrierId is required")
		return
	}
	u := authUserFromContext(r.Context())
	ld, err := s.pricingSvc.ForceAssign(r.Context(), id, req.CarrierID, req.TruckID, req.FinalPrice, u.Actor(), req.Comment)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ld)
}
