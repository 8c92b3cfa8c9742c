package httpapi

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/telemetry"
	"github.com/freightboard/freightboard/internal/domain/user"
	"github.com/freightboard/freightboard/internal/utils"
)

type loadSubmitRequest struct {
	PickupLocality  string   `json:"pickupLocality"`
	DropoffLocality string   `json:"dropoffLocality"`
	PickupLat       *float64 `json:"pickupLat,omitempty"`
	PickupLng       *float64 `json:"pickupLng,omitempty"`
	DropoffLat      *float64 `json:"dropoffLat,omitempty"`
	DropoffLng      *float64 `json:"dropoffLng,omitempty"`
	DistanceKm      float64  `json:"distanceKm"`
	WeightTons      float64  `json:"weightTons"`
	LoadType        string   `json:"loadType"`
	SaveAsDraft     bool     `json:"saveAsDraft,omitempty"`
}

func (s *Server) createLoad(w http.ResponseWriter, r *http.Request) {
	var req loadSubmitRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	ld, err := s.loadSvc.Submit(r.Context(), appLoad.SubmitParams{
		ShipperID:       u.UserID,
		PickupLocality:  req.PickupLocality,
		DropoffLocality: req.DropoffLocality,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		DistanceKm:      req.DistanceKm,
		WeightTons:      req.WeightTons,
		LoadType:        load.Type(req.LoadType),
		SaveAsDraft:     req.SaveAsDraft,
	}, u.Actor())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"loadId": ld.LoadID,
		"status": ld.Status,
	})
}

func (s *Server) listLoads(w http.ResponseWriter, r *http.Request) {
	var filter load.Filter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		st := load.Status(v)
		if !st.Valid() {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "unknown status")
			return
		}
		filter.Status = &st
	}
	if v := q.Get("shipperId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid shipperId")
			return
		}
		filter.ShipperID = &id
	}
	if v := q.Get("carrierId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid carrierId")
			return
		}
		filter.CarrierID = &id
	}

	// Non-admins see their own corner of the board: shippers their loads,
	// carriers their assignments and invites, except that the open board
	// is browsable by any carrier.
	u := authUserFromContext(r.Context())
	switch u.Role {
	case user.RoleShipper:
		filter.ShipperID = &u.UserID
	case user.RoleCarrier:
		browsingOpen := filter.Status != nil && *filter.Status == load.StatusOpenForBid
		if !browsingOpen {
			filter.CarrierID = &u.UserID
		}
	}

	limit, offset := parseLimitOffset(r, 50, 200)
	loads, err := s.loadSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"loads": loads})
}

func (s *Server) getLoad(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForViewer(w, r)
	if ld == nil {
		return
	}
	respondJSON(w, http.StatusOK, ld)
}

func (s *Server) loadHistory(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForViewer(w, r)
	if ld == nil {
		return
	}
	rows, err := s.loadSvc.History(r.Context(), ld.LoadID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loadId":      ld.LoadID,
		"transitions": rows,
	})
}

func (s *Server) loadTracking(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForViewer(w, r)
	if ld == nil {
		return
	}
	if s.tracker == nil {
		respondError(w, http.StatusServiceUnavailable, "TRACKING_UNAVAILABLE", "telemetry is not configured")
		return
	}
	if ld.AssignedTruckID == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no truck assigned")
		return
	}
	pos, err := s.tracker.CurrentPosition(r.Context(), *ld.AssignedTruckID)
	if err != nil {
		if errors.Is(err, telemetry.ErrNoPosition) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	resp := map[string]interface{}{
		"loadId":   ld.LoadID,
		"status":   ld.Status,
		"truckId":  *ld.AssignedTruckID,
		"position": pos,
	}
	if ld.Status == load.StatusInTransit && ld.DropoffLat != nil && ld.DropoffLng != nil {
		remaining := utils.CalculateDistance(
			utils.GeoPoint{Lat: pos.Lat, Lng: pos.Lng},
			utils.GeoPoint{Lat: *ld.DropoffLat, Lng: *ld.DropoffLng},
		)
		resp["remainingKm"] = math.Round(remaining*10) / 10
		speed := pos.SpeedKph
		if speed < 5 {
			// A parked truck still gets an estimate, at the fleet average.
			speed = 40
		}
		resp["etaMinutes"] = int(remaining / speed * 60)
		resp["eta"] = time.Now().UTC().Add(time.Duration(remaining/speed*float64(time.Hour))).Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) submitLoad(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForOwner(w, r)
	if ld == nil {
		return
	}
	u := authUserFromContext(r.Context())
	updated, err := s.loadSvc.Transition(r.Context(), ld.LoadID, load.StatusPending, u.Actor(), nil, load.TransitionMeta{})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loadId": updated.LoadID,
		"status": updated.Status,
	})
}

func (s *Server) cancelLoad(w http.ResponseWriter, r *http.Request) {
	ld := s.loadForOwner(w, r)
	if ld == nil {
		return
	}
	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	_ = decodeBody(r, &req)
	u := authUserFromContext(r.Context())
	updated, err := s.loadSvc.Cancel(r.Context(), ld.LoadID, u.Actor(), req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loadId": updated.LoadID,
		"status": updated.Status,
	})
}

// transitionLoad is the admin's direct line to the state machine, for the
// invoice chain and manual expiry. Legality is still the engine's call.
func (s *Server) transitionLoad(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return
	}
	var req struct {
		To     string  `json:"to"`
		Reason *string `json:"reason,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u := authUserFromContext(r.Context())
	updated, err := s.loadSvc.Transition(r.Context(), id, load.Status(req.To), u.Actor(), req.Reason, load.TransitionMeta{})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loadId":  updated.LoadID,
		"status":  updated.Status,
		"version": updated.Version,
	})
}

// loadForViewer resolves {loadId} and enforces the participant rule:
// admins see everything, shippers their own loads, carriers loads they
// participate in or that sit on the open board.
func (s *Server) loadForViewer(w http.ResponseWriter, r *http.Request) *load.Load {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return nil
	}
	ld, err := s.loadSvc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return nil
	}
	if ld == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "load not found")
		return nil
	}
	u := authUserFromContext(r.Context())
	if !canViewLoad(u, ld) {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "not a participant of this load")
		return nil
	}
	return ld
}

// loadForOwner resolves {loadId} for mutations only the owning shipper or
// an admin may perform.
func (s *Server) loadForOwner(w http.ResponseWriter, r *http.Request) *load.Load {
	id, err := parseUUIDParam(r, "loadId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid loadId")
		return nil
	}
	ld, err := s.loadSvc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return nil
	}
	if ld == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "load not found")
		return nil
	}
	u := authUserFromContext(r.Context())
	if u.Role != user.RoleAdmin && ld.ShipperID != u.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "not the shipper of this load")
		return nil
	}
	return ld
}

func canViewLoad(u *AuthUser, ld *load.Load) bool {
	if u == nil {
		return false
	}
	if u.Role == user.RoleAdmin {
		return true
	}
	if ld.IsParticipant(u.UserID) {
		return true
	}
	// The open board is public to carriers; invite-only postings are not.
	return u.Role == user.RoleCarrier &&
		ld.Status.AcceptsBids() &&
		(ld.AdminPostMode == nil || *ld.AdminPostMode != load.PostModeInvite)
}
