package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/decision"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/user"
)

// Service locks prices onto loads and posts them to carriers. Every
// action writes one immutable AdminDecision row before the state machine
// moves; a decision row without a matching transition records an attempt
// that did not go through.
type Service struct {
	engine       *appLoad.Service
	decisionRepo decision.Repository
	userRepo     user.Repository
	notifier     notification.Notifier
	logger       zerolog.Logger
}

// NewService creates the pricing service.
func NewService(engine *appLoad.Service, decisionRepo decision.Repository, userRepo user.Repository, notifier notification.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		engine:       engine,
		decisionRepo: decisionRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		logger:       logger.With().Str("service", "pricing").Logger(),
	}
}

// Estimate computes a standalone quote without touching any load.
func (s *Service) Estimate(distanceKm, weightTons float64, loadType load.Type) (Quote, error) {
	return EstimatePrice(distanceKm, weightTons, loadType)
}

// LockAndPostParams carries one lock-and-post action.
type LockAndPostParams struct {
	LoadID            uuid.UUID
	FinalPrice        int64
	PostMode          load.PostMode
	InvitedCarrierIDs []uuid.UUID
	AllowCounterBids  bool
	CarrierID         *uuid.UUID
	TruckID           *string
	Comment           *string
}

// LockAndPost fixes the final price on a load and posts it according to
// the chosen mode: open -> open_for_bid, invite -> posted_to_carriers,
// assign -> awarded. A load still in pending is priced on the way.
func (s *Service) LockAndPost(ctx context.Context, params LockAndPostParams, actor appLoad.Actor) (*load.Load, error) {
	return s.post(ctx, params, decision.ActionLockAndPost, actor)
}

// ForceAssign awards the load directly to a carrier, skipping bidding.
func (s *Service) ForceAssign(ctx context.Context, loadID, carrierID uuid.UUID, truckID *string, finalPrice int64, actor appLoad.Actor, comment *string) (*load.Load, error) {
	return s.post(ctx, LockAndPostParams{
		LoadID:     loadID,
		FinalPrice: finalPrice,
		PostMode:   load.PostModeAssign,
		CarrierID:  &carrierID,
		TruckID:    truckID,
		Comment:    comment,
	}, decision.ActionForceAssign, actor)
}

func (s *Service) post(ctx context.Context, params LockAndPostParams, action decision.ActionType, actor appLoad.Actor) (*load.Load, error) {
	if !params.PostMode.Valid() {
		return nil, fmt.Errorf("unknown post mode %q", params.PostMode)
	}
	if params.FinalPrice <= 0 {
		return nil, errors.New("final price must be positive")
	}

	ld, err := s.engine.Get(ctx, params.LoadID)
	if err != nil {
		return nil, err
	}
	if ld == nil {
		return nil, fmt.Errorf("%w: %s", load.ErrNotFound, params.LoadID)
	}

	switch params.PostMode {
	case load.PostModeInvite:
		if len(params.InvitedCarrierIDs) == 0 {
			return nil, errors.New("invite mode requires at least one carrier")
		}
		if err := s.checkCarriersExist(ctx, params.InvitedCarrierIDs); err != nil {
			return nil, err
		}
	case load.PostModeAssign:
		if params.CarrierID == nil {
			return nil, errors.New("assign mode requires a carrier")
		}
		if err := s.checkCarriersExist(ctx, []uuid.UUID{*params.CarrierID}); err != nil {
			return nil, err
		}
	}

	quote, err := EstimatePrice(ld.DistanceKm, ld.WeightTons, ld.LoadType)
	if err != nil {
		return nil, err
	}
	suggested := quote.Total

	dec := decision.NewAdminDecision(ld.LoadID, actor.UserID, action)
	dec.SuggestedPrice = &suggested
	dec.FinalPrice = &params.FinalPrice
	mode := params.PostMode
	dec.PostMode = &mode
	dec.InvitedCarrierIDs = params.InvitedCarrierIDs
	dec.Comment = params.Comment
	breakdown := quote.Breakdown
	dec.Breakdown = &breakdown
	if err := s.decisionRepo.Create(ctx, dec); err != nil {
		return nil, fmt.Errorf("failed to record admin decision: %w", err)
	}

	// A load posted straight from pending picks up its price on the way;
	// the log keeps both hops.
	if ld.Status == load.StatusPending {
		if _, err := s.engine.Apply(ctx, appLoad.Request{
			LoadID:  ld.LoadID,
			To:      load.StatusPriced,
			Actor:   actor,
			Meta:    load.TransitionMeta{Comment: params.Comment},
			Pricing: &load.PricingPatch{SuggestedPrice: &suggested},
		}); err != nil {
			return nil, err
		}
	}

	allow := params.AllowCounterBids
	req := appLoad.Request{
		LoadID: ld.LoadID,
		To:     params.PostMode.PostedStatus(),
		Actor:  actor,
		Meta: load.TransitionMeta{
			PostMode:   &mode,
			FinalPrice: &params.FinalPrice,
			Comment:    params.Comment,
		},
		Pricing: &load.PricingPatch{
			SuggestedPrice:    &suggested,
			FinalPrice:        &params.FinalPrice,
			PostMode:          &mode,
			InvitedCarrierIDs: params.InvitedCarrierIDs,
			AllowCounterBids:  &allow,
		},
	}
	if params.PostMode == load.PostModeAssign {
		req.Meta.CarrierID = params.CarrierID
		req.Meta.TruckID = params.TruckID
		req.Assignment = &load.AssignmentPatch{CarrierID: *params.CarrierID, TruckID: params.TruckID}
	}

	updated, err := s.engine.Apply(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("load_id", updated.LoadID.String()).
		Str("post_mode", string(params.PostMode)).
		Int64("final_price", params.FinalPrice).
		Msg("load posted")

	payload := map[string]interface{}{
		"loadId":     updated.LoadID.String(),
		"status":     string(updated.Status),
		"finalPrice": params.FinalPrice,
	}
	s.notifier.Notify(ctx, updated.ShipperID, notification.EventLoadPosted, payload)
	for _, carrierID := range params.InvitedCarrierIDs {
		s.notifier.Notify(ctx, carrierID, notification.EventLoadPosted, payload)
	}
	if params.PostMode == load.PostModeAssign && params.CarrierID != nil {
		s.notifier.Notify(ctx, *params.CarrierID, notification.EventLoadAssigned, payload)
	}
	return updated, nil
}

// checkCarriersExist verifies every id resolves to an active CARRIER user.
func (s *Service) checkCarriersExist(ctx context.Context, ids []uuid.UUID) error {
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]*user.User, len(users))
	for _, u := range users {
		found[u.UserID] = u
	}
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			return fmt.Errorf("invited carrier %s does not exist", id)
		}
		if u.Role != user.RoleCarrier {
			return fmt.Errorf("invited user %s is not a carrier", id)
		}
		if !u.IsActive() {
			return fmt.Errorf("invited carrier %s is not active", id)
		}
	}
	return nil
}
