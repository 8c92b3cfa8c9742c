package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/user"
)

// Actor describes an authenticated actor performing an operation.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   user.Role
}

// maxTransitionAttempts bounds the optimistic-concurrency retry loop.
const maxTransitionAttempts = 3

// Service is the single gatekeeper of load status changes: every
// mutation of a load's status goes through Apply, which validates the
// target against the canonical table, signs the log row, and performs
// the version-conditioned write.
type Service struct {
	loadRepo   load.Repository
	notifier   notification.Notifier
	signingKey []byte
	logger     zerolog.Logger
}

// NewService creates the load state machine service.
func NewService(loadRepo load.Repository, notifier notification.Notifier, signingKey []byte, logger zerolog.Logger) *Service {
	return &Service{
		loadRepo:   loadRepo,
		notifier:   notifier,
		signingKey: signingKey,
		logger:     logger.With().Str("service", "load").Logger(),
	}
}

// SubmitParams carries the shipper-authored fields of a new load.
type SubmitParams struct {
	ShipperID       uuid.UUID
	PickupLocality  string
	DropoffLocality string
	PickupLat       *float64
	PickupLng       *float64
	DropoffLat      *float64
	DropoffLng      *float64
	DistanceKm      float64
	WeightTons      float64
	LoadType        load.Type
	SaveAsDraft     bool
}

func (p SubmitParams) validate() error {
	if p.PickupLocality == "" || p.DropoffLocality == "" {
		return errors.New("pickup and dropoff localities are required")
	}
	if p.DistanceKm <= 0 {
		return errors.New("distance must be positive")
	}
	if p.WeightTons <= 0 {
		return errors.New("weight must be positive")
	}
	if !p.LoadType.Valid() {
		return fmt.Errorf("unknown load type %q", p.LoadType)
	}
	return nil
}

// Submit creates a load at version 1 with its creation log row and,
// unless saved as a draft, immediately moves it to pending.
func (s *Service) Submit(ctx context.Context, params SubmitParams, actor Actor) (*load.Load, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	ld := load.NewLoad(params.ShipperID, params.PickupLocality, params.DropoffLocality,
		params.DistanceKm, params.WeightTons, params.LoadType)
	ld.PickupLat = params.PickupLat
	ld.PickupLng = params.PickupLng
	ld.DropoffLat = params.DropoffLat
	ld.DropoffLng = params.DropoffLng

	creation := load.NewStateTransition(ld.LoadID, nil, load.StatusDraft, actor.UserID, nil, load.TransitionMeta{})
	sig, err := load.SignTransition(creation, "", s.signingKey)
	if err != nil {
		return nil, err
	}
	creation.Signature = sig

	if err := s.loadRepo.Create(ctx, ld, creation); err != nil {
		return nil, fmt.Errorf("failed to create load: %w", err)
	}
	s.logger.Info().Str("load_id", ld.LoadID.String()).Str("shipper_id", ld.ShipperID.String()).Msg("load created")

	if !params.SaveAsDraft {
		updated, err := s.Transition(ctx, ld.LoadID, load.StatusPending, actor, nil, load.TransitionMeta{})
		if err != nil {
			return nil, err
		}
		ld = updated
	}

	s.notifier.Notify(ctx, ld.ShipperID, notification.EventLoadSubmitted, map[string]interface{}{
		"loadId": ld.LoadID.String(),
		"status": string(ld.Status),
	})
	return ld, nil
}

// Request describes one status change: the target status, the signed log
// row context, and any columns written alongside the status.
type Request struct {
	LoadID     uuid.UUID
	To         load.Status
	Actor      Actor
	Reason     *string
	Meta       load.TransitionMeta
	Pricing    *load.PricingPatch
	Assignment *load.AssignmentPatch
}

// Transition applies a plain status change.
func (s *Service) Transition(ctx context.Context, loadID uuid.UUID, to load.Status, actor Actor, reason *string, meta load.TransitionMeta) (*load.Load, error) {
	return s.Apply(ctx, Request{LoadID: loadID, To: to, Actor: actor, Reason: reason, Meta: meta})
}

// Apply validates the requested transition against the canonical table
// and performs the atomic log-append plus version-conditioned update.
// A version conflict triggers a fresh read-validate-write cycle, at most
// maxTransitionAttempts times, before surfacing the conflict.
func (s *Service) Apply(ctx context.Context, req Request) (*load.Load, error) {
	if !req.To.Valid() {
		return nil, fmt.Errorf("%w: %q", load.ErrUnknownStatus, req.To)
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		ld, err := s.loadRepo.GetByID(ctx, req.LoadID)
		if err != nil {
			return nil, err
		}
		if ld == nil {
			return nil, fmt.Errorf("%w: %s", load.ErrNotFound, req.LoadID)
		}
		if !ld.CanTransitionTo(req.To) {
			return nil, fmt.Errorf("%w: %s -> %s", load.ErrInvalidTransition, ld.Status, req.To)
		}

		prevSig, err := s.loadRepo.LastSignature(ctx, req.LoadID)
		if err != nil {
			return nil, err
		}
		from := ld.Status
		tr := load.NewStateTransition(ld.LoadID, &from, req.To, req.Actor.UserID, req.Reason, req.Meta)
		sig, err := load.SignTransition(tr, prevSig, s.signingKey)
		if err != nil {
			return nil, err
		}
		tr.Signature = sig

		err = s.loadRepo.ApplyTransition(ctx, load.ApplyTransitionParams{
			LoadID:          ld.LoadID,
			ExpectedVersion: ld.Version,
			Transition:      tr,
			Pricing:         req.Pricing,
			Assignment:      req.Assignment,
		})
		if err == nil {
			applyToLocal(ld, req, tr)
			s.logger.Info().
				Str("load_id", ld.LoadID.String()).
				Str("from", string(from)).
				Str("to", string(req.To)).
				Int64("version", ld.Version).
				Msg("load transitioned")
			return ld, nil
		}
		if errors.Is(err, load.ErrVersionConflict) {
			s.logger.Debug().
				Str("load_id", ld.LoadID.String()).
				Int("attempt", attempt).
				Msg("version conflict, retrying transition")
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("transition contended after %d attempts: %w", maxTransitionAttempts, load.ErrVersionConflict)
}

// applyToLocal mirrors the committed update onto the copy handed back to
// the caller, saving a re-read.
func applyToLocal(ld *load.Load, req Request, tr *load.StateTransition) {
	from := ld.Status
	now := tr.TransitionedAt
	ld.PreviousStatus = &from
	ld.Status = req.To
	ld.StatusChangedBy = &req.Actor.UserID
	ld.StatusChangedAt = &now
	ld.Version++
	ld.UpdatedAt = now
	if p := req.Pricing; p != nil {
		if p.SuggestedPrice != nil {
			ld.AdminSuggestedPrice = p.SuggestedPrice
		}
		if p.FinalPrice != nil {
			ld.AdminFinalPrice = p.FinalPrice
		}
		if p.PostMode != nil {
			ld.AdminPostMode = p.PostMode
		}
		if p.InvitedCarrierIDs != nil {
			ld.InvitedCarrierIDs = p.InvitedCarrierIDs
		}
		if p.AllowCounterBids != nil {
			ld.AllowCounterBids = *p.AllowCounterBids
		}
	}
	if a := req.Assignment; a != nil {
		carrierID := a.CarrierID
		ld.AssignedCarrierID = &carrierID
		ld.AssignedTruckID = a.TruckID
	}
}

// BuildTransition validates and signs a log row for a transition that a
// collaborating repository commits in its own transaction, alongside the
// same version check ApplyTransition would make.
func (s *Service) BuildTransition(ctx context.Context, ld *load.Load, to load.Status, actor Actor, reason *string, meta load.TransitionMeta) (*load.StateTransition, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", load.ErrUnknownStatus, to)
	}
	if !ld.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", load.ErrInvalidTransition, ld.Status, to)
	}
	prevSig, err := s.loadRepo.LastSignature(ctx, ld.LoadID)
	if err != nil {
		return nil, err
	}
	from := ld.Status
	tr := load.NewStateTransition(ld.LoadID, &from, to, actor.UserID, reason, meta)
	sig, err := load.SignTransition(tr, prevSig, s.signingKey)
	if err != nil {
		return nil, err
	}
	tr.Signature = sig
	return tr, nil
}

// Get returns the load, or nil when unknown.
func (s *Service) Get(ctx context.Context, loadID uuid.UUID) (*load.Load, error) {
	return s.loadRepo.GetByID(ctx, loadID)
}

// List returns loads matching the filter.
func (s *Service) List(ctx context.Context, filter load.Filter, limit, offset int) ([]*load.Load, error) {
	return s.loadRepo.List(ctx, filter, limit, offset)
}

// History returns the load's state-change log newest-first. Signatures
// are verified against the signing key; a broken chain is logged, never
// hidden.
func (s *Service) History(ctx context.Context, loadID uuid.UUID) ([]*load.StateTransition, error) {
	ld, err := s.loadRepo.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if ld == nil {
		return nil, fmt.Errorf("%w: %s", load.ErrNotFound, loadID)
	}

	rows, err := s.loadRepo.ListTransitions(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if bad, verr := load.VerifyTransitionChain(rows, s.signingKey); verr != nil {
		s.logger.Warn().Err(verr).Str("load_id", loadID.String()).Msg("transition chain verification errored")
	} else if bad >= 0 {
		s.logger.Warn().
			Str("load_id", loadID.String()).
			Int("row", bad).
			Msg("transition log failed signature verification")
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// Cancel moves a load to cancelled on behalf of its shipper or an admin.
func (s *Service) Cancel(ctx context.Context, loadID uuid.UUID, actor Actor, reason *string) (*load.Load, error) {
	ld, err := s.Transition(ctx, loadID, load.StatusCancelled, actor, reason, load.TransitionMeta{})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, ld.ShipperID, notification.EventLoadTransition, map[string]interface{}{
		"loadId": ld.LoadID.String(),
		"status": string(load.StatusCancelled),
	})
	if ld.AssignedCarrierID != nil {
		s.notifier.Notify(ctx, *ld.AssignedCarrierID, notification.EventLoadTransition, map[string]interface{}{
			"loadId": ld.LoadID.String(),
			"status": string(load.StatusCancelled),
		})
	}
	return ld, nil
}
