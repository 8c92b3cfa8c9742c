package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/otp"
	"github.com/freightboard/freightboard/internal/domain/user"
)

// DefaultValidity is the code lifetime when the admin does not pick one.
const DefaultValidity = 10 * time.Minute

// milestoneTransitions maps verified request types onto load movements.
// route_start and registration verify the milestone without moving the
// load.
var milestoneTransitions = map[otp.RequestType]load.Status{
	otp.RequestTripStart: load.StatusInTransit,
	otp.RequestTripEnd:   load.StatusDelivered,
}

// Service gates physical-world milestones behind one-time codes: the
// carrier asks, the admin approves and relays the code, the carrier
// verifies, the load moves.
type Service struct {
	otpRepo     otp.Repository
	engine      *appLoad.Service
	notifier    notification.Notifier
	validity    time.Duration
	maxAttempts int
	logger      zerolog.Logger
}

// NewService creates the OTP service. Non-positive validity or attempt
// limits fall back to the defaults.
func NewService(otpRepo otp.Repository, engine *appLoad.Service, notifier notification.Notifier, validity time.Duration, maxAttempts int, logger zerolog.Logger) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	if maxAttempts <= 0 {
		maxAttempts = otp.DefaultMaxAttempts
	}
	return &Service{
		otpRepo:     otpRepo,
		engine:      engine,
		notifier:    notifier,
		validity:    validity,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("service", "otp").Logger(),
	}
}

// Request files a carrier's ask to unlock a milestone on a load. At most
// one request per type may be in flight per load.
func (s *Service) Request(ctx context.Context, loadID, carrierID uuid.UUID, requestType otp.RequestType) (*otp.Request, error) {
	if !requestType.Valid() {
		return nil, fmt.Errorf("unknown request type %q", requestType)
	}
	ld, err := s.engine.Get(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if ld == nil {
		return nil, fmt.Errorf("%w: %s", load.ErrNotFound, loadID)
	}
	if requestType != otp.RequestRegistration {
		if ld.AssignedCarrierID == nil {
			return nil, errors.New("load has no assigned carrier")
		}
		if *ld.AssignedCarrierID != carrierID {
			return nil, fmt.Errorf("carrier %s is not assigned to load %s", carrierID, loadID)
		}
	}

	inflight, err := s.otpRepo.FindInFlight(ctx, loadID, requestType)
	if err != nil {
		return nil, err
	}
	if inflight != nil {
		return nil, fmt.Errorf("%w: request %s", otp.ErrDuplicateRequest, inflight.RequestID)
	}

	r := otp.NewRequest(loadID, carrierID, requestType)
	if err := s.otpRepo.CreateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create otp request: %w", err)
	}
	s.logger.Info().
		Str("request_id", r.RequestID.String()).
		Str("load_id", loadID.String()).
		Str("request_type", string(requestType)).
		Msg("otp requested")
	s.notifier.Notify(ctx, ld.ShipperID, notification.EventOtpRequested, map[string]interface{}{
		"loadId":      loadID.String(),
		"requestId":   r.RequestID.String(),
		"requestType": string(requestType),
	})
	return r, nil
}

// ApprovalResult carries the one-time plaintext code. It is returned to
// the approving admin exactly once and never stored or broadcast.
type ApprovalResult struct {
	Request   *otp.Request
	OtpID     uuid.UUID
	Code      string
	ExpiresAt time.Time
}

// Approve issues a code against a pending request.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, actor appLoad.Actor, validityMinutes *int) (*ApprovalResult, error) {
	r, err := s.otpRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrRequestNotFound, requestID)
	}

	validity := s.validity
	if validityMinutes != nil && *validityMinutes > 0 {
		validity = time.Duration(*validityMinutes) * time.Minute
	}
	code, err := otp.GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := otp.HashCode(code)
	if err != nil {
		return nil, err
	}
	v := otp.NewVerification(r.RequestID, hash, validity, s.maxAttempts)
	if err := r.Approve(actor.UserID, v.OtpID); err != nil {
		return nil, fmt.Errorf("%w: %s", err, requestID)
	}
	if err := s.otpRepo.ApproveRequest(ctx, r, v); err != nil {
		return nil, fmt.Errorf("failed to approve otp request: %w", err)
	}

	s.logger.Info().
		Str("request_id", r.RequestID.String()).
		Str("otp_id", v.OtpID.String()).
		Time("expires_at", v.ExpiresAt).
		Msg("otp approved")
	s.notifier.Notify(ctx, r.CarrierID, notification.EventOtpApproved, map[string]interface{}{
		"requestId": r.RequestID.String(),
		"otpId":     v.OtpID.String(),
		"expiresAt": v.ExpiresAt,
	})
	return &ApprovalResult{Request: r, OtpID: v.OtpID, Code: code, ExpiresAt: v.ExpiresAt}, nil
}

// Reject closes a pending request; no code is ever generated for it.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, actor appLoad.Actor, notes *string) (*otp.Request, error) {
	r, err := s.otpRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrRequestNotFound, requestID)
	}
	if err := r.Reject(actor.UserID, notes); err != nil {
		return nil, fmt.Errorf("%w: %s", err, requestID)
	}
	if err := s.otpRepo.UpdateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update otp request: %w", err)
	}
	s.logger.Info().Str("request_id", r.RequestID.String()).Msg("otp rejected")
	s.notifier.Notify(ctx, r.CarrierID, notification.EventOtpRejected, map[string]interface{}{
		"requestId": r.RequestID.String(),
	})
	return r, nil
}

// Regenerate replaces the code on an approved request. The prior code is
// expired unconditionally; the request keeps its identity.
func (s *Service) Regenerate(ctx context.Context, requestID uuid.UUID, actor appLoad.Actor, validityMinutes *int) (*ApprovalResult, error) {
	r, err := s.otpRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrRequestNotFound, requestID)
	}
	if r.OtpID == nil {
		return nil, fmt.Errorf("%w: request %s has no code", otp.ErrRequestNotApproved, requestID)
	}
	priorOtpID := *r.OtpID

	validity := s.validity
	if validityMinutes != nil && *validityMinutes > 0 {
		validity = time.Duration(*validityMinutes) * time.Minute
	}
	code, err := otp.GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := otp.HashCode(code)
	if err != nil {
		return nil, err
	}
	v := otp.NewVerification(r.RequestID, hash, validity, s.maxAttempts)
	if err := r.Relink(actor.UserID, v.OtpID); err != nil {
		return nil, fmt.Errorf("%w: %s", err, requestID)
	}
	if err := s.otpRepo.RegenerateRequest(ctx, r, priorOtpID, v); err != nil {
		return nil, fmt.Errorf("failed to regenerate otp: %w", err)
	}

	s.logger.Info().
		Str("request_id", r.RequestID.String()).
		Str("prior_otp_id", priorOtpID.String()).
		Str("otp_id", v.OtpID.String()).
		Msg("otp regenerated")
	s.notifier.Notify(ctx, r.CarrierID, notification.EventOtpApproved, map[string]interface{}{
		"requestId": r.RequestID.String(),
		"otpId":     v.OtpID.String(),
		"expiresAt": v.ExpiresAt,
	})
	return &ApprovalResult{Request: r, OtpID: v.OtpID, Code: code, ExpiresAt: v.ExpiresAt}, nil
}

// VerifyResult carries the verified milestone. Load is set only when the
// milestone moved the load.
type VerifyResult struct {
	Verification *otp.Verification
	Request      *otp.Request
	Load         *load.Load
}

// Verify checks a submitted code and, on success, drives the milestone's
// load transition. Every failure consumes nothing except the attempt
// counter; a verified code stays verified even when the load cannot
// move.
func (s *Service) Verify(ctx context.Context, otpID uuid.UUID, code string, actor appLoad.Actor) (*VerifyResult, error) {
	v, err := s.otpRepo.GetVerification(ctx, otpID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrVerificationNotFound, otpID)
	}

	switch v.Status {
	case otp.VerificationVerified:
		return nil, fmt.Errorf("%w: %s", otp.ErrAlreadyUsed, otpID)
	case otp.VerificationExpired:
		return nil, fmt.Errorf("%w: %s", otp.ErrCodeExpired, otpID)
	}

	now := time.Now().UTC()
	if v.ExpiredBy(now) {
		if err := s.otpRepo.ExpireVerification(ctx, otpID); err != nil {
			s.logger.Warn().Err(err).Str("otp_id", otpID.String()).Msg("failed to mark code expired")
		}
		return nil, fmt.Errorf("%w: %s", otp.ErrCodeExpired, otpID)
	}
	if v.Attempts >= v.MaxAttempts {
		return nil, fmt.Errorf("%w: %s", otp.ErrAttemptsExceeded, otpID)
	}

	r, err := s.otpRepo.GetRequest(ctx, v.RequestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrRequestNotFound, v.RequestID)
	}
	if actor.Role == user.RoleCarrier && actor.UserID != r.CarrierID {
		return nil, fmt.Errorf("%w: %s", otp.ErrVerificationNotFound, otpID)
	}

	updated, err := s.otpRepo.IncrementAttempts(ctx, otpID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// the conditioned increment matched no row: a concurrent caller
		// verified, expired or exhausted the code first
		return nil, fmt.Errorf("%w: %s", otp.ErrAttemptsExceeded, otpID)
	}

	if !otp.CompareCode(updated.CodeHash, code) {
		remaining := updated.MaxAttempts - updated.Attempts
		return nil, fmt.Errorf("%w: %d attempts left", otp.ErrInvalidCode, remaining)
	}

	// The mapped transition is checked before the code is consumed so a
	// correct code against an immovable load fails without burning the
	// verification.
	target, moves := milestoneTransitions[r.RequestType]
	if moves {
		ld, err := s.engine.Get(ctx, r.LoadID)
		if err != nil {
			return nil, err
		}
		if ld == nil {
			return nil, fmt.Errorf("%w: %s", load.ErrNotFound, r.LoadID)
		}
		if !ld.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: %s -> %s", load.ErrInvalidTransition, ld.Status, target)
		}
	}

	verified, err := s.otpRepo.MarkVerified(ctx, otpID)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		return nil, fmt.Errorf("%w: %s", otp.ErrAlreadyUsed, otpID)
	}

	result := &VerifyResult{Verification: verified, Request: r}
	if moves {
		rt := string(r.RequestType)
		ld, terr := s.engine.Transition(ctx, r.LoadID, target, actor, nil, load.TransitionMeta{
			OtpID:       &otpID,
			RequestType: &rt,
		})
		if terr != nil {
			// never un-verify; the load may have moved under us
			s.logger.Warn().Err(terr).
				Str("load_id", r.LoadID.String()).
				Str("to", string(target)).
				Msg("milestone verified but load transition failed")
		} else {
			result.Load = ld
		}
	}

	s.logger.Info().
		Str("otp_id", otpID.String()).
		Str("request_type", string(r.RequestType)).
		Msg("otp verified")
	s.notifier.Notify(ctx, r.CarrierID, notification.EventOtpVerified, map[string]interface{}{
		"otpId":       otpID.String(),
		"loadId":      r.LoadID.String(),
		"requestType": string(r.RequestType),
	})
	if result.Load != nil {
		s.notifier.Notify(ctx, result.Load.ShipperID, notification.EventLoadTransition, map[string]interface{}{
			"loadId": result.Load.LoadID.String(),
			"status": string(result.Load.Status),
		})
	}
	return result, nil
}

// GetRequest returns the request, or nil when unknown.
func (s *Service) GetRequest(ctx context.Context, requestID uuid.UUID) (*otp.Request, error) {
	return s.otpRepo.GetRequest(ctx, requestID)
}

// ListRequests returns requests matching the filter.
func (s *Service) ListRequests(ctx context.Context, filter otp.RequestFilter, limit, offset int) ([]*otp.Request, error) {
	return s.otpRepo.ListRequests(ctx, filter, limit, offset)
}

// ExpireSweep marks overdue pending codes expired. Run periodically.
func (s *Service) ExpireSweep(ctx context.Context) (int64, error) {
	n, err := s.otpRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("expired", n).Msg("expired overdue otp codes")
	}
	return n, nil
}
