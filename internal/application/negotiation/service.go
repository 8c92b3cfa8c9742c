package negotiation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/bid"
	"github.com/freightboard/freightboard/internal/domain/credit"
	"github.com/freightboard/freightboard/internal/domain/decision"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/negotiation"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/user"
)

// ErrApprovalRequired marks a flagged bid that only an admin may accept.
var ErrApprovalRequired = errors.New("bid requires admin approval to accept")

const maxAcceptAttempts = 3

// Service runs the negotiation around posted loads: bids, counters and
// the final acceptance.
type Service struct {
	engine       *appLoad.Service
	bidRepo      bid.Repository
	threadRepo   negotiation.Repository
	decisionRepo decision.Repository
	creditRepo   credit.Repository
	screener     *Screener
	notifier     notification.Notifier
	logger       zerolog.Logger
}

// NewService creates the negotiation service.
func NewService(
	engine *appLoad.Service,
	bidRepo bid.Repository,
	threadRepo negotiation.Repository,
	decisionRepo decision.Repository,
	creditRepo credit.Repository,
	screener *Screener,
	notifier notification.Notifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		engine:       engine,
		bidRepo:      bidRepo,
		threadRepo:   threadRepo,
		decisionRepo: decisionRepo,
		creditRepo:   creditRepo,
		screener:     screener,
		notifier:     notifier,
		logger:       logger.With().Str("service", "negotiation").Logger(),
	}
}

// GetThread returns the load's thread (created lazily) with its bids.
func (s *Service) GetThread(ctx context.Context, loadID uuid.UUID) (*negotiation.Thread, []*bid.Bid, error) {
	ld, err := s.engine.Get(ctx, loadID)
	if err != nil {
		return nil, nil, err
	}
	if ld == nil {
		return nil, nil, fmt.Errorf("%w: %s", load.ErrNotFound, loadID)
	}
	thread, err := s.threadRepo.GetOrCreate(ctx, loadID)
	if err != nil {
		return nil, nil, err
	}
	bids, err := s.bidRepo.ListByLoad(ctx, loadID)
	if err != nil {
		return nil, nil, err
	}
	return thread, bids, nil
}

// PlaceBidParams carries one incoming bid.
type PlaceBidParams struct {
	LoadID    uuid.UUID
	CarrierID uuid.UUID
	Amount    int64
	Simulated bool
}

// PlaceBid records a carrier's offer on a posted load. Simulated bids are
// the admin's tool for seeding competition and never answer counters. A
// bid matching the posted price exactly is recorded as an acceptance of
// that price.
func (s *Service) PlaceBid(ctx context.Context, params PlaceBidParams, actor appLoad.Actor) (*bid.Bid, *negotiation.Thread, error) {
	if params.Amount <= 0 {
		return nil, nil, errors.New("bid amount must be positive")
	}
	if params.Simulated && actor.Role != user.RoleAdmin {
		return nil, nil, errors.New("simulated bids are admin-only")
	}

	ld, err := s.engine.Get(ctx, params.LoadID)
	if err != nil {
		return nil, nil, err
	}
	if ld == nil {
		return nil, nil, fmt.Errorf("%w: %s", load.ErrNotFound, params.LoadID)
	}
	if !ld.Status.AcceptsBids() {
		return nil, nil, fmt.Errorf("load %s is not accepting bids in status %s", ld.LoadID, ld.Status)
	}
	if ld.AdminPostMode != nil && *ld.AdminPostMode == load.PostModeInvite && !ld.IsInvited(params.CarrierID) {
		return nil, nil, fmt.Errorf("carrier %s is not invited to bid on load %s", params.CarrierID, ld.LoadID)
	}

	thread, err := s.threadRepo.GetOrCreate(ctx, ld.LoadID)
	if err != nil {
		return nil, nil, err
	}
	if thread.Terminal() {
		return nil, nil, fmt.Errorf("%w: load %s", negotiation.ErrThreadClosed, ld.LoadID)
	}

	bidType := bid.TypeCarrierBid
	if ld.AdminFinalPrice != nil && params.Amount == *ld.AdminFinalPrice {
		bidType = bid.TypeAdminPostedAcceptance
	}

	score := credit.DefaultScore
	if sc, err := s.creditRepo.Get(ctx, params.CarrierID); err != nil {
		s.logger.Warn().Err(err).Str("carrier_id", params.CarrierID.String()).Msg("carrier score unavailable, using default")
	} else if sc != nil {
		score = sc.Score
	}

	b := bid.NewBid(ld.LoadID, params.CarrierID, params.Amount, bidType, params.Simulated)
	rule, err := s.screener.Screen(ctx, bidParams(ld, params.Amount, bidType, params.Simulated, score))
	if err != nil {
		return nil, nil, err
	}
	if rule != nil {
		b.ApprovalRequired = true
		s.logger.Info().
			Str("bid_id", b.BidID.String()).
			Str("rule", rule.Name).
			Msg("bid flagged for approval")
	}

	if err := s.bidRepo.Create(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("failed to create bid: %w", err)
	}

	answersCounter := thread.Status == negotiation.ThreadCounterSent && !params.Simulated
	newStatus := thread.Status
	if answersCounter {
		newStatus = negotiation.ThreadCarrierResponded
	}
	updated, err := s.threadRepo.RecordBid(ctx, negotiation.BidPlaced{
		ThreadID:       thread.ThreadID,
		Simulated:      params.Simulated,
		AnswersCounter: answersCounter,
		NewStatus:      newStatus,
	})
	if err != nil {
		return nil, nil, err
	}

	// A carrier answering the admin's counter puts the load back on the
	// admin's desk. The bid stands even if the load moved meanwhile.
	if answersCounter && ld.Status != load.StatusCounterReceived {
		if _, err := s.engine.Apply(ctx, appLoad.Request{
			LoadID: ld.LoadID,
			To:     load.StatusCounterReceived,
			Actor:  actor,
			Meta:   load.TransitionMeta{BidID: &b.BidID, CarrierID: &params.CarrierID, Amount: &params.Amount},
		}); err != nil {
			s.logger.Warn().Err(err).Str("load_id", ld.LoadID.String()).Msg("load did not move to counter_received")
		}
	}

	s.logger.Info().
		Str("bid_id", b.BidID.String()).
		Str("load_id", ld.LoadID.String()).
		Int64("amount", b.Amount).
		Bool("simulated", b.Simulated).
		Msg("bid placed")
	s.notifier.Notify(ctx, ld.ShipperID, notification.EventBidPlaced, map[string]interface{}{
		"loadId": ld.LoadID.String(),
		"bidId":  b.BidID.String(),
		"amount": b.Amount,
	})
	return b, updated, nil
}

// AcceptBid awards the load to the chosen bid. The chosen bid, every
// sibling open bid, the thread and the load move in one transaction; a
// failing load transition rolls everything back.
func (s *Service) AcceptBid(ctx context.Context, loadID, bidID uuid.UUID, truckID *string, actor appLoad.Actor) (*bid.Bid, error) {
	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", bid.ErrNotFound, bidID)
	}
	if b.LoadID != loadID {
		return nil, fmt.Errorf("%w: bid %s does not belong to load %s", bid.ErrNotFound, bidID, loadID)
	}
	if !b.Status.Open() {
		return nil, fmt.Errorf("%w: bid %s is %s", bid.ErrNotOpen, bidID, b.Status)
	}
	if b.ApprovalRequired && actor.Role != user.RoleAdmin {
		return nil, fmt.Errorf("%w: bid %s", ErrApprovalRequired, bidID)
	}

	thread, err := s.threadRepo.GetByLoad(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("%w: load %s", negotiation.ErrThreadNotFound, loadID)
	}
	if thread.Terminal() {
		return nil, fmt.Errorf("%w: load %s", negotiation.ErrThreadClosed, loadID)
	}

	// Siblings are captured before the transaction so the losers can be
	// told afterwards.
	siblings, err := s.bidRepo.ListByLoad(ctx, loadID)
	if err != nil {
		return nil, err
	}

	var accepted bool
	for attempt := 1; attempt <= maxAcceptAttempts; attempt++ {
		ld, err := s.engine.Get(ctx, loadID)
		if err != nil {
			return nil, err
		}
		if ld == nil {
			return nil, fmt.Errorf("%w: %s", load.ErrNotFound, loadID)
		}
		tr, err := s.engine.BuildTransition(ctx, ld, load.StatusAwarded, actor, nil, load.TransitionMeta{
			BidID:     &b.BidID,
			CarrierID: &b.CarrierID,
			TruckID:   truckID,
			Amount:    &b.Amount,
		})
		if err != nil {
			return nil, err
		}
		err = s.threadRepo.AcceptBid(ctx, negotiation.AcceptBidParams{
			LoadID:              loadID,
			ThreadID:            thread.ThreadID,
			BidID:               b.BidID,
			CarrierID:           b.CarrierID,
			TruckID:             truckID,
			Amount:              b.Amount,
			LoadExpectedVersion: ld.Version,
			Transition:          tr,
		})
		if err == nil {
			accepted = true
			break
		}
		if errors.Is(err, load.ErrVersionConflict) {
			s.logger.Debug().Str("load_id", loadID.String()).Int("attempt", attempt).Msg("version conflict, retrying acceptance")
			continue
		}
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("acceptance contended after %d attempts: %w", maxAcceptAttempts, load.ErrVersionConflict)
	}

	b.Status = bid.StatusAccepted
	s.logger.Info().
		Str("load_id", loadID.String()).
		Str("bid_id", b.BidID.String()).
		Str("carrier_id", b.CarrierID.String()).
		Int64("amount", b.Amount).
		Msg("bid accepted")

	payload := map[string]interface{}{
		"loadId": loadID.String(),
		"bidId":  b.BidID.String(),
		"amount": b.Amount,
	}
	s.notifier.Notify(ctx, b.CarrierID, notification.EventBidAccepted, payload)
	for _, sib := range siblings {
		if sib.BidID != b.BidID && sib.Status.Open() {
			s.notifier.Notify(ctx, sib.CarrierID, notification.EventBidRejected, map[string]interface{}{
				"loadId": loadID.String(),
				"bidId":  sib.BidID.String(),
			})
		}
	}
	return b, nil
}

// CounterBid answers a pending bid with the admin's counter-offer. The
// load's allow_counter_bids flag is re-checked on every call; the load's
// status never changes here.
func (s *Service) CounterBid(ctx context.Context, loadID, bidID uuid.UUID, counterAmount int64, counterMessage *string, actor appLoad.Actor) (*bid.Bid, error) {
	if counterAmount <= 0 {
		return nil, errors.New("counter amount must be positive")
	}

	ld, err := s.engine.Get(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if ld == nil {
		return nil, fmt.Errorf("%w: %s", load.ErrNotFound, loadID)
	}
	if !ld.AllowCounterBids {
		return nil, fmt.Errorf("load %s does not allow counter offers", loadID)
	}

	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", bid.ErrNotFound, bidID)
	}
	if b.LoadID != loadID {
		return nil, fmt.Errorf("%w: bid %s does not belong to load %s", bid.ErrNotFound, bidID, loadID)
	}

	thread, err := s.threadRepo.GetByLoad(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("%w: load %s", negotiation.ErrThreadNotFound, loadID)
	}
	if thread.Terminal() {
		return nil, fmt.Errorf("%w: load %s", negotiation.ErrThreadClosed, loadID)
	}

	if err := b.Counter(counterAmount, counterMessage); err != nil {
		return nil, fmt.Errorf("%w: bid %s is %s", err, bidID, b.Status)
	}

	dec := decision.NewAdminDecision(loadID, actor.UserID, decision.ActionCounterBid)
	dec.BidID = &b.BidID
	dec.FinalPrice = &counterAmount
	dec.Comment = counterMessage
	if err := s.decisionRepo.Create(ctx, dec); err != nil {
		return nil, fmt.Errorf("failed to record admin decision: %w", err)
	}

	if err := s.bidRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update bid: %w", err)
	}
	if _, err := s.threadRepo.RecordCounter(ctx, thread.ThreadID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("load_id", loadID.String()).
		Str("bid_id", b.BidID.String()).
		Int64("counter_amount", counterAmount).
		Msg("bid countered")
	s.notifier.Notify(ctx, b.CarrierID, notification.EventBidCountered, map[string]interface{}{
		"loadId":        loadID.String(),
		"bidId":         b.BidID.String(),
		"counterAmount": counterAmount,
	})
	return b, nil
}

// ListBids returns bids matching the filter.
func (s *Service) ListBids(ctx context.Context, filter bid.Filter, limit, offset int) ([]*bid.Bid, error) {
	return s.bidRepo.List(ctx, filter, limit, offset)
}
