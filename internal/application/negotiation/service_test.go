package negotiation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/bid"
	bidmocks "github.com/freightboard/freightboard/internal/domain/bid/mocks"
	creditmocks "github.com/freightboard/freightboard/internal/domain/credit/mocks"
	"github.com/freightboard/freightboard/internal/domain/decision"
	decisionmocks "github.com/freightboard/freightboard/internal/domain/decision/mocks"
	"github.com/freightboard/freightboard/internal/domain/load"
	loadmocks "github.com/freightboard/freightboard/internal/domain/load/mocks"
	"github.com/freightboard/freightboard/internal/domain/negotiation"
	negmocks "github.com/freightboard/freightboard/internal/domain/negotiation/mocks"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/screening"
	screeningmocks "github.com/freightboard/freightboard/internal/domain/screening/mocks"
	"github.com/freightboard/freightboard/internal/domain/user"
)

type recordedEvent struct {
	userID uuid.UUID
	event  notification.Event
}

type recordingNotifier struct {
	events []recordedEvent
}

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, event notification.Event, _ map[string]interface{}) {
	r.events = append(r.events, recordedEvent{userID: userID, event: event})
}

func (r *recordingNotifier) eventsOf(kind notification.Event) []recordedEvent {
	var out []recordedEvent
	for _, e := range r.events {
		if e.event == kind {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	loadRepo  *loadmocks.MockRepository
	bids      *bidmocks.MockRepository
	threads   *negmocks.MockRepository
	decisions *decisionmocks.MockRepository
	credit    *creditmocks.MockRepository
	rules     *screeningmocks.MockRepository
	notifier  *recordingNotifier
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &fixture{
		loadRepo:  loadmocks.NewMockRepository(ctrl),
		bids:      bidmocks.NewMockRepository(ctrl),
		threads:   negmocks.NewMockRepository(ctrl),
		decisions: decisionmocks.NewMockRepository(ctrl),
		credit:    creditmocks.NewMockRepository(ctrl),
		rules:     screeningmocks.NewMockRepository(ctrl),
		notifier:  &recordingNotifier{},
	}
	engine := appLoad.NewService(f.loadRepo, notification.Nop{}, []byte("test-key"), zerolog.Nop())
	screener := NewScreener(f.rules, zerolog.Nop())
	f.svc = NewService(engine, f.bids, f.threads, f.decisions, f.credit, screener, f.notifier, zerolog.Nop())
	return f
}

// stubLoadState backs the engine with an in-memory copy of one load.
func (f *fixture) stubLoadState(ld *load.Load) *[]*load.StateTransition {
	var applied []*load.StateTransition
	lastSig := ""

	f.loadRepo.EXPECT().GetByID(gomock.Any(), ld.LoadID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*load.Load, error) {
			cp := *ld
			return &cp, nil
		}).AnyTimes()
	f.loadRepo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (string, error) {
			return lastSig, nil
		}).AnyTimes()
	f.loadRepo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params load.ApplyTransitionParams) error {
			if params.ExpectedVersion != ld.Version {
				return load.ErrVersionConflict
			}
			from := ld.Status
			ld.PreviousStatus = &from
			ld.Status = params.Transition.ToStatus
			ld.Version++
			lastSig = params.Transition.Signature
			applied = append(applied, params.Transition)
			return nil
		}).AnyTimes()

	return &applied
}

func (f *fixture) noScreeningRules() {
	f.rules.EXPECT().ListActive(gomock.Any()).Return(nil, nil).AnyTimes()
}

func (f *fixture) noCreditScore() {
	f.credit.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
}

func postedLoad() *load.Load {
	ld := load.NewLoad(uuid.New(), "Indore", "Pune", 540, 10, load.TypeDryVan)
	ld.ID = 11
	ld.Status = load.StatusOpenForBid
	ld.Version = 4
	finalPrice := int64(58000)
	ld.AdminFinalPrice = &finalPrice
	mode := load.PostModeOpen
	ld.AdminPostMode = &mode
	ld.AllowCounterBids = true
	return ld
}

func adminActor() appLoad.Actor {
	return appLoad.Actor{UserID: uuid.New(), Name: "ops", Role: user.RoleAdmin}
}

func carrierActor(id uuid.UUID) appLoad.Actor {
	return appLoad.Actor{UserID: id, Name: "carrier", Role: user.RoleCarrier}
}

func TestService_PlaceBid(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)
	f.noScreeningRules()
	f.noCreditScore()

	carrierID := uuid.New()
	thread := negotiation.NewThread(ld.LoadID)
	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(thread, nil)

	var created *bid.Bid
	f.bids.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *bid.Bid) error {
			created = b
			return nil
		})
	f.threads.EXPECT().RecordBid(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, placed negotiation.BidPlaced) (*negotiation.Thread, error) {
			require.Equal(t, thread.ThreadID, placed.ThreadID)
			assert.False(t, placed.Simulated)
			assert.False(t, placed.AnswersCounter)
			assert.Equal(t, negotiation.ThreadPendingReview, placed.NewStatus)
			cp := *thread
			cp.TotalBids = 1
			cp.RealBids = 1
			return &cp, nil
		})

	b, th, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: carrierID,
		Amount:    54000,
	}, carrierActor(carrierID))

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, bid.StatusPending, b.Status)
	assert.Equal(t, bid.TypeCarrierBid, b.BidType)
	assert.False(t, b.ApprovalRequired)
	assert.Equal(t, 1, th.TotalBids)

	placed := f.notifier.eventsOf(notification.EventBidPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, ld.ShipperID, placed[0].userID)
}

func TestService_PlaceBid_MatchingPostedPrice(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)
	f.noScreeningRules()
	f.noCreditScore()

	carrierID := uuid.New()
	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(negotiation.NewThread(ld.LoadID), nil)
	f.bids.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.threads.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(negotiation.NewThread(ld.LoadID), nil)

	b, _, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: carrierID,
		Amount:    58000,
	}, carrierActor(carrierID))

	require.NoError(t, err)
	assert.Equal(t, bid.TypeAdminPostedAcceptance, b.BidType)
}

func TestService_PlaceBid_ScreeningFlagsBid(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)

	carrierID := uuid.New()
	f.credit.EXPECT().Get(gomock.Any(), carrierID).Return(nil, nil)
	rule := screening.NewRule("overpriced ask", "ratio > 1.2", 20, nil)
	f.rules.EXPECT().ListActive(gomock.Any()).Return([]*screening.Rule{rule}, nil)

	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(negotiation.NewThread(ld.LoadID), nil)
	f.bids.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.threads.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(negotiation.NewThread(ld.LoadID), nil)

	// 75000 against a 58000 posting is a 1.29 ratio
	b, _, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: carrierID,
		Amount:    75000,
	}, carrierActor(carrierID))

	require.NoError(t, err)
	assert.True(t, b.ApprovalRequired)
}

func TestService_PlaceBid_InviteRestriction(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	ld.Status = load.StatusPostedToCarriers
	mode := load.PostModeInvite
	ld.AdminPostMode = &mode
	invited := uuid.New()
	ld.InvitedCarrierIDs = []uuid.UUID{invited}
	f.stubLoadState(ld)

	stranger := uuid.New()
	_, _, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: stranger,
		Amount:    54000,
	}, carrierActor(stranger))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not invited")
}

func TestService_PlaceBid_LoadNotAcceptingBids(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	ld.Status = load.StatusAwarded
	f.stubLoadState(ld)

	carrierID := uuid.New()
	_, _, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: carrierID,
		Amount:    54000,
	}, carrierActor(carrierID))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accepting bids")
}

func TestService_PlaceBid_SimulatedIsAdminOnly(t *testing.T) {
	f := newFixture(t)

	carrierID := uuid.New()
	_, _, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    uuid.New(),
		CarrierID: carrierID,
		Amount:    54000,
		Simulated: true,
	}, carrierActor(carrierID))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin-only")
}

func TestService_PlaceBid_SimulatedByAdmin(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)
	f.noScreeningRules()
	f.noCreditScore()

	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(negotiation.NewThread(ld.LoadID), nil)
	f.bids.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.threads.EXPECT().RecordBid(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, placed negotiation.BidPlaced) (*negotiation.Thread, error) {
			assert.True(t, placed.Simulated)
			cp := *negotiation.NewThread(ld.LoadID)
			cp.TotalBids = 1
			cp.SimulatedBids = 1
			return &cp, nil
		})

	b, th, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: uuid.New(),
		Amount:    52000,
		Simulated: true,
	}, adminActor())

	require.NoError(t, err)
	assert.True(t, b.Simulated)
	assert.Equal(t, 1, th.SimulatedBids)
}

func TestService_PlaceBid_AnswersCounter(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	applied := f.stubLoadState(ld)
	f.noScreeningRules()
	f.noCreditScore()

	carrierID := uuid.New()
	thread := negotiation.NewThread(ld.LoadID)
	thread.Status = negotiation.ThreadCounterSent
	thread.PendingCounters = 1
	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(thread, nil)
	f.bids.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.threads.EXPECT().RecordBid(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, placed negotiation.BidPlaced) (*negotiation.Thread, error) {
			assert.True(t, placed.AnswersCounter)
			assert.Equal(t, negotiation.ThreadCarrierResponded, placed.NewStatus)
			cp := *thread
			cp.Status = negotiation.ThreadCarrierResponded
			cp.PendingCounters = 0
			return &cp, nil
		})

	_, th, err := f.svc.PlaceBid(context.Background(), PlaceBidParams{
		LoadID:    ld.LoadID,
		CarrierID: carrierID,
		Amount:    56500,
	}, carrierActor(carrierID))

	require.NoError(t, err)
	assert.Equal(t, negotiation.ThreadCarrierResponded, th.Status)
	require.Len(t, *applied, 1)
	assert.Equal(t, load.StatusCounterReceived, (*applied)[0].ToStatus)
}

func TestService_AcceptBid(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)
	actor := adminActor()

	chosen := bid.NewBid(ld.LoadID, uuid.New(), 56500, bid.TypeCarrierBid, false)
	rival := bid.NewBid(ld.LoadID, uuid.New(), 59000, bid.TypeCarrierBid, false)
	alreadyOut := bid.NewBid(ld.LoadID, uuid.New(), 61000, bid.TypeCarrierBid, false)
	alreadyOut.Status = bid.StatusRejected

	thread := negotiation.NewThread(ld.LoadID)
	f.bids.EXPECT().GetByID(gomock.Any(), chosen.BidID).Return(chosen, nil)
	f.threads.EXPECT().GetByLoad(gomock.Any(), ld.LoadID).Return(thread, nil)
	f.bids.EXPECT().ListByLoad(gomock.Any(), ld.LoadID).Return([]*bid.Bid{chosen, rival, alreadyOut}, nil)

	f.threads.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params negotiation.AcceptBidParams) error {
			assert.Equal(t, ld.LoadID, params.LoadID)
			assert.Equal(t, thread.ThreadID, params.ThreadID)
			assert.Equal(t, chosen.BidID, params.BidID)
			assert.Equal(t, chosen.CarrierID, params.CarrierID)
			assert.Equal(t, int64(56500), params.Amount)
			assert.Equal(t, int64(4), params.LoadExpectedVersion)
			require.NotNil(t, params.Transition)
			assert.Equal(t, load.StatusAwarded, params.Transition.ToStatus)
			require.NotNil(t, params.Transition.Meta.BidID)
			assert.Equal(t, chosen.BidID, *params.Transition.Meta.BidID)
			return nil
		})

	accepted, err := f.svc.AcceptBid(context.Background(), ld.LoadID, chosen.BidID, nil, actor)

	require.NoError(t, err)
	assert.Equal(t, bid.StatusAccepted, accepted.Status)

	wins := f.notifier.eventsOf(notification.EventBidAccepted)
	require.Len(t, wins, 1)
	assert.Equal(t, chosen.CarrierID, wins[0].userID)

	// only the still-open rival is told, not the long-rejected one
	losses := f.notifier.eventsOf(notification.EventBidRejected)
	require.Len(t, losses, 1)
	assert.Equal(t, rival.CarrierID, losses[0].userID)
}

func TestService_AcceptBid_TerminalThread(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()

	chosen := bid.NewBid(ld.LoadID, uuid.New(), 56500, bid.TypeCarrierBid, false)
	thread := negotiation.NewThread(ld.LoadID)
	thread.Status = negotiation.ThreadAccepted

	f.bids.EXPECT().GetByID(gomock.Any(), chosen.BidID).Return(chosen, nil)
	f.threads.EXPECT().GetByLoad(gomock.Any(), ld.LoadID).Return(thread, nil)

	_, err := f.svc.AcceptBid(context.Background(), ld.LoadID, chosen.BidID, nil, adminActor())
	assert.ErrorIs(t, err, negotiation.ErrThreadClosed)
}

func TestService_AcceptBid_ApprovalRequiredGate(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()

	flagged := bid.NewBid(ld.LoadID, uuid.New(), 75000, bid.TypeCarrierBid, false)
	flagged.ApprovalRequired = true
	f.bids.EXPECT().GetByID(gomock.Any(), flagged.BidID).Return(flagged, nil)

	shipper := appLoad.Actor{UserID: ld.ShipperID, Name: "shipper", Role: user.RoleShipper}
	_, err := f.svc.AcceptBid(context.Background(), ld.LoadID, flagged.BidID, nil, shipper)
	assert.ErrorIs(t, err, ErrApprovalRequired)
}

func TestService_AcceptBid_NotOpen(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()

	gone := bid.NewBid(ld.LoadID, uuid.New(), 56500, bid.TypeCarrierBid, false)
	gone.Status = bid.StatusRejected
	f.bids.EXPECT().GetByID(gomock.Any(), gone.BidID).Return(gone, nil)

	_, err := f.svc.AcceptBid(context.Background(), ld.LoadID, gone.BidID, nil, adminActor())
	assert.ErrorIs(t, err, bid.ErrNotOpen)
}

func TestService_AcceptBid_WrongLoad(t *testing.T) {
	f := newFixture(t)

	b := bid.NewBid(uuid.New(), uuid.New(), 56500, bid.TypeCarrierBid, false)
	f.bids.EXPECT().GetByID(gomock.Any(), b.BidID).Return(b, nil)

	_, err := f.svc.AcceptBid(context.Background(), uuid.New(), b.BidID, nil, adminActor())
	assert.ErrorIs(t, err, bid.ErrNotFound)
}

func TestService_AcceptBid_RetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)

	chosen := bid.NewBid(ld.LoadID, uuid.New(), 56500, bid.TypeCarrierBid, false)
	thread := negotiation.NewThread(ld.LoadID)
	f.bids.EXPECT().GetByID(gomock.Any(), chosen.BidID).Return(chosen, nil)
	f.threads.EXPECT().GetByLoad(gomock.Any(), ld.LoadID).Return(thread, nil)
	f.bids.EXPECT().ListByLoad(gomock.Any(), ld.LoadID).Return([]*bid.Bid{chosen}, nil)

	gomock.InOrder(
		f.threads.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).Return(load.ErrVersionConflict),
		f.threads.EXPECT().AcceptBid(gomock.Any(), gomock.Any()).Return(nil),
	)

	accepted, err := f.svc.AcceptBid(context.Background(), ld.LoadID, chosen.BidID, nil, adminActor())
	require.NoError(t, err)
	assert.Equal(t, bid.StatusAccepted, accepted.Status)
}

func TestService_CounterBid(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	applied := f.stubLoadState(ld)
	actor := adminActor()

	b := bid.NewBid(ld.LoadID, uuid.New(), 62000, bid.TypeCarrierBid, false)
	thread := negotiation.NewThread(ld.LoadID)
	f.bids.EXPECT().GetByID(gomock.Any(), b.BidID).Return(b, nil)
	f.threads.EXPECT().GetByLoad(gomock.Any(), ld.LoadID).Return(thread, nil)

	var dec *decision.AdminDecision
	f.decisions.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *decision.AdminDecision) error {
			dec = d
			return nil
		})
	f.bids.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updated *bid.Bid) error {
			assert.Equal(t, bid.StatusCountered, updated.Status)
			require.NotNil(t, updated.CounterAmount)
			assert.Equal(t, int64(57000), *updated.CounterAmount)
			return nil
		})
	f.threads.EXPECT().RecordCounter(gomock.Any(), thread.ThreadID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*negotiation.Thread, error) {
			cp := *thread
			cp.Status = negotiation.ThreadCounterSent
			cp.PendingCounters = 1
			return &cp, nil
		})

	msg := "fuel surcharge already included"
	countered, err := f.svc.CounterBid(context.Background(), ld.LoadID, b.BidID, 57000, &msg, actor)

	require.NoError(t, err)
	assert.Equal(t, bid.StatusCountered, countered.Status)

	require.NotNil(t, dec)
	assert.Equal(t, decision.ActionCounterBid, dec.ActionType)
	require.NotNil(t, dec.BidID)
	assert.Equal(t, b.BidID, *dec.BidID)
	require.NotNil(t, dec.FinalPrice)
	assert.Equal(t, int64(57000), *dec.FinalPrice)

	// countering never moves the load
	assert.Empty(t, *applied)

	told := f.notifier.eventsOf(notification.EventBidCountered)
	require.Len(t, told, 1)
	assert.Equal(t, b.CarrierID, told[0].userID)
}

func TestService_CounterBid_DisallowedByLoad(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	ld.AllowCounterBids = false
	f.stubLoadState(ld)

	_, err := f.svc.CounterBid(context.Background(), ld.LoadID, uuid.New(), 57000, nil, adminActor())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not allow counter offers")
}

func TestService_CounterBid_AlreadyCountered(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)

	b := bid.NewBid(ld.LoadID, uuid.New(), 62000, bid.TypeCarrierBid, false)
	prior := int64(57000)
	b.Status = bid.StatusCountered
	b.CounterAmount = &prior
	f.bids.EXPECT().GetByID(gomock.Any(), b.BidID).Return(b, nil)
	f.threads.EXPECT().GetByLoad(gomock.Any(), ld.LoadID).Return(negotiation.NewThread(ld.LoadID), nil)

	_, err := f.svc.CounterBid(context.Background(), ld.LoadID, b.BidID, 55000, nil, adminActor())
	assert.ErrorIs(t, err, bid.ErrNotOpen)
}

func TestService_GetThread(t *testing.T) {
	f := newFixture(t)
	ld := postedLoad()
	f.stubLoadState(ld)

	thread := negotiation.NewThread(ld.LoadID)
	b := bid.NewBid(ld.LoadID, uuid.New(), 54000, bid.TypeCarrierBid, false)
	f.threads.EXPECT().GetOrCreate(gomock.Any(), ld.LoadID).Return(thread, nil)
	f.bids.EXPECT().ListByLoad(gomock.Any(), ld.LoadID).Return([]*bid.Bid{b}, nil)

	th, bids, err := f.svc.GetThread(context.Background(), ld.LoadID)
	require.NoError(t, err)
	assert.Equal(t, thread.ThreadID, th.ThreadID)
	require.Len(t, bids, 1)
	assert.Equal(t, b.BidID, bids[0].BidID)
}

func TestService_GetThread_UnknownLoad(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.loadRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, _, err := f.svc.GetThread(context.Background(), id)
	assert.ErrorIs(t, err, load.ErrNotFound)
}
