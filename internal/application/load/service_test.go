package load

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/load/mocks"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/user"
)

var testKey = []byte("load-signing-key")

func newTestService(repo load.Repository) *Service {
	return NewService(repo, notification.Nop{}, testKey, zerolog.Nop())
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Name: "ops", Role: user.RoleAdmin}
}

func pricedLoad() *load.Load {
	ld := load.NewLoad(uuid.New(), "Indore", "Pune", 540, 10, load.TypeDryVan)
	ld.ID = 1
	ld.Status = load.StatusPriced
	ld.Version = 3
	return ld
}

func TestService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)
	actor := adminActor()

	var created *load.Load
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ld *load.Load, tr *load.StateTransition) error {
			require.Equal(t, load.StatusDraft, ld.Status)
			require.Equal(t, int64(1), ld.Version)
			require.Nil(t, tr.FromStatus)
			require.Equal(t, load.StatusDraft, tr.ToStatus)
			require.NotEmpty(t, tr.Signature)
			cp := *ld
			created = &cp
			return nil
		})
	repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (*load.Load, error) {
			require.Equal(t, created.LoadID, id)
			cp := *created
			return &cp, nil
		})
	repo.EXPECT().LastSignature(gomock.Any(), gomock.Any()).Return("aaaa", nil)
	repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params load.ApplyTransitionParams) error {
			require.Equal(t, int64(1), params.ExpectedVersion)
			require.Equal(t, load.StatusPending, params.Transition.ToStatus)
			require.NotNil(t, params.Transition.FromStatus)
			require.Equal(t, load.StatusDraft, *params.Transition.FromStatus)
			return nil
		})

	ld, err := svc.Submit(context.Background(), SubmitParams{
		ShipperID:       uuid.New(),
		PickupLocality:  "Indore",
		DropoffLocality: "Pune",
		DistanceKm:      540,
		WeightTons:      10,
		LoadType:        load.TypeDryVan,
	}, actor)

	require.NoError(t, err)
	assert.Equal(t, load.StatusPending, ld.Status)
	assert.Equal(t, int64(2), ld.Version)
	require.NotNil(t, ld.PreviousStatus)
	assert.Equal(t, load.StatusDraft, *ld.PreviousStatus)
}

func TestService_Submit_Draft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	ld, err := svc.Submit(context.Background(), SubmitParams{
		ShipperID:       uuid.New(),
		PickupLocality:  "Indore",
		DropoffLocality: "Pune",
		DistanceKm:      540,
		WeightTons:      10,
		LoadType:        load.TypeReefer,
		SaveAsDraft:     true,
	}, adminActor())

	require.NoError(t, err)
	assert.Equal(t, load.StatusDraft, ld.Status)
	assert.Equal(t, int64(1), ld.Version)
}

func TestService_Submit_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	tests := []struct {
		name   string
		params SubmitParams
	}{
		{"missing locality", SubmitParams{DropoffLocality: "Pune", DistanceKm: 100, WeightTons: 5, LoadType: load.TypeDryVan}},
		{"zero distance", SubmitParams{PickupLocality: "Indore", DropoffLocality: "Pune", WeightTons: 5, LoadType: load.TypeDryVan}},
		{"zero weight", SubmitParams{PickupLocality: "Indore", DropoffLocality: "Pune", DistanceKm: 100, LoadType: load.TypeDryVan}},
		{"unknown type", SubmitParams{PickupLocality: "Indore", DropoffLocality: "Pune", DistanceKm: 100, WeightTons: 5, LoadType: "hovercraft"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.ShipperID = uuid.New()
			_, err := svc.Submit(context.Background(), tt.params, adminActor())
			assert.Error(t, err)
		})
	}
}

func TestService_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)
	actor := adminActor()

	ld := pricedLoad()
	finalPrice := int64(31200)
	mode := load.PostModeOpen
	allow := true

	repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(ld, nil)
	repo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).Return("bbbb", nil)
	repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params load.ApplyTransitionParams) error {
			require.Equal(t, int64(3), params.ExpectedVersion)
			require.Equal(t, load.StatusOpenForBid, params.Transition.ToStatus)
			require.NotNil(t, params.Pricing)
			require.Equal(t, finalPrice, *params.Pricing.FinalPrice)
			ok, verr := load.VerifyTransition(params.Transition, "bbbb", testKey)
			require.NoError(t, verr)
			require.True(t, ok)
			return nil
		})

	updated, err := svc.Apply(context.Background(), Request{
		LoadID: ld.LoadID,
		To:     load.StatusOpenForBid,
		Actor:  actor,
		Meta:   load.TransitionMeta{FinalPrice: &finalPrice, PostMode: &mode},
		Pricing: &load.PricingPatch{
			FinalPrice:       &finalPrice,
			PostMode:         &mode,
			AllowCounterBids: &allow,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, load.StatusOpenForBid, updated.Status)
	assert.Equal(t, int64(4), updated.Version)
	require.NotNil(t, updated.AdminFinalPrice)
	assert.Equal(t, finalPrice, *updated.AdminFinalPrice)
	assert.True(t, updated.AllowCounterBids)
	require.NotNil(t, updated.StatusChangedBy)
	assert.Equal(t, actor.UserID, *updated.StatusChangedBy)
}

func TestService_Apply_UnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), Request{LoadID: uuid.New(), To: "teleported", Actor: adminActor()})
	assert.ErrorIs(t, err, load.ErrUnknownStatus)
}

func TestService_Apply_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	id := uuid.New()
	repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.Apply(context.Background(), Request{LoadID: id, To: load.StatusPending, Actor: adminActor()})
	assert.ErrorIs(t, err, load.ErrNotFound)
}

func TestService_Apply_InvalidTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	ld := pricedLoad()
	ld.Status = load.StatusDelivered
	repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(ld, nil)

	_, err := svc.Apply(context.Background(), Request{LoadID: ld.LoadID, To: load.StatusOpenForBid, Actor: adminActor()})
	assert.ErrorIs(t, err, load.ErrInvalidTransition)
}

func TestService_Apply_RetriesOnVersionConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	ld := pricedLoad()
	stale := *ld
	fresh := *ld
	fresh.Version = 4

	gomock.InOrder(
		repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(&stale, nil),
		repo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).Return("cccc", nil),
		repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).Return(load.ErrVersionConflict),
		repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(&fresh, nil),
		repo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).Return("dddd", nil),
		repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params load.ApplyTransitionParams) error {
				require.Equal(t, int64(4), params.ExpectedVersion)
				return nil
			}),
	)

	updated, err := svc.Apply(context.Background(), Request{LoadID: ld.LoadID, To: load.StatusOpenForBid, Actor: adminActor()})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Version)
}

func TestService_Apply_ConflictExhaustion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	ld := pricedLoad()
	repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*load.Load, error) {
			cp := *ld
			return &cp, nil
		}).Times(3)
	repo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).Return("eeee", nil).Times(3)
	repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).Return(load.ErrVersionConflict).Times(3)

	_, err := svc.Apply(context.Background(), Request{LoadID: ld.LoadID, To: load.StatusOpenForBid, Actor: adminActor()})
	assert.ErrorIs(t, err, load.ErrVersionConflict)
}

func TestService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	ld := pricedLoad()
	actorID := uuid.New()

	draft := load.StatusDraft
	pending := load.StatusPending
	first := load.NewStateTransition(ld.LoadID, nil, draft, actorID, nil, load.TransitionMeta{})
	sig1, err := load.SignTransition(first, "", testKey)
	require.NoError(t, err)
	first.Signature = sig1

	second := load.NewStateTransition(ld.LoadID, &draft, pending, actorID, nil, load.TransitionMeta{})
	sig2, err := load.SignTransition(second, sig1, testKey)
	require.NoError(t, err)
	second.Signature = sig2

	repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(ld, nil)
	repo.EXPECT().ListTransitions(gomock.Any(), ld.LoadID).Return([]*load.StateTransition{first, second}, nil)

	rows, err := svc.History(context.Background(), ld.LoadID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, load.StatusPending, rows[0].ToStatus)
	assert.Equal(t, load.StatusDraft, rows[1].ToStatus)
}

func TestService_History_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	id := uuid.New()
	repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.History(context.Background(), id)
	assert.ErrorIs(t, err, load.ErrNotFound)
}

func TestService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	svc := newTestService(repo)

	ld := pricedLoad()
	ld.Status = load.StatusAwarded
	carrierID := uuid.New()
	ld.AssignedCarrierID = &carrierID

	repo.EXPECT().GetByID(gomock.Any(), ld.LoadID).Return(ld, nil)
	repo.EXPECT().LastSignature(gomock.Any(), ld.LoadID).Return("ffff", nil)
	repo.EXPECT().ApplyTransition(gomock.Any(), gomock.Any()).Return(nil)

	reason := "shipper withdrew the order"
	updated, err := svc.Cancel(context.Background(), ld.LoadID, adminActor(), &reason)
	require.NoError(t, err)
	assert.Equal(t, load.StatusCancelled, updated.Status)
}
