package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/bid"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/negotiation"
)

const threadColumns = `id, thread_id, load_id, status, total_bids, real_bids, simulated_bids, pending_counters, accepted_bid_id, accepted_carrier_id, accepted_amount, last_activity_at, created_at, updated_at`

// NegotiationRepository implements negotiation.Repository.
type NegotiationRepository struct {
	pool *pgxpool.Pool
}

func NewNegotiationRepository(pool *pgxpool.Pool) *NegotiationRepository {
	return &NegotiationRepository{pool: pool}
}

func (r *NegotiationRepository) GetOrCreate(ctx context.Context, loadID uuid.UUID) (*negotiation.Thread, error) {
	t := negotiation.NewThread(loadID)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO negotiation_threads
		(thread_id, load_id, status, total_bids, real_bids, simulated_bids, pending_counters, last_activity_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (load_id) DO NOTHING
	`, t.ThreadID, t.LoadID, t.Status, t.TotalBids, t.RealBids, t.SimulatedBids, t.PendingCounters, t.LastActivityAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r.GetByLoad(ctx, loadID)
}

func (r *NegotiationRepository) GetByLoad(ctx context.Context, loadID uuid.UUID) (*negotiation.Thread, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+threadColumns+` FROM negotiation_threads WHERE load_id=$1`, loadID)
	return scanThread(row)
}

func (r *NegotiationRepository) RecordBid(ctx context.Context, placed negotiation.BidPlaced) (*negotiation.Thread, error) {
	realDelta, simDelta := 1, 0
	if placed.Simulated {
		realDelta, simDelta = 0, 1
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		UPDATE negotiation_threads
		SET total_bids=total_bids+1,
			real_bids=real_bids+$1,
			simulated_bids=simulated_bids+$2,
			pending_counters=CASE WHEN $3 THEN GREATEST(pending_counters-1,0) ELSE pending_counters END,
			status=$4,
			last_activity_at=$5,
			updated_at=$5
		WHERE thread_id=$6
		RETURNING `+threadColumns+`
	`, realDelta, simDelta, placed.AnswersCounter, placed.NewStatus, now, placed.ThreadID)
	t, err := scanThread(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, negotiation.ErrThreadNotFound
	}
	return t, nil
}

func (r *NegotiationRepository) RecordCounter(ctx context.Context, threadID uuid.UUID) (*negotiation.Thread, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		UPDATE negotiation_threads
		SET status='counter_sent', pending_counters=pending_counters+1, last_activity_at=$1, updated_at=$1
		WHERE thread_id=$2
		RETURNING `+threadColumns+`
	`, now, threadID)
	t, err := scanThread(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, negotiation.ErrThreadNotFound
	}
	return t, nil
}

func (r *NegotiationRepository) AcceptBid(ctx context.Context, params negotiation.AcceptBidParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := params.Transition.TransitionedAt

	res, err := tx.Exec(ctx, `
		UPDATE bids SET status='accepted', updated_at=$1
		WHERE bid_id=$2 AND status IN ('pending','countered')
	`, now, params.BidID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return bid.ErrNotOpen
	}

	_, err = tx.Exec(ctx, `
		UPDATE bids SET status='rejected', updated_at=$1
		WHERE load_id=$2 AND bid_id<>$3 AND status IN ('pending','countered')
	`, now, params.LoadID, params.BidID)
	if err != nil {
		return err
	}

	res, err = tx.Exec(ctx, `
		UPDATE negotiation_threads
		SET status='accepted', accepted_bid_id=$1, accepted_carrier_id=$2, accepted_amount=$3, pending_counters=0, last_activity_at=$4, updated_at=$4
		WHERE thread_id=$5 AND status NOT IN ('accepted','rejected')
	`, params.BidID, params.CarrierID, params.Amount, now, params.ThreadID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return negotiation.ErrThreadClosed
	}

	res, err = tx.Exec(ctx, `
		UPDATE loads
		SET status=$1, previous_status=$2, version=version+1, status_changed_by=$3, status_changed_at=$4, assigned_carrier_id=$5, assigned_truck_id=$6, updated_at=$4
		WHERE load_id=$7 AND version=$8
	`, params.Transition.ToStatus, params.Transition.FromStatus, params.Transition.ActorID, now, params.CarrierID, params.TruckID, params.LoadID, params.LoadExpectedVersion)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return load.ErrVersionConflict
	}

	if err := insertTransition(ctx, tx, params.Transition); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanThread(row pgx.Row) (*negotiation.Thread, error) {
	var t negotiation.Thread
	if err := row.Scan(&t.ID, &t.ThreadID, &t.LoadID, &t.Status, &t.TotalBids, &t.RealBids, &t.SimulatedBids, &t.PendingCounters, &t.AcceptedBidID, &t.AcceptedCarrierID, &t.AcceptedAmount, &t.LastActivityAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
