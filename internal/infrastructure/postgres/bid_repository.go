package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/bid"
)

const bidColumns = `id, bid_id, load_id, carrier_id, amount, bid_type, status, approval_required, simulated, counter_amount, counter_message, created_at, updated_at`

// BidRepository implements bid.Repository.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Create(ctx context.Context, b *bid.Bid) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bids
		(bid_id, load_id, carrier_id, amount, bid_type, status, approval_required, simulated, counter_amount, counter_message, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, b.BidID, b.LoadID, b.CarrierID, b.Amount, b.BidType, b.Status, b.ApprovalRequired, b.Simulated, b.CounterAmount, b.CounterMessage, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *BidRepository) GetByID(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE bid_id=$1`, bidID)
	return scanBid(row)
}

func (r *BidRepository) ListByLoad(ctx context.Context, loadID uuid.UUID) ([]*bid.Bid, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bidColumns+` FROM bids WHERE load_id=$1 ORDER BY created_at ASC`, loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *BidRepository) List(ctx context.Context, filter bid.Filter, limit, offset int) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids`
	args := []interface{}{}
	idx := 1
	if filter.LoadID != nil {
		query += " WHERE load_id=$" + itoa(idx)
		args = append(args, *filter.LoadID)
		idx++
	}
	if filter.CarrierID != nil {
		query += addWhere(query) + " carrier_id=$" + itoa(idx)
		args = append(args, *filter.CarrierID)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBids(rows)
}

func (r *BidRepository) Update(ctx context.Context, b *bid.Bid) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bids
		SET status=$1, counter_amount=$2, counter_message=$3, approval_required=$4, updated_at=$5
		WHERE bid_id=$6
	`, b.Status, b.CounterAmount, b.CounterMessage, b.ApprovalRequired, b.UpdatedAt, b.BidID)
	return err
}

func collectBids(rows pgx.Rows) ([]*bid.Bid, error) {
	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanBid(row pgx.Row) (*bid.Bid, error) {
	var b bid.Bid
	if err := row.Scan(&b.ID, &b.BidID, &b.LoadID, &b.CarrierID, &b.Amount, &b.BidType, &b.Status, &b.ApprovalRequired, &b.Simulated, &b.CounterAmount, &b.CounterMessage, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
