package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/credit"
)

// CreditRepository implements credit.Repository.
type CreditRepository struct {
	pool *pgxpool.Pool
}

func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

func (r *CreditRepository) Get(ctx context.Context, carrierID uuid.UUID) (*credit.Score, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT carrier_id, score, updated_at FROM carrier_scores WHERE carrier_id=$1
	`, carrierID)
	var s credit.Score
	if err := row.Scan(&s.CarrierID, &s.Score, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *CreditRepository) Upsert(ctx context.Context, s *credit.Score) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO carrier_scores (carrier_id, score, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (carrier_id) DO UPDATE SET score=EXCLUDED.score, updated_at=EXCLUDED.updated_at
	`, s.CarrierID, s.Score, s.UpdatedAt)
	return err
}
