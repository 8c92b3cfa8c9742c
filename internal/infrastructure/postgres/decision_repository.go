package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/decision"
)

const decisionColumns = `id, decision_id, load_id, admin_id, action_type, suggested_price, final_price, post_mode, invited_carrier_ids, bid_id, comment, pricing_breakdown, created_at`

// DecisionRepository implements decision.Repository. The table is
// append-only.
type DecisionRepository struct {
	pool *pgxpool.Pool
}

func NewDecisionRepository(pool *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{pool: pool}
}

func (r *DecisionRepository) Create(ctx context.Context, d *decision.AdminDecision) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admin_decisions
		(decision_id, load_id, admin_id, action_type, suggested_price, final_price, post_mode, invited_carrier_ids, bid_id, comment, pricing_breakdown, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, d.DecisionID, d.LoadID, d.AdminID, d.ActionType, d.SuggestedPrice, d.FinalPrice, d.PostMode, d.InvitedCarrierIDs, d.BidID, d.Comment, d.Breakdown, d.CreatedAt)
	return err
}

func (r *DecisionRepository) GetByID(ctx context.Context, decisionID uuid.UUID) (*decision.AdminDecision, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+decisionColumns+` FROM admin_decisions WHERE decision_id=$1`, decisionID)
	return scanDecision(row)
}

func (r *DecisionRepository) ListByLoad(ctx context.Context, loadID uuid.UUID) ([]*decision.AdminDecision, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+decisionColumns+` FROM admin_decisions WHERE load_id=$1 ORDER BY id ASC
	`, loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var decisions []*decision.AdminDecision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func scanDecision(row pgx.Row) (*decision.AdminDecision, error) {
	var d decision.AdminDecision
	if err := row.Scan(&d.ID, &d.DecisionID, &d.LoadID, &d.AdminID, &d.ActionType, &d.SuggestedPrice, &d.FinalPrice, &d.PostMode, &d.InvitedCarrierIDs, &d.BidID, &d.Comment, &d.Breakdown, &d.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
