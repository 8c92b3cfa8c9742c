package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/screening"
)

const ruleColumns = `id, rule_id, name, expression, priority, active, created_by, created_at`

// ScreeningRepository implements screening.Repository.
type ScreeningRepository struct {
	pool *pgxpool.Pool
}

func NewScreeningRepository(pool *pgxpool.Pool) *ScreeningRepository {
	return &ScreeningRepository{pool: pool}
}

func (r *ScreeningRepository) Create(ctx context.Context, rule *screening.Rule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screening_rules
		(rule_id, name, expression, priority, active, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rule.RuleID, rule.Name, rule.Expression, rule.Priority, rule.Active, rule.CreatedBy, rule.CreatedAt)
	return err
}

func (r *ScreeningRepository) ListActive(ctx context.Context) ([]*screening.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ruleColumns+` FROM screening_rules WHERE active ORDER BY priority DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (r *ScreeningRepository) List(ctx context.Context, limit, offset int) ([]*screening.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ruleColumns+` FROM screening_rules ORDER BY priority DESC, id ASC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func collectRules(rows pgx.Rows) ([]*screening.Rule, error) {
	var rules []*screening.Rule
	for rows.Next() {
		var rule screening.Rule
		if err := rows.Scan(&rule.ID, &rule.RuleID, &rule.Name, &rule.Expression, &rule.Priority, &rule.Active, &rule.CreatedBy, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}
