package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/load"
)

const loadColumns = `id, load_id, shipper_id, pickup_locality, dropoff_locality, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, distance_km, weight_tons, load_type, status, previous_status, version, status_changed_by, status_changed_at, admin_suggested_price, admin_final_price, admin_post_mode, invited_carrier_ids, allow_counter_bids, assigned_carrier_id, assigned_truck_id, created_at, updated_at`

// LoadRepository implements load.Repository.
type LoadRepository struct {
	pool *pgxpool.Pool
}

func NewLoadRepository(pool *pgxpool.Pool) *LoadRepository {
	return &LoadRepository{pool: pool}
}

func (r *LoadRepository) Create(ctx context.Context, l *load.Load, creation *load.StateTransition) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO loads
		(load_id, shipper_id, pickup_locality, dropoff_locality, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, distance_km, weight_tons, load_type, status, previous_status, version, status_changed_by, status_changed_at, admin_suggested_price, admin_final_price, admin_post_mode, invited_carrier_ids, allow_counter_bids, assigned_carrier_id, assigned_truck_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
	`, l.LoadID, l.ShipperID, l.PickupLocality, l.DropoffLocality, l.PickupLat, l.PickupLng, l.DropoffLat, l.DropoffLng, l.DistanceKm, l.WeightTons, l.LoadType, l.Status, l.PreviousStatus, l.Version, l.StatusChangedBy, l.StatusChangedAt, l.AdminSuggestedPrice, l.AdminFinalPrice, l.AdminPostMode, l.InvitedCarrierIDs, l.AllowCounterBids, l.AssignedCarrierID, l.AssignedTruckID, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return err
	}
	if err := insertTransition(ctx, tx, creation); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *LoadRepository) GetByID(ctx context.Context, loadID uuid.UUID) (*load.Load, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE load_id=$1`, loadID)
	return scanLoad(row)
}

func (r *LoadRepository) List(ctx context.Context, filter load.Filter, limit, offset int) ([]*load.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads`
	args := []interface{}{}
	idx := 1
	if filter.Status != nil {
		query += " WHERE status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.ShipperID != nil {
		query += addWhere(query) + " shipper_id=$" + itoa(idx)
		args = append(args, *filter.ShipperID)
		idx++
	}
	if filter.CarrierID != nil {
		query += addWhere(query) + " (assigned_carrier_id=$" + itoa(idx) + " OR $" + itoa(idx) + "=ANY(invited_carrier_ids))"
		args = append(args, *filter.CarrierID)
		idx++
	}
	if filter.PostMode != nil {
		query += addWhere(query) + " admin_post_mode=$" + itoa(idx)
		args = append(args, *filter.PostMode)
		idx++
	}
	if filter.Since != nil {
		query += addWhere(query) + " created_at >= $" + itoa(idx)
		args = append(args, *filter.Since)
		idx++
	}
	if filter.Until != nil {
		query += addWhere(query) + " created_at <= $" + itoa(idx)
		args = append(args, *filter.Until)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var loads []*load.Load
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

func (r *LoadRepository) ApplyTransition(ctx context.Context, params load.ApplyTransitionParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tr := params.Transition
	set := `status=$1, previous_status=$2, version=version+1, status_changed_by=$3, status_changed_at=$4, updated_at=$5`
	args := []interface{}{tr.ToStatus, tr.FromStatus, tr.ActorID, tr.TransitionedAt, tr.TransitionedAt}
	idx := 6
	if p := params.Pricing; p != nil {
		if p.SuggestedPrice != nil {
			set += ", admin_suggested_price=$" + itoa(idx)
			args = append(args, *p.SuggestedPrice)
			idx++
		}
		if p.FinalPrice != nil {
			set += ", admin_final_price=$" + itoa(idx)
			args = append(args, *p.FinalPrice)
			idx++
		}
		if p.PostMode != nil {
			set += ", admin_post_mode=$" + itoa(idx)
			args = append(args, *p.PostMode)
			idx++
		}
		if p.InvitedCarrierIDs != nil {
			set += ", invited_carrier_ids=$" + itoa(idx)
			args = append(args, p.InvitedCarrierIDs)
			idx++
		}
		if p.AllowCounterBids != nil {
			set += ", allow_counter_bids=$" + itoa(idx)
			args = append(args, *p.AllowCounterBids)
			idx++
		}
	}
	if a := params.Assignment; a != nil {
		set += ", assigned_carrier_id=$" + itoa(idx)
		args = append(args, a.CarrierID)
		idx++
		if a.TruckID != nil {
			set += ", assigned_truck_id=$" + itoa(idx)
			args = append(args, *a.TruckID)
			idx++
		}
	}
	query := `UPDATE loads SET ` + set + ` WHERE load_id=$` + itoa(idx) + ` AND version=$` + itoa(idx+1)
	args = append(args, params.LoadID, params.ExpectedVersion)

	res, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return load.ErrVersionConflict
	}
	if err := insertTransition(ctx, tx, tr); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *LoadRepository) LastSignature(ctx context.Context, loadID uuid.UUID) (string, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT signature FROM load_transitions WHERE load_id=$1 ORDER BY id DESC LIMIT 1
	`, loadID)
	var sig string
	if err := row.Scan(&sig); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return sig, nil
}

func (r *LoadRepository) ListTransitions(ctx context.Context, loadID uuid.UUID) ([]*load.StateTransition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, load_id, from_status, to_status, actor_id, reason, meta, signature, transitioned_at
		FROM load_transitions WHERE load_id=$1 ORDER BY id ASC
	`, loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transitions []*load.StateTransition
	for rows.Next() {
		var tr load.StateTransition
		if err := rows.Scan(&tr.ID, &tr.LoadID, &tr.FromStatus, &tr.ToStatus, &tr.ActorID, &tr.Reason, &tr.Meta, &tr.Signature, &tr.TransitionedAt); err != nil {
			return nil, err
		}
		transitions = append(transitions, &tr)
	}
	return transitions, rows.Err()
}

func insertTransition(ctx context.Context, tx pgx.Tx, tr *load.StateTransition) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO load_transitions
		(load_id, from_status, to_status, actor_id, reason, meta, signature, transitioned_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, tr.LoadID, tr.FromStatus, tr.ToStatus, tr.ActorID, tr.Reason, tr.Meta, tr.Signature, tr.TransitionedAt)
	return err
}

func scanLoad(row pgx.Row) (*load.Load, error) {
	var l load.Load
	if err := row.Scan(&l.ID, &l.LoadID, &l.ShipperID, &l.PickupLocality, &l.DropoffLocality, &l.PickupLat, &l.PickupLng, &l.DropoffLat, &l.DropoffLng, &l.DistanceKm, &l.WeightTons, &l.LoadType, &l.Status, &l.PreviousStatus, &l.Version, &l.StatusChangedBy, &l.StatusChangedAt, &l.AdminSuggestedPrice, &l.AdminFinalPrice, &l.AdminPostMode, &l.InvitedCarrierIDs, &l.AllowCounterBids, &l.AssignedCarrierID, &l.AssignedTruckID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
