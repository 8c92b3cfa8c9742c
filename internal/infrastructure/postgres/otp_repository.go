package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightboard/freightboard/internal/domain/otp"
)

const otpRequestColumns = `id, request_id, load_id, carrier_id, request_type, status, otp_id, decided_by, decided_at, notes, created_at, updated_at`

const otpVerificationColumns = `id, otp_id, request_id, code_hash, expires_at, attempts, max_attempts, status, verified_at, created_at`

// OtpRepository implements otp.Repository.
type OtpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) *OtpRepository {
	return &OtpRepository{pool: pool}
}

func (r *OtpRepository) CreateRequest(ctx context.Context, req *otp.Request) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otp_requests
		(request_id, load_id, carrier_id, request_type, status, otp_id, decided_by, decided_at, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, req.RequestID, req.LoadID, req.CarrierID, req.RequestType, req.Status, req.OtpID, req.DecidedBy, req.DecidedAt, req.Notes, req.CreatedAt, req.UpdatedAt)
	return err
}

func (r *OtpRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*otp.Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+otpRequestColumns+` FROM otp_requests WHERE request_id=$1`, requestID)
	return scanOtpRequest(row)
}

func (r *OtpRepository) ListRequests(ctx context.Context, filter otp.RequestFilter, limit, offset int) ([]*otp.Request, error) {
	query := `SELECT ` + otpRequestColumns + ` FROM otp_requests`
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
	if filter.RequestType != nil {
		query += addWhere(query) + " request_type=$" + itoa(idx)
		args = append(args, *filter.RequestType)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*otp.Request
	for rows.Next() {
		req, err := scanOtpRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *OtpRepository) FindInFlight(ctx context.Context, loadID uuid.UUID, requestType otp.RequestType) (*otp.Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+otpRequestColumns+` FROM otp_requests r
		WHERE r.load_id=$1 AND r.request_type=$2 AND (
			r.status='pending' OR (
				r.status='approved' AND EXISTS (
					SELECT 1 FROM otp_verifications v
					WHERE v.otp_id=r.otp_id AND v.status='pending' AND v.expires_at > NOW()
				)
			)
		)
		ORDER BY r.id DESC LIMIT 1
	`, loadID, requestType)
	return scanOtpRequest(row)
}

func (r *OtpRepository) UpdateRequest(ctx context.Context, req *otp.Request) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE otp_requests
		SET status=$1, otp_id=$2, decided_by=$3, decided_at=$4, notes=$5, updated_at=$6
		WHERE request_id=$7
	`, req.Status, req.OtpID, req.DecidedBy, req.DecidedAt, req.Notes, req.UpdatedAt, req.RequestID)
	return err
}

func (r *OtpRepository) ApproveRequest(ctx context.Context, req *otp.Request, v *otp.Verification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertVerification(ctx, tx, v); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE otp_requests
		SET status=$1, otp_id=$2, decided_by=$3, decided_at=$4, notes=$5, updated_at=$6
		WHERE request_id=$7
	`, req.Status, req.OtpID, req.DecidedBy, req.DecidedAt, req.Notes, req.UpdatedAt, req.RequestID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OtpRepository) RegenerateRequest(ctx context.Context, req *otp.Request, priorOtpID uuid.UUID, v *otp.Verification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE otp_verifications SET status='expired' WHERE otp_id=$1 AND status='pending'
	`, priorOtpID)
	if err != nil {
		return err
	}
	if err := insertVerification(ctx, tx, v); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE otp_requests
		SET status=$1, otp_id=$2, decided_by=$3, decided_at=$4, notes=$5, updated_at=$6
		WHERE request_id=$7
	`, req.Status, req.OtpID, req.DecidedBy, req.DecidedAt, req.Notes, req.UpdatedAt, req.RequestID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OtpRepository) GetVerification(ctx context.Context, otpID uuid.UUID) (*otp.Verification, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+otpVerificationColumns+` FROM otp_verifications WHERE otp_id=$1`, otpID)
	return scanVerification(row)
}

func (r *OtpRepository) ExpireVerification(ctx context.Context, otpID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE otp_verifications SET status='expired' WHERE otp_id=$1 AND status='pending'
	`, otpID)
	return err
}

func (r *OtpRepository) IncrementAttempts(ctx context.Context, otpID uuid.UUID) (*otp.Verification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE otp_verifications
		SET attempts=attempts+1
		WHERE otp_id=$1 AND status='pending' AND attempts < max_attempts
		RETURNING `+otpVerificationColumns+`
	`, otpID)
	return scanVerification(row)
}

func (r *OtpRepository) MarkVerified(ctx context.Context, otpID uuid.UUID) (*otp.Verification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE otp_verifications
		SET status='verified', verified_at=$2
		WHERE otp_id=$1 AND status='pending'
		RETURNING `+otpVerificationColumns+`
	`, otpID, time.Now().UTC())
	return scanVerification(row)
}

func (r *OtpRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE otp_verifications SET status='expired'
		WHERE status='pending' AND expires_at < $1
		RETURNING request_id
	`, now)
	if err != nil {
		return 0, err
	}
	var requestIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		requestIDs = append(requestIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(requestIDs) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE otp_requests SET status='expired', updated_at=$2
			WHERE request_id=ANY($1) AND status='approved'
		`, requestIDs, now)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int64(len(requestIDs)), nil
}

func insertVerification(ctx context.Context, tx pgx.Tx, v *otp.Verification) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO otp_verifications
		(otp_id, request_id, code_hash, expires_at, attempts, max_attempts, status, verified_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, v.OtpID, v.RequestID, v.CodeHash, v.ExpiresAt, v.Attempts, v.MaxAttempts, v.Status, v.VerifiedAt, v.CreatedAt)
	return err
}

func scanOtpRequest(row pgx.Row) (*otp.Request, error) {
	var req otp.Request
	if err := row.Scan(&req.ID, &req.RequestID, &req.LoadID, &req.CarrierID, &req.RequestType, &req.Status, &req.OtpID, &req.DecidedBy, &req.DecidedAt, &req.Notes, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func scanVerification(row pgx.Row) (*otp.Verification, error) {
	var v otp.Verification
	if err := row.Scan(&v.ID, &v.OtpID, &v.RequestID, &v.CodeHash, &v.ExpiresAt, &v.Attempts, &v.MaxAttempts, &v.Status, &v.VerifiedAt, &v.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
