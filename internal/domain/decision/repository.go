package decision

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for admin decisions. The
// table is append-only; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, d *AdminDecision) error
	GetByID(ctx context.Context, decisionID uuid.UUID) (*AdminDecision, error)
	ListByLoad(ctx context.Context, loadID uuid.UUID) ([]*AdminDecision, error)
}
