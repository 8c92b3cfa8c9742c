package bid

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for bids.
type Repository interface {
	Create(ctx context.Context, b *Bid) error
	GetByID(ctx context.Context, bidID uuid.UUID) (*Bid, error)
	ListByLoad(ctx context.Context, loadID uuid.UUID) ([]*Bid, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Bid, error)
	// Update writes status, counter fields and updated_at.
	Update(ctx context.Context, b *Bid) error
}
