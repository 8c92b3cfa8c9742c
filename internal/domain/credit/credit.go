package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

// Score is a carrier's opaque credit score in [0, 100]. How it is computed
// lives outside this core; bid screening only reads it.
type Score struct {
	CarrierID uuid.UUID `json:"carrierId"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultScore is assumed for carriers with no stored score.
const DefaultScore = 50

// Repository defines persistence for carrier credit scores.
type Repository interface {
	Get(ctx context.Context, carrierID uuid.UUID) (*Score, error)
	Upsert(ctx context.Context, s *Score) error
}
