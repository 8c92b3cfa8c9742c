package user

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls user listing.
type Filter struct {
	Role   *Role
	Status *Status
}

// Repository defines persistence for users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*User, error)
	// GetByIDs returns the users found for the given ids; missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*User, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*User, error)
}
