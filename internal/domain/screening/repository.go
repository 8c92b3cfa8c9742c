package screening

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import "context"

// Repository defines persistence for screening rules.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	// ListActive returns active rules ordered by priority descending.
	ListActive(ctx context.Context) ([]*Rule, error)
	List(ctx context.Context, limit, offset int) ([]*Rule, error)
}
