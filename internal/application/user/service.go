package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/freightboard/freightboard/internal/domain/user"
)

// ErrInvalidAPIKey covers every failed authentication: unknown keys and
// disabled users read the same to the caller.
var ErrInvalidAPIKey = errors.New("invalid api key")

// Service manages the actor registry behind api-key authentication.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// Authenticate resolves a bearer api key to an active user.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*domain.User, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	u, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive() {
		return nil, ErrInvalidAPIKey
	}
	return u, nil
}

// Register creates an active user with a fresh api key. The key rides on
// the returned user and is shown exactly once.
func (s *Service) Register(ctx context.Context, name string, role domain.Role) (*domain.User, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateRole(role); err != nil {
		return nil, err
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	u := domain.NewUser(name, role, key)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info().Str("user_id", u.UserID.String()).Str("role", string(role)).Msg("user registered")
	return u, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, userID)
	}
	return u, nil
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// EnsureBootstrapAdmin creates an admin bound to the configured api key
// when no user holds it yet, so a fresh deployment has a way in.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, name, apiKey string) (*domain.User, error) {
	if apiKey == "" {
		return nil, errors.New("bootstrap api key is empty")
	}
	existing, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if name == "" {
		name = "bootstrap-admin"
	}
	u := domain.NewUser(name, domain.RoleAdmin, apiKey)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.logger.Info().Str("user_id", u.UserID.String()).Msg("bootstrap admin created")
	return u, nil
}

// GenerateAPIKey returns a fresh random key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "fb_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
