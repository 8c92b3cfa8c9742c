package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a user role.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleShipper Role = "SHIPPER"
	RoleCarrier Role = "CARRIER"
)

// Status represents user status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

var ErrNotFound = errors.New("user not found")

// User is a marketplace actor. Authentication is api-key lookup only;
// sessions and passwords are outside this core.
type User struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	APIKey    string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates an active user.
func NewUser(name string, role Role, apiKey string) *User {
	now := time.Now().UTC()
	return &User{
		UserID:    uuid.New(),
		Name:      strings.TrimSpace(name),
		Role:      role,
		Status:    StatusActive,
		APIKey:    apiKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name is required")
	}
	if len(trimmed) > 120 {
		return errors.New("name must be at most 120 characters")
	}
	return nil
}

func ValidateRole(role Role) error {
	switch role {
	case RoleAdmin, RoleShipper, RoleCarrier:
		return nil
	default:
		return errors.New("invalid role")
	}
}

func ValidateStatus(status Status) error {
	switch status {
	case StatusActive, StatusDisabled:
		return nil
	default:
		return errors.New("invalid status")
	}
}
