package httpapi

import (
	"context"

	"github.com/google/uuid"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	"github.com/freightboard/freightboard/internal/domain/user"
)

type authContextKey string

const authUserKey authContextKey = "authUser"

// AuthUser represents the authenticated user in context.
type AuthUser struct {
	UserID uuid.UUID
	Name   string
	Role   user.Role
}

// Actor converts the authenticated user into the actor of record every
// service mutation carries.
func (u AuthUser) Actor() appLoad.Actor {
	return appLoad.Actor{UserID: u.UserID, Name: u.Name, Role: u.Role}
}

func withAuthUser(ctx context.Context, u *AuthUser) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, authUserKey, u)
}

func authUserFromContext(ctx context.Context) *AuthUser {
	if v, ok := ctx.Value(authUserKey).(*AuthUser); ok {
		return v
	}
	return nil
}
