package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
)

type contextKey string

const (
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyUserRole contextKey = "role"
	ContextKeyUserName contextKey = "user_name"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

func UserNameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserName).(string)
	return v, ok
}

// ActorFromContext returns the authenticated user as an audit actor, or nil
// when the request is unauthenticated.
func ActorFromContext(ctx context.Context) *domain.Actor {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil
	}
	name, _ := UserNameFromContext(ctx)
	return &domain.Actor{Kind: domain.KindUser, ID: id, Name: name}
}

// IsAdmin reports whether the authenticated user holds the admin role.
func IsAdmin(ctx context.Context) bool {
	role, _ := RoleFromContext(ctx)
	return role == domain.RoleAdmin
}
