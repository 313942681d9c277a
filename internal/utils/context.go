package utils

import (
	"context"

	"mshop-be/internal/access"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "role"
)

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id uint, role access.Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

func GetUserRoleFromContext(ctx context.Context) access.Role {
	role, _ := ctx.Value(UserRoleKey).(access.Role)
	return role
}

// ActorFromContext returns the authenticated caller, ok=false for anonymous
// requests.
func ActorFromContext(ctx context.Context) (access.Actor, bool) {
	id, ok := GetUserIDFromContext(ctx)
	if !ok || id == 0 {
		return access.Actor{}, false
	}
	return access.Actor{UserID: id, Role: GetUserRoleFromContext(ctx)}, true
}
