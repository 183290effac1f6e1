package context

import (
	"context"
	"slices"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// Caller is the shopper or admin behind an authenticated request.
type Caller struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the caller's token granted role.
func (c Caller) HasRole(role entity.Role) bool {
	return slices.Contains(c.Roles, role.String())
}

// IsAdmin is HasRole(entity.RoleAdmin).
func (c Caller) IsAdmin() bool {
	return c.HasRole(entity.RoleAdmin)
}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns false for anonymous requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)

	return caller, ok
}
