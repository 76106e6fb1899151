package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ActorIDKey contextKey = "actor_id"
	RoleKey    contextKey = "role"
)

const (
	RoleUser    = "user"
	RoleCompany = "company"
)

// GetActorFromContext returns the authenticated actor ID placed there by the
// identity middleware.
func GetActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(ActorIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	idStr, ok := val.(string)
	if !ok {
		return uuid.Nil, false
	}

	actorID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return actorID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(RoleKey)
	if val == nil {
		return "", false
	}

	role, ok := val.(string)
	return role, ok
}

func SetActorContext(ctx context.Context, actorID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, ActorIDKey, actorID.String())
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}
