package roles

import (
	"context"
	"errors"
	"log/slog"

	"eventhub/models"
)

// Resolver turns a user id into the role that picks their dashboard.
type Resolver struct {
	repo models.RoleRepository
	log  *slog.Logger
}

func NewResolver(repo models.RoleRepository, log *slog.Logger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// Resolve never fails: a missing row or a lookup error reads as attendee.
func (r *Resolver) Resolve(ctx context.Context, userID string) models.Role {
	role, err := r.repo.RoleFor(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.RoleAttendee
	case err != nil:
		r.log.WarnContext(ctx, "role lookup failed, using attendee view", "user", userID, "err", err)
		return models.RoleAttendee
	}
	if parsed, ok := models.ParseRole(string(role)); ok {
		return parsed
	}
	r.log.WarnContext(ctx, "unknown role value", "user", userID, "role", role)
	return models.RoleAttendee
}
