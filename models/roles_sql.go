package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sqlRoleRepo struct{ db *sql.DB }

func NewSQLRoleRepository(db *sql.DB) RoleRepository { return &sqlRoleRepo{db} }

func (r *sqlRoleRepo) RoleFor(ctx context.Context, userID string) (Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE user_id=$1`, userID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("role for %s: %w", userID, err)
	}
	return Role(role), nil
}
