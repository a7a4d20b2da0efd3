package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventhub/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

// Create hashes u.Password in place, then inserts the user and the role row
// in one transaction so a user never exists without a role.
func (r *sqlUserRepo) Create(ctx context.Context, u *User, role Role) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin signup: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO users(id, email, password_hash, full_name) VALUES ($1,$2,$3,$4) RETURNING created_at`,
		u.ID, u.Email, u.Password, u.FullName,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_roles(user_id, role) VALUES ($1,$2)`, u.ID, string(role),
	); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return tx.Commit()
}

func (r *sqlUserRepo) ValidateCredentials(ctx context.Context, email, plain string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, full_name, created_at FROM users WHERE email=$1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

func (r *sqlUserRepo) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// 23505 is unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
