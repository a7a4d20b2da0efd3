package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type sqlRegistrationRepo struct{ db *sql.DB }

func NewSQLRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqlRegistrationRepo{db}
}

// Register serialises writers per event with a transaction-scoped advisory
// lock so the capacity check and the insert cannot interleave.
// PRIMARY KEY(event_id, user_id) still backs uniqueness.
func (r *sqlRegistrationRepo) Register(ctx context.Context, eventID, userID string, capacity *int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventID); err != nil {
		return fmt.Errorf("lock event %s: %w", eventID, err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_registrations WHERE event_id=$1 AND user_id=$2)`,
		eventID, userID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if exists {
		return ErrAlreadyRegistered
	}

	if capacity != nil {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM event_registrations WHERE event_id=$1`, eventID,
		).Scan(&n); err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if n >= *capacity {
			return ErrEventFull
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_registrations(event_id, user_id) VALUES ($1,$2)`, eventID, userID,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return tx.Commit()
}

func (r *sqlRegistrationRepo) Unregister(ctx context.Context, eventID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE event_id=$1 AND user_id=$2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

func (r *sqlRegistrationRepo) CountFor(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM event_registrations WHERE event_id=$1`, eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (r *sqlRegistrationRepo) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_registrations WHERE event_id=$1 AND user_id=$2)`,
		eventID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return ok, nil
}

func (r *sqlRegistrationRepo) CountForMany(ctx context.Context, eventIDs []string) (int, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM event_registrations WHERE event_id = ANY($1)`, pq.Array(eventIDs),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// CountsFor returns a count for every requested id, zero included.
func (r *sqlRegistrationRepo) CountsFor(ctx context.Context, eventIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(eventIDs))
	for _, id := range eventIDs {
		out[id] = 0
	}
	if len(eventIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id, count(*) FROM event_registrations
		 WHERE event_id = ANY($1) GROUP BY event_id`, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *sqlRegistrationRepo) EventIDsFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id FROM event_registrations WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sqlRegistrationRepo) DeleteForEvent(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE event_id=$1`, eventID); err != nil {
		return fmt.Errorf("delete registrations for %s: %w", eventID, err)
	}
	return nil
}
