package usage

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore keeps usage in the resume_quota table. Each Update holds the row
// lock for the length of its transaction.
type PGStore struct {
	DB   *sql.DB
	plan Plan
}

var _ Store = (*PGStore)(nil)

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB, plan Plan) *PGStore {
	return &PGStore{DB: db, plan: plan}
}

func (s *PGStore) Update(ctx context.Context, userID string, fn func(*Usage) error) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	before, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	after := before
	if err := fn(&after); err != nil {
		return Usage{}, err
	}
	if after != before {
		if _, err := tx.ExecContext(ctx, `
UPDATE resume_quota SET plan = $1, limit_amount = $2, used = $3, updated_at = now() WHERE user_id = $4`,
			after.Plan, after.Limit, after.Used, userID); err != nil {
			return Usage{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, err
	}
	return after, nil
}

func (s *PGStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	var u Usage
	err := tx.QueryRowContext(ctx, `
SELECT plan, limit_amount, used FROM resume_quota WHERE user_id = $1 FOR UPDATE`, userID).
		Scan(&u.Plan, &u.Limit, &u.Used)
	if errors.Is(err, sql.ErrNoRows) {
		u = defaultUsage(s.plan)
		_, err = tx.ExecContext(ctx, `
INSERT INTO resume_quota (user_id, plan, limit_amount, used) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING`,
			userID, u.Plan, u.Limit, u.Used)
	}
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}
