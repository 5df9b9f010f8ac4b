package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a resume.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
    id, user_id, title, template_id, data, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		resume.TemplateID,
		data,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// Update replaces title, template and data of a live resume.
func (r *PGRepo) Update(ctx context.Context, resume Resume) error {
	const query = `
UPDATE resumes
SET title = $1, template_id = $2, data = $3, updated_at = $4
WHERE id = $5 AND user_id = $6 AND deleted_at IS NULL`
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		resume.Title,
		resume.TemplateID,
		data,
		resume.UpdatedAt,
		resume.ID,
		resume.UserID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a live resume by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	const query = `
SELECT id, user_id, title, template_id, data, created_at, updated_at
FROM resumes
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
LIMIT 1`
	resume, err := scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// ListByUser lists live resumes ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, title, template_id, data, created_at, updated_at
FROM resumes
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// ListTitles returns id/title pairs of the user's live resumes.
func (r *PGRepo) ListTitles(ctx context.Context, userID string) ([]TitleRef, error) {
	const query = `
SELECT id, title FROM resumes WHERE user_id = $1 AND deleted_at IS NULL`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TitleRef
	for rows.Next() {
		var ref TitleRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// SoftDelete marks a live resume deleted.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, resumeID string, at time.Time) error {
	const query = `
UPDATE resumes SET deleted_at = $1 WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, at, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	var data []byte
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&resume.TemplateID,
		&data,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &resume.Data); err != nil {
			return Resume{}, fmt.Errorf("decode resume data: %w", err)
		}
	}
	return resume, nil
}

var _ Repo = (*PGRepo)(nil)
