package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secondbrain/internal/models"
)

func (db *Database) FindTagByTitle(ctx context.Context, title string) (*models.Tag, error) {
	query := `
        SELECT id, title, created_at
        FROM tags
        WHERE title = ?`

	var tag models.Tag
	err := db.db.QueryRowContext(ctx, query, title).Scan(&tag.ID, &tag.Title, &tag.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return &tag, nil
}

// CreateTag inserts a new tag. The UNIQUE constraint on title is what keeps
// tags canonical across concurrent writers, so a duplicate insert comes back
// as ErrConflict for the caller to resolve by re-reading.
func (db *Database) CreateTag(ctx context.Context, title string) (*models.Tag, error) {
	query := `
        INSERT INTO tags (title, created_at)
        VALUES (?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	tag := &models.Tag{Title: title}
	err := db.db.QueryRowContext(ctx, query, title).Scan(&tag.ID, &tag.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (db *Database) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT id, title, created_at FROM tags ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Title, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
