package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secondbrain/internal/models"
)

// CreateShareLink inserts a share link. The UNIQUE constraint on owner_id
// enforces at most one active link per owner even across concurrent issuers.
func (db *Database) CreateShareLink(ctx context.Context, link *models.ShareLink) error {
	query := `
        INSERT INTO share_links (token, owner_id, created_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        RETURNING created_at`

	err := db.db.QueryRowContext(ctx, query, link.Token, link.OwnerID).Scan(&link.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create share link: %w", err)
	}
	return nil
}

func (db *Database) DeleteShareLink(ctx context.Context, ownerID string) error {
	result, err := db.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete share link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Database) FindShareLink(ctx context.Context, token string) (*models.ShareLink, error) {
	query := `
        SELECT token, owner_id, created_at
        FROM share_links
        WHERE token = ?`

	var link models.ShareLink
	err := db.db.QueryRowContext(ctx, query, token).Scan(&link.Token, &link.OwnerID, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find share link: %w", err)
	}
	return &link, nil
}
