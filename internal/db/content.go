package db

import (
	"context"
	"fmt"
	"strings"

	"secondbrain/internal/models"
)

// CreateContent inserts the content row and its tag links in one
// transaction. Tags are resolved before this is called, so a failure here
// never leaves content without its tags.
func (db *Database) CreateContent(ctx context.Context, content *models.Content, tagIDs []int64) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO contents (link, type, title, owner_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		content.Link, string(content.Type), content.Title, content.OwnerID,
	).Scan(&content.ID, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	content.Tags = []string{}
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
            INSERT OR IGNORE INTO content_tags (content_id, tag_id)
            VALUES (?, ?)`, content.ID, tagID)
		if err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
		var title string
		if err := tx.QueryRowContext(ctx, `SELECT title FROM tags WHERE id = ?`, tagID).Scan(&title); err != nil {
			return fmt.Errorf("failed to load tag title: %w", err)
		}
		content.Tags = append(content.Tags, title)
	}

	return tx.Commit()
}

// ListContentByOwner returns the owner's content with tag titles attached,
// newest first.
func (db *Database) ListContentByOwner(ctx context.Context, ownerID string) ([]models.Content, error) {
	query := `
        SELECT id, link, type, title, owner_id, created_at, updated_at
        FROM contents
        WHERE owner_id = ?
        ORDER BY created_at DESC, id DESC`

	rows, err := db.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	contents := make([]models.Content, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var c models.Content
		var typ string
		err := rows.Scan(&c.ID, &c.Link, &typ, &c.Title, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		c.Type = models.ContentType(typ)
		c.Tags = []string{}
		contents = append(contents, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return contents, nil
	}

	tagsByContent, err := db.tagTitlesByContent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range contents {
		if titles, ok := tagsByContent[contents[i].ID]; ok {
			contents[i].Tags = titles
		}
	}
	return contents, nil
}

func (db *Database) tagTitlesByContent(ctx context.Context, contentIDs []int64) (map[int64][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(contentIDs)), ",")
	args := make([]interface{}, len(contentIDs))
	for i, id := range contentIDs {
		args[i] = id
	}

	query := fmt.Sprintf(`
        SELECT ct.content_id, t.title
        FROM content_tags ct
        JOIN tags t ON t.id = ct.tag_id
        WHERE ct.content_id IN (%s)
        ORDER BY t.title`, placeholders)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load content tags: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]string)
	for rows.Next() {
		var contentID int64
		var title string
		if err := rows.Scan(&contentID, &title); err != nil {
			return nil, err
		}
		result[contentID] = append(result[contentID], title)
	}
	return result, rows.Err()
}

// DeleteContent removes an owner's content item. Someone else's content is
// indistinguishable from a missing one.
func (db *Database) DeleteContent(ctx context.Context, id int64, ownerID string) error {
	result, err := db.db.ExecContext(ctx,
		`DELETE FROM contents WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
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
