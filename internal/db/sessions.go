package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secondbrain/internal/models"
)

func (db *Database) CreateSession(ctx context.Context, ownerID string) (*models.ChatSession, error) {
	query := `
        INSERT INTO chat_sessions (owner_id, created_at, last_activity)
        VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        RETURNING id, created_at, last_activity`

	session := &models.ChatSession{OwnerID: ownerID}
	err := db.db.QueryRowContext(ctx, query, ownerID).Scan(
		&session.ID, &session.CreatedAt, &session.LastActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession loads a session scoped to its owner. A session owned by someone
// else reports ErrNotFound, same as a missing one, so callers cannot probe
// for existence.
func (db *Database) GetSession(ctx context.Context, id int64, ownerID string) (*models.ChatSession, error) {
	query := `
        SELECT id, owner_id, created_at, last_activity
        FROM chat_sessions
        WHERE id = ? AND owner_id = ?`

	var session models.ChatSession
	err := db.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&session.ID, &session.OwnerID, &session.CreatedAt, &session.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (db *Database) ListSessionsByOwner(ctx context.Context, ownerID string) ([]models.ChatSession, error) {
	query := `
        SELECT id, owner_id, created_at, last_activity
        FROM chat_sessions
        WHERE owner_id = ?
        ORDER BY last_activity DESC`

	rows, err := db.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.ChatSession, 0)
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.CreatedAt, &s.LastActivity); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// AppendTurn writes a user message and its assistant reply as one
// transaction. No reader ever sees the user message without the reply, and a
// failed generation appends nothing because this is only called afterwards.
func (db *Database) AppendTurn(ctx context.Context, sessionID int64, userText, assistantText string) (*models.Message, *models.Message, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	insert := `
        INSERT INTO messages (session_id, role, content, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	userMsg := &models.Message{SessionID: sessionID, Role: models.RoleUser, Content: userText}
	if err := tx.QueryRowContext(ctx, insert, sessionID, userMsg.Role, userText).Scan(&userMsg.ID, &userMsg.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("failed to append user message: %w", err)
	}

	assistantMsg := &models.Message{SessionID: sessionID, Role: models.RoleAssistant, Content: assistantText}
	if err := tx.QueryRowContext(ctx, insert, sessionID, assistantMsg.Role, assistantText).Scan(&assistantMsg.ID, &assistantMsg.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("failed to append assistant message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chat_sessions SET last_activity = CURRENT_TIMESTAMP WHERE id = ?`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return userMsg, assistantMsg, nil
}

// GetMessages returns the full transcript in append order, with the same
// ownership semantics as GetSession.
func (db *Database) GetMessages(ctx context.Context, sessionID int64, ownerID string) ([]models.Message, error) {
	if _, err := db.GetSession(ctx, sessionID, ownerID); err != nil {
		return nil, err
	}

	query := `
        SELECT id, session_id, role, content, created_at
        FROM messages
        WHERE session_id = ?
        ORDER BY id`

	rows, err := db.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// RecentMessages returns up to limit of the newest messages for a session,
// newest first. Ownership is the caller's concern; the chat service checks
// it before assembling a prompt.
func (db *Database) RecentMessages(ctx context.Context, sessionID int64, limit int) ([]models.Message, error) {
	query := `
        SELECT id, session_id, role, content, created_at
        FROM messages
        WHERE session_id = ?
        ORDER BY id DESC
        LIMIT ?`

	rows, err := db.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
