package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/models"
)

func TestAppendTurnWritesBothMessagesInOrder(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	session, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)

	userMsg, assistantMsg, err := database.AppendTurn(ctx, session.ID, "hello", "hi there")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, userMsg.Role)
	assert.Equal(t, models.RoleAssistant, assistantMsg.Role)
	assert.Less(t, userMsg.ID, assistantMsg.ID)

	messages, err := database.GetMessages(ctx, session.ID, "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "hi there", messages[1].Content)
}

func TestAppendTurnUpdatesLastActivity(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	session, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)

	_, _, err = database.AppendTurn(ctx, session.ID, "q", "a")
	require.NoError(t, err)

	reloaded, err := database.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	assert.False(t, reloaded.LastActivity.Before(session.LastActivity))
}

func TestGetMessagesForeignOwnerLooksNonexistent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	session, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)
	_, _, err = database.AppendTurn(ctx, session.ID, "secret", "reply")
	require.NoError(t, err)

	_, err = database.GetMessages(ctx, session.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, missingErr := database.GetMessages(ctx, 99999, "bob")
	assert.ErrorIs(t, missingErr, ErrNotFound)
	// a foreign session and a missing one are indistinguishable
	assert.Equal(t, missingErr.Error(), err.Error())
}

func TestGetSessionOwnerScoped(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	session, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)

	_, err = database.GetSession(ctx, session.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := database.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestRecentMessagesBounded(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	session, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _, err := database.AppendTurn(ctx, session.ID, "question", "answer")
		require.NoError(t, err)
	}

	recent, err := database.RecentMessages(ctx, session.ID, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	// newest first
	assert.Equal(t, models.RoleAssistant, recent[0].Role)
	for i := 1; i < len(recent); i++ {
		assert.Greater(t, recent[i-1].ID, recent[i].ID)
	}
}

func TestListSessionsByOwner(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	_, err := database.CreateSession(ctx, "alice")
	require.NoError(t, err)
	_, err = database.CreateSession(ctx, "alice")
	require.NoError(t, err)
	_, err = database.CreateSession(ctx, "bob")
	require.NoError(t, err)

	sessions, err := database.ListSessionsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
