package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndFindTag(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	created, err := database.CreateTag(ctx, "golang")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "golang", created.Title)

	found, err := database.FindTagByTitle(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestFindTagMissing(t *testing.T) {
	database := newTestDB(t)

	_, err := database.FindTagByTitle(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTagDuplicateIsConflict(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	_, err := database.CreateTag(ctx, "ai")
	require.NoError(t, err)

	_, err = database.CreateTag(ctx, "ai")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTagTitlesAreCaseSensitive(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	lower, err := database.CreateTag(ctx, "ai")
	require.NoError(t, err)
	upper, err := database.CreateTag(ctx, "AI")
	require.NoError(t, err)
	assert.NotEqual(t, lower.ID, upper.ID)

	tags, err := database.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}
