package share_test

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/db"
	"secondbrain/internal/share"
)

func newRegistry(t *testing.T) *share.Registry {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return share.NewRegistry(database)
}

func TestIssueAndResolve(t *testing.T) {
	registry := newRegistry(t)
	ctx := context.Background()

	token, err := registry.Issue(ctx, "alice")
	require.NoError(t, err)

	// 16 random bytes, hex encoded
	assert.Len(t, token, 32)
	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	owner, err := registry.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestIssueTwiceFails(t *testing.T) {
	registry := newRegistry(t)
	ctx := context.Background()

	_, err := registry.Issue(ctx, "alice")
	require.NoError(t, err)

	_, err = registry.Issue(ctx, "alice")
	assert.ErrorIs(t, err, db.ErrConflict)
}

func TestRevokeThenReissueMintsFreshToken(t *testing.T) {
	registry := newRegistry(t)
	ctx := context.Background()

	first, err := registry.Issue(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, registry.Revoke(ctx, "alice"))

	second, err := registry.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = registry.Resolve(ctx, first)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRevokeWithoutActiveLink(t *testing.T) {
	registry := newRegistry(t)

	err := registry.Revoke(context.Background(), "alice")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestResolveUnknownToken(t *testing.T) {
	registry := newRegistry(t)

	_, err := registry.Resolve(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
