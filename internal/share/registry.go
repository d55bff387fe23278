// Package share issues and validates the bearer tokens behind "share my
// brain" links.
package share

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"secondbrain/internal/models"
)

// tokenBytes is the entropy of a share token before hex encoding. 16 random
// bytes make guessing a live token infeasible.
const tokenBytes = 16

// Store is the slice of persistence the registry needs.
type Store interface {
	CreateShareLink(ctx context.Context, link *models.ShareLink) error
	DeleteShareLink(ctx context.Context, ownerID string) error
	FindShareLink(ctx context.Context, token string) (*models.ShareLink, error)
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Issue mints a new token for the owner. The store's uniqueness constraint
// on owner id keeps it to one active link per owner, so a second Issue
// without a Revoke in between fails with db.ErrConflict.
func (r *Registry) Issue(ctx context.Context, ownerID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	link := &models.ShareLink{Token: token, OwnerID: ownerID}
	if err := r.store.CreateShareLink(ctx, link); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke deletes the owner's active link. db.ErrNotFound means there was
// nothing to revoke.
func (r *Registry) Revoke(ctx context.Context, ownerID string) error {
	return r.store.DeleteShareLink(ctx, ownerID)
}

// Resolve maps a token back to the owner it was issued for. The token is a
// bearer capability: whoever presents it reads the owner's current content
// set, evaluated at access time, not a snapshot from issuance.
func (r *Registry) Resolve(ctx context.Context, token string) (string, error) {
	link, err := r.store.FindShareLink(ctx, token)
	if err != nil {
		return "", err
	}
	return link.OwnerID, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
