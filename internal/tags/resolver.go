// Package tags maps human-entered tag titles to canonical tag ids.
package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"secondbrain/internal/db"
	"secondbrain/internal/models"
)

// maxAttempts bounds the find/create/find loop. One lost race needs two
// attempts; anything past three means the store is misbehaving.
const maxAttempts = 3

// Store is the slice of persistence the resolver needs.
type Store interface {
	FindTagByTitle(ctx context.Context, title string) (*models.Tag, error)
	CreateTag(ctx context.Context, title string) (*models.Tag, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve turns tag titles into canonical tag ids, creating missing tags on
// the way. Matching is exact and case-sensitive; titles are stored verbatim,
// so "ai", "AI" and " ai " are three distinct tags. Blank and
// whitespace-only entries are dropped, and repeated titles collapse to a
// single id.
func (r *Resolver) Resolve(ctx context.Context, titles []string) ([]int64, error) {
	seen := make(map[string]bool, len(titles))
	ids := make([]int64, 0, len(titles))

	for _, title := range titles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		if seen[title] {
			continue
		}
		seen[title] = true

		id, err := r.findOrCreate(ctx, title)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// findOrCreate looks a title up, creating it if absent. A unique-constraint
// conflict on create means a concurrent request inserted the same title
// first; the tag now exists, so we go back to the lookup instead of failing.
// This works across independent server processes because the constraint
// lives in the store.
func (r *Resolver) findOrCreate(ctx context.Context, title string) (int64, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tag, err := r.store.FindTagByTitle(ctx, title)
		if err == nil {
			return tag.ID, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return 0, fmt.Errorf("failed to look up tag %q: %w", title, err)
		}

		tag, err = r.store.CreateTag(ctx, title)
		if err == nil {
			return tag.ID, nil
		}
		if !errors.Is(err, db.ErrConflict) {
			return 0, fmt.Errorf("failed to create tag %q: %w", title, err)
		}
		// lost the creation race; retry the lookup
	}
	return 0, fmt.Errorf("gave up resolving tag %q after %d attempts", title, maxAttempts)
}
