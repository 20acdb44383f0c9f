// Package selection stores the per-session selections.
package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
)

var _ port.SelectionStore = (*MemoryStore)(nil)

// MemoryStore keeps selections in process memory.
//
// A selection expires ttl after its last save. When size sessions
// are held the least recently used one is evicted.
type MemoryStore struct {
	cache *expirable.LRU[string, domain.Selection]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, domain.Selection](size, nil, ttl),
	}
}

// LoadSelection returns an empty selection for unknown sessions.
// Changes to the result are kept only after SaveSelection.
func (s *MemoryStore) LoadSelection(
	ctx context.Context, sessionID string,
) (domain.Selection, error) {
	const op = "MemoryStore.LoadSelection"

	if err := ctx.Err(); err != nil {
		return domain.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	sel, _ := s.cache.Get(sessionID)
	return copySelection(sel), nil
}

func (s *MemoryStore) SaveSelection(
	ctx context.Context, sessionID string, sel domain.Selection,
) error {
	const op = "MemoryStore.SaveSelection"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Add(sessionID, copySelection(sel))
	return nil
}

func (s *MemoryStore) DeleteSelection(
	ctx context.Context, sessionID string,
) error {
	const op = "MemoryStore.DeleteSelection"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Remove(sessionID)
	return nil
}

// copySelection detaches sel from the stored backing array.
func copySelection(sel domain.Selection) domain.Selection {
	var c domain.Selection
	for _, e := range sel.Entries() {
		_, _ = c.Add(e)
	}
	return c
}
