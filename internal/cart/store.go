package cart

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// PersistFunc receives a snapshot of the lines after every mutation.
type PersistFunc func(ctx context.Context, lines []domain.CartLine)

// Store is the sole owner of the in-memory lines. It is not safe for
// concurrent use; Service serialises access.
type Store struct {
	lines   []domain.CartLine
	persist PersistFunc
}

func NewStore(persist PersistFunc) *Store {
	return &Store{lines: []domain.CartLine{}, persist: persist}
}

// Dispatch applies a. Every action except Load is written through the
// persist hook; Load is the read path.
func (s *Store) Dispatch(ctx context.Context, a Action) {
	s.lines = Reduce(s.lines, a)
	if a.Kind == ActionLoad || s.persist == nil {
		return
	}
	s.persist(ctx, s.Lines())
}

func (s *Store) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}
