package ports

import (
	"context"

	"github.com/bft-labs/headtrack/internal/domain"
)

// StateRepository persists stream progress.
type StateRepository interface {
	// Load returns the saved state, or an empty state and nil error if none
	// exists.
	Load(ctx context.Context) (domain.State, error)

	// Save persists state atomically.
	Save(ctx context.Context, state domain.State) error
}
