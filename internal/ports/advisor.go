package ports

import (
	"context"

	"minusauction/internal/domain"
)

// AdvisorPort produces free-form strategic guidance for one team.
// The output is advisory only and never feeds back into game state.
type AdvisorPort interface {
	Advise(ctx context.Context, state domain.GameState, playerID string) (string, error)
}
