package ports

import (
	"context"

	"minusauction/internal/domain"
)

// ResultsPort records the final ranking of a finished auction.
type ResultsPort interface {
	// RecordResults stores standings for the given match.
	// Bot teams are filtered out by the caller.
	RecordResults(ctx context.Context, matchID string, standings []domain.Standing) error
}
