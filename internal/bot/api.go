package bot

import (
	"minusauction/internal/domain"
)

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(state domain.GameState, player domain.Player) (domain.Action, error)
}
