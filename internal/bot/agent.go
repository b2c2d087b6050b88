package bot

import (
	"errors"

	"minusauction/internal/domain"
)

var ErrNotSeated = errors.New("bot is not seated in this room")

// Agent represents an autonomous bot team.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to decide on the card currently up for auction.
func (a *Agent) Play(state domain.GameState) (domain.Action, error) {
	player, ok := state.Player(a.ID)
	if !ok {
		return domain.ActionPass, ErrNotSeated
	}

	action, err := a.Strategy.CalculateMove(state, player)
	if err != nil {
		// Taking is always legal.
		return domain.ActionTake, err
	}
	return action, nil
}

// OnTurn reports whether the agent holds the turn in state.
func (a *Agent) OnTurn(state domain.GameState) bool {
	if state.Phase != domain.PhasePlaying {
		return false
	}
	current, ok := state.CurrentPlayer()
	return ok && current.ID == a.ID
}
