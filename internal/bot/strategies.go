package bot

import (
	"minusauction/internal/domain"
)

// TakeGain is the change in score player would see by taking the current card and pot.
func TakeGain(state domain.GameState, player domain.Player) int {
	if state.CurrentCard == nil {
		return 0
	}
	after := player
	after.Chips += state.Pot
	after.Cards = append(append([]int{}, player.Cards...), *state.CurrentCard)
	return domain.CalculateScore(after) - domain.CalculateScore(player)
}

// CautiousBot takes only when the score change is tolerable or its chips run dry.
type CautiousBot struct {
	Tuning Tuning
}

func (b *CautiousBot) CalculateMove(state domain.GameState, player domain.Player) (domain.Action, error) {
	if state.CurrentCard == nil {
		return domain.ActionPass, domain.ErrNoCurrentCard
	}
	if player.Chips <= b.Tuning.LowChipThreshold {
		return domain.ActionTake, nil
	}
	if TakeGain(state, player) >= b.Tuning.threshold(len(state.Deck)) {
		return domain.ActionTake, nil
	}
	return domain.ActionPass, nil
}

// SequenceBot additionally chases runs: a card next to a held card costs
// almost nothing and a card one gap away is valued as a future run.
type SequenceBot struct {
	Tuning Tuning
}

func (b *SequenceBot) CalculateMove(state domain.GameState, player domain.Player) (domain.Action, error) {
	if state.CurrentCard == nil {
		return domain.ActionPass, domain.ErrNoCurrentCard
	}
	if player.Chips <= b.Tuning.LowChipThreshold {
		return domain.ActionTake, nil
	}

	card := *state.CurrentCard
	gain := TakeGain(state, player)
	if extendsRun(player.Cards, card) {
		return domain.ActionTake, nil
	}
	if hasGapNeighbour(player.Cards, card) {
		gain += b.Tuning.GapBonus
	}
	if gain >= b.Tuning.threshold(len(state.Deck)) {
		return domain.ActionTake, nil
	}
	return domain.ActionPass, nil
}

func extendsRun(cards []int, card int) bool {
	for _, c := range cards {
		if c == card-1 || c == card+1 {
			return true
		}
	}
	return false
}

func hasGapNeighbour(cards []int, card int) bool {
	for _, c := range cards {
		if c == card-2 || c == card+2 {
			return true
		}
	}
	return false
}
