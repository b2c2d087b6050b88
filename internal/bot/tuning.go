package bot

// Tuning holds the thresholds the bot strategies weigh a take against.
type Tuning struct {
	// TakeThreshold is the lowest score change a bot accepts for taking.
	TakeThreshold int
	// LowChipThreshold makes a bot take instead of bleeding its last chips.
	LowChipThreshold int
	// GapBonus rewards a card one step away from a held card (a future run).
	GapBonus int
	// EndgameDeck is the remaining deck size from which EndgameRelief applies.
	EndgameDeck   int
	EndgameRelief int
}

// DefaultTuning takes cheap cards, protects the last chips and loosens up near the end.
var DefaultTuning = Tuning{
	TakeThreshold:    -12,
	LowChipThreshold: 1,
	GapBonus:         6,
	EndgameDeck:      4,
	EndgameRelief:    4,
}

// threshold returns the acceptance bar for the given deck size.
func (t Tuning) threshold(deckLeft int) int {
	if deckLeft <= t.EndgameDeck {
		return t.TakeThreshold - t.EndgameRelief
	}
	return t.TakeThreshold
}
