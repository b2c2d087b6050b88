package advisor

import (
	"fmt"
	"strings"

	"minusauction/internal/domain"
)

// BuildPrompt renders the situation of player as a strategy question. It only
// reads public information: the hidden card is never part of the prompt.
func BuildPrompt(state domain.GameState, player domain.Player) string {
	unit := domain.ChipUnit

	card := "none"
	if state.CurrentCard != nil {
		card = fmt.Sprintf("%d%s", *state.CurrentCard, unit)
	}

	held := make([]string, 0, len(player.Cards))
	for _, c := range domain.SortCards(player.Cards) {
		held = append(held, fmt.Sprintf("%d%s", c, unit))
	}

	var b strings.Builder
	b.WriteString("You are an expert strategist for the card game Minus Auction, ")
	b.WriteString("themed as companies bidding for loss-making projects.\n\n")
	b.WriteString("[Current situation]\n")
	fmt.Fprintf(&b, "- Project up for auction: %s (taking it adds this much debt)\n", card)
	fmt.Fprintf(&b, "- Subsidy in the pot: %d%s\n", state.Pot, unit)
	fmt.Fprintf(&b, "- Our resources: %d%s\n", player.Chips, unit)
	fmt.Fprintf(&b, "- Our projects: [%s]\n", strings.Join(held, ", "))
	fmt.Fprintf(&b, "- Projects left in the deck: %d\n\n", len(state.Deck))
	b.WriteString("[Rules]\n")
	fmt.Fprintf(&b, "1. Project cards range from -%d%s to -%d%s.\n", domain.MinCardValue, unit, domain.MaxCardValue, unit)
	fmt.Fprintf(&b, "2. One chip is worth 1%s.\n", unit)
	b.WriteString("3. A run of consecutive numbers (e.g. -30, -31, -32) only counts the value closest to zero (-30) as debt.\n")
	fmt.Fprintf(&b, "4. PASS costs 1%s of resources.\n", unit)
	b.WriteString("5. TAKE collects the current project and every chip in the pot.\n\n")
	b.WriteString("Should we PASS or TAKE? Answer in the tone of a business strategist, in at most two sentences.")
	return b.String()
}
