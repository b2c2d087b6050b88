package domain

import (
	"math/rand"
	"sort"
)

// NewDeck returns the ordered card domain, -26 down to -50.
func NewDeck() []int {
	deck := make([]int, 0, DeckSize)
	for v := MinCardValue; v <= MaxCardValue; v++ {
		deck = append(deck, -v)
	}
	return deck
}

// ShuffleDeck returns a uniformly permuted copy of the given deck.
func ShuffleDeck(deck []int, rng *rand.Rand) []int {
	out := cloneInts(deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortCards returns the cards in ascending order (most negative first).
func SortCards(cards []int) []int {
	out := cloneInts(cards)
	sort.Ints(out)
	return out
}

// pop removes the top (last) card of the deck.
func pop(deck []int) (int, []int) {
	n := len(deck) - 1
	return deck[n], deck[:n]
}
