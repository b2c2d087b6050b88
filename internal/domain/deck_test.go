package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}

	seen := make(map[int]bool)
	for _, c := range deck {
		if c > -MinCardValue || c < -MaxCardValue {
			t.Fatalf("card out of range: %d", c)
		}
		if seen[c] {
			t.Fatalf("duplicate card found: %d", c)
		}
		seen[c] = true
	}
}

func TestShuffleDeckKeepsCards(t *testing.T) {
	deck := NewDeck()
	shuffled := ShuffleDeck(deck, rand.New(rand.NewSource(7)))

	if len(shuffled) != len(deck) {
		t.Fatalf("shuffled size = %d, want %d", len(shuffled), len(deck))
	}
	counts := make(map[int]int)
	for _, c := range shuffled {
		counts[c]++
	}
	for _, c := range deck {
		if counts[c] != 1 {
			t.Fatalf("card %d appears %d times", c, counts[c])
		}
	}
	if deck[0] != -MinCardValue {
		t.Fatalf("ShuffleDeck mutated its input")
	}
}

func TestDealRejectsShortDeck(t *testing.T) {
	for _, deck := range [][]int{nil, {-30}} {
		if _, _, _, err := deal(deck); !errors.Is(err, ErrEmptyDeck) {
			t.Fatalf("deal(%v) error = %v, want ErrEmptyDeck", deck, err)
		}
	}

	hidden, current, rest, err := deal([]int{-30, -31, -32})
	if err != nil {
		t.Fatalf("deal error: %v", err)
	}
	if hidden != -32 || current != -31 || len(rest) != 1 || rest[0] != -30 {
		t.Fatalf("deal = (%d, %d, %v), want (-32, -31, [-30])", hidden, current, rest)
	}
}
