package domain

import (
	"reflect"
	"testing"
)

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name  string
		chips int
		cards []int
		want  int
	}{
		{name: "no cards is chip balance", chips: 9, cards: nil, want: 9},
		{name: "single card", chips: 5, cards: []int{-40}, want: -35},
		{name: "run collapses to value nearest zero", chips: 5, cards: []int{-32, -31, -30}, want: -25},
		{name: "gap keeps both cards", chips: 5, cards: []int{-32, -30}, want: -57},
		{name: "unsorted input", chips: 0, cards: []int{-30, -32, -31}, want: -30},
		{name: "two runs and a single", chips: 3, cards: []int{-50, -49, -40, -27, -26}, want: -49 + -40 + -26 + 3},
		{name: "negative chips", chips: -1, cards: []int{-26}, want: -27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Player{Chips: tt.chips, Cards: tt.cards}
			if got := CalculateScore(p); got != tt.want {
				t.Fatalf("CalculateScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateScoreIsPure(t *testing.T) {
	p := Player{Chips: 4, Cards: []int{-30, -32, -31, -45}}
	first := CalculateScore(p)
	second := CalculateScore(p)
	if first != second {
		t.Fatalf("repeated scores differ: %d vs %d", first, second)
	}
	if !reflect.DeepEqual(p.Cards, []int{-30, -32, -31, -45}) {
		t.Fatalf("CalculateScore reordered the player's cards: %v", p.Cards)
	}
}

func TestRuns(t *testing.T) {
	got := Runs([]int{-26, -50, -27, -49, -40})
	want := [][]int{{-50, -49}, {-40}, {-27, -26}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Runs() = %v, want %v", got, want)
	}
	if runs := Runs(nil); len(runs) != 0 {
		t.Fatalf("Runs(nil) = %v, want empty", runs)
	}
}
