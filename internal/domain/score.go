package domain

// CalculateScore collapses every run of consecutive held cards into its value
// closest to zero and adds the chip balance.
func CalculateScore(p Player) int {
	if len(p.Cards) == 0 {
		return p.Chips
	}

	sum := 0
	for _, run := range Runs(p.Cards) {
		sum += run[len(run)-1]
	}
	return sum + p.Chips
}

// Runs splits the cards, sorted ascending, into maximal runs of consecutive values.
// Only the last card of each run counts towards the score.
func Runs(cards []int) [][]int {
	sorted := SortCards(cards)

	var runs [][]int
	for i, c := range sorted {
		if i == 0 || c != sorted[i-1]+1 {
			runs = append(runs, []int{c})
			continue
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], c)
	}
	return runs
}
