package domain

const (
	// StartingChips is the chip balance every team begins a round with.
	StartingChips = 9
	// ChipUnit is the display unit for chips and project values (billions).
	ChipUnit = "B"

	// MinCardValue and MaxCardValue bound the project magnitudes; cards are their negations.
	MinCardValue = 26
	MaxCardValue = 50
	DeckSize     = MaxCardValue - MinCardValue + 1

	// MinTeams is the roster size required to start; MaxTeams caps any room.
	MinTeams = 4
	MaxTeams = 12

	DefaultRoomName = "Default Room"
	GameName        = "minus_auction"
)

// TeamColors names the cosmetic palette a team's ColorIdx points into.
var TeamColors = []string{
	"Red", "Blue", "Green", "Yellow", "Purple", "Orange",
	"Teal", "Pink", "Indigo", "Cyan", "Rose", "Lime",
}

// ColorName returns the palette entry for idx, wrapping out-of-range values.
func ColorName(idx int) string {
	return TeamColors[wrapColor(idx)]
}

func wrapColor(idx int) int {
	n := len(TeamColors)
	return ((idx % n) + n) % n
}
