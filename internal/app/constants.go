package app

import "minusauction/internal/domain"

// MinPlayersToStartGame defines the minimum number of teams required to start a game.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = domain.MinTeams

// Fallback advice shown when the advisor cannot help.
const (
	AdviceUnknownPlayer = "Player information could not be found."
	AdviceUnavailable   = "Strategy analysis is unavailable right now."
	AdviceEmpty         = "No advice could be generated."
)
