package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrNotPlaying     = errors.New("game not in playing phase")
	ErrNoCurrentCard  = errors.New("no card is up for auction")
	ErrNoPlayers      = errors.New("no team holds the turn")
	ErrInvalidAction  = errors.New("invalid action")
	ErrInvalidConfig  = errors.New("invalid room config")
	ErrRosterTooLarge = errors.New("roster exceeds max teams")
	ErrEmptyDeck      = errors.New("deck too small to deal")
)

const gameStartedMessage = "The game has started! Projects from -26B to -50B are up for auction."

// NewLobby returns the empty-roster placeholder a host holds before the game starts.
func NewLobby(cfg Config) GameState {
	return GameState{
		Config:    cfg.Normalize(),
		Players:   []Player{},
		Deck:      []int{},
		Phase:     PhaseLobby,
		Logs:      []LogEntry{},
		TurnCount: 1,
	}
}

// NewGameState deals a fresh round for the given roster: shuffles the deck, sets
// one card aside as hidden, turns up the first card and resets every team.
// rng may be nil to use a time-seeded source.
func NewGameState(players []Player, cfg Config, rng *rand.Rand) (GameState, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return GameState{}, err
	}
	if len(players) > cfg.MaxTeams {
		return GameState{}, fmt.Errorf("%w: %d > %d", ErrRosterTooLarge, len(players), cfg.MaxTeams)
	}

	hidden, current, deck, err := deal(ShuffleDeck(NewDeck(), rng))
	if err != nil {
		return GameState{}, err
	}

	roster := make([]Player, len(players))
	for i, p := range players {
		p.Chips = StartingChips
		p.Cards = []int{}
		p.Online = true
		p.Score = CalculateScore(p)
		roster[i] = p
	}

	start := 0
	if len(roster) > 0 {
		start = rng.Intn(len(roster))
	}

	return GameState{
		Config:             cfg,
		Players:            roster,
		Deck:               deck,
		CurrentCard:        &current,
		HiddenCard:         &hidden,
		Pot:                0,
		CurrentPlayerIndex: start,
		Phase:              PhasePlaying,
		Logs:               []LogEntry{{Turn: 0, Message: gameStartedMessage}},
		TurnCount:          1,
	}, nil
}

// deal pops the hidden card and then the first auction card off a shuffled deck.
func deal(deck []int) (hidden, current int, rest []int, err error) {
	if len(deck) < 2 {
		return 0, 0, nil, fmt.Errorf("%w: %d cards", ErrEmptyDeck, len(deck))
	}
	hidden, rest = pop(deck)
	current, rest = pop(rest)
	return hidden, current, rest, nil
}

// ProcessTurn applies one action for the team on turn and returns the next snapshot.
// A pass from a team without chips is resolved as a take. Calls outside the playing
// phase are rejected and the given state is returned untouched.
func ProcessTurn(state GameState, action Action) (GameState, error) {
	if state.Phase != PhasePlaying {
		return state, ErrNotPlaying
	}
	if state.CurrentCard == nil {
		return state, ErrNoCurrentCard
	}
	if _, ok := state.CurrentPlayer(); !ok {
		return state, ErrNoPlayers
	}
	if action != ActionPass && action != ActionTake {
		return state, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	next := state.Clone()
	idx := next.CurrentPlayerIndex
	player := &next.Players[idx]

	if action == ActionPass && player.Chips <= 0 {
		action = ActionTake
	}

	var entry LogEntry
	switch action {
	case ActionPass:
		player.Chips--
		player.Score = CalculateScore(*player)
		next.Pot++
		next.CurrentPlayerIndex = (idx + 1) % len(next.Players)
		entry = LogEntry{
			Turn:    next.TurnCount,
			Message: fmt.Sprintf("[%s] passed (-1%s)", player.Name, ChipUnit),
		}

	case ActionTake:
		taken := *next.CurrentCard
		player.Chips += next.Pot
		player.Cards = SortCards(append(player.Cards, taken))
		player.Score = CalculateScore(*player)
		next.Pot = 0

		if len(next.Deck) > 0 {
			card, rest := pop(next.Deck)
			next.CurrentCard = &card
			next.Deck = rest
			entry = LogEntry{
				Turn:    next.TurnCount,
				Message: fmt.Sprintf("[%s] won the %d%s project", player.Name, taken, ChipUnit),
			}
		} else {
			next.CurrentCard = nil
			next.Phase = PhaseFinished
			entry = LogEntry{
				Turn:    next.TurnCount,
				Message: fmt.Sprintf("[%s] took the last project (%d%s). Auction closed!", player.Name, taken, ChipUnit),
			}
		}
	}

	next.Logs = append(next.Logs, entry)
	next.TurnCount++
	return next, nil
}
