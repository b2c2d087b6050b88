package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Phase represents the lifecycle stage of an auction room.
type Phase string

const (
	// PhaseLobby accepts teams; no cards are dealt.
	PhaseLobby Phase = "LOBBY"
	// PhasePlaying is the active auction where turns are resolved.
	PhasePlaying Phase = "PLAYING"
	// PhaseFinished is terminal until an explicit reset.
	PhaseFinished Phase = "FINISHED"
)

// Action is a team's decision when facing the current card.
type Action string

const (
	ActionPass Action = "pass"
	ActionTake Action = "take"
)

// ParseAction converts wire input into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionPass:
		return ActionPass, nil
	case ActionTake:
		return ActionTake, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Player is a team taking part in the auction.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ColorIdx int    `json:"colorIdx"`
	Chips    int    `json:"chips"`
	Cards    []int  `json:"cards"`
	Score    int    `json:"score"`
	Online   bool   `json:"isOnline"`
}

// NewPlayer builds a freshly joined team with the starting balance.
func NewPlayer(id, name string, colorIdx int) Player {
	p := Player{
		ID:       id,
		Name:     name,
		ColorIdx: wrapColor(colorIdx),
		Chips:    StartingChips,
		Cards:    []int{},
		Online:   true,
	}
	p.Score = CalculateScore(p)
	return p
}

func (p Player) clone() Player {
	p.Cards = slices.Clone(p.Cards)
	if p.Cards == nil {
		p.Cards = []int{}
	}
	return p
}

// LogEntry is one line of the append-only turn log.
type LogEntry struct {
	Turn    int    `json:"turn"`
	Message string `json:"message"`
}

// Config holds the room settings chosen by the admin.
type Config struct {
	RoomName string `json:"roomName"`
	MaxTeams int    `json:"maxTeams"`
}

// Normalize fills zero values with defaults.
func (c Config) Normalize() Config {
	c.RoomName = strings.TrimSpace(c.RoomName)
	if c.RoomName == "" {
		c.RoomName = DefaultRoomName
	}
	if c.MaxTeams == 0 {
		c.MaxTeams = MaxTeams
	}
	return c
}

// Validate reports whether the team bound is within the supported range.
func (c Config) Validate() error {
	if c.MaxTeams < MinTeams || c.MaxTeams > MaxTeams {
		return fmt.Errorf("%w: max teams %d outside %d..%d", ErrInvalidConfig, c.MaxTeams, MinTeams, MaxTeams)
	}
	return nil
}

// GameState is one immutable snapshot of a room. Operations return new snapshots.
type GameState struct {
	Config             Config     `json:"config"`
	Players            []Player   `json:"players"`
	Deck               []int      `json:"deck"`
	CurrentCard        *int       `json:"currentCard"`
	HiddenCard         *int       `json:"hiddenCard"`
	Pot                int        `json:"pot"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	Phase              Phase      `json:"phase"`
	Logs               []LogEntry `json:"logs"`
	TurnCount          int        `json:"turnCount"`
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Deck = cloneInts(s.Deck)
	out.Logs = append(make([]LogEntry, 0, len(s.Logs)), s.Logs...)
	out.CurrentCard = cloneCard(s.CurrentCard)
	out.HiddenCard = cloneCard(s.HiddenCard)
	return out
}

// Public returns the snapshot safe to show every client: the hidden card stays
// concealed until the auction is over.
func (s GameState) Public() GameState {
	out := s.Clone()
	if out.Phase != PhaseFinished {
		out.HiddenCard = nil
	}
	return out
}

// CurrentPlayer returns the team whose turn it is.
func (s GameState) CurrentPlayer() (Player, bool) {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}

// PlayerIndex returns the roster index of id, or -1.
func (s GameState) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Player looks a team up by id.
func (s GameState) Player(id string) (Player, bool) {
	i := s.PlayerIndex(id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

// WithOnline returns a copy of s with the connectivity flag of id updated.
func (s GameState) WithOnline(id string, online bool) GameState {
	i := s.PlayerIndex(id)
	if i < 0 || s.Players[i].Online == online {
		return s
	}
	out := s.Clone()
	out.Players[i].Online = online
	return out
}

// IsFinished reports whether the auction has run out of cards.
func (s GameState) IsFinished() bool {
	return s.CurrentCard == nil && len(s.Deck) == 0
}

func cloneInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func cloneCard(c *int) *int {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
