package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"minusauction/internal/domain"
	"minusauction/internal/ports"
)

// Service contains Minus Auction use-cases operating on domain snapshots.
type Service struct {
	rng     *rand.Rand
	advisor ports.AdvisorPort
}

// NewService constructs a Service with provided rng or a time-seeded default.
// advisor may be nil; Advice then always falls back.
func NewService(rng *rand.Rand, advisor ports.AdvisorPort) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, advisor: advisor}
}

var (
	ErrNotAdmin      = errors.New("actor is not room admin")
	ErrNotInLobby    = errors.New("room not in lobby")
	ErrTooFewPlayers = errors.New("not enough teams to start")
	ErrRoomFull      = errors.New("room is full")
	ErrInvalidJoin   = errors.New("team id and name are required")
	ErrUnknownPlayer = errors.New("player not found")
	ErrUnauthorized  = errors.New("unauthorized action")
)

// ResetMode selects what survives an explicit reset.
type ResetMode string

const (
	// ResetToLobby returns to the lobby keeping the joined teams.
	ResetToLobby ResetMode = "lobby"
	// ResetFull returns to an empty lobby.
	ResetFull ResetMode = "full"
	// ResetRestart deals a fresh round for the same teams.
	ResetRestart ResetMode = "restart"
)

// ParseResetMode converts wire input into a ResetMode; empty means ResetToLobby.
func ParseResetMode(s string) (ResetMode, error) {
	switch ResetMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResetToLobby:
		return ResetToLobby, nil
	case ResetFull:
		return ResetFull, nil
	case ResetRestart:
		return ResetRestart, nil
	default:
		return "", fmt.Errorf("unknown reset mode %q", s)
	}
}

// JoinRequest is a team asking for a seat in the lobby.
type JoinRequest struct {
	PlayerID string
	Name     string
	ColorIdx int
}

// ActionRequest is a pass/take submitted by ActorID on behalf of PlayerID.
type ActionRequest struct {
	ActorID  string
	PlayerID string // team the action is attributed to; empty means ActorID
	Action   domain.Action
	Admin    bool // actor holds delegated authority over every team
}

// AdviceResult captures advisor output and any non-fatal failure behind a fallback.
type AdviceResult struct {
	Text     string
	Fallback bool
	Err      error
}

// CreateRoom returns an empty lobby for the given room settings.
func (s *Service) CreateRoom(cfg domain.Config) (domain.GameState, []Event, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return domain.GameState{}, nil, err
	}
	lobby := domain.NewLobby(cfg)
	return lobby, []Event{stateUpdated(lobby)}, nil
}

// Join seats a new team. Joining twice with the same id is a no-op.
func (s *Service) Join(state domain.GameState, req JoinRequest) (domain.GameState, []Event, error) {
	if state.Phase != domain.PhaseLobby {
		return state, nil, ErrNotInLobby
	}
	if state.PlayerIndex(req.PlayerID) >= 0 {
		return state, nil, nil
	}
	name := strings.TrimSpace(req.Name)
	if req.PlayerID == "" || name == "" {
		return state, nil, ErrInvalidJoin
	}
	if len(state.Players) >= state.Config.MaxTeams {
		return state, nil, ErrRoomFull
	}

	next := state.Clone()
	player := domain.NewPlayer(req.PlayerID, name, req.ColorIdx)
	next.Players = append(next.Players, player)

	return next, []Event{
		{
			Kind: EventPlayerJoined,
			Payload: PlayerJoinedPayload{
				PlayerID: player.ID,
				Name:     player.Name,
				ColorIdx: player.ColorIdx,
				Teams:    len(next.Players),
			},
		},
		stateUpdated(next),
	}, nil
}

// StartGame deals the first round for the lobby roster.
func (s *Service) StartGame(state domain.GameState) (domain.GameState, []Event, error) {
	if state.Phase != domain.PhaseLobby {
		return state, nil, ErrNotInLobby
	}
	return s.deal(state)
}

func (s *Service) deal(state domain.GameState) (domain.GameState, []Event, error) {
	if len(state.Players) < MinPlayersToStartGame {
		return state, nil, fmt.Errorf("%w: %d of %d", ErrTooFewPlayers, len(state.Players), MinPlayersToStartGame)
	}

	game, err := domain.NewGameState(state.Players, state.Config, s.rng)
	if err != nil {
		return state, nil, err
	}

	first, _ := game.CurrentPlayer()
	return game, []Event{
		{
			Kind: EventGameStarted,
			Payload: GameStartedPayload{
				FirstTurnPlayerID: first.ID,
				CurrentCard:       *game.CurrentCard,
			},
		},
		stateUpdated(game),
	}, nil
}

// Act authorizes an action and hands it to the turn resolver. The actor must be
// the team on turn, or an admin acting for it.
func (s *Service) Act(state domain.GameState, req ActionRequest) (domain.GameState, []Event, error) {
	if state.Phase != domain.PhasePlaying {
		return state, nil, domain.ErrNotPlaying
	}

	target := req.PlayerID
	if target == "" {
		target = req.ActorID
	}
	if !req.Admin && req.ActorID != target {
		return state, nil, fmt.Errorf("%w: %s cannot act for %s", ErrUnauthorized, req.ActorID, target)
	}
	if state.PlayerIndex(target) < 0 {
		return state, nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, target)
	}
	current, ok := state.CurrentPlayer()
	if !ok {
		return state, nil, domain.ErrNoPlayers
	}
	if current.ID != target {
		return state, nil, fmt.Errorf("%w: not %s's turn", ErrUnauthorized, target)
	}

	next, err := domain.ProcessTurn(state, req.Action)
	if err != nil {
		return state, nil, err
	}
	return next, turnEvents(state, next, req.Action), nil
}

func turnEvents(prev, next domain.GameState, requested domain.Action) []Event {
	actor := prev.Players[prev.CurrentPlayerIndex]
	var events []Event

	if next.Pot > prev.Pot {
		nextPlayer, _ := next.CurrentPlayer()
		events = append(events, Event{
			Kind: EventTurnPassed,
			Payload: TurnPassedPayload{
				PlayerID:         actor.ID,
				NextTurnPlayerID: nextPlayer.ID,
				Pot:              next.Pot,
			},
		})
	} else {
		events = append(events, Event{
			Kind: EventProjectTaken,
			Payload: ProjectTakenPayload{
				PlayerID: actor.ID,
				Card:     *prev.CurrentCard,
				PotWon:   prev.Pot,
				Forced:   requested == domain.ActionPass,
				NextCard: next.CurrentCard,
			},
		})
	}

	if next.Phase == domain.PhaseFinished {
		events = append(events, Event{
			Kind: EventGameFinished,
			Payload: GameFinishedPayload{
				Standings:  domain.Standings(next),
				HiddenCard: next.HiddenCard,
			},
		})
	}
	return append(events, stateUpdated(next))
}

// Reset discards the current round according to mode.
func (s *Service) Reset(state domain.GameState, mode ResetMode) (domain.GameState, []Event, error) {
	reset := Event{Kind: EventGameReset, Payload: GameResetPayload{Mode: mode}}

	switch mode {
	case ResetFull:
		lobby := domain.NewLobby(state.Config)
		return lobby, []Event{reset, stateUpdated(lobby)}, nil

	case ResetToLobby:
		lobby := domain.NewLobby(state.Config)
		for _, p := range state.Players {
			fresh := domain.NewPlayer(p.ID, p.Name, p.ColorIdx)
			fresh.Online = p.Online
			lobby.Players = append(lobby.Players, fresh)
		}
		return lobby, []Event{reset, stateUpdated(lobby)}, nil

	case ResetRestart:
		game, events, err := s.deal(state)
		if err != nil {
			return state, nil, err
		}
		return game, append([]Event{reset}, events...), nil

	default:
		return state, nil, fmt.Errorf("unknown reset mode %q", mode)
	}
}

// SetOnline updates the cosmetic connectivity flag of a team.
func (s *Service) SetOnline(state domain.GameState, playerID string, online bool) domain.GameState {
	return state.WithOnline(playerID, online)
}

// Advice asks the advisor for strategic guidance. It never fails: errors and empty
// output are replaced by fixed fallback text and reported in the result.
func (s *Service) Advice(ctx context.Context, state domain.GameState, playerID string) AdviceResult {
	if _, ok := state.Player(playerID); !ok {
		return AdviceResult{Text: AdviceUnknownPlayer, Fallback: true, Err: ErrUnknownPlayer}
	}
	if s.advisor == nil {
		return AdviceResult{Text: AdviceUnavailable, Fallback: true}
	}

	text, err := s.advisor.Advise(ctx, state.Public(), playerID)
	if err != nil {
		return AdviceResult{Text: AdviceUnavailable, Fallback: true, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return AdviceResult{Text: AdviceEmpty, Fallback: true}
	}
	return AdviceResult{Text: text}
}

func stateUpdated(state domain.GameState) Event {
	return Event{Kind: EventStateUpdated, Payload: StateUpdatedPayload{State: state.Public()}}
}
