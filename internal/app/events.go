package app

import (
	"context"

	"minusauction/internal/domain"
)

// EventKind identifies emitted domain events for dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventGameStarted  EventKind = "game_started"
	EventTurnPassed   EventKind = "turn_passed"
	EventProjectTaken EventKind = "project_taken"
	EventGameFinished EventKind = "game_finished"
	EventGameReset    EventKind = "game_reset"
	EventStateUpdated EventKind = "state_updated"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// Publisher delivers events to whoever is listening: a Nakama match dispatcher,
// an in-process bus, or anything else with point-to-multipoint delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublishAll sends events in order and stops at the first failure.
func PublishAll(ctx context.Context, pub Publisher, events []Event) error {
	for _, ev := range events {
		if err := pub.Publish(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

type PlayerJoinedPayload struct {
	PlayerID string
	Name     string
	ColorIdx int
	Teams    int
}

type GameStartedPayload struct {
	FirstTurnPlayerID string
	CurrentCard       int
}

type TurnPassedPayload struct {
	PlayerID         string
	NextTurnPlayerID string
	Pot              int
}

type ProjectTakenPayload struct {
	PlayerID string
	Card     int
	PotWon   int
	Forced   bool // a pass without chips resolved as a take
	NextCard *int
}

type GameFinishedPayload struct {
	Standings  []domain.Standing
	HiddenCard *int
}

type GameResetPayload struct {
	Mode ResetMode
}

// StateUpdatedPayload carries the public snapshot every client renders.
type StateUpdatedPayload struct {
	State domain.GameState
}
