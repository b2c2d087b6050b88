package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"minusauction/internal/app"
	"minusauction/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// dispatcherPublisher implements app.Publisher on top of a match dispatcher.
// Clients render from full snapshots, so only snapshot, reset and finish
// events are put on the wire.
type dispatcherPublisher struct {
	state      *MatchState
	dispatcher runtime.MatchDispatcher
	logger     runtime.Logger
}

func (p *dispatcherPublisher) Publish(ctx context.Context, ev app.Event) error {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventStateUpdated:
		opCode = OpStateUpdate
		payload = ev.Payload.(app.StateUpdatedPayload).State
	case app.EventGameReset:
		opCode = OpResetDone
		payload = resetEvent{Mode: string(ev.Payload.(app.GameResetPayload).Mode)}
	case app.EventGameFinished:
		opCode = OpGameFinished
		pl := ev.Payload.(app.GameFinishedPayload)
		payload = gameFinishedEvent{Standings: pl.Standings, HiddenCard: pl.HiddenCard}
	case app.EventPlayerJoined, app.EventGameStarted, app.EventTurnPassed, app.EventProjectTaken:
		p.logger.Debug("Event: %s %+v", ev.Kind, ev.Payload)
		return nil
	default:
		p.logger.Warn("Unknown event kind: %v", ev.Kind)
		return nil
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Kind, err)
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if presence, ok := p.state.Presences[uid]; ok {
				recipients = append(recipients, presence)
			}
		}

		// Intended recipients that are not connected must not turn into a broadcast.
		if len(recipients) == 0 {
			return nil
		}
	}

	return p.dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

func stateUpdatedEvent(game domain.GameState) app.Event {
	return app.Event{Kind: app.EventStateUpdated, Payload: app.StateUpdatedPayload{State: game.Public()}}
}

var _ app.Publisher = (*dispatcherPublisher)(nil)
