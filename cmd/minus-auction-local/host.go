package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"minusauction/internal/app"
	"minusauction/internal/bot"
	"minusauction/internal/bus"
	"minusauction/internal/config"
	"minusauction/internal/domain"
	"minusauction/internal/render"
)

const (
	optPass   = "Pass (pay 1 chip)"
	optTake   = "Take the project"
	optAdvice = "Ask the advisor"
	optQuit   = "Quit"

	logLines = 8
)

var errQuit = errors.New("quit")

// host owns the authoritative snapshot of a hot-seat game and publishes every
// use-case event on the bus.
type host struct {
	svc    *app.Service
	bus    *bus.Bus
	logger *zap.Logger
	cfg    config.GameConfig

	game   domain.GameState
	agents map[string]*bot.Agent
	feed   <-chan app.Event
}

func newHost(svc *app.Service, b *bus.Bus, logger *zap.Logger, cfg config.GameConfig) *host {
	feed, _ := b.Subscribe(bus.Broadcast, 64, app.EventPlayerJoined, app.EventProjectTaken, app.EventGameFinished, app.EventGameReset)
	return &host{
		svc:    svc,
		bus:    b,
		logger: logger,
		cfg:    cfg,
		agents: make(map[string]*bot.Agent),
		feed:   feed,
	}
}

func (h *host) run(ctx context.Context, room string, humans, bots int) error {
	if err := h.setup(ctx, room, humans, bots); err != nil {
		return err
	}

	for {
		err := h.play(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		again, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play again with the same teams?").Show()
		if !again {
			return nil
		}
		next, events, err := h.svc.Reset(h.game, app.ResetRestart)
		if err := h.commit(ctx, next, events, err); err != nil {
			return err
		}
	}
}

func (h *host) setup(ctx context.Context, room string, humans, bots int) error {
	lobby, events, err := h.svc.CreateRoom(domain.Config{RoomName: room, MaxTeams: humans + bots})
	if err := h.commit(ctx, lobby, events, err); err != nil {
		return err
	}

	for i := 0; i < humans; i++ {
		name, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Name of team %d", i+1)).
			WithDefaultValue(fmt.Sprintf("Team %d", i+1)).
			Show()
		next, events, err := h.svc.Join(h.game, app.JoinRequest{
			PlayerID: fmt.Sprintf("local-%d", i+1),
			Name:     name,
			ColorIdx: i,
		})
		if err := h.commit(ctx, next, events, err); err != nil {
			return err
		}
	}

	for i := 0; i < bots; i++ {
		identity := bot.GetBotIdentity(i)
		level, err := bot.ParseBotLevel(identity.Level)
		if err != nil {
			level, _ = bot.ParseBotLevel(h.cfg.BotLevel)
		}
		agent, err := bot.NewAgent(bot.NewBotID(), identity.Name, level)
		if err != nil {
			return err
		}
		next, events, err := h.svc.Join(h.game, app.JoinRequest{
			PlayerID: agent.ID,
			Name:     identity.Name,
			ColorIdx: humans + identity.ColorIdx,
		})
		if err := h.commit(ctx, next, events, err); err != nil {
			return err
		}
		h.agents[agent.ID] = agent
	}

	next, events, err := h.svc.StartGame(h.game)
	return h.commit(ctx, next, events, err)
}

// play runs turns until the auction closes.
func (h *host) play(ctx context.Context) error {
	for h.game.Phase == domain.PhasePlaying {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, _ := h.game.CurrentPlayer()

		if agent, ok := h.agents[current.ID]; ok {
			action, err := agent.Play(h.game)
			if err != nil {
				h.logger.Warn("bot failed to decide", zap.String("bot", agent.Name), zap.Error(err))
			}
			if err := h.act(ctx, current.ID, action); err != nil {
				return err
			}
			continue
		}

		if err := h.show(); err != nil {
			return err
		}
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText(fmt.Sprintf("%s, your move", current.Name)).
			WithOptions([]string{optPass, optTake, optAdvice, optQuit}).
			Show()

		switch choice {
		case optPass:
			if err := h.act(ctx, current.ID, domain.ActionPass); err != nil {
				return err
			}
		case optTake:
			if err := h.act(ctx, current.ID, domain.ActionTake); err != nil {
				return err
			}
		case optAdvice:
			h.advise(ctx, current)
		default:
			return errQuit
		}
	}

	if err := h.show(); err != nil {
		return err
	}
	standings, err := render.Standings(h.game)
	if err != nil {
		return err
	}
	pterm.Println(standings)
	return nil
}

func (h *host) act(ctx context.Context, playerID string, action domain.Action) error {
	next, events, err := h.svc.Act(h.game, app.ActionRequest{ActorID: playerID, Action: action})
	return h.commit(ctx, next, events, err)
}

func (h *host) advise(ctx context.Context, player domain.Player) {
	spinner, _ := pterm.DefaultSpinner.Start("Asking the advisor...")
	result := h.svc.Advice(ctx, h.game, player.ID)
	if result.Err != nil {
		h.logger.Warn("advisor fallback", zap.String("team", player.Name), zap.Error(result.Err))
	}
	if spinner != nil {
		_ = spinner.Stop()
	}
	pterm.DefaultBox.WithTitle(pterm.LightCyan("|ADVISOR|")).WithTitleTopCenter().WithHorizontalPadding(2).Println(result.Text)
}

// commit replaces the snapshot and publishes events. A rejected use-case
// leaves the snapshot untouched.
func (h *host) commit(ctx context.Context, next domain.GameState, events []app.Event, err error) error {
	if err != nil {
		return err
	}
	h.game = next
	if err := app.PublishAll(ctx, h.bus, events); err != nil {
		return err
	}
	h.announce()
	return nil
}

// announce prints everything waiting on the feed without blocking.
func (h *host) announce() {
	for {
		select {
		case ev, ok := <-h.feed:
			if !ok {
				return
			}
			h.describe(ev)
		default:
			return
		}
	}
}

func (h *host) describe(ev app.Event) {
	switch pl := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		pterm.Info.Printfln("%s joined (%d teams)", pl.Name, pl.Teams)
	case app.ProjectTakenPayload:
		p, _ := h.game.Player(pl.PlayerID)
		if pl.Forced {
			pterm.Warning.Printfln("%s is out of chips and must take %d%s", p.Name, pl.Card, domain.ChipUnit)
			return
		}
		pterm.Info.Printfln("%s took %d%s with a pot of %d%s", p.Name, pl.Card, domain.ChipUnit, pl.PotWon, domain.ChipUnit)
	case app.GameFinishedPayload:
		if winner, ok := domain.Winner(h.game); ok {
			pterm.Success.Printfln("Auction closed. %s wins with %d", winner.Name, winner.Score)
		}
	case app.GameResetPayload:
		pterm.Info.Printfln("Room reset (%s)", pl.Mode)
	}
}

func (h *host) show() error {
	board, err := render.Board(h.game)
	if err != nil {
		return err
	}
	pterm.Println(board)
	if log := render.Log(h.game, logLines); log != "" {
		pterm.Println(log)
	}
	return nil
}
