package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"minusauction/internal/advisor"
	"minusauction/internal/app"
	"minusauction/internal/bot"
	"minusauction/internal/bus"
	"minusauction/internal/config"
	"minusauction/internal/domain"
	"minusauction/internal/ports"
)

const (
	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before exiting.
func run() int {
	humans := flag.Int("teams", 1, "number of human teams sharing this terminal")
	bots := flag.Int("bots", 3, "number of AI teams")
	seed := flag.Int64("seed", time.Now().UnixNano(), "deck shuffle seed")
	room := flag.String("room", "Local Table", "room name")
	flag.Parse()

	if err := validateTeams(*humans, *bots); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		flag.Usage()
		return 2
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("using default game config", zap.String("path", gameConfigPath), zap.Error(err))
	}
	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("using generated bot identities", zap.String("path", botIdentitiesPath), zap.Error(err))
	}
	cfg := config.GetGameConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var adv ports.AdvisorPort
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		gemini, err := advisor.NewGemini(ctx, key, cfg.AdvisorModel, cfg.AdvisorTimeout())
		if err != nil {
			logger.Warn("advisor unavailable", zap.Error(err))
		} else {
			adv = gemini
		}
	}

	events := bus.New(logger)
	defer events.Close()

	h := newHost(app.NewService(rand.New(rand.NewSource(*seed)), adv), events, logger, cfg)
	if err := h.run(ctx, *room, *humans, *bots); err != nil {
		logger.Error("game aborted", zap.Error(err))
		return 1
	}
	return 0
}

// validateTeams checks the roster flags against the room limits.
func validateTeams(humans, bots int) error {
	if humans < 0 || bots < 0 {
		return fmt.Errorf("-teams and -bots must not be negative (got %d and %d)", humans, bots)
	}
	if total := humans + bots; total < domain.MinTeams || total > domain.MaxTeams {
		return fmt.Errorf("-teams plus -bots must be between %d and %d, got %d", domain.MinTeams, domain.MaxTeams, total)
	}
	return nil
}
