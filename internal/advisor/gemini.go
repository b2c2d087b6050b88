package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"minusauction/internal/domain"
)

const DefaultModel = "gemini-2.5-flash"

var (
	ErrMissingAPIKey = errors.New("gemini api key missing")
	ErrUnknownPlayer = errors.New("player not in game state")
)

type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Gemini asks a Gemini model for PASS/TAKE advice.
type Gemini struct {
	model    string
	timeout  time.Duration
	generate generateFunc
}

// NewGemini connects to the Gemini API. An empty model selects DefaultModel and a
// non-positive timeout disables the per-call deadline.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return newGemini(model, timeout, func(ctx context.Context, model, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}), nil
}

func newGemini(model string, timeout time.Duration, generate generateFunc) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{model: model, timeout: timeout, generate: generate}
}

// Advise implements ports.AdvisorPort.
func (g *Gemini) Advise(ctx context.Context, state domain.GameState, playerID string) (string, error) {
	player, ok := state.Player(playerID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.generate(ctx, g.model, BuildPrompt(state, player))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return text, nil
}
