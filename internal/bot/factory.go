package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects the decision strategy of an AI team.
type BotLevel string

const (
	BotLevelCautious BotLevel = "cautious"
	BotLevelSequence BotLevel = "sequence"
)

// ParseBotLevel maps configuration input to a BotLevel; empty means cautious.
func ParseBotLevel(s string) (BotLevel, error) {
	switch BotLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", BotLevelCautious:
		return BotLevelCautious, nil
	case BotLevelSequence:
		return BotLevelSequence, nil
	default:
		return "", fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelCautious:
		return &CautiousBot{Tuning: DefaultTuning}, nil
	case BotLevelSequence:
		return &SequenceBot{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}

// NewAgent wires a brain of the given level to a seated bot identity.
func NewAgent(id, name string, level BotLevel) (*Agent, error) {
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Strategy: brain}, nil
}
