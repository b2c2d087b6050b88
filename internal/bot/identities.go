package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDPrefix marks user IDs of AI teams.
const IDPrefix = "bot-"

type BotIdentity struct {
	Name     string `json:"name"`
	Level    string `json:"level"` // "cautious", "sequence"
	ColorIdx int    `json:"color_idx"`
}

var (
	botIdentities []BotIdentity
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		if err := json.Unmarshal(data, &botIdentities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
	})
	return loadErr
}

// GetBotIdentity returns an identity for a bot by index. Indexes past the pool
// size reuse it with a numbered suffix so names stay unique.
func GetBotIdentity(index int) BotIdentity {
	return identityAt(botIdentities, index)
}

func identityAt(pool []BotIdentity, index int) BotIdentity {
	if len(pool) == 0 {
		return BotIdentity{
			Name:     fmt.Sprintf("AI Team %d", index+1),
			Level:    string(BotLevelCautious),
			ColorIdx: index,
		}
	}
	identity := pool[index%len(pool)]
	// Later rounds through the pool get a numbered name and the next colours.
	if round := index / len(pool); round > 0 {
		identity.Name = fmt.Sprintf("%s %d", identity.Name, round+1)
		identity.ColorIdx += round * len(pool)
	}
	return identity
}

// NewBotID returns a fresh user ID for an AI team.
func NewBotID() string {
	return IDPrefix + uuid.NewString()
}

// IsBot reports whether the given user ID belongs to an AI team.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, IDPrefix)
}
