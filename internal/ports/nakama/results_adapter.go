package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"minusauction/internal/domain"
	"minusauction/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageWriter is the slice of runtime.NakamaModule the results adapter needs.
type storageWriter interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

type resultRecord struct {
	MatchID string `json:"matchId"`
	Rank    int    `json:"rank"`
	Teams   int    `json:"teams"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Chips   int    `json:"chips"`
	Cards   []int  `json:"cards"`
}

// NakamaResultsAdapter implements ports.ResultsPort with one storage object per team.
type NakamaResultsAdapter struct {
	nk storageWriter
}

// NewNakamaResultsAdapter creates a new results adapter.
func NewNakamaResultsAdapter(nk storageWriter) *NakamaResultsAdapter {
	return &NakamaResultsAdapter{nk: nk}
}

// RecordResults writes every standing under the owning user, keyed by match id.
// Objects are readable by their owner and not writable by clients.
func (a *NakamaResultsAdapter) RecordResults(ctx context.Context, matchID string, standings []domain.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	writes := make([]*runtime.StorageWrite, 0, len(standings))
	for _, s := range standings {
		value, err := json.Marshal(resultRecord{
			MatchID: matchID,
			Rank:    s.Rank,
			Teams:   len(standings),
			Name:    s.Name,
			Score:   s.Score,
			Chips:   s.Chips,
			Cards:   s.Cards,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal result for %s: %w", s.PlayerID, err)
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      ResultsCollection,
			Key:             matchID,
			UserID:          s.PlayerID,
			Value:           string(value),
			PermissionRead:  1,
			PermissionWrite: 0,
		})
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write results for match %s: %w", matchID, err)
	}
	return nil
}

var _ ports.ResultsPort = (*NakamaResultsAdapter)(nil)
