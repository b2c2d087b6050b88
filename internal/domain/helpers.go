package domain

import "sort"

// LabelPayload produces the values needed for match label advertisement.
type LabelPayload struct {
	Open     bool   `json:"open"`
	Game     string `json:"game"`
	Phase    string `json:"phase"`
	Room     string `json:"room"`
	Teams    int    `json:"teams"`
	MaxTeams int    `json:"max_teams"`
}

// ComputeLabel derives the advertised label from the room state.
func ComputeLabel(s GameState) LabelPayload {
	open := s.Phase == PhaseLobby && len(s.Players) < s.Config.MaxTeams
	return LabelPayload{
		Open:     open,
		Game:     GameName,
		Phase:    string(s.Phase),
		Room:     s.Config.RoomName,
		Teams:    len(s.Players),
		MaxTeams: s.Config.MaxTeams,
	}
}

// Standing is one row of the final ranking.
type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Chips    int    `json:"chips"`
	Cards    []int  `json:"cards"`
}

// Standings ranks teams by score, then chips; equal score and chips share a rank.
// Roster order breaks remaining ties.
func Standings(s GameState) []Standing {
	rows := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		rows[i] = Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Chips:    p.Chips,
			Cards:    SortCards(p.Cards),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Chips > rows[j].Chips
	})

	for i := range rows {
		if i > 0 && rows[i].Score == rows[i-1].Score && rows[i].Chips == rows[i-1].Chips {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}

// Winner returns the top-ranked team once the auction is finished.
func Winner(s GameState) (Standing, bool) {
	if s.Phase != PhaseFinished || len(s.Players) == 0 {
		return Standing{}, false
	}
	return Standings(s)[0], true
}
