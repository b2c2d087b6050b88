// Package render draws game snapshots for terminal hosts.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"minusauction/internal/bot"
	"minusauction/internal/domain"
)

// FormatCards lists cards run by run. Only the card closest to zero in a run
// counts towards the score; the rest are shown in parentheses.
func FormatCards(cards []int) string {
	if len(cards) == 0 {
		return "-"
	}
	var parts []string
	for _, run := range domain.Runs(cards) {
		for i, c := range run {
			if i == len(run)-1 {
				parts = append(parts, strconv.Itoa(c))
				continue
			}
			parts = append(parts, "("+strconv.Itoa(c)+")")
		}
	}
	return strings.Join(parts, " ")
}

func chips(n int) string {
	return fmt.Sprintf("%d%s", n, domain.ChipUnit)
}

// Board renders the auction header and one table row per team.
func Board(state domain.GameState) (string, error) {
	header := pterm.DefaultBox.
		WithTitle(pterm.LightYellow("|" + state.Config.RoomName + "|")).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Sprint(headerText(state))

	data := pterm.TableData{{"", "Team", "Color", "Chips", "Projects", "Score", "Status"}}
	current, playing := state.CurrentPlayer()
	playing = playing && state.Phase == domain.PhasePlaying
	for _, p := range state.Players {
		marker := ""
		if playing && p.ID == current.ID {
			marker = ">"
		}
		data = append(data, []string{
			marker,
			teamName(p),
			domain.ColorName(p.ColorIdx),
			chips(p.Chips),
			FormatCards(p.Cards),
			strconv.Itoa(p.Score),
			status(p),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render teams: %w", err)
	}
	return header + "\n" + table, nil
}

func headerText(state domain.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s   Turn: %d\n", state.Phase, state.TurnCount)
	fmt.Fprintf(&b, "Teams: %d/%d\n", len(state.Players), state.Config.MaxTeams)
	if state.CurrentCard != nil {
		fmt.Fprintf(&b, "Project: %s   Pot: %s   Deck: %d", pterm.LightRed(chips(*state.CurrentCard)), chips(state.Pot), len(state.Deck))
	} else {
		fmt.Fprintf(&b, "Pot: %s   Deck: %d", chips(state.Pot), len(state.Deck))
	}
	if state.Phase == domain.PhaseFinished && state.HiddenCard != nil {
		fmt.Fprintf(&b, "\nHidden project: %s", chips(*state.HiddenCard))
	}
	return b.String()
}

func teamName(p domain.Player) string {
	if bot.IsBot(p.ID) {
		return p.Name + " [AI]"
	}
	return p.Name
}

func status(p domain.Player) string {
	if p.Online {
		return pterm.LightGreen("online")
	}
	return pterm.Gray("offline")
}

// Log renders the last n log entries, oldest first. n <= 0 renders all of them.
func Log(state domain.GameState, n int) string {
	logs := state.Logs
	if n > 0 && len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	var b strings.Builder
	for _, entry := range logs {
		fmt.Fprintf(&b, "%3d  %s\n", entry.Turn, entry.Message)
	}
	return b.String()
}

// Standings renders the final ranking with the winner highlighted.
func Standings(state domain.GameState) (string, error) {
	rows := domain.Standings(state)
	data := pterm.TableData{{"Rank", "Team", "Score", "Chips", "Projects"}}
	for _, r := range rows {
		name := r.Name
		if r.Rank == 1 {
			name = pterm.LightCyan(name)
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			name,
			strconv.Itoa(r.Score),
			chips(r.Chips),
			FormatCards(r.Cards),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render standings: %w", err)
	}
	return table, nil
}
