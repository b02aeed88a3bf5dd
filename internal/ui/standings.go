package ui

import (
	"sort"
	"strconv"

	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/teams"
)

// Trend is the rank-change indicator of a standings row.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// TrendOf maps a rank delta to its indicator.
func TrendOf(delta int) Trend {
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// StandingRow is one rendered line of a conference table.
type StandingRow struct {
	TeamID  string `json:"team_id"`
	Name    string `json:"name"`
	Abbr    string `json:"abbr"`
	LogoURL string `json:"logo_url,omitempty"`
	Rank    int    `json:"rank"`
	Delta   int    `json:"delta"`
	Trend   Trend  `json:"trend"`
}

// DeltaLabel renders the delta the way the trend column shows it.
func (r StandingRow) DeltaLabel() string {
	switch r.Trend {
	case TrendUp:
		return "+" + strconv.Itoa(r.Delta)
	case TrendDown:
		return strconv.Itoa(r.Delta)
	default:
		return "-"
	}
}

// Conference is a titled, ordered standings table.
type Conference struct {
	Title string        `json:"title"`
	Rows  []StandingRow `json:"rows"`
}

// BuildRows sorts a conference map ascending by rank. Ties are ordered by
// team id so the output never depends on map iteration order.
func BuildRows(deltas models.ConferenceDeltas) []StandingRow {
	rows := make([]StandingRow, 0, len(deltas))
	for id, pair := range deltas {
		team := teams.LookupString(id)
		numeric, _ := strconv.Atoi(id)
		rows = append(rows, StandingRow{
			TeamID:  id,
			Name:    team.Name,
			Abbr:    team.Abbr,
			LogoURL: teams.LogoURL(numeric),
			Delta:   pair[0],
			Rank:    pair[1],
			Trend:   TrendOf(pair[0]),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rank == rows[j].Rank {
			return rows[i].TeamID < rows[j].TeamID
		}
		return rows[i].Rank < rows[j].Rank
	})
	return rows
}

// BuildConferences produces the east and west tables in display order.
func BuildConferences(s models.Standings) []Conference {
	return []Conference{
		{Title: "Eastern Conference", Rows: BuildRows(s.East)},
		{Title: "Western Conference", Rows: BuildRows(s.West)},
	}
}
