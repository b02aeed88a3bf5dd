package models

import "strings"

// PlayerProfile is the player card payload returned by GET /playercard.
type PlayerProfile struct {
	Name     string         `json:"NAME"`
	ImageURL string         `json:"IMG"`
	Team     FlexString     `json:"TEAM"`
	Jersey   FlexString     `json:"JERSEY"`
	Position FlexString     `json:"POSITION"`
	PPG      float64        `json:"PPG"`
	APG      float64        `json:"APG"`
	FGPct    float64        `json:"FG"`
	RPG      float64        `json:"RPG"`
	SPG      float64        `json:"SPG"`
	BPG      float64        `json:"BPG"`
	Awards   map[string]int `json:"AWARDS"`
}

// IsEmpty reports whether the backend returned a profile with no identifying data.
func (p PlayerProfile) IsEmpty() bool {
	return strings.TrimSpace(p.ImageURL) == "" &&
		strings.TrimSpace(p.Team.String()) == "" &&
		strings.TrimSpace(p.Position.String()) == ""
}
