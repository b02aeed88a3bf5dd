package models

// GameRecap summarises one game from the previous night.
type GameRecap struct {
	ID            FlexString `json:"id"`
	Headline      string     `json:"headline"`
	Description   string     `json:"game_description"`
	KeyPerformers []string   `json:"key_player_descriptions"`
}

// Highlight is an embeddable video clip.
type Highlight struct {
	ID    FlexString `json:"id"`
	Title string     `json:"title"`
	Media string     `json:"media"`
}

// NewsStory is a featured story of the day.
type NewsStory struct {
	ID       FlexString `json:"id"`
	Headline string     `json:"headline"`
	Story    string     `json:"story"`
}

// ConferenceDeltas maps a team id to its [rankDelta, rank] pair.
type ConferenceDeltas map[string][2]int

// Standings holds both conference delta tables.
type Standings struct {
	East ConferenceDeltas `json:"eastern_conference_deltas"`
	West ConferenceDeltas `json:"western_conference_deltas"`
}

// NewsletterBundle is the response of GET /fetchsummaries.
type NewsletterBundle struct {
	Recaps     []GameRecap `json:"summaries"`
	Highlights []Highlight `json:"highlights"`
	News       []NewsStory `json:"news"`
	Standings  Standings   `json:"standings"`
}

// IsEmpty reports whether the bundle has nothing to show for its date.
func (b NewsletterBundle) IsEmpty() bool {
	return len(b.Recaps) == 0 &&
		len(b.Highlights) == 0 &&
		len(b.News) == 0 &&
		len(b.Standings.East) == 0 &&
		len(b.Standings.West) == 0
}
