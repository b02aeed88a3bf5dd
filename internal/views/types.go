// Package views renders the Metrix pages as templ components.
package views

//go:generate templ generate

import (
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/search"
	"github.com/metrix-hq/metrix/web/internal/ui"
)

// User-facing copy.
const (
	SubscribedMessage  = "Thanks for subscribing! Check your inbox."
	NoStoriesMessage   = "No stories to report as of now."
	QueryPlaceholder   = "Break down Kyrie Irving's 3 point shooting in the playoffs"
	UnreachableMessage = "We couldn't reach the Metrix service. Please try again in a moment."
	MalformedMessage   = "We couldn't load this right now."
	NotFoundMessage    = "Nothing to show here."
)

// Meta is the per-request page chrome.
type Meta struct {
	Title string
	// Description is the plain-text summary for the description meta tag.
	Description string
	// Path is the current request path, used as the theme toggle's return target.
	Path  string
	Theme Theme
}

// PageTitle is the document title.
func (m Meta) PageTitle() string {
	if m.Title == "" {
		return "Metrix"
	}
	return m.Title + " | Metrix"
}

// ToggleLabel names the theme the toggle switches to.
func (m Meta) ToggleLabel() string {
	if m.Theme.Dark {
		return "Light mode"
	}
	return "Dark mode"
}

// LandingData is the state of the signup form.
type LandingData struct {
	Email      string
	Subscribed bool
	// Error is a user-facing validation or delivery message.
	Error string
}

type feature struct {
	title string
	body  string
}

var features = []feature{
	{"Analytics Engine", "Deep dive into player performance, team dynamics, and game-changing insights powered by advanced ML models."},
	{"Predictive Models", "Leverage cutting-edge machine learning to forecast outcomes, identify trends, and gain competitive advantage."},
	{"Daily Newsletter", "Get curated insights, analysis, and predictions delivered to your inbox every morning."},
}

// NewsletterData is one day's bundle prepared for display.
type NewsletterData struct {
	// Date is the ISO date the bundle was fetched for.
	Date        string
	Recaps      []models.GameRecap
	Highlights  []models.Highlight
	Carousel    ui.Carousel
	News        []models.NewsStory
	Conferences []ui.Conference
}

// current is the highlight under the carousel, if any.
func (d NewsletterData) current() (models.Highlight, bool) {
	if d.Carousel.Empty() || d.Carousel.Index >= len(d.Highlights) {
		return models.Highlight{}, false
	}
	return d.Highlights[d.Carousel.Index], true
}

// SearchData is the search form state.
type SearchData struct {
	Query string
	Phase search.Phase
	// Error is shown in the Failed phase.
	Error string
}

// ResponseData is an answered query ready for display.
type ResponseData struct {
	ID       string
	Answer   models.QueryAnswer
	Carousel ui.Carousel
}

func (d ResponseData) visual() (models.Visualization, bool) {
	if d.Carousel.Empty() || d.Carousel.Index >= len(d.Answer.Visuals) {
		return models.Visualization{}, false
	}
	return d.Answer.Visuals[d.Carousel.Index], true
}

// PlayerData is a player card and its lifecycle phase.
type PlayerData struct {
	State   ui.PlayerCardState
	Profile models.PlayerProfile
}

// name prefers the profile's spelling over the requested one.
func (d PlayerData) name() string {
	if d.Profile.Name != "" {
		return d.Profile.Name
	}
	return d.State.Player
}

type statCell struct {
	label string
	value float64
}

func (d PlayerData) stats() []statCell {
	p := d.Profile
	return []statCell{
		{"PPG", p.PPG}, {"APG", p.APG}, {"FG %", p.FGPct},
		{"RPG", p.RPG}, {"SPG", p.SPG}, {"BPG", p.BPG},
	}
}

// ErrorData describes a failed page.
type ErrorData struct {
	Title      string
	Message    string
	RetryURL   string
	RetryLabel string
}

func (d ErrorData) retryLabel() string {
	if d.RetryLabel == "" {
		return "Try again"
	}
	return d.RetryLabel
}

func (d ErrorData) notFoundTitle() string {
	if d.Title == "" {
		return "Not found"
	}
	return d.Title
}

func (d ErrorData) notFoundMessage() string {
	if d.Message == "" {
		return NotFoundMessage
	}
	return d.Message
}
