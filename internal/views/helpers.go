package views

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/metrix-hq/metrix/web/internal/charts"
	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/models"
)

// Chart canvas in SVG user units.
const (
	ChartWidth  = 500.0
	ChartHeight = 225.0
	PieRadius   = 100.0
)

// ThemeToggleURL links to the cookie flip endpoint and back to path.
func ThemeToggleURL(path string) string {
	if path == "" {
		path = "/"
	}
	return "/theme?next=" + url.QueryEscape(path)
}

// HighlightURL addresses highlight index i of the newsletter for date.
func HighlightURL(date string, i int) string {
	q := url.Values{}
	q.Set("date", date)
	q.Set("highlight", strconv.Itoa(i))
	return "/news?" + q.Encode()
}

// PlayerURL is the player page path for name.
func PlayerURL(name string) string {
	return "/player/" + url.PathEscape(name)
}

// FlipURL reveals the card for name. The query records which player was flipped.
func FlipURL(name string) string {
	return PlayerURL(name) + "?" + url.Values{"flipped": {name}}.Encode()
}

// RetryURL returns to an Idle form with query prefilled.
func RetryURL(query string) string {
	if query == "" {
		return "/search"
	}
	return "/search?" + url.Values{"q": {query}}.Encode()
}

// AnswerURL addresses chart i of a stored answer.
func AnswerURL(id string, chart int) string {
	return "/search/answers/" + url.PathEscape(id) + "?chart=" + strconv.Itoa(chart)
}

// MessageFor picks the message for a classified backend error.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, metrix.ErrNetwork):
		return UnreachableMessage
	case errors.Is(err, metrix.ErrNotFound):
		return NotFoundMessage
	default:
		return MalformedMessage
	}
}

// ChartRenderer draws one visualization.
type ChartRenderer func(points []models.DataPoint) templ.Component

var renderers = map[models.ChartType]ChartRenderer{
	models.ChartBar: func(points []models.DataPoint) templ.Component {
		return BarChart(charts.BarLayout(points, ChartWidth, ChartHeight))
	},
	models.ChartPie: func(points []models.DataPoint) templ.Component {
		return PieChart(charts.PieLayout(points, PieRadius))
	},
}

// Chart picks the renderer by type tag. Unknown tags get a placeholder.
func Chart(v models.Visualization) templ.Component {
	render, ok := renderers[v.ChartType]
	if !ok {
		return ChartUnavailable()
	}
	return render(v.Data)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
