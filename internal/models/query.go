package models

// ChartType tags which renderer draws a visualization.
type ChartType string

const (
	ChartBar ChartType = "bar"
	ChartPie ChartType = "pie"
)

// ColorPrimary marks a bar drawn in the highlight color.
const ColorPrimary = 1

// DataPoint is one labelled value in a chart series.
type DataPoint struct {
	Name  FlexString `json:"name"`
	Value float64    `json:"value"`
	Color *int       `json:"color,omitempty"`
}

// Primary reports whether the point carries the primary color flag.
func (d DataPoint) Primary() bool {
	return d.Color != nil && *d.Color == ColorPrimary
}

// Visualization is a single chart in a query answer.
type Visualization struct {
	ChartType ChartType   `json:"chart_type"`
	Data      []DataPoint `json:"chart_data"`
}

// Classification is the response of POST /query.
type Classification struct {
	QueryType string `json:"query_type"`
}

// QueryAnswer is the response of POST /usetool.
type QueryAnswer struct {
	PlayerName  string          `json:"player_name"`
	AnswerText  string          `json:"stat_formatted"`
	PlayerImage string          `json:"player_image"`
	Visuals     []Visualization `json:"visuals"`
}
