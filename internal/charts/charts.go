// Package charts computes SVG geometry for the bar and pie renderers.
// All functions are pure and accept empty series.
package charts

import (
	"fmt"
	"math"

	"github.com/metrix-hq/metrix/web/internal/models"
)

const (
	PrimaryColor = "#4169E1"
	NeutralColor = "#C0C0C0"
)

// PieColors is cycled by wedge position, independent of the data.
var PieColors = []string{"#4169E1", "#89CFF0", "#7393B3", "#7DF9FF"}

// Bar is one rectangle of a bar chart in SVG user units.
type Bar struct {
	Label  string
	Value  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
	Fill   string
}

// BarChart is a laid-out bar series.
type BarChart struct {
	Width    float64
	Height   float64
	Baseline float64
	Max      float64
	Bars     []Bar
}

// LabelBand is the vertical space reserved under the baseline for x-axis labels.
const LabelBand = 24.0

// BarLayout positions bars evenly across width. Heights scale to the largest
// value; negative values are drawn with zero height.
func BarLayout(points []models.DataPoint, width, height float64) BarChart {
	chart := BarChart{Width: width, Height: height, Baseline: height - LabelBand}
	if len(points) == 0 || width <= 0 || chart.Baseline <= 0 {
		return chart
	}

	for _, p := range points {
		if p.Value > chart.Max {
			chart.Max = p.Value
		}
	}

	slot := width / float64(len(points))
	barWidth := slot * 0.7
	chart.Bars = make([]Bar, 0, len(points))
	for i, p := range points {
		h := 0.0
		if chart.Max > 0 && p.Value > 0 {
			h = p.Value / chart.Max * chart.Baseline
		}
		fill := NeutralColor
		if p.Primary() {
			fill = PrimaryColor
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:  p.Name.String(),
			Value:  p.Value,
			X:      float64(i)*slot + (slot-barWidth)/2,
			Y:      chart.Baseline - h,
			Width:  barWidth,
			Height: h,
			Fill:   fill,
		})
	}
	return chart
}

// Wedge is one slice of a pie chart.
type Wedge struct {
	Label string
	Value float64
	Share float64
	Path  string
	Fill  string
	// Full is set when a single wedge covers the whole pie; Path is empty then.
	Full   bool
	LabelX float64
	LabelY float64
}

// PieChart is a laid-out pie series centred at (R, R).
type PieChart struct {
	Radius float64
	Wedges []Wedge
}

// PieLayout converts values into wedges. Non-positive values are skipped for
// geometry but still advance the color cycle so colors stay positional.
func PieLayout(points []models.DataPoint, radius float64) PieChart {
	chart := PieChart{Radius: radius}
	total := 0.0
	for _, p := range points {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total <= 0 || radius <= 0 {
		return chart
	}

	cx, cy := radius, radius
	angle := -math.Pi / 2
	for i, p := range points {
		if p.Value <= 0 {
			continue
		}
		share := p.Value / total
		sweep := share * 2 * math.Pi
		w := Wedge{
			Label: p.Name.String(),
			Value: p.Value,
			Share: share,
			Fill:  PieColors[i%len(PieColors)],
		}
		mid := angle + sweep/2
		w.LabelX = cx + math.Cos(mid)*radius*0.6
		w.LabelY = cy + math.Sin(mid)*radius*0.6
		if share >= 1 {
			w.Full = true
		} else {
			x0, y0 := cx+math.Cos(angle)*radius, cy+math.Sin(angle)*radius
			x1, y1 := cx+math.Cos(angle+sweep)*radius, cy+math.Sin(angle+sweep)*radius
			large := 0
			if sweep > math.Pi {
				large = 1
			}
			w.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
				cx, cy, x0, y0, radius, radius, large, x1, y1)
		}
		chart.Wedges = append(chart.Wedges, w)
		angle += sweep
	}
	return chart
}
