package charts_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/charts"
	"github.com/metrix-hq/metrix/web/internal/models"
)

func point(name string, v float64, color *int) models.DataPoint {
	return models.DataPoint{Name: models.FlexString(name), Value: v, Color: color}
}

func intPtr(v int) *int { return &v }

func TestBarLayoutEmpty(t *testing.T) {
	chart := charts.BarLayout(nil, 400, 200)
	require.Empty(t, chart.Bars)
	require.Equal(t, 400.0, chart.Width)
}

func TestBarLayoutColorsAndHeights(t *testing.T) {
	chart := charts.BarLayout([]models.DataPoint{
		point("2022", 20, intPtr(0)),
		point("2023", 40, intPtr(1)),
		point("2024", -5, nil),
	}, 300, 224)

	require.Len(t, chart.Bars, 3)
	require.Equal(t, charts.NeutralColor, chart.Bars[0].Fill)
	require.Equal(t, charts.PrimaryColor, chart.Bars[1].Fill)
	require.Equal(t, charts.NeutralColor, chart.Bars[2].Fill)

	require.InDelta(t, 200.0, chart.Bars[1].Height, 1e-9)
	require.InDelta(t, 100.0, chart.Bars[0].Height, 1e-9)
	require.Zero(t, chart.Bars[2].Height)
	require.InDelta(t, chart.Baseline, chart.Bars[1].Y+chart.Bars[1].Height, 1e-9)
	require.Less(t, chart.Bars[0].X, chart.Bars[1].X)
}

func TestBarLayoutAllZero(t *testing.T) {
	chart := charts.BarLayout([]models.DataPoint{point("a", 0, nil)}, 100, 100)
	require.Len(t, chart.Bars, 1)
	require.Zero(t, chart.Bars[0].Height)
}

func TestPieLayoutEmpty(t *testing.T) {
	require.Empty(t, charts.PieLayout(nil, 100).Wedges)
	require.Empty(t, charts.PieLayout([]models.DataPoint{point("a", 0, nil)}, 100).Wedges)
}

func TestPieLayoutCyclesPalette(t *testing.T) {
	pts := make([]models.DataPoint, 6)
	for i := range pts {
		pts[i] = point("p", 1, intPtr(1))
	}
	chart := charts.PieLayout(pts, 100)
	require.Len(t, chart.Wedges, 6)
	for i, w := range chart.Wedges {
		require.Equal(t, charts.PieColors[i%4], w.Fill)
		require.NotEmpty(t, w.Path)
		require.InDelta(t, 1.0/6, w.Share, 1e-9)
	}
}

func TestPieLayoutSingleWedgeIsFull(t *testing.T) {
	chart := charts.PieLayout([]models.DataPoint{point("only", 5, nil)}, 50)
	require.Len(t, chart.Wedges, 1)
	require.True(t, chart.Wedges[0].Full)
	require.Empty(t, chart.Wedges[0].Path)
}
