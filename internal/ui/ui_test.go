package ui_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/ui"
)

func TestCarouselNextWrapsAfterNSteps(t *testing.T) {
	for n := 2; n <= 7; n++ {
		for start := 0; start < n; start++ {
			c := ui.NewCarousel(start, n)
			for i := 0; i < n; i++ {
				c = c.Next()
			}
			require.Equal(t, start, c.Index, "n=%d start=%d", n, start)
		}
	}
}

func TestCarouselPrevClampsAtZero(t *testing.T) {
	c := ui.NewCarousel(0, 5)
	require.Equal(t, 0, c.Prev().Index)

	c = ui.NewCarousel(3, 5)
	require.Equal(t, 2, c.Prev().Index)
	require.Equal(t, 0, c.Prev().Prev().Prev().Prev().Index)
}

func TestHighlightCarouselScenario(t *testing.T) {
	c := ui.NewCarousel(0, 3)
	c = c.Next()
	require.Equal(t, 1, c.Index)
	c = c.Next()
	require.Equal(t, 2, c.Index)
	c = c.Next()
	require.Equal(t, 0, c.Index)
	require.Equal(t, 0, c.Prev().Index)
	require.Equal(t, 1, c.Position())
}

func TestCarouselControls(t *testing.T) {
	require.False(t, ui.NewCarousel(0, 0).ShowControls())
	require.True(t, ui.NewCarousel(0, 0).Empty())
	require.False(t, ui.NewCarousel(0, 1).ShowControls())
	require.True(t, ui.NewCarousel(0, 2).ShowControls())
	require.Equal(t, 0, ui.NewCarousel(0, 0).Next().Index)
}

func TestPlayerCardStateRestore(t *testing.T) {
	ready := ui.NewPlayerCardState("Kyrie Irving").Loaded()

	require.Equal(t, ui.CardExpanded, ready.Restore("Kyrie Irving").Phase)
	require.Equal(t, ui.CardCollapsed, ready.Restore("Luka Doncic").Phase, "flip for another player resets")
	require.Equal(t, ui.CardCollapsed, ready.Restore("").Phase)
	require.Equal(t, ui.CardLoading, ui.NewPlayerCardState("Kyrie Irving").Restore("Kyrie Irving").Phase)
}

func TestParseCarouselClamps(t *testing.T) {
	require.Equal(t, 2, ui.ParseCarousel("2", 3).Index)
	require.Equal(t, 0, ui.ParseCarousel("3", 3).Index)
	require.Equal(t, 0, ui.ParseCarousel("-1", 3).Index)
	require.Equal(t, 0, ui.ParseCarousel("abc", 3).Index)
	require.Equal(t, 0, ui.ParseCarousel("", 0).Index)
}

func TestPlayerCardStateTransitions(t *testing.T) {
	s := ui.NewPlayerCardState("Kyrie Irving")
	require.Equal(t, ui.CardLoading, s.Phase)
	require.True(t, s.NextFetch())

	require.Equal(t, ui.CardLoading, s.Expand().Phase, "cannot expand while loading")

	s = s.Loaded()
	require.Equal(t, ui.CardCollapsed, s.Phase)
	require.False(t, s.NextFetch())

	s = s.Expand()
	require.Equal(t, ui.CardExpanded, s.Phase)
	require.Equal(t, ui.CardExpanded, s.Loaded().Phase)

	require.Equal(t, ui.CardExpanded, s.Reset("Kyrie Irving").Phase)
	reset := s.Reset("Luka Doncic")
	require.Equal(t, ui.CardLoading, reset.Phase)
	require.Equal(t, "Luka Doncic", reset.Player)
	require.Equal(t, "expanded", ui.CardExpanded.String())
}

func TestBuildRowsOrderedByRank(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		deltas := models.ConferenceDeltas{}
		ranks := rng.Perm(15)
		for i, r := range ranks {
			id := 1610612737 + i
			deltas[strconv.Itoa(id)] = [2]int{rng.Intn(5) - 2, r + 1}
		}
		rows := ui.BuildRows(deltas)
		require.Len(t, rows, 15)
		for i := 1; i < len(rows); i++ {
			require.LessOrEqual(t, rows[i-1].Rank, rows[i].Rank)
		}
	}
}

func TestBuildRowsFallbackAndTrend(t *testing.T) {
	rows := ui.BuildRows(models.ConferenceDeltas{
		"1610612738": {2, 1},
		"999":        {-1, 2},
		"1610612752": {0, 3},
	})
	require.Equal(t, "Celtics", rows[0].Name)
	require.Equal(t, ui.TrendUp, rows[0].Trend)
	require.Equal(t, "+2", rows[0].DeltaLabel())
	require.NotEmpty(t, rows[0].LogoURL)

	require.Equal(t, "Unknown", rows[1].Name)
	require.Equal(t, "UNK", rows[1].Abbr)
	require.Equal(t, ui.TrendDown, rows[1].Trend)
	require.Equal(t, "-1", rows[1].DeltaLabel())
	require.Empty(t, rows[1].LogoURL)

	require.Equal(t, ui.TrendNeutral, rows[2].Trend)
	require.Equal(t, "-", rows[2].DeltaLabel())
}

func TestBuildConferences(t *testing.T) {
	confs := ui.BuildConferences(models.Standings{})
	require.Len(t, confs, 2)
	require.Equal(t, "Eastern Conference", confs[0].Title)
	require.Empty(t, confs[0].Rows)
	require.Equal(t, "Western Conference", confs[1].Title)
}

func TestAwardLines(t *testing.T) {
	lines := ui.AwardLines(map[string]int{"All-Star": 8, "NBA Champion": 1})
	require.ElementsMatch(t, []string{"8× All-Star", "1× NBA Champion"}, lines)
	require.Nil(t, ui.AwardLines(nil))
	require.Equal(t, "23.6", ui.FormatStat(23.62))
}
