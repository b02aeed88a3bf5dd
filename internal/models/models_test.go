package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/models"
)

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A models.FlexString `json:"a"`
		B models.FlexString `json:"b"`
		C models.FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 11, "b": "G", "c": null}`), &v))
	require.Equal(t, "11", v.A.String())
	require.Equal(t, "G", v.B.String())
	require.Empty(t, v.C.String())

	require.Error(t, json.Unmarshal([]byte(`{"a": {}}`), &v))
}

func TestPlayerProfileDecode(t *testing.T) {
	raw := `{"NAME":"Kyrie Irving","IMG":"https://img/k.png","TEAM":"Dallas Mavericks","JERSEY":"11",
		"POSITION":"Guard","PPG":23.6,"APG":5.7,"FG":47.2,"RPG":3.9,"SPG":1.3,"BPG":0.4,
		"AWARDS":{"All-Star":8,"NBA Champion":1}}`
	var p models.PlayerProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Equal(t, "Dallas Mavericks", p.Team.String())
	require.Equal(t, 47.2, p.FGPct)
	require.Equal(t, 8, p.Awards["All-Star"])
	require.False(t, p.IsEmpty())
	require.True(t, models.PlayerProfile{}.IsEmpty())
}

func TestDataPointPrimary(t *testing.T) {
	var pts []models.DataPoint
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"2023","value":41,"color":1},{"name":2024,"value":38,"color":0},{"name":"x","value":1}]`), &pts))
	require.True(t, pts[0].Primary())
	require.False(t, pts[1].Primary())
	require.False(t, pts[2].Primary())
	require.Equal(t, "2024", pts[1].Name.String())
}

func TestNewsletterBundleDecode(t *testing.T) {
	raw := `{
		"summaries":[{"id":1,"headline":"Celtics roll","game_description":"Boston won.","key_player_descriptions":["Tatum 30"]}],
		"news":[],
		"highlights":[{"id":"h1","title":"Dunk","media":"https://streamable.com/abc"}],
		"standings":{"eastern_conference_deltas":{"1610612738":[1,1]},"western_conference_deltas":{}}
	}`
	var b models.NewsletterBundle
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	require.Len(t, b.Recaps, 1)
	require.Equal(t, "1", b.Recaps[0].ID.String())
	require.Equal(t, [2]int{1, 1}, b.Standings.East["1610612738"])
	require.False(t, b.IsEmpty())
	require.True(t, models.NewsletterBundle{}.IsEmpty())
}
