package metrix_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/metrix"
)

func TestPlayerCardEncodesName(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/playercard", r.URL.Path)
		gotName = r.URL.Query().Get("player_name")
		_, _ = w.Write([]byte(`{"IMG":"https://img/shaq.png","TEAM":"Lakers","JERSEY":34,"POSITION":"Center","PPG":23.7,"AWARDS":{"MVP":1}}`))
	}))
	defer srv.Close()

	c := metrix.NewClient(srv.URL)
	p, err := c.PlayerCard(context.Background(), "Shaquille O'Neal")
	require.NoError(t, err)
	require.Equal(t, "Shaquille O'Neal", gotName)
	require.Equal(t, "Shaquille O'Neal", p.Name)
	require.Equal(t, "34", p.Jersey.String())
	require.Equal(t, 1, p.Awards["MVP"])
}

func TestPlayerCardEmptyProfileIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := metrix.NewClient(srv.URL).PlayerCard(context.Background(), "Nobody")
	require.ErrorIs(t, err, metrix.ErrNotFound)

	_, err = metrix.NewClient(srv.URL).PlayerCard(context.Background(), "  ")
	require.ErrorIs(t, err, metrix.ErrNotFound)
}

func TestClassifyThenResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/query":
			require.Equal(t, "kyrie threes", body["q"])
			_, _ = w.Write([]byte(`{"query_type":"player_stat"}`))
		case "/usetool":
			require.Equal(t, "player_stat", body["q_type"])
			_, _ = w.Write([]byte(`{"player_name":"Kyrie Irving","stat_formatted":"He shot [b]41%[/b] from three","player_image":"url",
				"visuals":[{"chart_type":"bar","chart_data":[{"name":"2023","value":41,"color":1}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := metrix.NewClient(srv.URL + "/")
	qt, err := c.Classify(context.Background(), "kyrie threes")
	require.NoError(t, err)
	require.Equal(t, "player_stat", qt)

	ans, err := c.Resolve(context.Background(), "kyrie threes", qt)
	require.NoError(t, err)
	require.Equal(t, "Kyrie Irving", ans.PlayerName)
	require.Len(t, ans.Visuals, 1)
	require.True(t, ans.Visuals[0].Data[0].Primary())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "422 rejected query", status: http.StatusUnprocessableEntity, body: `{"detail":"no"}`, want: metrix.ErrNotFound},
		{name: "500 backend down", status: http.StatusInternalServerError, body: `oops`, want: metrix.ErrNetwork},
		{name: "bad json", status: http.StatusOK, body: `{"query_type":`, want: metrix.ErrMalformed},
		{name: "missing field", status: http.StatusOK, body: `{}`, want: metrix.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := metrix.NewClient(srv.URL).Classify(context.Background(), "q")
			require.ErrorIs(t, err, tt.want)

			var me *metrix.Error
			require.True(t, errors.As(err, &me))
			require.Equal(t, "query", me.Op)
		})
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := metrix.NewClient(srv.URL).Newsletter(ctx, "2025-01-01")
	require.ErrorIs(t, err, metrix.ErrNetwork)
	require.Equal(t, metrix.KindNetwork, metrix.KindOf(err))
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := metrix.NewClient(addr, metrix.WithTimeout(time.Second)).Newsletter(context.Background(), "2025-01-01")
	require.ErrorIs(t, err, metrix.ErrNetwork)
	require.Zero(t, metrix.KindOf(errors.New("other")))
}
