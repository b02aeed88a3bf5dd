package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/cache"
	"github.com/metrix-hq/metrix/web/internal/config"
	"github.com/metrix-hq/metrix/web/internal/dedupe"
	"github.com/metrix-hq/metrix/web/internal/logger"
	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/metrix/metrixtest"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/search"
	"github.com/metrix-hq/metrix/web/internal/signup"
	"github.com/metrix-hq/metrix/web/internal/views"
)

type stubWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func newTestServer(t *testing.T, backend metrix.Backend) (*server, *stubWriter) {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Web{
		Common: config.Common{
			BackendTimeout: time.Second,
			CacheTTL:       time.Minute,
			Location:       time.UTC,
		},
		CORSOrigins: []string{"http://localhost:5173"},
		AnswerTTL:   time.Minute,
	}
	store := cache.NewMemoryStore(100)
	cached := cache.NewBackend(backend, store, cfg.CacheTTL, log)
	writer := &stubWriter{}

	return &server{
		log:      log,
		cfg:      cfg,
		backend:  cached,
		resolver: search.NewResolver(cached, time.Second, log),
		answers:  cache.NewAnswers(store, cfg.AnswerTTL),
		signup:   signup.NewService(writer, dedupe.NewCache(100, time.Minute), log),
		store:    store,
		now:      func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) },
	}, writer
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func kyrieBackend() *metrixtest.Fake {
	primary := models.ColorPrimary
	return &metrixtest.Fake{
		ClassifyFunc: func(context.Context, string) (string, error) { return "shooting", nil },
		ResolveFunc: func(context.Context, string, string) (*models.QueryAnswer, error) {
			return &models.QueryAnswer{
				PlayerName:  "Kyrie Irving",
				AnswerText:  "Kyrie Irving shot [b]41%[/b] from three in the playoffs.",
				PlayerImage: "https://cdn.example.com/kyrie.png",
				Visuals: []models.Visualization{{
					ChartType: models.ChartBar,
					Data:      []models.DataPoint{{Name: "3PT%", Value: 41, Color: &primary}},
				}},
			}, nil
		},
	}
}

func TestSearchAnswersKyrieQuery(t *testing.T) {
	fake := kyrieBackend()
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	query := "How did Kyrie Irving shoot from three in the playoffs?"
	rec := do(t, h, postForm("/search", url.Values{"q": {query}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/search/answers/"), loc)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, loc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<span class="emphasis">41%</span>`)
	require.Equal(t, 1, strings.Count(body, "<rect"))
	require.NotContains(t, body, "chart-nav")
	require.Contains(t, body, `href="/player/Kyrie%20Irving"`)
	require.Contains(t, body, `<meta name="description" content="Kyrie Irving shot 41% from three in the playoffs.">`)

	require.Equal(t, []string{query}, fake.Calls("query"))
	require.Equal(t, []string{query + "|shooting"}, fake.Calls("usetool"))
}

func TestSearchEmptyQueryStaysIdle(t *testing.T) {
	fake := kyrieBackend()
	srv, _ := newTestServer(t, fake)

	rec := do(t, srv.routes(), postForm("/search", url.Values{"q": {"   "}}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="q"`)
	require.Empty(t, fake.Calls("query"))
	require.Empty(t, fake.Calls("usetool"))
}

func TestSearchFailureOffersRetry(t *testing.T) {
	fake := &metrixtest.Fake{
		ClassifyFunc: func(context.Context, string) (string, error) {
			return "", &metrix.Error{Op: "query", Kind: metrix.KindNetwork, Err: errors.New("connection refused")}
		},
	}
	srv, _ := newTestServer(t, fake)

	rec := do(t, srv.routes(), postForm("/search", url.Values{"q": {"who is best"}}))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, templ.EscapeString(views.UnreachableMessage))
	require.Contains(t, body, `href="/search?q=who+is+best"`)
	require.Empty(t, fake.Calls("usetool"))
}

func TestSearchFormPrefillsRetryQuery(t *testing.T) {
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	rec := do(t, srv.routes(), httptest.NewRequest(http.MethodGet, "/search?q=who+is+best", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="who is best"`)
}

func TestAnswerCarouselWrapsAndUnknownIDIsNotFound(t *testing.T) {
	fake := kyrieBackend()
	fake.ResolveFunc = func(context.Context, string, string) (*models.QueryAnswer, error) {
		return &models.QueryAnswer{
			PlayerName: "Kyrie Irving",
			AnswerText: "text",
			Visuals: []models.Visualization{
				{ChartType: models.ChartBar},
				{ChartType: models.ChartPie},
				{ChartType: "radar"},
			},
		}, nil
	}
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	loc := do(t, h, postForm("/search", url.Values{"q": {"q"}})).Header().Get("Location")
	rec := do(t, h, httptest.NewRequest(http.MethodGet, loc+"?chart=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Chart unavailable")
	require.Contains(t, body, "3 / 3")
	require.Contains(t, body, "?chart=0\" aria-label=\"Next chart\"")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, loc+"?chart=99", nil))
	require.Contains(t, rec.Body.String(), "1 / 3")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/search/answers/00000000-0000-0000-0000-000000000000", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Answer expired")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/search/answers/not-a-uuid", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayerPageRoundTripsEscapedName(t *testing.T) {
	var gotName string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/playercard", r.URL.Path)
		gotName = r.URL.Query().Get("player_name")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"NAME":"Shaquille O'Neal","IMG":"https://cdn.example.com/shaq.png","TEAM":"Lakers","JERSEY":34,"POSITION":"C","PPG":23.7,"APG":2.5,"FG":58.2,"RPG":10.9,"SPG":0.6,"BPG":2.3,"AWARDS":{"NBA Champion":4}}`))
	}))
	defer api.Close()

	srv, _ := newTestServer(t, metrix.NewClient(api.URL, metrix.WithHTTPClient(backendHTTPClient())))
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, views.PlayerURL("Shaquille O'Neal"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Shaquille O'Neal", gotName)
	require.Contains(t, rec.Body.String(), "See Card")
	require.Contains(t, rec.Body.String(), `href="/player/Shaquille%20O%27Neal?flipped=Shaquille+O%27Neal"`)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, views.FlipURL("Shaquille O'Neal"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Lakers | 34 | C")
	require.Contains(t, body, "<b>23.7</b>")
	require.Contains(t, body, "4× NBA Champion")
}

func TestPlayerPageCachesByName(t *testing.T) {
	fake := &metrixtest.Fake{
		PlayerFunc: func(_ context.Context, name string) (*models.PlayerProfile, error) {
			return &models.PlayerProfile{Name: name, Team: "Nets", Position: "G"}, nil
		},
	}
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	do(t, h, httptest.NewRequest(http.MethodGet, "/player/Kyrie%20Irving", nil))
	rec := do(t, h, httptest.NewRequest(http.MethodGet, views.FlipURL("Kyrie Irving"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.Calls("playercard"), 1)
}

func TestPlayerPageFlipForAnotherPlayerStaysFaceDown(t *testing.T) {
	fake := &metrixtest.Fake{
		PlayerFunc: func(_ context.Context, name string) (*models.PlayerProfile, error) {
			return &models.PlayerProfile{Name: name, Team: "Mavericks", Position: "G"}, nil
		},
	}
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/player/Luka%20Doncic?flipped=Kyrie+Irving", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `data-phase="collapsed"`)
	require.Contains(t, body, "See Card")
	require.NotContains(t, body, "Career Statistics")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, views.FlipURL("Luka Doncic"), nil))
	require.Contains(t, rec.Body.String(), `data-phase="expanded"`)
}

func TestPlayerPageUnknownPlayer(t *testing.T) {
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	rec := do(t, srv.routes(), httptest.NewRequest(http.MethodGet, "/player/Nobody", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Player not found")
}

func bundleFixture() *models.NewsletterBundle {
	return &models.NewsletterBundle{
		Recaps: []models.GameRecap{{ID: "1", Headline: "Green machine", Description: "Boston won."}},
		Highlights: []models.Highlight{
			{ID: "a", Title: "One", Media: "https://streamable.com/one"},
			{ID: "b", Title: "Two", Media: "https://streamable.com/two"},
			{ID: "c", Title: "Three", Media: "https://streamable.com/three"},
		},
		Standings: models.Standings{
			East: models.ConferenceDeltas{"1610612738": {1, 2}, "1610612752": {0, 1}},
			West: models.ConferenceDeltas{"999": {-2, 1}},
		},
	}
}

func TestNewsletterDefaultsToToday(t *testing.T) {
	fake := &metrixtest.Fake{
		NewsletterFunc: func(context.Context, string) (*models.NewsletterBundle, error) { return bundleFixture(), nil },
	}
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/news?highlight=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "3 / 3")
	require.Contains(t, body, "streamable.com/e/three")
	require.Contains(t, body, views.NoStoriesMessage)
	require.Contains(t, body, "Unknown")
	require.Less(t, strings.Index(body, "Knicks"), strings.Index(body, "Celtics"))

	do(t, h, httptest.NewRequest(http.MethodGet, "/news?date=2025-01-15", nil))
	require.Equal(t, []string{"2025-01-15"}, fake.Calls("fetchsummaries"))
}

func TestNewsletterErrors(t *testing.T) {
	fake := &metrixtest.Fake{
		NewsletterFunc: func(_ context.Context, date string) (*models.NewsletterBundle, error) {
			switch date {
			case "2025-01-01":
				return &models.NewsletterBundle{}, nil
			case "2025-01-02":
				return nil, &metrix.Error{Op: "fetchsummaries", Kind: metrix.KindNetwork, Err: context.DeadlineExceeded}
			default:
				return nil, &metrix.Error{Op: "fetchsummaries", Kind: metrix.KindMalformed, Err: errors.New("bad json")}
			}
		},
	}
	srv, _ := newTestServer(t, fake)
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/news?date=yesterday", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, fake.Calls("fetchsummaries"))

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/news?date=2025-01-01", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Jan 01 2025")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/news?date=2025-01-02", nil))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	require.Contains(t, rec.Body.String(), templ.EscapeString(views.UnreachableMessage))

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/news?date=2025-01-03", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), templ.EscapeString(views.MalformedMessage))
}

func TestSubscribe(t *testing.T) {
	srv, writer := newTestServer(t, &metrixtest.Fake{})
	h := srv.routes()

	rec := do(t, h, postForm("/subscribe", url.Values{"email": {"  Fan@Example.com "}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/?subscribed=1#newsletter", rec.Header().Get("Location"))
	require.Len(t, writer.msgs, 1)

	var sub models.Subscriber
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &sub))
	require.Equal(t, "fan@example.com", sub.Email)
	require.Equal(t, "landing", sub.Source)

	rec = do(t, h, postForm("/subscribe", url.Values{"email": {"fan@example.com"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, writer.msgs, 1)

	rec = do(t, h, postForm("/subscribe", url.Values{"email": {"not-an-email"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Please enter a valid email address.")

	writer.err = errors.New("broker down")
	rec = do(t, h, postForm("/subscribe", url.Values{"email": {"other@example.com"}}))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `value="other@example.com"`)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/?subscribed=1", nil))
	require.Contains(t, rec.Body.String(), views.SubscribedMessage)
}

func TestThemeToggle(t *testing.T) {
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/theme?next=/news", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/news", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "dark", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/theme?next=//evil.example.com", nil)
	req.AddCookie(cookies[0])
	rec = do(t, h, req)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, "light", rec.Result().Cookies()[0].Value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	require.Contains(t, do(t, h, req).Body.String(), "--bg:#000")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	rec := do(t, srv.routes(), httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPINewsletter(t *testing.T) {
	fake := &metrixtest.Fake{
		NewsletterFunc: func(context.Context, string) (*models.NewsletterBundle, error) { return bundleFixture(), nil },
	}
	srv, _ := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/newsletter?date=2025-01-15", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := do(t, srv.routes(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp newsletterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2025-01-15", resp.Date)
	require.Len(t, resp.Standings, 2)
	require.Equal(t, "Knicks", resp.Standings[0].Rows[0].Name)
	require.Equal(t, "Unknown", resp.Standings[1].Rows[0].Name)
	require.Equal(t, "https://streamable.com/e/one", resp.Highlights[0].EmbedURL)
}

func TestAPIPlayer(t *testing.T) {
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	h := srv.routes()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/player", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/player?name=Nobody", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"`+views.NotFoundMessage+`"}`, rec.Body.String())
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	srv, _ := newTestServer(t, &metrixtest.Fake{})
	srv.log = logger.NewWithWriter(&buf, "web", "debug", "")

	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, buf.String(), "encode json response")

	buf.Reset()
	srv.writeJSON(httptest.NewRecorder(), http.StatusOK, map[string]string{"status": "ok"})
	require.Empty(t, buf.String())
}

func TestBackendHTTPClientPoolsConnections(t *testing.T) {
	hc := backendHTTPClient()
	transport, ok := hc.Transport.(*http.Transport)
	require.True(t, ok)
	require.Equal(t, backendIdleConns, transport.MaxIdleConnsPerHost)
	require.NotSame(t, http.DefaultTransport, transport)
}
