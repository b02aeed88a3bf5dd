package main

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/metrix-hq/metrix/web/internal/markup"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/processing"
	"github.com/metrix-hq/metrix/web/internal/search"
	"github.com/metrix-hq/metrix/web/internal/signup"
	"github.com/metrix-hq/metrix/web/internal/ui"
	"github.com/metrix-hq/metrix/web/internal/views"
)

const (
	signupSource   = "landing"
	themeCookieAge = 365 * 24 * 60 * 60

	invalidEmailMessage = "Please enter a valid email address."
	signupFailedMessage = "We couldn't sign you up right now. Please try again."
)

func (s *server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "", views.Landing(views.LandingData{
		Subscribed: r.URL.Query().Get("subscribed") == "1",
	}))
}

func (s *server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.page(w, r, http.StatusBadRequest, "", views.Landing(views.LandingData{Error: invalidEmailMessage}))
		return
	}
	email := r.PostForm.Get("email")

	_, err := s.signup.Subscribe(r.Context(), email, signupSource)
	switch {
	case err == nil, errors.Is(err, signup.ErrDuplicate):
		http.Redirect(w, r, "/?subscribed=1#newsletter", http.StatusSeeOther)
	case errors.Is(err, signup.ErrInvalidEmail):
		s.page(w, r, http.StatusBadRequest, "", views.Landing(views.LandingData{Email: email, Error: invalidEmailMessage}))
	default:
		s.page(w, r, http.StatusBadGateway, "", views.Landing(views.LandingData{Email: email, Error: signupFailedMessage}))
	}
}

func (s *server) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeFrom(r).Toggled()
	http.SetCookie(w, &http.Cookie{
		Name:     views.ThemeCookie,
		Value:    next.CookieValue(),
		Path:     "/",
		MaxAge:   themeCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, processing.SafeNextPath(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.backendCtx(r)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	date, err := processing.NormalizeDate(r.URL.Query().Get("date"), s.now(), s.cfg.Location)
	if err != nil {
		s.page(w, r, http.StatusBadRequest, "Newsletter", views.ErrorState(views.ErrorData{
			Title:      "Invalid date",
			Message:    "Dates look like 2025-01-31.",
			RetryURL:   "/news",
			RetryLabel: "Today's newsletter",
		}))
		return
	}

	ctx, cancel := s.backendCtx(r)
	defer cancel()

	notFound := views.ErrorData{
		Title:      "No newsletter yet",
		Message:    "There's no newsletter for " + processing.DisplayDate(date) + ".",
		RetryURL:   "/",
		RetryLabel: "Back to Metrix",
	}
	bundle, err := s.backend.Newsletter(ctx, date)
	if err != nil {
		s.backendError(w, r, "Newsletter", err, notFound)
		return
	}
	if bundle.IsEmpty() {
		s.page(w, r, http.StatusNotFound, "Newsletter", views.NotFound(notFound))
		return
	}

	s.page(w, r, http.StatusOK, "Newsletter", views.Newsletter(views.NewsletterData{
		Date:        date,
		Recaps:      bundle.Recaps,
		Highlights:  bundle.Highlights,
		Carousel:    ui.ParseCarousel(r.URL.Query().Get("highlight"), len(bundle.Highlights)),
		News:        bundle.News,
		Conferences: ui.BuildConferences(bundle.Standings),
	}))
}

func (s *server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "Search", views.SearchForm(views.SearchData{
		Phase: search.Idle,
		Query: search.Normalize(r.URL.Query().Get("q")),
	}))
}

func (s *server) handleSearchSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.page(w, r, http.StatusBadRequest, "Search", views.SearchForm(views.SearchData{Phase: search.Idle}))
		return
	}

	res := s.resolver.Resolve(r.Context(), r.PostForm.Get("q"))
	switch res.Phase {
	case search.Idle:
		s.page(w, r, http.StatusOK, "Search", views.SearchForm(views.SearchData{Phase: search.Idle}))
	case search.Failed:
		s.page(w, r, statusFor(res.Err), "Search", views.SearchForm(views.SearchData{
			Phase: search.Failed,
			Query: res.Query,
			Error: views.MessageFor(res.Err),
		}))
	case search.Answered:
		id, err := s.answers.Save(r.Context(), res.Query, *res.Answer)
		if err != nil {
			s.log.Error("store answer", slog.Any("err", err))
			s.page(w, r, http.StatusInternalServerError, "Search", views.SearchForm(views.SearchData{
				Phase: search.Failed,
				Query: res.Query,
				Error: views.MalformedMessage,
			}))
			return
		}
		http.Redirect(w, r, "/search/answers/"+url.PathEscape(id), http.StatusSeeOther)
	}
}

func (s *server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	notFound := views.NotFound(views.ErrorData{
		Title:      "Answer expired",
		Message:    "This answer is no longer available.",
		RetryURL:   "/search",
		RetryLabel: "Ask a new question",
	})

	rec, ok, err := s.answers.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Warn("load answer", slog.Any("err", err))
	}
	if !ok {
		s.page(w, r, http.StatusNotFound, "Search", notFound)
		return
	}

	meta := views.Meta{
		Title:       rec.Answer.PlayerName,
		Description: processing.CollapseWhitespace(markup.Plain(rec.Answer.AnswerText)),
	}
	s.pageWithMeta(w, r, http.StatusOK, meta, views.ResponseCard(views.ResponseData{
		ID:       rec.ID,
		Answer:   rec.Answer,
		Carousel: ui.ParseCarousel(r.URL.Query().Get("chart"), len(rec.Answer.Visuals)),
	}))
}

func (s *server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	name := playerParam(r)
	if name == "" {
		s.page(w, r, http.StatusNotFound, "Player", views.NotFound(views.ErrorData{}))
		return
	}

	state := ui.NewPlayerCardState(name)
	var profile *models.PlayerProfile
	if state.NextFetch() {
		ctx, cancel := s.backendCtx(r)
		defer cancel()

		var err error
		profile, err = s.backend.PlayerCard(ctx, name)
		if err != nil {
			s.backendError(w, r, name, err, views.ErrorData{
				Title:      "Player not found",
				Message:    "We couldn't find a player named " + name + ".",
				RetryURL:   "/search",
				RetryLabel: "Search again",
			})
			return
		}
		state = state.Loaded()
	}

	state = state.Restore(r.URL.Query().Get("flipped"))
	s.page(w, r, http.StatusOK, name, views.PlayerCard(views.PlayerData{State: state, Profile: profileOrEmpty(profile)}))
}

// playerParam returns the decoded {name} segment. chi hands back the raw
// segment when the request path carries non-canonical escapes.
func playerParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
	}
	return strings.TrimSpace(name)
}

// profileOrEmpty guards JSON responses against a nil profile.
func profileOrEmpty(p *models.PlayerProfile) models.PlayerProfile {
	if p == nil {
		return models.PlayerProfile{}
	}
	return *p
}
