package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/metrix-hq/metrix/web/internal/cache"
	"github.com/metrix-hq/metrix/web/internal/config"
	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/search"
	"github.com/metrix-hq/metrix/web/internal/views"
)

// subscriber is the signup flow behind POST /subscribe.
type subscriber interface {
	Subscribe(ctx context.Context, email, source string) (*models.Subscriber, error)
}

type server struct {
	log      *slog.Logger
	cfg      *config.Web
	backend  metrix.Backend
	resolver *search.Resolver
	answers  *cache.Answers
	signup   subscriber
	store    cache.Store
	now      func() time.Time
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.BackendTimeout*2 + time.Second))

	r.Get("/", s.handleLanding)
	r.Post("/subscribe", s.handleSubscribe)
	r.Get("/theme", s.handleTheme)
	r.Get("/health", s.handleHealth)
	r.Get("/news", s.handleNewsletter)
	r.Get("/search", s.handleSearchForm)
	r.Post("/search", s.handleSearchSubmit)
	r.Get("/search/answers/{id}", s.handleAnswer)
	r.Get("/player/{name}", s.handlePlayer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/player", s.handleAPIPlayer)
		r.Get("/newsletter", s.handleAPINewsletter)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.page(w, r, http.StatusNotFound, "Not found", views.NotFound(views.ErrorData{
			Message:    "That page doesn't exist.",
			RetryURL:   "/",
			RetryLabel: "Back to Metrix",
		}))
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

// page renders body inside the shared layout.
func (s *server) page(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	s.pageWithMeta(w, r, status, views.Meta{Title: title}, body)
}

// pageWithMeta fills the request-derived chrome into meta and renders body.
func (s *server) pageWithMeta(w http.ResponseWriter, r *http.Request, status int, meta views.Meta, body templ.Component) {
	meta.Path = r.URL.RequestURI()
	meta.Theme = themeFrom(r)
	templ.Handler(views.Page(meta, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

// backendError renders the page for a failed backend call.
func (s *server) backendError(w http.ResponseWriter, r *http.Request, title string, err error, notFound views.ErrorData) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		s.page(w, r, status, title, views.NotFound(notFound))
		return
	}
	s.log.Warn("backend call failed",
		slog.String("path", r.URL.Path),
		slog.String("kind", metrix.KindOf(err).String()),
		slog.Any("err", err),
	)
	s.page(w, r, status, title, views.ErrorState(views.ErrorData{
		Message:  views.MessageFor(err),
		RetryURL: r.URL.RequestURI(),
	}))
}

// backendCtx bounds a backend call so a hung backend ends as a network error.
func (s *server) backendCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.BackendTimeout)
}

func themeFrom(r *http.Request) views.Theme {
	c, err := r.Cookie(views.ThemeCookie)
	if err != nil {
		return views.Theme{}
	}
	return views.ParseTheme(c.Value)
}

// statusFor maps a classified backend error onto an HTTP status.
func statusFor(err error) int {
	var me *metrix.Error
	if !errors.As(err, &me) {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
	switch me.Kind {
	case metrix.KindNotFound:
		return http.StatusNotFound
	case metrix.KindNetwork:
		if me.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends payload with status. The header is already out when
// encoding fails, so the error can only be logged.
func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Debug("encode json response", slog.Any("err", err))
	}
}
