package main

import (
	"net/http"
	"strings"

	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/processing"
	"github.com/metrix-hq/metrix/web/internal/ui"
	"github.com/metrix-hq/metrix/web/internal/views"
)

type newsletterResponse struct {
	Date       string              `json:"date"`
	Recaps     []models.GameRecap  `json:"summaries"`
	Highlights []highlightResponse `json:"highlights"`
	News       []models.NewsStory  `json:"news"`
	Standings  []ui.Conference     `json:"standings"`
}

type highlightResponse struct {
	models.Highlight
	EmbedURL string `json:"embed_url,omitempty"`
}

func (s *server) handleAPIPlayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	ctx, cancel := s.backendCtx(r)
	defer cancel()

	profile, err := s.backend.PlayerCard(ctx, name)
	if err != nil {
		s.writeJSON(w, statusFor(err), errorResponse{Error: views.MessageFor(err)})
		return
	}

	s.writeJSON(w, http.StatusOK, profileOrEmpty(profile))
}

func (s *server) handleAPINewsletter(w http.ResponseWriter, r *http.Request) {
	date, err := processing.NormalizeDate(r.URL.Query().Get("date"), s.now(), s.cfg.Location)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.backendCtx(r)
	defer cancel()

	bundle, err := s.backend.Newsletter(ctx, date)
	if err != nil {
		s.writeJSON(w, statusFor(err), errorResponse{Error: views.MessageFor(err)})
		return
	}
	if bundle.IsEmpty() {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no newsletter for " + date})
		return
	}

	highlights := make([]highlightResponse, 0, len(bundle.Highlights))
	for _, h := range bundle.Highlights {
		highlights = append(highlights, highlightResponse{Highlight: h, EmbedURL: processing.EmbedURL(h.Media)})
	}

	s.writeJSON(w, http.StatusOK, newsletterResponse{
		Date:       date,
		Recaps:     bundle.Recaps,
		Highlights: highlights,
		News:       bundle.News,
		Standings:  ui.BuildConferences(bundle.Standings),
	})
}
