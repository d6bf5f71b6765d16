package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CTAG07/Verbena/pkg/render"
	"github.com/CTAG07/Verbena/pkg/stats"
)

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	store    *stats.Store
	pipeline *render.Pipeline
	logger   *slog.Logger
}

// SummaryResponse is the render summary plus the state of the template cache.
type SummaryResponse struct {
	stats.Summary
	CachedViews int `json:"cached_views"`
}

func NewStatsAPI(store *stats.Store, pipeline *render.Pipeline, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		store:    store,
		pipeline: pipeline,
		logger:   logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/stats/top_views", s.handleTopViews)
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	summary, err := s.store.Summary(r.Context())
	if err != nil {
		s.logger.Error("Failed to query stats summary", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	respondWithJSON(w, http.StatusOK, SummaryResponse{Summary: summary, CachedViews: s.pipeline.CachedViews()})
}

func (s *StatsAPI) handleTopViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	views, err := s.store.TopViews(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query top views", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	if views == nil {
		views = []stats.ViewStats{}
	}
	respondWithJSON(w, http.StatusOK, views)
}
