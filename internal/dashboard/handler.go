// Package dashboard serves the RepoRanger analytics pages over HTTP.
package dashboard

import (
	"context"
	"net/http"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// Logger interface for logging operations.
type Logger interface {
	Printf(format string, v ...interface{})
}

// DashboardSource provides the latest dashboard. service.DashboardService satisfies it.
type DashboardSource interface {
	Current() (domain.Dashboard, bool)
	Refresh(ctx context.Context) error
}

// Handler handles HTTP requests for the dashboard.
type Handler struct {
	renderer Renderer
	logger   Logger
	source   DashboardSource
}

// NewHandler creates a new Handler with injected dependencies.
func NewHandler(renderer Renderer, logger Logger, source DashboardSource) *Handler {
	return &Handler{
		renderer: renderer,
		logger:   logger,
		source:   source,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleDashboard)
	mux.HandleFunc("GET /how-it-works", h.handleHowItWorks)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/dashboard", h.handleDashboardJSON)
	mux.HandleFunc("POST /api/refresh", h.handleRefresh)
}

// handleDashboard serves the analytics page, or a self-refreshing loading page
// until the first fetch has completed.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	current, loaded := h.source.Current()
	var err error
	if loaded {
		err = h.renderer.RenderDashboard(w, current)
	} else {
		err = h.renderer.RenderLoading(w)
	}
	if err != nil {
		h.logger.Printf("failed to render dashboard: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleHowItWorks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.renderer.RenderHowItWorks(w); err != nil {
		h.logger.Printf("failed to render how it works: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.renderer.RenderHealth(w); err != nil {
		h.logger.Printf("failed to render health: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleDashboardJSON serves the current dashboard as JSON.
func (h *Handler) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	current, loaded := h.source.Current()
	h.writeJSON(w, http.StatusOK, dashboardResponse{Loaded: loaded, Dashboard: current})
}

// handleRefresh re-fetches the issues and returns the resulting dashboard.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Refresh(r.Context()); err != nil {
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "fetch failed: " + err.Error()})
		return
	}
	current, loaded := h.source.Current()
	h.writeJSON(w, http.StatusOK, dashboardResponse{Loaded: loaded, Dashboard: current})
}

type dashboardResponse struct {
	Loaded    bool             `json:"loaded"`
	Dashboard domain.Dashboard `json:"dashboard"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := h.renderer.RenderJSON(w, v); err != nil {
		h.logger.Printf("failed to encode response: %v", err)
	}
}
