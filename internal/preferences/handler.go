package preferences

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/bissquit/cryptodefi/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the preferences module.
type Handler struct {
	service   *Service
	viewer    gate.Viewer
	validator *validator.Validate
}

// NewHandler creates a new preferences handler.
func NewHandler(service *Service, viewer gate.Viewer) *Handler {
	return &Handler{
		service:   service,
		viewer:    viewer,
		validator: validator.New(),
	}
}

// RegisterRoutes registers preferences routes. All of them require the read permission.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequirePermission(h.viewer, domain.PermissionRead))

		r.Get("/watchlist", h.GetWatchlist)
		r.Put("/watchlist", h.UpdateWatchlist)
		r.Get("/preferences", h.GetPreferences)
		r.Put("/preferences", h.UpdatePreferences)
	})
}

// WatchlistRequest represents watchlist update request body.
type WatchlistRequest struct {
	Symbols []string `json:"symbols" validate:"required,max=50,dive,required,alphanum,uppercase,max=10"`
}

// WatchlistResponse represents the watchlist.
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
}

// GetWatchlist handles GET /watchlist.
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, WatchlistResponse{Symbols: h.service.LoadWatchlist(r.Context())})
}

// UpdateWatchlist handles PUT /watchlist.
func (h *Handler) UpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	symbols, err := h.service.SaveWatchlist(r.Context(), req.Symbols)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, WatchlistResponse{Symbols: symbols})
}

// GetPreferences handles GET /preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	httputil.Success(w, http.StatusOK, h.service.LoadPreferences(r.Context()))
}

// UpdatePreferences handles PUT /preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.service.SavePreferences(r.Context(), prefs); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, h.service.LoadPreferences(r.Context()))
}
