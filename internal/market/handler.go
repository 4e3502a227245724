package market

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/bissquit/cryptodefi/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for dashboard views and feature checks.
type Handler struct {
	views  *Views
	viewer gate.Viewer
}

// NewHandler creates a new market handler.
func NewHandler(views *Views, viewer gate.Viewer) *Handler {
	return &Handler{
		views:  views,
		viewer: viewer,
	}
}

// RegisterRoutes registers view and feature routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/views", h.ListViews)
	r.Get("/views/{view}", h.GetView)
	r.Get("/features/{permission}", h.GetFeature)
}

// RouteAccess describes a view and whether the current viewer may open it.
type RouteAccess struct {
	Name               string            `json:"name"`
	Path               string            `json:"path"`
	Public             bool              `json:"public"`
	RequiredPermission domain.Permission `json:"required_permission,omitempty"`
	Outcome            gate.Outcome      `json:"outcome"`
}

// ListViews handles GET /views.
func (h *Handler) ListViews(w http.ResponseWriter, _ *http.Request) {
	subject := gate.SubjectOf(h.viewer)

	routes := make([]RouteAccess, 0, len(gate.Routes))
	for _, route := range gate.Routes {
		routes = append(routes, RouteAccess{
			Name:               route.Name,
			Path:               route.Path,
			Public:             route.Public,
			RequiredPermission: route.Required,
			Outcome:            route.Evaluate(subject).Outcome,
		})
	}

	httputil.Success(w, http.StatusOK, routes)
}

// ViewResponse wraps a view payload.
type ViewResponse struct {
	View    string `json:"view"`
	Path    string `json:"path"`
	Content any    `json:"content"`
}

// GetView handles GET /views/{view}.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	route, ok := gate.LookupRoute(chi.URLParam(r, "view"))
	if !ok {
		httputil.Error(w, http.StatusNotFound, ErrUnknownView.Error())
		return
	}

	if decision := route.Evaluate(gate.SubjectOf(h.viewer)); !decision.Allowed() {
		httputil.Denied(w, decision)
		return
	}

	content, err := h.views.Build(r.Context(), route.Name)
	if err != nil {
		if errors.Is(err, ErrUnknownView) {
			httputil.Error(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, ViewResponse{View: route.Name, Path: route.Path, Content: content})
}

// FeatureResponse is the feature gate decision for the current viewer.
type FeatureResponse struct {
	Permission domain.Permission `json:"permission"`
	Granted    bool              `json:"granted"`
	Outcome    gate.Outcome      `json:"outcome"`
	Notice     *gate.Notice      `json:"notice,omitempty"`
}

// GetFeature handles GET /features/{permission}.
// Optional query parameters fallback and show_error mirror the gate options.
func (h *Handler) GetFeature(w http.ResponseWriter, r *http.Request) {
	permission, err := domain.ParsePermission(chi.URLParam(r, "permission"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := gate.DefaultFeatureOptions()
	if opts.Fallback, err = boolParam(r, "fallback", opts.Fallback); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid fallback parameter")
		return
	}
	if opts.ShowError, err = boolParam(r, "show_error", opts.ShowError); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid show_error parameter")
		return
	}

	decision := gate.EvaluateFeature(gate.SubjectOf(h.viewer), permission, opts)
	httputil.Success(w, http.StatusOK, FeatureResponse{
		Permission: permission,
		Granted:    decision.Allowed(),
		Outcome:    decision.Outcome,
		Notice:     decision.Notice,
	})
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
