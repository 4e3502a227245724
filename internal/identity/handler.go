package identity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// RateLimit throttles login and signup requests.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	session   *Session
	validator *validator.Validate
	limiter   *rate.Limiter
}

// NewHandler creates a new identity handler.
// A non-positive rate disables throttling.
func NewHandler(session *Session, limit RateLimit) *Handler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if limit.PerSecond > 0 {
		burst := limit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(limit.PerSecond), burst)
	}

	return &Handler{
		session:   session,
		validator: validator.New(),
		limiter:   limiter,
	}
}

// RegisterRoutes registers identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/signup", h.Signup)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
	{Error: ErrDuplicateAccount, Status: http.StatusConflict},
	{Error: ErrOperationInProgress, Status: http.StatusConflict},
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response.
type LoginResponse struct {
	User *domain.User `json:"user"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, LoginResponse{User: user})
}

// SignupRequest represents signup request body.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.session.Signup(r.Context(), req.Email, req.Password, Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User            *domain.User        `json:"user"`
	IsAuthenticated bool                `json:"is_authenticated"`
	IsLoading       bool                `json:"is_loading"`
	LastError       *string             `json:"last_error"`
	Permissions     []domain.Permission `json:"permissions"`
}

// Session handles GET /auth/session.
func (h *Handler) Session(w http.ResponseWriter, _ *http.Request) {
	state := h.session.State()

	resp := SessionResponse{
		User:            state.User,
		IsAuthenticated: state.User != nil,
		IsLoading:       state.IsLoading,
		Permissions:     []domain.Permission{},
	}
	if state.LastError != "" {
		resp.LastError = &state.LastError
	}
	if state.User != nil {
		resp.Permissions = state.User.Role.Permissions()
	}

	httputil.Success(w, http.StatusOK, resp)
}

func (h *Handler) allow(w http.ResponseWriter) bool {
	if h.limiter.Allow() {
		return true
	}
	recordAuthAttempt("throttle", "rejected")
	w.Header().Set("Retry-After", retryAfter(h.limiter))
	httputil.Error(w, http.StatusTooManyRequests, "too many attempts, try again later")
	return false
}

func retryAfter(l *rate.Limiter) string {
	if l.Limit() <= 0 {
		return "1"
	}
	wait := time.Duration(float64(time.Second) / float64(l.Limit()))
	secs := int(wait.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
