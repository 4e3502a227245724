// Package identity owns the dashboard session: who is logged in and how that survives restarts.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/storage"
	"github.com/google/uuid"
)

// SessionKey is the storage key holding the serialized current user.
const SessionKey = "cryptodefi_user"

// Config contains session configuration.
type Config struct {
	LoginDelay  time.Duration
	SignupDelay time.Duration
}

// DefaultConfig returns the simulated latencies of the demo backend.
func DefaultConfig() Config {
	return Config{
		LoginDelay:  1000 * time.Millisecond,
		SignupDelay: 1500 * time.Millisecond,
	}
}

// Profile holds the names supplied at signup.
type Profile struct {
	FirstName string
	LastName  string
}

// State is a point-in-time view of the session.
type State struct {
	User      *domain.User
	IsLoading bool
	LastError string
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides how new user IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// Session is the process-wide identity. It is created once by the application root
// and handed to everything that needs to know who is logged in.
type Session struct {
	store    storage.Store
	accounts *Accounts
	config   Config
	now      func() time.Time
	newID    func() string

	mu        sync.RWMutex
	user      *domain.User
	loading   bool
	lastError string
}

// NewSession creates an anonymous session. Call Restore to pick up a persisted user.
func NewSession(store storage.Store, accounts *Accounts, config Config, opts ...Option) *Session {
	s := &Session{
		store:    store,
		accounts: accounts,
		config:   config,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore adopts the persisted user, if any. A corrupt record is discarded and the
// session stays anonymous; nothing is reported to the caller.
func (s *Session) Restore(ctx context.Context) {
	data, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		slog.Warn("failed to read persisted session", "error", err)
		return
	}
	if data == nil {
		return
	}

	user, err := decodeUser(data)
	if err != nil {
		slog.Warn("discarding persisted session", "error", err)
		if delErr := s.store.Delete(ctx, SessionKey); delErr != nil {
			slog.Warn("failed to discard persisted session", "error", delErr)
		}
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	slog.Info("session restored", "user_id", user.ID, "role", user.Role)
}

// Login authenticates against the demo accounts after a simulated round trip.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	user, err := s.login(ctx, email, password)
	s.finish(user, err)
	if err != nil {
		return nil, err
	}

	recordAuthAttempt("login", "success")
	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return cloneUser(user), nil
}

func (s *Session) login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := sleep(ctx, s.config.LoginDelay); err != nil {
		return nil, err
	}

	account, err := s.accounts.Authenticate(email, password)
	if err != nil {
		recordAuthAttempt("login", "invalid_credentials")
		return nil, err
	}

	user := account.User(s.now().UTC())
	if err := s.persist(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signup creates a fresh unverified user with the basic role.
func (s *Session) Signup(ctx context.Context, email, password string, profile Profile) (*domain.User, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	user, err := s.signup(ctx, email, profile)
	s.finish(user, err)
	if err != nil {
		return nil, err
	}

	recordAuthAttempt("signup", "success")
	slog.Info("user signed up", "user_id", user.ID)
	return cloneUser(user), nil
}

func (s *Session) signup(ctx context.Context, email string, profile Profile) (*domain.User, error) {
	if err := sleep(ctx, s.config.SignupDelay); err != nil {
		return nil, err
	}

	if _, exists := s.accounts.Lookup(email); exists {
		recordAuthAttempt("signup", "duplicate")
		return nil, ErrDuplicateAccount
	}

	user := &domain.User{
		ID:         s.newID(),
		Email:      strings.TrimSpace(email),
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Role:       domain.RoleUser,
		IsVerified: false,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.persist(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout forgets the current user. It cannot fail; a storage error is only logged.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.lastError = ""
	s.mu.Unlock()

	if err := s.store.Delete(ctx, SessionKey); err != nil {
		slog.Warn("failed to clear persisted session", "error", err)
	}
	slog.Info("user logged out")
}

// IsAuthenticated reports whether a user is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser returns a copy of the logged-in user, or nil.
func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// CurrentRole returns the role of the logged-in user, or "" when anonymous.
func (s *Session) CurrentRole() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// HasPermission checks the current user's role. Anonymous sessions have no permissions.
func (s *Session) HasPermission(p domain.Permission) bool {
	return s.CurrentRole().HasPermission(p)
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		User:      cloneUser(s.user),
		IsLoading: s.loading,
		LastError: s.lastError,
	}
}

// begin claims the single in-flight slot for an identity-mutating operation.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		recordAuthAttempt("guard", "rejected")
		return ErrOperationInProgress
	}
	s.loading = true
	s.lastError = ""
	return nil
}

// finish releases the slot and applies the outcome.
func (s *Session) finish(user *domain.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if err != nil {
		s.lastError = err.Error()
		return
	}
	s.user = user
	s.lastError = ""
}

func (s *Session) persist(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, SessionKey, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func decodeUser(data []byte) (*domain.User, error) {
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSessionData, err)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSessionData, err)
	}
	return &user, nil
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// sleep waits for d or context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("simulated request cancelled: %w", ctx.Err())
	}
}
