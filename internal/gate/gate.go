// Package gate decides what a viewer gets to see: protected content, the login form,
// a fallback or a denial notice.
package gate

import (
	"fmt"
	"strings"

	"github.com/bissquit/cryptodefi/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outcome is the branch a gate took.
type Outcome int

const (
	OutcomeContent Outcome = iota
	OutcomeLogin
	OutcomeFallback
	OutcomeAccessDenied
	OutcomeFeatureNotice
	OutcomeNothing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContent:
		return "content"
	case OutcomeLogin:
		return "login"
	case OutcomeFallback:
		return "fallback"
	case OutcomeAccessDenied:
		return "access_denied"
	case OutcomeFeatureNotice:
		return "feature_notice"
	case OutcomeNothing:
		return "nothing"
	}
	return "unknown"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Subject is who is asking.
type Subject struct {
	Authenticated bool
	Role          domain.Role
}

// Viewer is anything that can report the current subject.
type Viewer interface {
	IsAuthenticated() bool
	CurrentRole() domain.Role
}

// SubjectOf captures the viewer's current state.
func SubjectOf(v Viewer) Subject {
	return Subject{Authenticated: v.IsAuthenticated(), Role: v.CurrentRole()}
}

// granted answers the permission lookup; anonymous subjects have nothing.
func (s Subject) granted(p domain.Permission) bool {
	if !s.Authenticated {
		return false
	}
	return s.Role.HasPermission(p)
}

// Notice is the text shown instead of protected content.
type Notice struct {
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Role       domain.Role       `json:"role,omitempty"`
	Permission domain.Permission `json:"permission"`
	Upgrade    string            `json:"upgrade,omitempty"`
}

// String renders the notice as a single line.
func (n Notice) String() string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString(": ")
	b.WriteString(n.Message)
	if n.Upgrade != "" {
		b.WriteString(" ")
		b.WriteString(n.Upgrade)
	}
	if n.Title == accessDeniedTitle {
		fmt.Fprintf(&b, " Current role: %s. Required permission: %s.", DisplayRole(n.Role), n.Permission)
	}
	return b.String()
}

// Decision is the result of a gate evaluation.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Notice  *Notice `json:"notice,omitempty"`
}

// Allowed reports whether the protected content is shown.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeContent
}

const (
	accessDeniedTitle   = "Access Denied"
	accessDeniedMessage = "You don't have permission to access this feature."
	premiumTitle        = "Premium Feature"
	upgradeHint         = "Upgrade to Premium to access advanced features."
)

// EvaluateRoute applies the route-level policy. An empty required permission means
// the route only needs a logged-in viewer.
func EvaluateRoute(s Subject, required domain.Permission, hasFallback bool) Decision {
	if !s.Authenticated {
		if hasFallback {
			return Decision{Outcome: OutcomeFallback}
		}
		return Decision{Outcome: OutcomeLogin}
	}

	if required != "" && !s.granted(required) {
		return Decision{
			Outcome: OutcomeAccessDenied,
			Notice: &Notice{
				Title:      accessDeniedTitle,
				Message:    accessDeniedMessage,
				Role:       s.Role,
				Permission: required,
			},
		}
	}

	return Decision{Outcome: OutcomeContent}
}

// FeatureOptions controls what a denied feature renders.
type FeatureOptions struct {
	Fallback  bool
	ShowError bool
}

// DefaultFeatureOptions shows the premium notice and has no fallback.
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{ShowError: true}
}

// EvaluateFeature applies the feature-level policy.
func EvaluateFeature(s Subject, p domain.Permission, opts FeatureOptions) Decision {
	if s.granted(p) {
		return Decision{Outcome: OutcomeContent}
	}

	if opts.Fallback {
		return Decision{Outcome: OutcomeFallback}
	}

	if !opts.ShowError {
		return Decision{Outcome: OutcomeNothing}
	}

	notice := &Notice{
		Title:      premiumTitle,
		Message:    fmt.Sprintf("This feature requires %s permission.", p),
		Role:       s.Role,
		Permission: p,
	}
	if s.Authenticated && s.Role == domain.RoleUser {
		notice.Upgrade = upgradeHint
	}
	return Decision{Outcome: OutcomeFeatureNotice, Notice: notice}
}

// DisplayRole formats a role for people, e.g. "premium" becomes "Premium".
func DisplayRole(r domain.Role) string {
	if r == "" {
		return "Guest"
	}
	// A Caser keeps state between calls and must not be shared across goroutines.
	return cases.Title(language.English).String(string(r))
}
