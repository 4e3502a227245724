package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/cryptodefi/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

// Account is a predefined login with a fixed identity.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         domain.Role
	PasswordHash []byte
}

// User materializes the account as a session user created at t.
func (a Account) User(t time.Time) *domain.User {
	return &domain.User{
		ID:         a.ID,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		IsVerified: true,
		CreatedAt:  t,
	}
}

// Accounts is the fixed set of accounts that can log in.
type Accounts struct {
	byEmail map[string]Account
}

// NewAccounts builds an account table. Emails are matched case-insensitively.
func NewAccounts(accounts ...Account) *Accounts {
	a := &Accounts{byEmail: make(map[string]Account, len(accounts))}
	for _, acc := range accounts {
		a.byEmail[normalizeEmail(acc.Email)] = acc
	}
	return a
}

// DemoAccounts returns the admin, regular and premium demo logins.
func DemoAccounts() (*Accounts, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	return NewAccounts(
		Account{ID: "1", Email: "admin@cryptodefi.com", FirstName: "Admin", LastName: "User", Role: domain.RoleAdmin, PasswordHash: hash},
		Account{ID: "2", Email: "user@cryptodefi.com", FirstName: "Regular", LastName: "User", Role: domain.RoleUser, PasswordHash: hash},
		Account{ID: "3", Email: "premium@cryptodefi.com", FirstName: "Premium", LastName: "User", Role: domain.RolePremium, PasswordHash: hash},
	), nil
}

// Lookup finds the account registered for email.
func (a *Accounts) Lookup(email string) (Account, bool) {
	acc, ok := a.byEmail[normalizeEmail(email)]
	return acc, ok
}

// Authenticate returns the account only if the password matches.
func (a *Accounts) Authenticate(email, password string) (Account, error) {
	acc, ok := a.Lookup(email)
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
