package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// User is the local marketplace identity. At most one user is "current" at a
// time; an absent session means the caller is browsing as a guest.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// NewUser builds a user for a display name: the email is derived
// deterministically from the name and the avatar points at a generated image.
func NewUser(id, name string) User {
	local := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "."))
	return User{
		ID:     id,
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", local),
		Avatar: fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=10b981&color=fff", url.QueryEscape(name)),
	}
}

// SessionRepository persists the current user under its own namespace
type SessionRepository interface {
	Save(u User) error
	Current() (User, error)
	Clear() error
}

// Account is a registered identity on the mirror API, stored with a bcrypt
// password hash
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

// AccountRepository defines data access for mirror API accounts
type AccountRepository interface {
	Create(a *Account) error
	GetByEmail(email string) (*Account, error)
}
