package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/fasterr/marketplace/internal/domain"
)

// SessionService manages the locally persisted login state used by the CLI
// and the storefront. It is name-based; accounts with passwords live behind
// the mirror API instead.
type SessionService struct {
	sessions domain.SessionRepository
	logger   *slog.Logger
}

func NewSessionService(sessions domain.SessionRepository, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{sessions: sessions, logger: logger}
}

// Login derives a user from the display name and persists it as the current
// session.
func (s *SessionService) Login(name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, errors.New("name must not be empty")
	}
	user := domain.NewUser(domain.NewID(), name)
	if err := s.sessions.Save(user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("session started", slog.String("user_id", user.ID), slog.String("name", user.Name))
	return user, nil
}

// Current returns the logged-in user, or domain.ErrNotFound for guests
func (s *SessionService) Current() (domain.User, error) {
	return s.sessions.Current()
}

// Logout clears the persisted session. Logging out while a guest is a no-op.
func (s *SessionService) Logout() error {
	return s.sessions.Clear()
}
