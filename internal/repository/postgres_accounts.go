package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fasterr/marketplace/internal/domain"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// PostgresAccounts implements domain.AccountRepository over the mirror's
// users table.
type PostgresAccounts struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAccounts creates an account repository
func NewPostgresAccounts(db *sql.DB, logger *slog.Logger) *PostgresAccounts {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAccounts{db: db, logger: logger}
}

// Create inserts a new account, assigning its id
func (r *PostgresAccounts) Create(a *domain.Account) error {
	if a.ID == "" {
		a.ID = domain.NewID()
	}
	_, err := r.db.Exec(
		`INSERT INTO users (id, name, email, password) VALUES ($1, $2, $3, $4)`,
		a.ID, a.Name, a.Email, a.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	r.logger.Debug("account created", slog.String("account_id", a.ID))
	return nil
}

// GetByEmail returns the account or domain.ErrNotFound
func (r *PostgresAccounts) GetByEmail(email string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(
		`SELECT id, name, email, password FROM users WHERE email = $1`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}
