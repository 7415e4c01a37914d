// Package service provides account business logic for the development
// server, delegating persistence to an AccountRepository.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rainflow/accounts/internal/models"
)

// ErrEmailExists is returned when a registration email is already taken.
var ErrEmailExists = errors.New("email already registered")

// ErrInvalidCredentials is returned when login credentials are rejected.
// Unknown email and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AccountRepository defines the persistence operations required by the
// account service.
type AccountRepository interface {
	// EmailExists returns true if an account with the given email exists.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateAccount inserts a new account and returns the assigned id.
	CreateAccount(ctx context.Context, a models.Account) (int, error)
	// AccountByEmail fetches an account; sql.ErrNoRows when absent.
	AccountByEmail(ctx context.Context, email string) (models.Account, error)
	// ListAccounts returns all accounts in stable id order.
	ListAccounts(ctx context.Context) ([]models.Account, error)
	// UpdateAccount changes the mutable fields and returns the new record.
	UpdateAccount(ctx context.Context, id int, name, number, gender string) (models.Account, error)
	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, id int) error
	// CreateSession records a server-side session token.
	CreateSession(ctx context.Context, token string, accountID int, expiresAt time.Time) error
	// DeleteSession drops a session token.
	DeleteSession(ctx context.Context, token string) error
}

// AccountService implements account operations by delegating to an
// AccountRepository.
type AccountService struct {
	repo AccountRepository
	// sessionTTL is how long an issued session token stays valid.
	sessionTTL time.Duration
}

// NewAccountService constructs a new AccountService using the provided
// repository and session lifetime.
func NewAccountService(repo AccountRepository, sessionTTL time.Duration) *AccountService {
	return &AccountService{repo: repo, sessionTTL: sessionTTL}
}

// RegisterParams carries validated registration input.
type RegisterParams struct {
	Name     string
	Email    string
	Number   string
	Gender   string
	IsAdmin  int
	Password string
}

// Register creates a new account and returns the assigned id. A taken
// email surfaces as ErrEmailExists.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (int, error) {
	exists, err := s.repo.EmailExists(ctx, p.Email)
	if err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return 0, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.CreateAccount(ctx, models.Account{
		Name:         p.Name,
		Email:        p.Email,
		Number:       p.Number,
		Gender:       p.Gender,
		IsAdmin:      p.IsAdmin,
		PasswordHash: hash,
	})
}

// Authenticate verifies credentials and, on success, issues a session
// token valid for the configured lifetime.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.Account, string, error) {
	a, err := s.repo.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, "", ErrInvalidCredentials
		}
		return models.Account{}, "", fmt.Errorf("fetch account: %w", err)
	}

	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
		return models.Account{}, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.repo.CreateSession(ctx, token, a.ID, time.Now().Add(s.sessionTTL)); err != nil {
		return models.Account{}, "", fmt.Errorf("create session: %w", err)
	}
	return a, token, nil
}

// Logout drops the given session token. An empty or unknown token is
// accepted silently; local logout must never depend on it.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// ListAccounts returns all accounts in roster order.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// UpdateAccount changes an account's name, number and gender. Email is
// immutable by contract.
func (s *AccountService) UpdateAccount(ctx context.Context, id int, name, number, gender string) (models.Account, error) {
	return s.repo.UpdateAccount(ctx, id, name, number, gender)
}

// DeleteAccount removes an account.
func (s *AccountService) DeleteAccount(ctx context.Context, id int) error {
	return s.repo.DeleteAccount(ctx, id)
}
