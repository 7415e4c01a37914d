// Package repository provides persistence implementations for the
// development server using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rainflow/accounts/internal/models"
)

// PostgresAccountRepository implements account persistence against a
// PostgreSQL database.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a new repository with the given
// database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// EmailExists checks whether an account with the given email exists.
func (r *PostgresAccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateAccount inserts a new account and returns the assigned id.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, a models.Account) (int, error) {
	var id int
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO accounts (name, email, number, gender, is_admin, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		a.Name, a.Email, a.Number, a.Gender, a.IsAdmin, a.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateAccount: %w", err)
	}
	return id, nil
}

// AccountByEmail fetches the account with the given email. The caller
// distinguishes a missing account via sql.ErrNoRows.
func (r *PostgresAccountRepository) AccountByEmail(ctx context.Context, email string) (models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, name, email, number, gender, is_admin, password_hash
		   FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Number, &a.Gender, &a.IsAdmin, &a.PasswordHash)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// ListAccounts fetches all accounts ordered by id, which is the stable
// order the roster presents.
func (r *PostgresAccountRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, email, number, gender, is_admin, password_hash
		  FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Number, &a.Gender, &a.IsAdmin, &a.PasswordHash); err != nil {
			return nil, fmt.Errorf("ListAccounts scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount changes the mutable fields of an account and returns the
// updated record. Email is deliberately not part of the update.
func (r *PostgresAccountRepository) UpdateAccount(ctx context.Context, id int, name, number, gender string) (models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(
		ctx,
		`UPDATE accounts SET name = $2, number = $3, gender = $4
		  WHERE id = $1
		  RETURNING id, name, email, number, gender, is_admin, password_hash`,
		id, name, number, gender,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Number, &a.Gender, &a.IsAdmin, &a.PasswordHash)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// DeleteAccount removes the account with the given id.
func (r *PostgresAccountRepository) DeleteAccount(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	return nil
}

// CreateSession records a server-side session token for an account.
func (r *PostgresAccountRepository) CreateSession(ctx context.Context, token string, accountID int, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO sessions (token, account_id, expires_at) VALUES ($1, $2, $3)`,
		token, accountID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// DeleteSession drops a session token. Dropping an unknown token is not
// an error.
func (r *PostgresAccountRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
