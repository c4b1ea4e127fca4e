// Package auth is the credential store: user registration and password
// verification. Passwords are bcrypt-hashed before they touch the database
// and never stored or logged in plaintext.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/tareas-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// Service is the credential store contract. Both HTTP surfaces authenticate
// against it; handlers depend on the interface, not the concrete store.
type Service interface {
	// Register creates a new user with a bcrypt-hashed password.
	// A taken username fails with a ConflictError.
	Register(ctx context.Context, username, password string) (*User, error)
	// VerifyCredentials checks username/password and returns the user on
	// success. An unknown username and a wrong password both fail with the
	// same AuthError so callers cannot tell which was wrong.
	VerifyCredentials(ctx context.Context, username, password string) (*User, error)
	// GetUserByID looks a user up by id.
	GetUserByID(ctx context.Context, id int) (*User, error)
}

// PGService is the PostgreSQL-backed credential store.
type PGService struct {
	db *pgxpool.Pool
}

// NewPGService creates a PGService on top of the given pool.
func NewPGService(db *pgxpool.Pool) *PGService {
	return &PGService{db: db}
}

// validateCredentials applies the registration/login input rules shared by
// the store implementations.
func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return apperror.NewValidationError("username is required", nil)
	}
	if password == "" {
		return apperror.NewValidationError("password is required", nil)
	}
	return nil
}

// Register creates a new user.
func (s *PGService) Register(ctx context.Context, username, password string) (*User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hashed),
	}

	query := `INSERT INTO users (username, password_hash)
	          VALUES ($1, $2)
	          RETURNING id, created_at`
	err = s.db.QueryRow(ctx, query, user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// VerifyCredentials authenticates a username/password pair.
func (s *PGService) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	var user User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same message as a hash mismatch: do not reveal whether the
			// username exists.
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their id.
func (s *PGService) GetUserByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}
