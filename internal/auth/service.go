// Package auth owns the credential lifecycle: account registration, login,
// and bearer-token issuance and verification. The rest of the application
// only ever sees the Identity it produces.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("user already exists")
	// ErrUserNotFound indicates no account exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid password")
)

const bcryptCost = 10

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore is the persistence boundary for accounts. FindUserByEmail returns
// (nil, nil) when no account exists. CreateUser returns ErrEmailTaken when
// the email uniqueness constraint is violated.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
}

// Service handles registration and login.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	log    zerolog.Logger
}

func NewService(users UserStore, tokens *TokenIssuer, log zerolog.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, name, email, string(hash))
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Msg("user registered")
	return user, nil
}

// Login verifies the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}
