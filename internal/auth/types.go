package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailUnconfirmed   = errors.New("email not confirmed")
)

// User is an account row as stored by the users repository.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Confirmed    bool
	CreatedAt    time.Time
}

// Session is an authenticated login. A nil *Session means anonymous.
type Session struct {
	Token     string    `json:"accessToken"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UsersRepository is the persistence port for accounts.
type UsersRepository interface {
	Create(ctx context.Context, email string, passwordHash []byte) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Confirm(ctx context.Context, id string) error
}
