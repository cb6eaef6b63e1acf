package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// Service owns the account lifecycle and the current session. Signing up
// never logs the user in: the account stays unusable until its email is
// confirmed, and sign-in reports that as a distinct outcome.
type Service struct {
	users  UsersRepository
	tokens TokenService

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
}

func NewService(users UsersRepository, tokens TokenService) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		listeners: make(map[int]func(*Session)),
	}
}

// SignUp registers a new account. The returned user is unconfirmed; callers
// surface a confirmation-pending outcome rather than a session.
func (s *Service) SignUp(ctx context.Context, email, password string) (User, error) {
	if len(password) < minPasswordLength {
		return User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.users.Create(ctx, email, hash)
}

// SignIn verifies credentials and establishes the current session. Unknown
// emails and wrong passwords both map to ErrInvalidCredentials so the two
// cases are indistinguishable to a caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !user.Confirmed {
		return Session{}, ErrEmailUnconfirmed
	}

	token, expiresAt, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}
	s.setSession(&session)
	return session, nil
}

// SignOut drops the current session. Safe to call while anonymous.
func (s *Service) SignOut() {
	s.setSession(nil)
}

// CurrentSession returns the active session, or nil when anonymous.
func (s *Service) CurrentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// Verify checks a bearer token without touching session state. Used by the
// HTTP middleware.
func (s *Service) Verify(token string) (Claims, error) {
	return s.tokens.Verify(token)
}

// OnSessionChange registers a listener called with the new session (nil on
// sign-out) after every transition. The returned function unsubscribes it.
func (s *Service) OnSessionChange(fn func(*Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) setSession(session *Session) {
	s.mu.Lock()
	s.session = session
	fns := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		var copied *Session
		if session != nil {
			c := *session
			copied = &c
		}
		fn(copied)
	}
}
