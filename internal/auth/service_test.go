package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type mockUsers struct {
	byEmail   map[string]User
	createErr error
}

func (m *mockUsers) Create(_ context.Context, email string, hash []byte) (User, error) {
	if m.createErr != nil {
		return User{}, m.createErr
	}
	if _, ok := m.byEmail[email]; ok {
		return User{}, ErrEmailTaken
	}
	user := User{ID: "u-" + email, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	if m.byEmail == nil {
		m.byEmail = map[string]User{}
	}
	m.byEmail[email] = user
	return user, nil
}

func (m *mockUsers) FindByEmail(_ context.Context, email string) (User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *mockUsers) Confirm(_ context.Context, id string) error {
	for email, user := range m.byEmail {
		if user.ID == id {
			user.Confirmed = true
			m.byEmail[email] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func newTestService(t *testing.T, users *mockUsers) *Service {
	t.Helper()
	tokens, err := NewHS256Service("test-secret", "shorten", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	return NewService(users, tokens)
}

func seedUser(t *testing.T, users *mockUsers, email, password string, confirmed bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if users.byEmail == nil {
		users.byEmail = map[string]User{}
	}
	users.byEmail[email] = User{ID: "u-" + email, Email: email, PasswordHash: hash, Confirmed: confirmed}
}

func TestSignUp(t *testing.T) {
	t.Run("rejects short passwords", func(t *testing.T) {
		svc := newTestService(t, &mockUsers{})
		_, err := svc.SignUp(context.Background(), "a@example.com", "12345")
		if !errors.Is(err, ErrPasswordTooShort) {
			t.Fatalf("err = %v, want ErrPasswordTooShort", err)
		}
	})

	t.Run("creates an unconfirmed account and no session", func(t *testing.T) {
		svc := newTestService(t, &mockUsers{})
		user, err := svc.SignUp(context.Background(), "a@example.com", "secret-pass")
		if err != nil {
			t.Fatalf("SignUp: %v", err)
		}
		if user.Confirmed {
			t.Error("new account should be unconfirmed")
		}
		if svc.CurrentSession() != nil {
			t.Error("sign-up must not establish a session")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &mockUsers{}
		svc := newTestService(t, users)
		if _, err := svc.SignUp(context.Background(), "a@example.com", "secret-pass"); err != nil {
			t.Fatalf("first SignUp: %v", err)
		}
		_, err := svc.SignUp(context.Background(), "a@example.com", "secret-pass")
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("err = %v, want ErrEmailTaken", err)
		}
	})
}

func TestSignIn(t *testing.T) {
	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		users := &mockUsers{}
		seedUser(t, users, "a@example.com", "right-pass", true)
		svc := newTestService(t, users)

		_, errUnknown := svc.SignIn(context.Background(), "nobody@example.com", "right-pass")
		_, errWrong := svc.SignIn(context.Background(), "a@example.com", "wrong-pass")

		if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrong, ErrInvalidCredentials) {
			t.Fatalf("errs = %v / %v, want ErrInvalidCredentials for both", errUnknown, errWrong)
		}
	})

	t.Run("unconfirmed account is refused with its own error", func(t *testing.T) {
		users := &mockUsers{}
		seedUser(t, users, "a@example.com", "right-pass", false)
		svc := newTestService(t, users)

		_, err := svc.SignIn(context.Background(), "a@example.com", "right-pass")
		if !errors.Is(err, ErrEmailUnconfirmed) {
			t.Fatalf("err = %v, want ErrEmailUnconfirmed", err)
		}
		if svc.CurrentSession() != nil {
			t.Error("refused sign-in must not establish a session")
		}
	})

	t.Run("success establishes a verifiable session", func(t *testing.T) {
		users := &mockUsers{}
		seedUser(t, users, "a@example.com", "right-pass", true)
		svc := newTestService(t, users)

		session, err := svc.SignIn(context.Background(), "a@example.com", "right-pass")
		if err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if session.UserID != "u-a@example.com" || session.Email != "a@example.com" {
			t.Errorf("unexpected session: %+v", session)
		}

		claims, err := svc.Verify(session.Token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.UserID != session.UserID || claims.Email != session.Email {
			t.Errorf("claims = %+v, want to match session", claims)
		}

		current := svc.CurrentSession()
		if current == nil || current.Token != session.Token {
			t.Error("CurrentSession should return the established session")
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	users := &mockUsers{}
	seedUser(t, users, "a@example.com", "right-pass", true)
	svc := newTestService(t, users)

	var events []*Session
	unsubscribe := svc.OnSessionChange(func(s *Session) {
		events = append(events, s)
	})

	if _, err := svc.SignIn(context.Background(), "a@example.com", "right-pass"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	svc.SignOut()

	if len(events) != 2 {
		t.Fatalf("listener calls = %d, want 2", len(events))
	}
	if events[0] == nil || events[0].Email != "a@example.com" {
		t.Errorf("first event = %+v, want the new session", events[0])
	}
	if events[1] != nil {
		t.Errorf("second event = %+v, want nil for sign-out", events[1])
	}
	if svc.CurrentSession() != nil {
		t.Error("CurrentSession after sign-out should be nil")
	}

	unsubscribe()
	if _, err := svc.SignIn(context.Background(), "a@example.com", "right-pass"); err != nil {
		t.Fatalf("SignIn after unsubscribe: %v", err)
	}
	if len(events) != 2 {
		t.Error("unsubscribed listener should not be called again")
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	tokens, err := NewHS256Service("test-secret", "shorten", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	other, err := NewHS256Service("other-secret", "shorten", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}

	signed, _, err := other.Sign("u-1", "a@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := tokens.Verify(signed); err == nil {
		t.Error("token signed with a different secret must not verify")
	}
	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Error("garbage must not verify")
	}
}
