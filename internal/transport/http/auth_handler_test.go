package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/config"
	"github.com/shortenhub/shorten/internal/processing/links"
)

type memUsers struct {
	byEmail map[string]auth.User
	nextID  int
}

func (m *memUsers) Create(_ context.Context, email string, hash []byte) (auth.User, error) {
	if m.byEmail == nil {
		m.byEmail = map[string]auth.User{}
	}
	if _, ok := m.byEmail[email]; ok {
		return auth.User{}, auth.ErrEmailTaken
	}
	m.nextID++
	user := auth.User{ID: "u-" + email, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.byEmail[email] = user
	return user, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (auth.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (m *memUsers) Confirm(_ context.Context, id string) error {
	for email, user := range m.byEmail {
		if user.ID == id {
			user.Confirmed = true
			m.byEmail[email] = user
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func newAuthedRouter(t *testing.T, users auth.UsersRepository) (http.Handler, *auth.Service) {
	t.Helper()
	tokens, err := auth.NewHS256Service("test-secret", "shorten", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	authSvc := auth.NewService(users, tokens)

	cfg := &config.Config{}
	cfg.App.Name = "shorten-test"
	cfg.Store.Backend = config.StoreMongo

	router := NewRouterWithOptions(cfg, RouterDeps{
		Links: links.NewService(newMemRepo(), nil),
		Auth:  authSvc,
	}, RouterOptions{RequireAuth: true})
	return router, authSvc
}

func TestAuthFlow(t *testing.T) {
	users := &memUsers{}
	router, _ := newAuthedRouter(t, users)

	t.Run("sign up is confirmation pending", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/signup", map[string]string{
			"email":    "person@example.com",
			"password": "secret-pass",
		})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		data := decodeEnvelope(t, rec)["data"].(map[string]any)
		if data["message"] != "Check your email to confirm your account" {
			t.Errorf("message = %v", data["message"])
		}
	})

	t.Run("sign in before confirmation is forbidden", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/signin", map[string]string{
			"email":    "person@example.com",
			"password": "secret-pass",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("sign in after confirmation returns a session", func(t *testing.T) {
		if err := users.Confirm(context.Background(), "u-person@example.com"); err != nil {
			t.Fatalf("confirm: %v", err)
		}

		rec := postJSON(t, router, "/api/auth/signin", map[string]string{
			"email":    "person@example.com",
			"password": "secret-pass",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		data := decodeEnvelope(t, rec)["data"].(map[string]any)
		token := data["accessToken"].(string)
		if token == "" {
			t.Fatal("empty access token")
		}

		// Session endpoint sees the bearer.
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		out := httptest.NewRecorder()
		router.ServeHTTP(out, req)
		if out.Code != http.StatusOK {
			t.Fatalf("session status = %d", out.Code)
		}
		session := decodeEnvelope(t, out)["data"].(map[string]any)["session"].(map[string]any)
		if session["email"] != "person@example.com" {
			t.Errorf("session = %v", session)
		}

		// Link routes accept the same bearer and scope history to the user.
		rec = postJSONAuthed(t, router, "/api/links", token, map[string]string{
			"url": "https://example.com",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/signin", map[string]string{
			"email":    "person@example.com",
			"password": "wrong-pass",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("duplicate sign up conflicts", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/signup", map[string]string{
			"email":    "person@example.com",
			"password": "secret-pass",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("anonymous session is null", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		out := httptest.NewRecorder()
		router.ServeHTTP(out, req)
		if out.Code != http.StatusOK {
			t.Fatalf("status = %d", out.Code)
		}
		data := decodeEnvelope(t, out)["data"].(map[string]any)
		if data["session"] != nil {
			t.Errorf("session = %v, want null", data["session"])
		}
	})
}

func TestRequireAuthGatesLinkRoutes(t *testing.T) {
	router, _ := newAuthedRouter(t, &memUsers{})

	rec := postJSON(t, router, "/api/links", map[string]string{"url": "https://example.com"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without a session", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	if out.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a bad token", out.Code)
	}
}

func postJSONAuthed(t *testing.T, handler http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
