package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shortenhub/shorten/internal/config"
	"github.com/shortenhub/shorten/internal/processing/links"
)

type memBranding struct {
	logo string
}

func (m *memBranding) Logo(context.Context) (string, error) { return m.logo, nil }

func (m *memBranding) SetLogo(_ context.Context, dataURI string) error {
	m.logo = dataURI
	return nil
}

func newBrandedRouter(store BrandingStore) http.Handler {
	cfg := &config.Config{}
	cfg.App.Name = "shorten-test"
	cfg.Store.Backend = config.StoreLocal

	return NewRouterWithOptions(cfg, RouterDeps{
		Links:    links.NewService(newMemRepo(), nil),
		Branding: store,
	}, RouterOptions{})
}

func putJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestBrandingLogo(t *testing.T) {
	const dataURI = "data:image/png;base64,iVBORw0KGgo="

	t.Run("round trip", func(t *testing.T) {
		router := newBrandedRouter(&memBranding{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/branding/logo", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if got := decodeEnvelope(t, rec)["data"].(map[string]any)["logo"]; got != "" {
			t.Errorf("logo = %v, want empty before any upload", got)
		}

		rec = putJSON(t, router, "/api/branding/logo", `{"logo":"`+dataURI+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/branding/logo", nil))
		if got := decodeEnvelope(t, rec)["data"].(map[string]any)["logo"]; got != dataURI {
			t.Errorf("logo = %v, want %q", got, dataURI)
		}
	})

	t.Run("empty value clears", func(t *testing.T) {
		store := &memBranding{logo: dataURI}
		router := newBrandedRouter(store)

		rec := putJSON(t, router, "/api/branding/logo", `{"logo":""}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if store.logo != "" {
			t.Errorf("stored logo = %q, want cleared", store.logo)
		}
	})

	t.Run("rejects a non data URI", func(t *testing.T) {
		router := newBrandedRouter(&memBranding{})

		rec := putJSON(t, router, "/api/branding/logo", `{"logo":"https://example.com/logo.png"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("routes absent without a store", func(t *testing.T) {
		router := newTestRouter(newMemRepo(), nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/branding/logo", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 when branding is not wired", rec.Code)
		}
	})
}
