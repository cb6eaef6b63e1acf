package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shortenhub/shorten/internal/processing/links"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-key", "test-model", 5*time.Second)
}

func TestAnalyze(t *testing.T) {
	t.Run("parses a clean JSON reply", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK,
			`{"summary":"A cooking blog.","suggestions":[`+
				`{"alias":"recipes","description":"Matches the content"},`+
				`{"alias":"cook-now","description":"Call to action"},`+
				`{"alias":"tasty","description":"Short and memorable"}]}`)
		defer srv.Close()

		analysis, err := newTestClient(srv.URL).Analyze(context.Background(), "https://example.com/blog")
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if analysis.Summary != "A cooking blog." {
			t.Errorf("summary = %q", analysis.Summary)
		}
		if len(analysis.Suggestions) != 3 || analysis.Suggestions[1].Alias != "cook-now" {
			t.Errorf("suggestions = %+v", analysis.Suggestions)
		}
		for i, sg := range analysis.Suggestions {
			if sg.Description == "" {
				t.Errorf("suggestion[%d] %q has no description", i, sg.Alias)
			}
		}
	})

	t.Run("unwraps markdown fences around the JSON", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK,
			"```json\n{\"summary\":\"A page.\",\"suggestions\":[{\"alias\":\"page\",\"description\":\"Plain\"}]}\n```")
		defer srv.Close()

		analysis, err := newTestClient(srv.URL).Analyze(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(analysis.Suggestions) != 1 || analysis.Suggestions[0].Alias != "page" {
			t.Errorf("suggestions = %+v", analysis.Suggestions)
		}
	})

	t.Run("prose without JSON falls back to the fixed set", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "Sorry, I cannot help with that.")
		defer srv.Close()

		analysis, err := newTestClient(srv.URL).Analyze(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(analysis.Suggestions) != 3 || analysis.Suggestions[0].Alias != "link1" {
			t.Errorf("suggestions = %+v, want the fallback set", analysis.Suggestions)
		}
		if analysis.Summary == "" || analysis.Suggestions[0].Description == "" {
			t.Errorf("fallback analysis = %+v, want summary and descriptions", analysis)
		}
	})

	t.Run("non-200 status is unavailable", func(t *testing.T) {
		srv := chatServer(t, http.StatusTooManyRequests, "")
		defer srv.Close()

		_, err := newTestClient(srv.URL).Analyze(context.Background(), "https://example.com")
		if !errors.Is(err, links.ErrAnalysisUnavailable) {
			t.Fatalf("err = %v, want ErrAnalysisUnavailable", err)
		}
	})

	t.Run("unreachable endpoint is unavailable", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "{}")
		srv.Close()

		_, err := newTestClient(srv.URL).Analyze(context.Background(), "https://example.com")
		if !errors.Is(err, links.ErrAnalysisUnavailable) {
			t.Fatalf("err = %v, want ErrAnalysisUnavailable", err)
		}
	})
}

func TestFallback(t *testing.T) {
	got := Fallback()
	want := []links.SmartSuggestion{
		{Alias: "link1", Description: "Standard alias"},
		{Alias: "cool-url", Description: "Catchy alias"},
		{Alias: "go-now", Description: "Action alias"},
	}
	if len(got.Suggestions) != len(want) {
		t.Fatalf("suggestions = %+v", got.Suggestions)
	}
	for i, w := range want {
		if got.Suggestions[i] != w {
			t.Errorf("suggestion[%d] = %+v, want %+v", i, got.Suggestions[i], w)
		}
	}
	if got.Summary != "A web link shared via Short.gy" {
		t.Errorf("summary = %q", got.Summary)
	}
}
