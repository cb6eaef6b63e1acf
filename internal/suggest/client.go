// Package suggest asks a chat-completions model for short alias ideas and a
// one-sentence summary of a URL. It is strictly best-effort: every failure
// mode collapses into links.ErrAnalysisUnavailable and the caller keeps
// working without suggestions.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"github.com/shortenhub/shorten/internal/processing/links"
	"github.com/shortenhub/shorten/pkg/httpclient"
	"go.uber.org/zap"
)

const prompt = `You suggest names for shortened URLs. Given the URL below, respond with JSON only, no prose, in this exact shape:
{"summary":"<one sentence describing the page>","suggestions":[{"alias":"<a>","description":"<why this alias fits>"},{"alias":"<b>","description":"..."},{"alias":"<c>","description":"..."}]}
Each alias must be at most 10 characters, lowercase letters, digits and hyphens only. Each description is one short line.
URL: %s`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type analysisPayload struct {
	Summary     string `json:"summary"`
	Suggestions []struct {
		Alias       string `json:"alias"`
		Description string `json:"description"`
	} `json:"suggestions"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint through the
// retrying circuit-breaker HTTP client.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		http:    httpclient.NewClient(timeout, 3, 30*time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Analyze requests suggestions for the URL. Any transport, status or parse
// failure comes back as links.ErrAnalysisUnavailable; the caller is expected
// to fall back or continue without suggestions.
func (c *Client) Analyze(ctx context.Context, rawURL string) (links.Analysis, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(prompt, rawURL)},
		},
		MaxTokens:   256,
		Temperature: 0.7,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/chat/completions", body, headers)
	if err != nil {
		logger.Warn("suggestion request failed", zap.Error(err))
		return links.Analysis{}, links.ErrAnalysisUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return links.Analysis{}, links.ErrAnalysisUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("suggestion endpoint returned non-200",
			zap.Int("status", resp.StatusCode))
		return links.Analysis{}, links.ErrAnalysisUnavailable
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil || len(chat.Choices) == 0 {
		return links.Analysis{}, links.ErrAnalysisUnavailable
	}

	analysis, err := parseAnalysis(chat.Choices[0].Message.Content)
	if err != nil {
		// The model replied but not in the agreed shape. Offer the fixed
		// fallback set instead of failing the whole analysis.
		logger.Warn("suggestion payload unparseable, using fallback", zap.Error(err))
		return Fallback(), nil
	}
	return analysis, nil
}

// parseAnalysis extracts the JSON object from the model output. Models often
// wrap JSON in markdown fences, so scan for the outermost braces instead of
// trusting the raw content.
func parseAnalysis(content string) (links.Analysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return links.Analysis{}, fmt.Errorf("no JSON object in model output")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return links.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	analysis := links.Analysis{Summary: strings.TrimSpace(payload.Summary)}
	for _, sg := range payload.Suggestions {
		analysis.Suggestions = append(analysis.Suggestions, links.SmartSuggestion{
			Alias:       sg.Alias,
			Description: strings.TrimSpace(sg.Description),
		})
	}
	if len(analysis.Suggestions) == 0 {
		return links.Analysis{}, fmt.Errorf("no suggestions in model output")
	}
	return analysis, nil
}

// Fallback is the fixed suggestion set used when analysis is unavailable but
// the caller still wants something to offer.
func Fallback() links.Analysis {
	return links.Analysis{
		Suggestions: []links.SmartSuggestion{
			{Alias: "link1", Description: "Standard alias"},
			{Alias: "cool-url", Description: "Catchy alias"},
			{Alias: "go-now", Description: "Action alias"},
		},
		Summary: "A web link shared via Short.gy",
	}
}
