package links

import (
	"context"
	"sync"
)

// Composer owns the pending create-flow form: URL, provider, alias,
// suggestions and summary. All mutations happen on one logical flow; the
// mutex only protects against a completed external call racing a direct
// user action.
//
// Staleness rule: every SetURL bumps a request token. An analysis response
// is applied only if the token captured at call time is still current, so a
// response for an old URL can never populate suggestions for a new one.
type Composer struct {
	svc *Service

	mu          sync.Mutex
	url         string
	validation  Validation
	provider    Provider
	alias       string
	aliasTyped  bool
	suggestions []SmartSuggestion
	summary     string

	token      uint64
	analyzing  bool
	shortening bool
}

func NewComposer(svc *Service) *Composer {
	return &Composer{
		svc:        svc,
		provider:   DefaultProvider,
		validation: ValidateURL(""),
	}
}

// SetURL re-validates synchronously and clears any prior suggestions and
// summary: stale suggestions must never linger against a new URL.
func (c *Composer) SetURL(raw string) Validation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if raw != c.url {
		c.token++
		c.suggestions = nil
		c.summary = ""
	}
	c.url = raw
	c.validation = ValidateURL(raw)
	return c.validation
}

// SetAlias sanitizes on every keystroke and remembers that the user typed
// one, so later suggestions stop pre-filling the field.
func (c *Composer) SetAlias(raw string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alias = SanitizeAlias(raw)
	c.aliasTyped = c.alias != ""
	return c.alias
}

func (c *Composer) SetProvider(p Provider) error {
	if !p.Valid() {
		return ErrInvalidProvider
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
	return nil
}

// PickSuggestion copies a suggestion's alias into the pending alias field.
func (c *Composer) PickSuggestion(s SmartSuggestion) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alias = SanitizeAlias(s.Alias)
	c.aliasTyped = c.alias != ""
	return c.alias
}

// Analyze triggers one suggestion request for the current URL. The trigger is
// single-flight: a second call while one is pending returns ErrBusy. The
// response is discarded if the URL changed while the request was in flight.
func (c *Composer) Analyze(ctx context.Context) (Analysis, error) {
	c.mu.Lock()
	if c.analyzing {
		c.mu.Unlock()
		return Analysis{}, ErrBusy
	}
	if !c.validation.IsValid {
		c.mu.Unlock()
		return Analysis{}, ErrInvalidURL
	}
	c.analyzing = true
	url := c.url
	token := c.token
	c.mu.Unlock()

	result, err := c.svc.Analyze(ctx, url)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyzing = false

	if err != nil {
		return Analysis{}, err
	}
	if token != c.token {
		// URL changed mid-flight; the result belongs to the old URL.
		return Analysis{}, ErrStaleAnalysis
	}

	c.suggestions = result.Suggestions
	c.summary = result.Summary
	if !c.aliasTyped && len(result.Suggestions) > 0 {
		c.alias = result.Suggestions[0].Alias
	}
	return result, nil
}

// Shorten creates the record through the store and resets the form. Create is
// confirm-first: the form is only cleared once the backend has accepted the
// record.
func (c *Composer) Shorten(ctx context.Context, identity Identity) (ShortenedLink, error) {
	c.mu.Lock()
	if c.shortening {
		c.mu.Unlock()
		return ShortenedLink{}, ErrBusy
	}
	if !c.validation.IsValid {
		c.mu.Unlock()
		return ShortenedLink{}, ErrInvalidURL
	}
	c.shortening = true
	in := CreateInput{
		OriginalURL: c.url,
		Provider:    c.provider,
		Alias:       c.alias,
		Summary:     c.summary,
	}
	c.mu.Unlock()

	link, err := c.svc.Create(ctx, identity, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.shortening = false
	if err != nil {
		return ShortenedLink{}, err
	}

	c.url = ""
	c.validation = ValidateURL("")
	c.alias = ""
	c.aliasTyped = false
	c.suggestions = nil
	c.summary = ""
	c.token++
	return link, nil
}

// Snapshot returns the current form state for rendering.
func (c *Composer) Snapshot() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	suggestions := make([]SmartSuggestion, len(c.suggestions))
	copy(suggestions, c.suggestions)
	return ComposerState{
		URL:         c.url,
		Validation:  c.validation,
		Provider:    c.provider,
		Alias:       c.alias,
		Suggestions: suggestions,
		Summary:     c.summary,
		Analyzing:   c.analyzing,
		Shortening:  c.shortening,
	}
}

// ComposerState is a point-in-time copy of the pending form.
type ComposerState struct {
	URL         string
	Validation  Validation
	Provider    Provider
	Alias       string
	Suggestions []SmartSuggestion
	Summary     string
	Analyzing   bool
	Shortening  bool
}
