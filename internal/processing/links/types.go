package links

// Provider is one of the fixed set of shortening-service domains. It is a
// display/template value only; no live integration exists behind it.
type Provider string

const (
	ProviderShortGy   Provider = "short.gy"
	ProviderBitly     Provider = "bit.ly"
	ProviderTinyURL   Provider = "tinyurl.com"
	ProviderIsGd      Provider = "is.gd"
	ProviderTCo       Provider = "t.co"
	ProviderRebrandly Provider = "rebrandly.com"
	ProviderBuffly    Provider = "buff.ly"
	ProviderT2M       Provider = "t2mio.com"
)

// DefaultProvider is pre-selected when the user has not picked one.
const DefaultProvider = ProviderShortGy

var providers = []Provider{
	ProviderShortGy,
	ProviderBitly,
	ProviderTinyURL,
	ProviderIsGd,
	ProviderTCo,
	ProviderRebrandly,
	ProviderBuffly,
	ProviderT2M,
}

// Providers returns the closed set of supported providers in display order.
func Providers() []Provider {
	out := make([]Provider, len(providers))
	copy(out, providers)
	return out
}

// Valid reports whether p belongs to the supported set.
func (p Provider) Valid() bool {
	for _, known := range providers {
		if p == known {
			return true
		}
	}
	return false
}

func (p Provider) String() string { return string(p) }

// ShortenedLink is the persisted unit of history. A record is created exactly
// once and never updated in place; it is destroyed only by explicit deletion.
type ShortenedLink struct {
	ID          string   `json:"id" bson:"id"`
	OriginalURL string   `json:"originalUrl" bson:"originalUrl"`
	ShortURL    string   `json:"shortUrl" bson:"shortUrl"`
	Alias       string   `json:"alias" bson:"alias"`
	Summary     string   `json:"summary" bson:"summary"`
	Provider    Provider `json:"provider" bson:"provider"`
	CreatedAt   int64    `json:"createdAt" bson:"createdAt"` // epoch milliseconds

	// ExpiresAt is a forward-compatible optional. Nothing populates it today;
	// consumers must treat nil as "never expires".
	ExpiresAt *int64 `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

// SmartSuggestion is an ephemeral alias candidate produced by an analysis
// call. It is never persisted: it either gets copied into the pending alias
// field or discarded when the source URL changes.
type SmartSuggestion struct {
	Alias       string `json:"alias"`
	Description string `json:"description"`
}

// Analysis is the structured result of one suggestion request.
type Analysis struct {
	Suggestions []SmartSuggestion `json:"suggestions"`
	Summary     string            `json:"summary"`
}

// CreateInput carries the user-confirmed fields of the create flow.
type CreateInput struct {
	OriginalURL string
	Provider    Provider
	Alias       string // optional; empty means "generate one"
	Summary     string // optional; produced by analysis or left blank
}
