package links

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("link not found")
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidProvider = errors.New("invalid provider")
	ErrBusy            = errors.New("operation already in flight")
	ErrStaleAnalysis   = errors.New("analysis result discarded: url changed")

	// ErrAnalysisUnavailable wraps any analyzer failure. It is recoverable:
	// the create flow stays fully usable without suggestions.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
)

// Identity scopes a history. For the local backend it is the implicit device
// profile and the value is ignored; for the remote backend it is the
// authenticated account's user id.
type Identity string

// DeviceIdentity is the implicit single-device profile of the local backend.
const DeviceIdentity Identity = "device"

// HistoryRepository is the dual-backend store of ShortenedLink records.
// Both implementations return lists ordered newest-first by CreatedAt.
type HistoryRepository interface {
	// List returns the full history for the identity.
	List(ctx context.Context, identity Identity) ([]ShortenedLink, error)
	// Insert persists a record and returns its canonical persisted shape
	// (the backend may assign the id and timestamp).
	Insert(ctx context.Context, identity Identity, link ShortenedLink) (ShortenedLink, error)
	// Delete removes a record by id. Missing ids yield ErrNotFound.
	Delete(ctx context.Context, identity Identity, id string) error
}

// Analyzer produces alias suggestions and a summary for a URL.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (Analysis, error)
}
