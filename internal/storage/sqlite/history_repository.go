package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"github.com/shortenhub/shorten/internal/processing/links"
	"go.uber.org/zap"
)

// Fixed keys of the device-local key/value store.
const (
	historyKey = "shorten_history"
	logoKey    = "brand_logo"
)

// HistoryRepository is the device-local backend: the whole history array is
// serialized as one JSON value under a fixed key and rewritten synchronously
// on every mutation. Identity is implicit (single device profile) and
// ignored.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) (*HistoryRepository, error) {
	if db == nil {
		return nil, errors.New("sqlite handle is nil")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return nil, err
	}
	return &HistoryRepository{db: db}, nil
}

// List loads the stored history. Corrupt or unparsable stored JSON is
// empty-state recovery: logged, never surfaced as an error.
func (r *HistoryRepository) List(ctx context.Context, _ links.Identity) ([]links.ShortenedLink, error) {
	raw, err := r.get(ctx, historyKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []links.ShortenedLink{}, nil
	}

	var items []links.ShortenedLink
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("stored history is corrupt, starting empty", zap.Error(err))
		return []links.ShortenedLink{}, nil
	}
	return items, nil
}

// Insert prepends the record and writes the entire collection back. The
// record is returned unchanged: the local backend assigns nothing.
func (r *HistoryRepository) Insert(ctx context.Context, identity links.Identity, link links.ShortenedLink) (links.ShortenedLink, error) {
	items, err := r.List(ctx, identity)
	if err != nil {
		return links.ShortenedLink{}, err
	}

	items = append([]links.ShortenedLink{link}, items...)
	if err := r.writeHistory(ctx, items); err != nil {
		return links.ShortenedLink{}, err
	}
	return link, nil
}

// Delete filters the collection and writes it back. A missing id is a no-op
// that leaves the stored list unchanged.
func (r *HistoryRepository) Delete(ctx context.Context, identity links.Identity, id string) error {
	items, err := r.List(ctx, identity)
	if err != nil {
		return err
	}

	filtered := items[:0]
	for _, item := range items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == len(items) {
		return nil
	}
	return r.writeHistory(ctx, filtered)
}

// Logo returns the optional branding image (a data URI), or "" when unset.
func (r *HistoryRepository) Logo(ctx context.Context) (string, error) {
	return r.get(ctx, logoKey)
}

// SetLogo stores the branding image. An empty value clears it.
func (r *HistoryRepository) SetLogo(ctx context.Context, dataURI string) error {
	if dataURI == "" {
		_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, logoKey)
		return err
	}
	return r.set(ctx, logoKey, dataURI)
}

func (r *HistoryRepository) writeHistory(ctx context.Context, items []links.ShortenedLink) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.set(ctx, historyKey, string(raw))
}

func (r *HistoryRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *HistoryRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
