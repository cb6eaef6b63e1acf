package links

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service owns the short-link record lifecycle: create, list, delete, plus
// the consumer side of the suggestion collaborator. Persistence is delegated
// to exactly one HistoryRepository wired at composition time.
type Service struct {
	repo     HistoryRepository
	analyzer Analyzer

	newID func() string
	now   func() time.Time
}

func NewService(repo HistoryRepository, analyzer Analyzer) *Service {
	return &Service{
		repo:     repo,
		analyzer: analyzer,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// Create validates the input, fills the derived fields and persists the
// record. The returned record is the backend's canonical shape, which may
// carry a server-assigned id and timestamp.
func (s *Service) Create(ctx context.Context, identity Identity, in CreateInput) (ShortenedLink, error) {
	if v := ValidateURL(in.OriginalURL); !v.IsValid {
		return ShortenedLink{}, ErrInvalidURL
	}

	provider := in.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	if !provider.Valid() {
		return ShortenedLink{}, ErrInvalidProvider
	}

	alias := SanitizeAlias(in.Alias)
	if alias == "" {
		generated, err := RandomAlias()
		if err != nil {
			return ShortenedLink{}, err
		}
		alias = generated
	}

	link := ShortenedLink{
		ID:          s.newID(),
		OriginalURL: strings.TrimSpace(in.OriginalURL),
		ShortURL:    ShortURL(provider, alias),
		Alias:       alias,
		Summary:     in.Summary,
		Provider:    provider,
		CreatedAt:   s.now().UnixMilli(),
	}

	return s.repo.Insert(ctx, identity, link)
}

// List returns the identity's history, newest first.
func (s *Service) List(ctx context.Context, identity Identity) ([]ShortenedLink, error) {
	return s.repo.List(ctx, identity)
}

// Delete removes one record. ErrNotFound is recoverable and leaves the
// stored history untouched.
func (s *Service) Delete(ctx context.Context, identity Identity, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, identity, id)
}

// Analyze asks the suggestion collaborator for alias candidates and a
// summary. Any collaborator failure is folded into ErrAnalysisUnavailable;
// callers surface a non-blocking message and the create flow remains usable.
func (s *Service) Analyze(ctx context.Context, rawURL string) (Analysis, error) {
	if v := ValidateURL(rawURL); !v.IsValid {
		return Analysis{}, ErrInvalidURL
	}
	if s.analyzer == nil {
		return Analysis{}, ErrAnalysisUnavailable
	}

	result, err := s.analyzer.Analyze(ctx, rawURL)
	if err != nil {
		return Analysis{}, ErrAnalysisUnavailable
	}

	cleaned := make([]SmartSuggestion, 0, len(result.Suggestions))
	for _, sg := range result.Suggestions {
		alias := clipSuggestedAlias(sg.Alias)
		if alias == "" {
			continue
		}
		cleaned = append(cleaned, SmartSuggestion{Alias: alias, Description: sg.Description})
	}
	if len(cleaned) == 0 {
		return Analysis{}, ErrAnalysisUnavailable
	}

	return Analysis{Suggestions: cleaned, Summary: result.Summary}, nil
}
