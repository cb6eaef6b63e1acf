package links

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedAnalyzer(a Analysis) *mockAnalyzer {
	return &mockAnalyzer{
		analyzeFn: func(context.Context, string) (Analysis, error) { return a, nil },
	}
}

func TestComposer_SetURLClearsSuggestions(t *testing.T) {
	svc := newTestService(echoRepo(), fixedAnalyzer(Analysis{
		Suggestions: []SmartSuggestion{{Alias: "foo-link", Description: "d"}},
		Summary:     "about foo",
	}))
	c := NewComposer(svc)

	c.SetURL("https://example.com")
	_, err := c.Analyze(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, c.Snapshot().Suggestions)

	c.SetURL("https://example.org")

	state := c.Snapshot()
	assert.Empty(t, state.Suggestions, "suggestions must be cleared the moment the URL changes")
	assert.Empty(t, state.Summary)
}

func TestComposer_StaleAnalysisDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	analyzer := &mockAnalyzer{
		analyzeFn: func(_ context.Context, url string) (Analysis, error) {
			close(started)
			<-release
			return Analysis{
				Suggestions: []SmartSuggestion{{Alias: "stale", Description: url}},
				Summary:     "summary for " + url,
			}, nil
		},
	}
	c := NewComposer(newTestService(echoRepo(), analyzer))
	c.SetURL("https://old.example")

	var wg sync.WaitGroup
	wg.Add(1)
	var analyzeErr error
	go func() {
		defer wg.Done()
		_, analyzeErr = c.Analyze(context.Background())
	}()

	// Let the request start, then invalidate it by editing the URL.
	<-started
	c.SetURL("https://new.example")
	close(release)
	wg.Wait()

	require.ErrorIs(t, analyzeErr, ErrStaleAnalysis)
	state := c.Snapshot()
	assert.Empty(t, state.Suggestions, "stale result must not populate suggestions")
	assert.Empty(t, state.Summary)
	assert.Empty(t, state.Alias, "stale result must not pre-fill the alias")
}

func TestComposer_FirstSuggestionPrefillsAlias(t *testing.T) {
	svc := newTestService(echoRepo(), fixedAnalyzer(Analysis{
		Suggestions: []SmartSuggestion{
			{Alias: "foo-link", Description: "first"},
			{Alias: "go-now", Description: "second"},
		},
		Summary: "s",
	}))

	t.Run("prefills when untouched", func(t *testing.T) {
		c := NewComposer(svc)
		c.SetURL("https://example.com")
		_, err := c.Analyze(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "foo-link", c.Snapshot().Alias)
	})

	t.Run("keeps a manually typed alias", func(t *testing.T) {
		c := NewComposer(svc)
		c.SetURL("https://example.com")
		c.SetAlias("mine")
		_, err := c.Analyze(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "mine", c.Snapshot().Alias)
	})
}

func TestComposer_AnalyzeRequiresValidURL(t *testing.T) {
	c := NewComposer(newTestService(echoRepo(), fixedAnalyzer(Analysis{})))
	c.SetURL("example.com")

	_, err := c.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestComposer_ShortenScenario(t *testing.T) {
	// Full create flow: valid URL, analysis, picked suggestion, provider,
	// submit. The record must come out as https://bit.ly/foo-link.
	svc := newTestService(echoRepo(), fixedAnalyzer(Analysis{
		Suggestions: []SmartSuggestion{{Alias: "foo-link", Description: "d"}},
		Summary:     "the foo page",
	}))
	c := NewComposer(svc)

	v := c.SetURL("http://foo")
	require.True(t, v.IsValid)

	result, err := c.Analyze(context.Background())
	require.NoError(t, err)
	c.PickSuggestion(result.Suggestions[0])
	require.NoError(t, c.SetProvider(ProviderBitly))

	link, err := c.Shorten(context.Background(), DeviceIdentity)
	require.NoError(t, err)
	assert.Equal(t, "https://bit.ly/foo-link", link.ShortURL)
	assert.Equal(t, "the foo page", link.Summary)

	state := c.Snapshot()
	assert.Empty(t, state.URL, "form must reset after a confirmed create")
	assert.Empty(t, state.Alias)
	assert.Empty(t, state.Suggestions)
	assert.Equal(t, StatusIdle, state.Validation.Status)
}

func TestComposer_DuplicateTriggersRejected(t *testing.T) {
	t.Run("analyze", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		analyzer := &mockAnalyzer{
			analyzeFn: func(context.Context, string) (Analysis, error) {
				once.Do(func() { close(started) })
				<-release
				return Analysis{Suggestions: []SmartSuggestion{{Alias: "slow", Description: "d"}}}, nil
			},
		}
		c := NewComposer(newTestService(echoRepo(), analyzer))
		c.SetURL("https://example.com")

		done := make(chan error, 1)
		go func() {
			_, err := c.Analyze(context.Background())
			done <- err
		}()

		<-started
		assert.True(t, c.Snapshot().Analyzing)
		_, err := c.Analyze(context.Background())
		assert.ErrorIs(t, err, ErrBusy)

		close(release)
		require.NoError(t, <-done)
		assert.False(t, c.Snapshot().Analyzing)

		// The flag is cleared, so a fresh trigger goes through again.
		_, err = c.Analyze(context.Background())
		assert.NoError(t, err)
	})

	t.Run("shorten", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		repo := &mockRepo{
			insertFn: func(_ context.Context, _ Identity, link ShortenedLink) (ShortenedLink, error) {
				close(started)
				<-release
				return link, nil
			},
		}
		c := NewComposer(newTestService(repo, nil))
		c.SetURL("https://example.com")

		done := make(chan error, 1)
		go func() {
			_, err := c.Shorten(context.Background(), DeviceIdentity)
			done <- err
		}()

		<-started
		assert.True(t, c.Snapshot().Shortening)
		_, err := c.Shorten(context.Background(), DeviceIdentity)
		assert.ErrorIs(t, err, ErrBusy)

		close(release)
		require.NoError(t, <-done)
		assert.False(t, c.Snapshot().Shortening)
	})
}

func TestComposer_ShortenKeepsFormOnFailure(t *testing.T) {
	repo := &mockRepo{
		insertFn: func(context.Context, Identity, ShortenedLink) (ShortenedLink, error) {
			return ShortenedLink{}, assert.AnError
		},
	}
	c := NewComposer(newTestService(repo, nil))
	c.SetURL("https://example.com")
	c.SetAlias("keepme")

	_, err := c.Shorten(context.Background(), DeviceIdentity)
	require.Error(t, err)

	state := c.Snapshot()
	assert.Equal(t, "https://example.com", state.URL, "failed create must leave the form intact")
	assert.Equal(t, "keepme", state.Alias)
}
