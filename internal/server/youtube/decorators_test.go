package youtube

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher returns a fixed answer and counts calls.
type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	meta  *models.VideoMetadata
}

func (s *stubFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	m := *s.meta
	m.ExternalID = videoID
	return &m, nil
}

func (s *stubFetcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCachingFetcher_SharesAnswers(t *testing.T) {
	next := &stubFetcher{meta: &models.VideoMetadata{Title: "t"}}
	c := NewCachingFetcher(next, 8, time.Minute)

	a, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	b, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.Calls())
	assert.Equal(t, a, b)

	_, err = c.Fetch(context.Background(), "abcdefghijk")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Calls())
}

func TestCachingFetcher_DoesNotCacheFailures(t *testing.T) {
	next := &stubFetcher{err: common.ErrorNotFound}
	c := NewCachingFetcher(next, 8, time.Minute)

	for range 2 {
		_, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
	assert.Equal(t, 2, next.Calls())
}

func TestCachingFetcher_Expires(t *testing.T) {
	next := &stubFetcher{meta: &models.VideoMetadata{}}
	c := NewCachingFetcher(next, 8, 20*time.Millisecond)

	_, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := c.Fetch(context.Background(), "dQw4w9WgXcQ")
		return err == nil && next.Calls() == 2
	}, time.Second, 10*time.Millisecond)
}

func testBreaker(next Fetcher) *BreakerFetcher {
	s := DefaultBreakerSettings()
	s.Name = "test"
	s.FailureThreshold = 2
	s.Timeout = time.Hour
	return NewBreakerFetcher(next, s, logging.Nop{})
}

func TestBreakerFetcher_OpensOnProviderFailures(t *testing.T) {
	next := &stubFetcher{err: errors.New("connection refused")}
	b := testBreaker(next)

	for range 2 {
		_, err := b.Fetch(context.Background(), "dQw4w9WgXcQ")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, next.Calls(), "open circuit must not call the provider")
}

func TestBreakerFetcher_ProviderStatusTrips(t *testing.T) {
	next := &stubFetcher{err: &StatusError{Code: 503}}
	b := testBreaker(next)

	for range 2 {
		_, _ = b.Fetch(context.Background(), "dQw4w9WgXcQ")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
}

func TestBreakerFetcher_MissingVideosDoNotTrip(t *testing.T) {
	for name, err := range map[string]error{
		"empty items": common.ErrorNotFound,
		"status 404":  &StatusError{Code: 404},
	} {
		t.Run(name, func(t *testing.T) {
			next := &stubFetcher{err: err}
			b := testBreaker(next)

			for range 5 {
				_, got := b.Fetch(context.Background(), "dQw4w9WgXcQ")
				assert.ErrorIs(t, got, common.ErrorNotFound)
			}
			assert.Equal(t, gobreaker.StateClosed, b.State())
			assert.Equal(t, 5, next.Calls())
		})
	}
}

func TestBreakerFetcher_PassesThrough(t *testing.T) {
	next := &stubFetcher{meta: &models.VideoMetadata{Title: "t"}}
	b := testBreaker(next)

	meta, err := b.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "t", meta.Title)
	assert.Equal(t, "dQw4w9WgXcQ", meta.ExternalID)
}

// blockingFetcher waits for the caller's context like a slow provider would.
type blockingFetcher struct {
	stubFetcher
}

func (f *blockingFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	<-ctx.Done()
	return nil, fmt.Errorf("youtube videos.list: %w", ctx.Err())
}

func TestBreakerFetcher_CallerGoneDoesNotTrip(t *testing.T) {
	next := &blockingFetcher{}
	b := testBreaker(next)

	for range 5 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := b.Fetch(ctx, "dQw4w9WgXcQ")
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}
	for range 3 {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := b.Fetch(ctx, "dQw4w9WgXcQ")
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 8, next.Calls())
}

func TestBreakerFetcher_ProviderTimeoutTrips(t *testing.T) {
	// The client's own timeout fires while the caller is still waiting.
	next := &stubFetcher{err: fmt.Errorf("youtube videos.list: %w", context.DeadlineExceeded)}
	b := testBreaker(next)

	for range 2 {
		_, _ = b.Fetch(context.Background(), "dQw4w9WgXcQ")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
}
