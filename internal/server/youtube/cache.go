package youtube

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/server/metrics"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingFetcher remembers successful answers for ttl, so users saving the
// same video shortly after one another share one provider call. Failures are
// not cached.
type CachingFetcher struct {
	next Fetcher
	lru  *expirable.LRU[string, *models.VideoMetadata]
}

func NewCachingFetcher(next Fetcher, size int, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next: next,
		lru:  expirable.NewLRU[string, *models.VideoMetadata](size, nil, ttl),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if meta, ok := c.lru.Get(videoID); ok {
		metrics.MetadataFetches.WithLabelValues(metrics.OutcomeCacheHit).Inc()
		return meta, nil
	}

	meta, err := c.next.Fetch(ctx, videoID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			metrics.MetadataFetches.WithLabelValues(metrics.OutcomeNotFound).Inc()
		case errors.Is(err, ErrCircuitOpen):
			metrics.MetadataFetches.WithLabelValues(metrics.OutcomeRejected).Inc()
		default:
			metrics.MetadataFetches.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, err
	}

	metrics.MetadataFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	c.lru.Add(videoID, meta)
	return meta, nil
}
