package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/server/metrics"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Fetcher returns normalized metadata for a video id. An unknown video is
// reported as common.ErrorNotFound. Implementations never persist anything
// and are safe to call again after a failure.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error)
}

// StatusError is a non-2xx answer from the provider. It unwraps to
// common.ErrorNotFound: whatever the reason, no metadata is available.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("youtube: status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return common.ErrorNotFound
}

// providerFault reports whether the status points at the provider (or our
// quota) rather than at the requested video.
func (e *StatusError) providerFault() bool {
	return e.Code >= http.StatusInternalServerError ||
		e.Code == http.StatusTooManyRequests ||
		e.Code == http.StatusForbidden
}

// Client calls videos.list through the generated Data API bindings.
type Client struct {
	videos  *yt.VideosService
	timeout time.Duration
}

// NewClient builds a Client authenticating with an API key. endpoint
// overrides the API base URL when not empty.
func NewClient(ctx context.Context, apiKey, endpoint string, timeout time.Duration) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	return &Client{videos: yt.NewVideosService(svc), timeout: timeout}, nil
}

func (c *Client) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	metrics.MetadataFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Code: apiErr.Code}
		}
		return nil, fmt.Errorf("youtube videos.list: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, common.ErrorNotFound
	}

	return toMetadata(videoID, resp.Items[0]), nil
}

// toMetadata maps a video resource. The API omits empty strings, so an empty
// value and an absent one both become nil.
func toMetadata(videoID string, v *yt.Video) *models.VideoMetadata {
	meta := &models.VideoMetadata{ExternalID: videoID}

	if s := v.Snippet; s != nil {
		meta.Title = s.Title
		meta.Description = optional(s.Description)
		meta.ChannelTitle = optional(s.ChannelTitle)
		if s.Thumbnails != nil && s.Thumbnails.Default != nil {
			meta.ThumbnailURL = optional(s.Thumbnails.Default.Url)
		}
	}
	if cd := v.ContentDetails; cd != nil {
		meta.Duration = optional(cd.Duration)
	}

	return meta
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
