package models

import "time"

// Bookmark is a saved video reference owned by one user. Optional metadata
// fields are nil when the provider omitted them.
type Bookmark struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	ChannelTitle *string   `json:"channel_title"`
	Duration     *string   `json:"duration"`
	SourceURL    string    `json:"source_url"`
	OwnerID      int64     `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
	ThumbnailKey *string   `json:"-"`
}

// VideoMetadata is the provider's answer for one video, normalized.
type VideoMetadata struct {
	ExternalID   string
	Title        string
	Description  *string
	ThumbnailURL *string
	ChannelTitle *string
	Duration     *string
}

// NewBookmark builds an unsaved bookmark from fetched metadata.
func NewBookmark(meta *VideoMetadata, sourceURL string, ownerID int64) *Bookmark {
	return &Bookmark{
		ExternalID:   meta.ExternalID,
		Title:        meta.Title,
		Description:  meta.Description,
		ThumbnailURL: meta.ThumbnailURL,
		ChannelTitle: meta.ChannelTitle,
		Duration:     meta.Duration,
		SourceURL:    sourceURL,
		OwnerID:      ownerID,
	}
}
