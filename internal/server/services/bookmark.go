package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server/metrics"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidmark/internal/server/thumbnails"
	"github.com/dmitrijs2005/vidmark/internal/server/youtube"
)

// BookmarkService saves video links per user. Metadata is fetched once per
// (owner, video) and stored with the bookmark.
type BookmarkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	fetcher     youtube.Fetcher
	archiver    thumbnails.Archiver
	log         logging.Logger
}

// NewBookmarkService wires the service. archiver may be nil, which disables
// thumbnail archiving.
func NewBookmarkService(db *sql.DB, m repomanager.RepositoryManager, fetcher youtube.Fetcher,
	archiver thumbnails.Archiver, log logging.Logger) *BookmarkService {
	return &BookmarkService{
		db:          db,
		repomanager: m,
		fetcher:     fetcher,
		archiver:    archiver,
		log:         log.With("module", "bookmarks"),
	}
}

// AddBookmark saves rawURL for ownerID and reports whether a new bookmark was
// created. A video the owner already saved is returned as is, without calling
// the provider.
//
// The steps run as separate statements rather than one transaction: a
// concurrent insert of the same video is detected by the unique constraint,
// and the winning row is then read back. In Postgres a failed statement
// aborts its transaction, so the read-back could not share it.
func (s *BookmarkService) AddBookmark(ctx context.Context, rawURL string, ownerID int64) (*models.Bookmark, bool, error) {
	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, false, common.ErrInvalidReference
	}

	repo := s.repomanager.Bookmarks(s.db)

	existing, err := repo.GetByExternalID(ctx, videoID, ownerID)
	if err == nil {
		metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeExisting).Inc()
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("error looking up bookmark: %w", err)
	}

	meta, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		s.log.Warn(ctx, "metadata fetch failed", "external_id", videoID, "error", err)
		return nil, false, fmt.Errorf("%w: %v", common.ErrMetadataUnavailable, err)
	}

	created, err := repo.Insert(ctx, models.NewBookmark(meta, rawURL, ownerID))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			winner, err := repo.GetByExternalID(ctx, videoID, ownerID)
			if err != nil {
				metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeError).Inc()
				return nil, false, fmt.Errorf("error reloading bookmark: %w", err)
			}
			metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeExisting).Inc()
			return winner, false, nil
		}
		metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("error saving bookmark: %w", err)
	}

	s.archiveThumbnail(ctx, created)

	metrics.BookmarkAdds.WithLabelValues(metrics.OutcomeCreated).Inc()
	s.log.Info(ctx, "bookmark added", "bookmark_id", created.ID, "owner_id", ownerID, "external_id", videoID)
	return created, true, nil
}

// archiveThumbnail stores a copy of the thumbnail and records its key.
// Failures are logged and otherwise ignored.
func (s *BookmarkService) archiveThumbnail(ctx context.Context, b *models.Bookmark) {
	if s.archiver == nil || b.ThumbnailURL == nil {
		return
	}

	key, err := s.archiver.Archive(ctx, b.ExternalID, *b.ThumbnailURL)
	if err != nil {
		metrics.ThumbnailArchives.WithLabelValues(metrics.OutcomeError).Inc()
		s.log.Warn(ctx, "thumbnail archive failed", "bookmark_id", b.ID, "error", err)
		return
	}

	if err := s.repomanager.Bookmarks(s.db).SetThumbnailKey(ctx, b.ID, key); err != nil {
		metrics.ThumbnailArchives.WithLabelValues(metrics.OutcomeError).Inc()
		s.log.Warn(ctx, "recording thumbnail key failed", "bookmark_id", b.ID, "error", err)
		return
	}

	metrics.ThumbnailArchives.WithLabelValues(metrics.OutcomeOK).Inc()
	b.ThumbnailKey = &key
}

// ListBookmarks returns the owner's bookmarks, empty when there are none.
func (s *BookmarkService) ListBookmarks(ctx context.Context, ownerID int64) ([]*models.Bookmark, error) {
	items, err := s.repomanager.Bookmarks(s.db).ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookmarks: %w", err)
	}
	return items, nil
}

// GetBookmark returns one of the owner's bookmarks. Someone else's bookmark
// is reported as common.ErrorNotFound.
func (s *BookmarkService) GetBookmark(ctx context.Context, id, ownerID int64) (*models.Bookmark, error) {
	b, err := s.repomanager.Bookmarks(s.db).GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error loading bookmark: %w", err)
	}
	return b, nil
}

// RemoveBookmark deletes one of the owner's bookmarks. Someone else's
// bookmark is reported as common.ErrorNotFound and left untouched.
func (s *BookmarkService) RemoveBookmark(ctx context.Context, id, ownerID int64) error {
	if err := s.repomanager.Bookmarks(s.db).Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("error deleting bookmark: %w", err)
	}
	s.log.Info(ctx, "bookmark removed", "bookmark_id", id, "owner_id", ownerID)
	return nil
}

// ThumbnailURL returns a temporary link to the archived thumbnail of one of
// the owner's bookmarks. common.ErrorNotFound covers a missing bookmark, a
// bookmark without an archived copy and a disabled archive.
func (s *BookmarkService) ThumbnailURL(ctx context.Context, id, ownerID int64) (string, error) {
	b, err := s.GetBookmark(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	if s.archiver == nil || b.ThumbnailKey == nil {
		return "", common.ErrorNotFound
	}
	u, err := s.archiver.URL(ctx, *b.ThumbnailKey)
	if err != nil {
		return "", fmt.Errorf("error signing thumbnail url: %w", err)
	}
	return u, nil
}
