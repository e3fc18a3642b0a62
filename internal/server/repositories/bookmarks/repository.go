// Package bookmarks declares the bookmark store. Every read and write that a
// user can reach is scoped by owner; Get is the one unscoped lookup.
package bookmarks

import (
	"context"

	"github.com/dmitrijs2005/vidmark/internal/server/models"
)

// Repository persists bookmarks.
//
// Lookups return common.ErrorNotFound when no row matches. Insert returns
// common.ErrorAlreadyExists when the owner already has the external id, and
// common.ErrorNotFound when the owner does not exist. Delete returns
// common.ErrorNotFound when nothing was removed, so a bookmark owned by
// someone else looks exactly like a missing one.
type Repository interface {
	ListForOwner(ctx context.Context, ownerID int64) ([]*models.Bookmark, error)
	GetByExternalID(ctx context.Context, externalID string, ownerID int64) (*models.Bookmark, error)
	Get(ctx context.Context, id int64) (*models.Bookmark, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*models.Bookmark, error)
	Insert(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error)
	Delete(ctx context.Context, id, ownerID int64) error
	SetThumbnailKey(ctx context.Context, id int64, key string) error
}
