package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/dbx"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
)

const selectColumns = `id, external_id, title, description, thumbnail_url, channel_title,
		duration, source_url, owner_id, created_at, thumbnail_key`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBookmark(s scanner) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	err := s.Scan(&b.ID, &b.ExternalID, &b.Title, &b.Description, &b.ThumbnailURL, &b.ChannelTitle,
		&b.Duration, &b.SourceURL, &b.OwnerID, &b.CreatedAt, &b.ThumbnailKey)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Bookmark, error) {
	b, err := scanBookmark(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

// ListForOwner returns the owner's bookmarks ordered by id. The slice is
// empty, not nil, when there are none.
func (r *PostgresRepository) ListForOwner(ctx context.Context, ownerID int64) ([]*models.Bookmark, error) {
	query := `SELECT ` + selectColumns + `
		FROM bookmarks
		WHERE owner_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByExternalID(ctx context.Context, externalID string, ownerID int64) (*models.Bookmark, error) {
	query := `SELECT ` + selectColumns + `
		FROM bookmarks
		WHERE external_id = $1 AND owner_id = $2`

	return r.getOne(ctx, query, externalID, ownerID)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Bookmark, error) {
	query := `SELECT ` + selectColumns + `
		FROM bookmarks
		WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*models.Bookmark, error) {
	query := `SELECT ` + selectColumns + `
		FROM bookmarks
		WHERE id = $1 AND owner_id = $2`

	return r.getOne(ctx, query, id, ownerID)
}

// Insert stores b and fills in ID and CreatedAt.
func (r *PostgresRepository) Insert(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {
	query := `
		INSERT INTO bookmarks (external_id, owner_id, title, description, thumbnail_url,
			channel_title, duration, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		b.ExternalID, b.OwnerID, b.Title, b.Description, b.ThumbnailURL,
		b.ChannelTitle, b.Duration, b.SourceURL,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM bookmarks WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetThumbnailKey(ctx context.Context, id int64, key string) error {
	query := `UPDATE bookmarks SET thumbnail_key = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
