package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/dbx"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway Postgres and returns a migrated handle.
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	var pgContainer *postgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("vidmark"),
			postgres.WithUsername("vidmark"),
			postgres.WithPassword("vidmark"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("Skipping integration test, postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(ctx, db))
	return db
}

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := startPostgres(t)
	ctx := context.Background()
	m := NewPostgresRepositoryManager()

	alice, err := m.Users(db).Create(ctx, &models.User{Email: "alice@example.com", PasswordHash: "h1"})
	require.NoError(t, err)
	bob, err := m.Users(db).Create(ctx, &models.User{Email: "bob@example.com", PasswordHash: "h2"})
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := m.Users(db).Create(ctx, &models.User{Email: "alice@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)

		got, err := m.Users(db).GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "h1", got.PasswordHash)
	})

	t.Run("bookmark uniqueness per owner", func(t *testing.T) {
		repo := m.Bookmarks(db)
		desc := "d"

		b1, err := repo.Insert(ctx, &models.Bookmark{ExternalID: "dQw4w9WgXcQ", Title: "t", Description: &desc, SourceURL: "https://youtu.be/dQw4w9WgXcQ", OwnerID: alice.ID})
		require.NoError(t, err)
		assert.NotZero(t, b1.ID)

		_, err = repo.Insert(ctx, &models.Bookmark{ExternalID: "dQw4w9WgXcQ", Title: "t", SourceURL: "x", OwnerID: alice.ID})
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)

		_, err = repo.Insert(ctx, &models.Bookmark{ExternalID: "dQw4w9WgXcQ", Title: "t", SourceURL: "x", OwnerID: bob.ID})
		require.NoError(t, err)

		_, err = repo.Insert(ctx, &models.Bookmark{ExternalID: "aaaaaaaaaaa", Title: "t", SourceURL: "x", OwnerID: 999999})
		assert.ErrorIs(t, err, common.ErrorNotFound)

		got, err := repo.GetByExternalID(ctx, "dQw4w9WgXcQ", alice.ID)
		require.NoError(t, err)
		assert.Equal(t, b1.ID, got.ID)
		require.NotNil(t, got.Description)
		assert.Equal(t, "d", *got.Description)
		assert.Nil(t, got.ThumbnailURL)

		list, err := repo.ListForOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = repo.GetForOwner(ctx, b1.ID, bob.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)

		require.NoError(t, repo.SetThumbnailKey(ctx, b1.ID, "thumbnails/dQw4w9WgXcQ/k.jpg"))
		got, err = repo.Get(ctx, b1.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ThumbnailKey)

		assert.ErrorIs(t, repo.Delete(ctx, b1.ID, bob.ID), common.ErrorNotFound)
		require.NoError(t, repo.Delete(ctx, b1.ID, alice.ID))
		assert.ErrorIs(t, repo.Delete(ctx, b1.ID, alice.ID), common.ErrorNotFound)
	})

	t.Run("concurrent inserts keep one row", func(t *testing.T) {
		repo := m.Bookmarks(db)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.Insert(ctx, &models.Bookmark{ExternalID: "9bZkp7q19f0", Title: "t", SourceURL: "x", OwnerID: alice.ID})
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		}
		assert.Equal(t, 1, ok)
	})

	t.Run("refresh token rotation in a transaction", func(t *testing.T) {
		require.NoError(t, m.RefreshTokens(db).Create(ctx, alice.ID, "digest-1", time.Hour))

		err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			deleted, err := m.RefreshTokens(tx).Delete(ctx, "digest-1")
			if err != nil {
				return err
			}
			require.True(t, deleted)
			if err := m.RefreshTokens(tx).Create(ctx, alice.ID, "digest-2", time.Hour); err != nil {
				return err
			}
			return errors.New("abort")
		})
		require.Error(t, err)

		_, err = m.RefreshTokens(db).Find(ctx, "digest-1")
		require.NoError(t, err, "rolled back delete must keep the old token")
		_, err = m.RefreshTokens(db).Find(ctx, "digest-2")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		require.NoError(t, m.RefreshTokens(db).Create(ctx, alice.ID, "old", -time.Minute))
		n, err := m.RefreshTokens(db).DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
