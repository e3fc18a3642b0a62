package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/dbx"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/bookmarks"
	refreshtokensrepo "github.com/dmitrijs2005/vidmark/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/vidmark/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memBookmarks is an in-memory bookmarks.Repository enforcing the
// (external_id, owner_id) uniqueness the database enforces.
type memBookmarks struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Bookmark

	lookupErr    error
	beforeInsert func()
	inserts      int
	setKeyErr    error
}

func newMemBookmarks() *memBookmarks {
	return &memBookmarks{rows: map[int64]*models.Bookmark{}}
}

func (m *memBookmarks) ListForOwner(ctx context.Context, ownerID int64) ([]*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Bookmark, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if b, ok := m.rows[id]; ok && b.OwnerID == ownerID {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memBookmarks) GetByExternalID(ctx context.Context, externalID string, ownerID int64) (*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, b := range m.rows {
		if b.ExternalID == externalID && b.OwnerID == ownerID {
			c := *b
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memBookmarks) Get(ctx context.Context, id int64) (*models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *b
	return &c, nil
}

func (m *memBookmarks) GetForOwner(ctx context.Context, id, ownerID int64) (*models.Bookmark, error) {
	b, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memBookmarks) Insert(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {
	if m.beforeInsert != nil {
		hook := m.beforeInsert
		m.beforeInsert = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	for _, r := range m.rows {
		if r.ExternalID == b.ExternalID && r.OwnerID == b.OwnerID {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	c := *b
	m.rows[b.ID] = &c
	return b, nil
}

func (m *memBookmarks) Delete(ctx context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memBookmarks) SetThumbnailKey(ctx context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setKeyErr != nil {
		return m.setKeyErr
	}
	b, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	b.ThumbnailKey = &key
	return nil
}

func (m *memBookmarks) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	created *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = 1
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delOut bool
	delErr error

	createErr error

	created []string
	deleted []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) (bool, error) {
	if f.delErr != nil {
		return false, f.delErr
	}
	f.deleted = append(f.deleted, token)
	return f.delOut, nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 3, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	b *memBookmarks
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Bookmarks(db dbx.DBTX) bookmarks.Repository             { return m.b }

// countingFetcher returns canned metadata and counts calls per video id.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: map[string]int{}}
}

func (f *countingFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[videoID]++
	if f.err != nil {
		return nil, f.err
	}
	title := "Title of " + videoID
	thumb := "https://i.ytimg.com/vi/" + videoID + "/default.jpg"
	duration := "PT3M33S"
	return &models.VideoMetadata{
		ExternalID:   videoID,
		Title:        title,
		ThumbnailURL: &thumb,
		Duration:     &duration,
	}, nil
}

func (f *countingFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeArchiver struct {
	key     string
	err     error
	urlErr  error
	sources []string
}

func (f *fakeArchiver) Archive(ctx context.Context, externalID, sourceURL string) (string, error) {
	f.sources = append(f.sources, sourceURL)
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

func (f *fakeArchiver) URL(ctx context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://s3.local/" + key + "?sig", nil
}
