package httpapi

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"github.com/dmitrijs2005/vidmark/internal/server/services"
)

// ---- fakes ----

type fakeUsers struct {
	regResp *models.User
	regErr  error

	loginResp *services.TokenPair
	loginErr  error
	loginArgs [2]string

	refreshResp *services.TokenPair
	refreshErr  error

	logoutErr  error
	logoutUser int64

	getResp *models.User
	getErr  error

	// tokens maps access tokens to user ids; anything else is invalid.
	tokens map[string]int64
}

func (f *fakeUsers) Register(ctx context.Context, email, password string) (*models.User, error) {
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.loginArgs = [2]string{email, password}
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeUsers) Logout(ctx context.Context, userID int64, refreshToken string) error {
	f.logoutUser = userID
	return f.logoutErr
}

func (f *fakeUsers) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return f.getResp, f.getErr
}

func (f *fakeUsers) Authenticate(accessToken string) (int64, error) {
	if accessToken == "expired" {
		return 0, common.ErrTokenExpired
	}
	if id, ok := f.tokens[accessToken]; ok {
		return id, nil
	}
	return 0, common.ErrInvalidToken
}

type fakeBookmarks struct {
	mu sync.Mutex

	addResp    *models.Bookmark
	addCreated bool
	addErr     error
	addURL     string
	addOwner   int64

	list    map[int64][]*models.Bookmark
	byID    map[int64]*models.Bookmark
	removed []int64

	thumbURL string
	thumbErr error
}

func (f *fakeBookmarks) AddBookmark(ctx context.Context, rawURL string, ownerID int64) (*models.Bookmark, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addURL, f.addOwner = rawURL, ownerID
	return f.addResp, f.addCreated, f.addErr
}

func (f *fakeBookmarks) ListBookmarks(ctx context.Context, ownerID int64) ([]*models.Bookmark, error) {
	if l, ok := f.list[ownerID]; ok {
		return l, nil
	}
	return []*models.Bookmark{}, nil
}

func (f *fakeBookmarks) GetBookmark(ctx context.Context, id, ownerID int64) (*models.Bookmark, error) {
	b, ok := f.byID[id]
	if !ok || b.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeBookmarks) RemoveBookmark(ctx context.Context, id, ownerID int64) error {
	b, ok := f.byID[id]
	if !ok || b.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeBookmarks) ThumbnailURL(ctx context.Context, id, ownerID int64) (string, error) {
	return f.thumbURL, f.thumbErr
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errDB = errors.New("connection refused")
