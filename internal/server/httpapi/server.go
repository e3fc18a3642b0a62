// Package httpapi exposes the bookmark and account services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	"github.com/dmitrijs2005/vidmark/internal/server/services"
	gobreaker "github.com/sony/gobreaker/v2"
)

type userSvc interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	Authenticate(accessToken string) (int64, error)
}

type bookmarkSvc interface {
	AddBookmark(ctx context.Context, rawURL string, ownerID int64) (*models.Bookmark, bool, error)
	ListBookmarks(ctx context.Context, ownerID int64) ([]*models.Bookmark, error)
	GetBookmark(ctx context.Context, id, ownerID int64) (*models.Bookmark, error)
	RemoveBookmark(ctx context.Context, id, ownerID int64) error
	ThumbnailURL(ctx context.Context, id, ownerID int64) (string, error)
}

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BreakerStater reports the metadata provider's circuit state.
type BreakerStater interface {
	State() gobreaker.State
}

// Options tune the HTTP surface.
type Options struct {
	CORSAllowedOrigins []string
	LoginRateLimit     int // requests per minute per client IP; <= 0 disables
	// Provider, when set, adds the circuit state to /readyz. An open circuit
	// does not fail the check.
	Provider BreakerStater
}

type Server struct {
	address   string
	users     userSvc
	bookmarks bookmarkSvc
	db        Pinger
	logger    logging.Logger
	opts      Options
	handler   http.Handler
}

func NewServer(addr string, l logging.Logger, us userSvc, bs bookmarkSvc, db Pinger, opts Options) *Server {
	s := &Server{
		address:   addr,
		users:     us,
		bookmarks: bs,
		db:        db,
		logger:    l.With("module", "http_server"),
		opts:      opts,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
