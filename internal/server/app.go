// Package server wires configuration, storage, the metadata provider and the
// HTTP API together and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server/config"
	"github.com/dmitrijs2005/vidmark/internal/server/httpapi"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidmark/internal/server/services"
	"github.com/dmitrijs2005/vidmark/internal/server/thumbnails"
	"github.com/dmitrijs2005/vidmark/internal/server/youtube"
)

// refreshTokenPruneInterval is how often expired refresh tokens are purged.
const refreshTokenPruneInterval = time.Hour

type App struct {
	config          *config.Config
	breaker         *youtube.BreakerFetcher
	logger          logging.Logger
	db              *sql.DB
	userService     *services.UserService
	bookmarkService *services.BookmarkService
}

// OpenDB opens the pgx-backed database handle and checks it is reachable.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	client, err := youtube.NewClient(ctx, c.YouTubeAPIKey, c.YouTubeEndpoint, c.YouTubeTimeout)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("youtube client error: %w", err)
	}
	breaker := youtube.NewBreakerFetcher(client, youtube.DefaultBreakerSettings(), logger)
	fetcher := youtube.NewCachingFetcher(breaker, c.MetadataCacheSize, c.MetadataCacheTTL)

	var bs *services.BookmarkService
	if c.S3Enabled {
		archiver, err := thumbnails.NewS3ArchiverFromConfig(ctx, c)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("thumbnail archive error: %w", err)
		}
		bs = services.NewBookmarkService(db, rm, fetcher, archiver, logger)
	} else {
		bs = services.NewBookmarkService(db, rm, fetcher, nil, logger)
	}

	us := services.NewUserService(db, rm, c, logger)

	return &App{config: c, breaker: breaker, logger: logger, db: db, userService: us, bookmarkService: bs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.ListenAddr, app.logger, app.userService, app.bookmarkService, app.db,
		httpapi.Options{
			CORSAllowedOrigins: app.config.CORSAllowedOrigins,
			LoginRateLimit:     app.config.LoginRateLimit,
			Provider:           app.breaker,
		})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) pruneRefreshTokens(ctx context.Context) {
	ticker := time.NewTicker(refreshTokenPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.userService.PruneRefreshTokens(ctx, now)
			if err != nil {
				app.logger.Warn(ctx, "refresh token prune failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "pruned expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.pruneRefreshTokens(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
