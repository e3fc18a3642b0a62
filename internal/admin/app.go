package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
)

type migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

type userSvc interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	PruneRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// ErrUsage is returned for unknown commands and bad arguments.
var ErrUsage = errors.New("usage: vidmark-cli migrate | useradd -email <email> | prune")

type App struct {
	db       *sql.DB
	migrator migrator
	users    userSvc
	out      io.Writer
}

func NewApp(db *sql.DB, m migrator, us userSvc, out io.Writer) *App {
	return &App{db: db, migrator: m, users: us, out: out}
}

// Run executes one command. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "migrate":
		return a.migrate(ctx)
	case "useradd":
		return a.userAdd(ctx, args[1:])
	case "prune":
		return a.prune(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

func (a *App) migrate(ctx context.Context) error {
	if err := a.migrator.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(a.out, "migrations applied")
	return nil
}

func (a *App) userAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *email == "" {
		return fmt.Errorf("useradd: -email is required: %w", ErrUsage)
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return fmt.Errorf("useradd: %w", err)
	}
	defer common.WipeByteArray(pw)

	u, err := a.users.Register(ctx, *email, string(pw))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("useradd: %s is already registered", *email)
		}
		return fmt.Errorf("useradd: %w", err)
	}

	fmt.Fprintf(a.out, "created user id=%d email=%s\n", u.ID, u.Email)
	return nil
}

func (a *App) prune(ctx context.Context) error {
	n, err := a.users.PruneRefreshTokens(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	fmt.Fprintf(a.out, "removed %d expired refresh tokens\n", n)
	return nil
}
