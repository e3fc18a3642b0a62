package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/vidmark/internal/admin"
	"github.com/dmitrijs2005/vidmark/internal/buildinfo"
	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server"
	"github.com/dmitrijs2005/vidmark/internal/server/config"
	"github.com/dmitrijs2005/vidmark/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidmark/internal/server/services"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(db, rm, cfg, logger)

	app := admin.NewApp(db, rm, us, os.Stdout)
	if err := app.Run(ctx, commandArgs(os.Args[1:])); err != nil {
		fmt.Fprintln(os.Stderr, err)
		db.Close()
		os.Exit(1)
	}

}

// commandArgs drops leading config flags (-c file.json, -d dsn, ...) so the
// first remaining argument is the command.
func commandArgs(args []string) []string {
	for i, a := range args {
		if a == "migrate" || a == "useradd" || a == "prune" {
			return args[i:]
		}
	}
	return args
}
