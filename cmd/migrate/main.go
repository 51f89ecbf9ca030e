package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/migrations"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/config"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/database"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/logger"
)

const usage = `usage: migrate <command> [args]

commands:
  up                 apply all pending migrations
  up-to VERSION      apply migrations up to VERSION
  down               roll back the latest migration
  down-to VERSION    roll back to VERSION
  redo               roll back and re-apply the latest migration
  status             print migration status
  version            print the current schema version`

var gooseRun = goose.RunContext // mockable

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := migrate(ctx, db.DB, flag.Args()); err != nil {
		logr.Sugar().Fatalw("migration failed", "error", err)
	}
	logr.Sugar().Infow("migration finished", "command", flag.Args())
}

func migrate(ctx context.Context, db *sql.DB, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	command := args[0]
	switch command {
	case "up-to", "down-to":
		if len(args) != 2 {
			return fmt.Errorf("%s requires a target VERSION", command)
		}
	case "up", "down", "redo", "status", "version":
		if len(args) != 1 {
			return fmt.Errorf("%s takes no arguments", command)
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRun(ctx, command, db, ".", args[1:]...)
}
