// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pierkoo/flasktaskr/internal/config"
	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	legacyOwner := flag.Int64(
		"legacy-owner",
		0,
		"import rows from old_tasks and assign them to this user id",
	)
	promote := flag.String("promote", "", "grant the admin role to this username")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*configPath, *legacyOwner, *promote, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, legacyOwner int64, promote string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("database close error", "error", closeErr)
		}
	}()

	migrations, err := core.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := core.Migrate(ctx, db.DB, migrations, logger)
	if err != nil {
		return err
	}
	logger.Info("schema up to date", "applied", applied)

	if legacyOwner > 0 {
		imported, err := core.ImportLegacyTasks(ctx, db.DB, legacyOwner)
		if err != nil {
			return err
		}
		logger.Info("legacy tasks imported",
			"owner_id", legacyOwner,
			"rows", imported,
		)
	}

	if promote != "" {
		users := user.NewService(user.NewRepository(db.DB))
		if err := users.SetRole(ctx, promote, user.RoleAdmin); err != nil {
			return err
		}
		logger.Info("user promoted", "name", promote, "role", user.RoleAdmin)
	}

	return nil
}
