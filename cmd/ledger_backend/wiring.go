package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/SscSPs/spice_ledger/internal/chart"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/core/services"
	"github.com/SscSPs/spice_ledger/internal/handlers"
	"github.com/SscSPs/spice_ledger/internal/platform/config"
	"github.com/SscSPs/spice_ledger/internal/platform/messaging"
	"github.com/SscSPs/spice_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/spice_ledger/internal/repositories/memory"
	mongorepo "github.com/SscSPs/spice_ledger/internal/repositories/mongo"
	"github.com/SscSPs/spice_ledger/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// activityFeedCapacity bounds the in-process activity feed used without Mongo.
const activityFeedCapacity = 1000

// storage is the selected ledger backend.
type storage struct {
	repos *portsrepo.RepositoryProvider
	probe handlers.HealthProbe
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; the ledger is lost on restart")
		return &storage{repos: memory.NewRepositoryProvider(), close: func() {}}, nil
	}

	pool, err := database.NewPgxPool(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	if err := runMigrations(cfg, logger); err != nil {
		database.ClosePgxPool(logger, pool)
		return nil, err
	}

	st := &storage{
		repos: pgsql.NewRepositoryProvider(pool, logger),
		close: func() { database.ClosePgxPool(logger, pool) },
	}
	if cfg.EnableDBCheck {
		st.probe = pool.Ping
	}
	return st, nil
}

// runMigrations applies every pending "up" migration from cfg.MigrationsPath.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...", slog.String("source", cfg.MigrationsPath))

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	if err := errors.Join(sourceErr, dbErr); err != nil {
		return fmt.Errorf("migration cleanup failed: %w", err)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// eventSinks owns the listeners that leave the process.
type eventSinks struct {
	closers []func()
}

func (s *eventSinks) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// attachEventSinks registers the activity archive and, when enabled, the Kafka
// publisher on dispatcher. The archive is Mongo when configured and an
// in-process feed otherwise; repos.ActivityRepo is set accordingly.
func attachEventSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger, dispatcher *services.EventDispatcher, repos *portsrepo.RepositoryProvider) (*eventSinks, error) {
	sinks := &eventSinks{}

	if cfg.MongoEnabled {
		mdb, err := database.NewMongoDB(ctx, logger, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect activity archive: %w", err)
		}
		sinks.closers = append(sinks.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
			defer cancel()
			if err := mdb.Close(closeCtx); err != nil {
				logger.Error("Failed to close MongoDB client", slog.String("error", err.Error()))
			}
		})
		repos.ActivityRepo = mongorepo.NewActivityRepository(logger, mdb.Database())
	} else if repos.ActivityRepo == nil {
		repos.ActivityRepo = memory.NewActivityFeed(activityFeedCapacity)
	}
	dispatcher.AddEventListener(services.RecordingListener(repos.ActivityRepo))

	if cfg.KafkaEnabled {
		publisher, err := messaging.NewEventPublisher(logger, cfg)
		if err != nil {
			sinks.close()
			return nil, fmt.Errorf("failed to start event publisher: %w", err)
		}
		sinks.closers = append(sinks.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Error("Failed to close event publisher", slog.String("error", err.Error()))
			}
		})
		dispatcher.AddEventListener(publisher.Listener())
	}

	logger.Info("Event listeners attached", slog.Int("listener_count", dispatcher.ListenerCount()))
	return sinks, nil
}

// seedChart creates the configured chart of accounts. Existing codes are left alone.
func seedChart(ctx context.Context, cfg *config.Config, logger *slog.Logger, accounts portssvc.AccountSvcFacade) error {
	if cfg.ChartOfAccountsPath == "" {
		return nil
	}
	c, err := chart.Load(cfg.ChartOfAccountsPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Chart of accounts file not found, skipping seed", slog.String("path", cfg.ChartOfAccountsPath))
		return nil
	}
	if err != nil {
		return err
	}

	created, err := chart.Seed(ctx, logger, accounts, c, cfg.BaseCurrency)
	if err != nil {
		return fmt.Errorf("failed to seed chart of accounts: %w", err)
	}
	logger.Info("Chart of accounts ready", slog.Int("created", created), slog.Int("declared", len(c.Accounts)))
	return nil
}
