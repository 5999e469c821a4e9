package main

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/rs/zerolog"

    "github.com/iliyamo/lab-seat-scheduler/internal/config"
    "github.com/iliyamo/lab-seat-scheduler/internal/database"
    "github.com/iliyamo/lab-seat-scheduler/internal/repository"
)

// openStore returns the configured store and a close func.  SQL stores are
// migrated when migrate is set; the memory store needs nothing.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger, migrate bool) (repository.Store, func(), error) {
    var (
        db      *sql.DB
        dialect database.Dialect
        err     error
    )
    switch cfg.StoreDriver {
    case config.DriverMemory:
        log.Warn().Msg("using in-memory store; data is lost on exit")
        return repository.NewMemoryStore(), func() {}, nil
    case config.DriverSQLite:
        db, err = database.OpenSQLite(cfg.SQLitePath)
        dialect = database.SQLite
    default:
        db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        dialect = database.MySQL
    }
    if err != nil {
        return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
    }
    if migrate {
        mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
        defer cancel()
        if err := database.Migrate(mctx, db, dialect); err != nil {
            db.Close()
            return nil, nil, fmt.Errorf("migrate %s store: %w", dialect, err)
        }
    }
    log.Info().Str("driver", string(dialect)).Msg("store ready")
    return repository.NewSQLStore(db), func() { db.Close() }, nil
}
