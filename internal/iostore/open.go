// Package iostore implements store.Store with GORM. The default backend is
// a single SQLite file driven by modernc.org/sqlite, PostgreSQL is reached
// through a pgx pool.
package iostore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/store"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Open connects to the store described by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return OpenPostgres(ctx, cfg)
	default:
		return OpenSQLite(cfg.Path)
	}
}

// OpenSQLite opens (and creates if needed) a SQLite database file.
// The store keeps one connection, so it has a single writer.
func OpenSQLite(path string) (store.Store, error) {
	if path == "" {
		return nil, OpenError("sqlite", path, fmt.Errorf("empty path"))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, OpenError("sqlite", path, err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dsn,
	}, gormConfig())
	if err != nil {
		return nil, OpenError("sqlite", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, OpenError("sqlite", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	slog.Debug("Opened SQLite store", "path", path)
	return &gormStore{
		db:      db,
		dialect: "sqlite",
		closer:  sqlDB.Close,
	}, nil
}

// OpenPostgres connects to PostgreSQL with a pgx pool and wraps the pool
// into GORM.
func OpenPostgres(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
	target := fmt.Sprintf("%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, OpenError("postgres", target, err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, OpenError("postgres", target, err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, OpenError("postgres", target, err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		gormConfig(),
	)
	if err != nil {
		pool.Close()
		return nil, OpenError("postgres", target, err)
	}

	slog.Debug("Connected to PostgreSQL store", "target", target)
	return &gormStore{
		db:      db,
		dialect: "postgres",
		closer: func() error {
			err := sqlDB.Close()
			pool.Close()
			return err
		},
	}, nil
}

// gormConfig silences GORM's logger, the store logs failures itself.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}
