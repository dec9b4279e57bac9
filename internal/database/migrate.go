package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type migrator interface {
	Up() error
	Version() (uint, bool, error)
	Close() (error, error)
}

// Migrate применяет миграции схемы. Если path пуст, используются встроенные миграции.
// Миграции выполняются на отдельном *sql.DB поверх пула, он закрывается по завершении.
func Migrate(pool *pgxpool.Pool, path string, logger *zap.Logger) error {
	return migrateDB(stdlib.OpenDBFromPool(pool), path, logger)
}

// migrateDB забирает владение db.
func migrateDB(db *sql.DB, path string, logger *zap.Logger) error {
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("failed to close migration handle", zap.Error(cerr))
		}
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := newMigrator(path, driver)
	if err != nil {
		if cerr := driver.Close(); cerr != nil {
			logger.Warn("failed to close migrate driver", zap.Error(cerr))
		}
		return err
	}

	return applyMigrations(m, logger)
}

func applyMigrations(m migrator, logger *zap.Logger) error {
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Миграции не требуются")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Миграции применены", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func newMigrator(path string, driver migratedb.Driver) (*migrate.Migrate, error) {
	if path != "" {
		m, err := migrate.NewWithDatabaseInstance("file://"+path, "pgx5", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to open migrations %q: %w", path, err)
		}
		return m, nil
	}

	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	return m, nil
}
