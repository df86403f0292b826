package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pageza/nocapcooking/backend/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationsTable records applied migration files. cmd/migrate shares it.
const MigrationsTable = "schema_migrations"

// RunMigrations brings the schema up to date. SQLite uses GORM
// auto-migration; PostgreSQL applies every pending *.sql file in
// migrationsDir in name order, each in its own transaction.
func RunMigrations(db *gorm.DB, migrationsDir string, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using GORM auto-migration for SQLite")
		return db.AutoMigrate(model.All()...)
	}

	files, err := MigrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	// Create migrations table if it doesn't exist (PostgreSQL)
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + MigrationsTable + ` (
			version VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		version := MigrationVersion(name)

		// Check if migration has already been applied
		var count int64
		if err := db.Table(MigrationsTable).Where("version = ?", version).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("skipping migration (already applied)", zap.String("file", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO "+MigrationsTable+" (version, name) VALUES (?, ?)", version, name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("applied migration", zap.String("file", name))
	}

	return nil
}

// MigrationFiles lists the forward migration files of dir in apply order.
// Files ending in _rollback.sql are excluded.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// MigrationVersion extracts the version prefix of a VERSION_NAME.sql file.
func MigrationVersion(name string) string {
	return strings.SplitN(strings.TrimSuffix(name, ".sql"), "_", 2)[0]
}

// RollbackFile names the rollback script paired with a migration file.
func RollbackFile(name string) string {
	return strings.TrimSuffix(name, ".sql") + "_rollback.sql"
}
