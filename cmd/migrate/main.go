package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/pageza/nocapcooking/backend/config"
	"github.com/pageza/nocapcooking/backend/internal/database"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	dir := *migrationsDir
	if dsn == "" || dir == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		if dsn == "" {
			dsn = database.PostgresURL(cfg)
		}
		if dir == "" {
			dir = cfg.MigrationsDir
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + database.MigrationsTable + ` (
			version VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		log.Fatalf("failed to create migrations table: %v", err)
	}

	if *rollback {
		if err := rollbackLast(db, dir); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := applyPending(db, dir); err != nil {
		log.Fatal(err)
	}
	fmt.Println("All migrations applied successfully.")
}

func rollbackLast(db *sql.DB, dir string) error {
	var version, name string
	err := db.QueryRow(`
		SELECT version, name
		FROM ` + database.MigrationsTable + `
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(dir, database.RollbackFile(name))
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return fmt.Errorf("failed to read rollback file %s: %w", rollbackPath, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute rollback: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM "+database.MigrationsTable+" WHERE version = $1", version); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}

	fmt.Printf("Successfully rolled back migration: %s\n", name)
	return nil
}

func applyPending(db *sql.DB, dir string) error {
	files, err := database.MigrationFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		version := database.MigrationVersion(file)

		var applied bool
		if err := db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM "+database.MigrationsTable+" WHERE version = $1)", version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			fmt.Printf("Migration already applied: %s\n", file)
			continue
		}

		path := filepath.Join(dir, file)
		fmt.Printf("Applying migration: %s\n", path)

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
		if _, err := tx.Exec("INSERT INTO "+database.MigrationsTable+" (version, name) VALUES ($1, $2)", version, file); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration: %w", err)
		}

		fmt.Printf("Successfully applied migration: %s\n", file)
	}
	return nil
}
