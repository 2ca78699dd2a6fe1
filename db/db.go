package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

func schema() string {
	cols := make([]string, 0, len(Columns)+1)
	cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range Columns {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	return "CREATE TABLE IF NOT EXISTS inventory (" + strings.Join(cols, ", ") + ")"
}

// Open opens the SQLite file at dbPath and makes sure the inventory table exists.
func Open(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := EnsureSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenReadOnly opens an existing SQLite file without creating or changing it.
func OpenReadOnly(dbPath string) (*sql.DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("inventory database: %w", err)
	}
	conn, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema()); err != nil {
		return fmt.Errorf("failed to create inventory table: %w", err)
	}
	return nil
}

// SeedInventory replaces the stored inventory with rows in a single transaction.
func SeedInventory(db *sql.DB, rows []model.RawRow) error {
	tx, err := StartTransaction(db)
	if err != nil {
		return err
	}
	if err := ReplaceInventoryWithTx(tx, rows); err != nil {
		RollbackTransaction(tx)
		return err
	}
	if err := CommitTransaction(tx); err != nil {
		return err
	}

	log.Info().Int("rows", len(rows)).Msg("Inventory table seeded")
	return nil
}
