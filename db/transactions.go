package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

// Columns holds the inventory table columns in insert order, excluding the row id.
var Columns = model.InventoryColumns

// StartTransaction starts a new database transaction.
func StartTransaction(db *sql.DB) (*sql.Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// CommitTransaction commits the given transaction.
func CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the given transaction.
func RollbackTransaction(tx *sql.Tx) {
	tx.Rollback()
}

func ReplaceInventoryWithTx(tx *sql.Tx, rows []model.RawRow) error {
	if _, err := tx.Exec(`DELETE FROM inventory`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ")
	stmt, err := tx.Prepare(`INSERT INTO inventory (` + strings.Join(Columns, ", ") + `) VALUES (` + placeholders + `)`)
	if err != nil {
		return fmt.Errorf("prepare inventory insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(Columns))
	for i, row := range rows {
		for j, c := range Columns {
			args[j] = row[c]
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert inventory row %d: %w", i+1, err)
		}
	}
	return nil
}
