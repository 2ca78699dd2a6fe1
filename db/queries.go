package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

// LoadInventoryRows returns every stored inventory row keyed by column name, in insertion order.
// Values are the raw text that was imported.
func LoadInventoryRows(db *sql.DB) ([]model.RawRow, error) {
	rows, err := db.Query(`SELECT ` + strings.Join(Columns, ", ") + ` FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var out []model.RawRow
	values := make([]sql.NullString, len(Columns))
	dest := make([]any, len(Columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		row := make(model.RawRow, len(Columns))
		for i, c := range Columns {
			row[c] = values[i].String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return out, nil
}

func CountInventory(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return n, nil
}
