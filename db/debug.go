package db

import "github.com/thatsimonsguy/energy-accounting/internal/model"

// ImportInventoryCLI seeds the inventory table of the database at dbPath.
func ImportInventoryCLI(dbPath string, rows []model.RawRow) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := SeedInventory(conn, rows); err != nil {
		return 0, err
	}
	return CountInventory(conn)
}
