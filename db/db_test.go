package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection to :memory: gets its own database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, EnsureSchema(conn))
	return conn
}

func TestSeedAndLoadInventory(t *testing.T) {
	conn := memoryDB(t)
	rows := []model.RawRow{
		{"quantity": "2", "rated_power": "12000", "power_unit": "BTU", "category": "Climatização", "room_id": "101"},
		{"quantity": "10", "rated_power": "40", "power_unit": "W", "category": "Iluminação", "display_name": "Lâmpada"},
	}

	require.NoError(t, SeedInventory(conn, rows))

	got, err := LoadInventoryRows(conn)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12000", got[0]["rated_power"])
	assert.Equal(t, "Climatização", got[0]["category"])
	assert.Equal(t, "", got[0]["department"])
	assert.Equal(t, "Lâmpada", got[1]["display_name"])
	assert.Len(t, got[1], len(Columns))
}

func TestSeedInventory_Replaces(t *testing.T) {
	conn := memoryDB(t)

	require.NoError(t, SeedInventory(conn, []model.RawRow{{"quantity": "1"}, {"quantity": "2"}}))
	require.NoError(t, SeedInventory(conn, []model.RawRow{{"quantity": "3"}}))

	n, err := CountInventory(conn)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	conn := memoryDB(t)

	assert.NoError(t, EnsureSchema(conn))

	n, err := CountInventory(conn)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestImportInventoryCLI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	n, err := ImportInventoryCLI(path, []model.RawRow{{"quantity": "4", "rated_power": "100"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()
	got, err := LoadInventoryRows(conn)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0]["quantity"])
}

func TestOpenReadOnly(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.db")

	_, err := OpenReadOnly(missing)
	assert.Error(t, err)
	assert.NoFileExists(t, missing)

	path := filepath.Join(dir, "inventory.db")
	_, err = ImportInventoryCLI(path, []model.RawRow{{"quantity": "2"}})
	require.NoError(t, err)

	conn, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer conn.Close()
	got, err := LoadInventoryRows(conn)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Error(t, SeedInventory(conn, nil))
}

func TestSchemaFollowsInventoryColumns(t *testing.T) {
	conn := memoryDB(t)

	rows, err := conn.Query(`SELECT name FROM pragma_table_info('inventory') WHERE name != 'id'`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, model.InventoryColumns, names)
}
