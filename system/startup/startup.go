package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/config"
	"github.com/thatsimonsguy/energy-accounting/internal/datadog"
	"github.com/thatsimonsguy/energy-accounting/internal/env"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/normalizer"
	"github.com/thatsimonsguy/energy-accounting/internal/notifications"
	"github.com/thatsimonsguy/energy-accounting/internal/source"
	"github.com/thatsimonsguy/energy-accounting/internal/store"
)

// Initialize publishes cfg, starts the metric and notification clients and returns the
// dataset cache for the configured sources.
func Initialize(cfg *config.Config) *store.Store {
	env.Cfg = cfg

	datadog.InitMetrics()
	notifications.Init()

	st := store.New(Sources(cfg), source.NewFetcher(time.Duration(cfg.FetchTimeoutSeconds)*time.Second))
	st.OnLoad = func(ds model.Dataset) {
		notifications.DatasetLoaded(ds)
		datadog.Gauge("skipped_rows", float64(ds.SkippedRows), "stage:load")
	}
	return st
}

func Sources(cfg *config.Config) store.Sources {
	return store.Sources{
		Inventory:   cfg.InventorySource,
		InventoryDB: cfg.InventoryDB,
		Occupancy:   cfg.OccupancySource,
		Normalize:   normalizer.Options{ImputeMissingPower: cfg.ImputeMissingPower},
	}
}

// ServiceUnit renders a systemd unit that runs the service binary with the given config.
func ServiceUnit(execPath, configFile, user string) string {
	workdir := filepath.Dir(configFile)
	return fmt.Sprintf(`[Unit]
Description=Building energy accounting service
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
User=%s
WorkingDirectory=%s
ExecStart=%s -config-file %s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, user, workdir, execPath, configFile)
}

func InstallService(unitPath, execPath, configFile, user string) error {
	unit := ServiceUnit(execPath, configFile, user)
	if err := os.WriteFile(unitPath, []byte(unit), 0644); err != nil {
		return fmt.Errorf("failed to write service unit: %w", err)
	}
	log.Info().Str("path", unitPath).Msg("Service unit installed")
	return nil
}
