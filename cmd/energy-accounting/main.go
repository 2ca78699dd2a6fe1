package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/api"
	"github.com/thatsimonsguy/energy-accounting/internal/config"
	"github.com/thatsimonsguy/energy-accounting/internal/datadog"
	"github.com/thatsimonsguy/energy-accounting/internal/logging"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
	"github.com/thatsimonsguy/energy-accounting/system/shutdown"
	"github.com/thatsimonsguy/energy-accounting/system/startup"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("inventory_source", cfg.InventorySource).
		Str("inventory_db", cfg.InventoryDB).
		Str("occupancy_source", cfg.OccupancySource).
		Msg("Starting energy accounting service")

	st := startup.Initialize(&cfg)

	// warm the cache so source problems show up at boot rather than on the first request
	ds := st.Get(context.Background())
	if len(ds.Records) == 0 {
		log.Warn().Err(ds.InventoryErr).Msg("Inventory unavailable at startup, serving 503 until reloaded")
	}

	server := api.NewServer(st, &cfg)
	server.OnReport = func(rep *report.Report) {
		datadog.ReportTotals(rep.Totals)
	}

	if err := shutdown.Serve(server.NewHTTPServer(cfg.ListenPort)); err != nil {
		shutdown.ShutdownWithError(err, "REST API server failed")
	}
	log.Info().Msg("Energy accounting service stopped")
}
