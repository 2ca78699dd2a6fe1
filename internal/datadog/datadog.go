package datadog

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/env"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
)

var dogstatsd *statsd.Client

func InitMetrics() {
	if !env.Cfg.EnableDatadog {
		log.Info().Msg("Datadog metrics disabled")
		return
	}

	var err error
	dogstatsd, err = statsd.New(env.Cfg.DDAgentAddr)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create DogStatsD client")
		return
	}

	dogstatsd.Namespace = env.Cfg.DDNamespace
	dogstatsd.Tags = env.Cfg.DDTags

	log.Info().
		Str("addr", env.Cfg.DDAgentAddr).
		Str("namespace", env.Cfg.DDNamespace).
		Strs("tags", env.Cfg.DDTags).
		Msg("Datadog metrics initialized")
}

func Gauge(name string, value float64, tags ...string) {
	if dogstatsd != nil {
		err := dogstatsd.Gauge(name, value, tags, 1)
		if err != nil {
			log.Warn().Err(err).Str("metric", name).Msg("Failed to emit gauge metric")
		}
	}
}

// ReportTotals emits the building-wide figures of a finished report.
func ReportTotals(t report.Totals) {
	Gauge("installed_kw", t.InstalledKW)
	Gauge("peak_kw", t.PeakKW)
	Gauge("monthly_kwh", t.MonthlyKWh)
	Gauge("monthly_cost", t.TotalBill, "component:total")
	Gauge("monthly_cost", t.VariableCost, "component:energy")
	Gauge("monthly_cost", t.DemandCharge, "component:demand")
	Gauge("skipped_rows", float64(t.SkippedRows))
	if t.PeakOccupancy != nil {
		Gauge("peak_occupancy", float64(*t.PeakOccupancy))
	}
}
