package report

import (
	"time"

	"github.com/thatsimonsguy/energy-accounting/internal/demand"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/occupancy"
)

type Totals struct {
	Records        int     `json:"records"`
	Quantity       int     `json:"quantity"`
	ImputedRecords int     `json:"imputed_records"`
	SkippedRows    int     `json:"skipped_rows"`
	InstalledKW    float64 `json:"installed_kw"`
	PeakKW         float64 `json:"peak_kw"`
	MonthlyKWh     float64 `json:"monthly_kwh"`
	PeakKWh        float64 `json:"peak_kwh"`
	OffPeakKWh     float64 `json:"offpeak_kwh"`
	VariableCost   float64 `json:"variable_cost"`
	DemandCharge   float64 `json:"demand_charge"`
	TotalBill      float64 `json:"total_bill"`
	TransformerKVA float64 `json:"transformer_kva"`

	Utilization demand.Utilization `json:"utilization"`

	// Nil when the occupancy log is absent: unknown, not zero.
	PeakOccupancy     *int       `json:"peak_occupancy"`
	PeakOccupancyAt   *time.Time `json:"peak_occupancy_at"`
	PeakKWPerOccupant *float64   `json:"peak_kw_per_occupant"`
}

// ComputeTotals reduces index-aligned records and metrics into the building-wide figures.
// scenario must already be sanitized.
func ComputeTotals(records []model.EquipmentRecord, metrics []model.ComputedMetrics, scenario model.Scenario, series occupancy.Series) Totals {
	var t Totals
	for i, rec := range records {
		if i >= len(metrics) {
			break
		}
		m := metrics[i]
		t.Records++
		t.Quantity += rec.Quantity
		if rec.PowerImputed {
			t.ImputedRecords++
		}
		t.InstalledKW += m.InstalledKW
		t.MonthlyKWh += m.MonthlyKWh
		t.PeakKWh += m.PeakKWh
		t.OffPeakKWh += m.OffPeakKWh
		t.VariableCost += m.MonthlyCost
	}

	t.PeakKW = demand.EstimatePeak(metrics)
	t.DemandCharge = t.PeakKW * scenario.Tariff.DemandRate
	t.TotalBill = t.VariableCost + t.DemandCharge
	t.TransformerKVA = demand.TransformerKVA(t.PeakKW, scenario.Tariff.PowerFactor)

	avg := demand.AveragePower(t.MonthlyKWh, scenario.Profile.BillingDaysPerMonth)
	t.Utilization = demand.Utilize(avg, t.PeakKW, t.InstalledKW)

	if count, at, ok := series.Peak(); ok {
		t.PeakOccupancy = &count
		t.PeakOccupancyAt = &at
		if count > 0 {
			perHead := t.PeakKW / float64(count)
			t.PeakKWPerOccupant = &perHead
		}
	}
	return t
}
