package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/calculator"
	"github.com/thatsimonsguy/energy-accounting/internal/demand"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/occupancy"
)

// ErrNoInventory means there is nothing to compute: the inventory source is unavailable or
// holds no usable rows.
var ErrNoInventory = errors.New("inventory unavailable")

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Source  string      `json:"source"`
	Message string      `json:"message"`
}

type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Scenario    model.Scenario `json:"scenario"`

	Records []model.EquipmentRecord `json:"-"`
	Metrics []model.ComputedMetrics `json:"-"`

	Totals     Totals                  `json:"totals"`
	Demand     []demand.CategoryDemand `json:"demand"`
	Occupancy  occupancy.Series        `json:"-"`
	DailyPeaks []model.DailyPeak       `json:"daily_peaks"`
	Notices    []Notice                `json:"notices"`
}

// Build recomputes every derived figure from the dataset. Nothing is carried over between
// calls. It fails only with ErrNoInventory; a missing occupancy log becomes a notice.
func Build(ds model.Dataset, scenario model.Scenario) (*Report, error) {
	if len(ds.Records) == 0 {
		if ds.InventoryErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInventory, ds.InventoryErr)
		}
		return nil, ErrNoInventory
	}

	scenario = scenario.Sanitize()
	metrics := calculator.ComputeAll(ds.Records, scenario)
	series := occupancy.DailyOccupancy(ds.Events)

	rep := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Scenario:    scenario,
		Records:     ds.Records,
		Metrics:     metrics,
		Demand:      demand.ByCategory(ds.Records, metrics, scenario.Tariff.DemandRate),
		Occupancy:   series,
		DailyPeaks:  series.DailyPeaks(),
	}
	rep.Totals = ComputeTotals(ds.Records, metrics, scenario, series)
	rep.Totals.SkippedRows = ds.SkippedRows
	rep.Notices = notices(ds, series)

	log.Debug().
		Str("run_id", rep.RunID).
		Int("records", rep.Totals.Records).
		Float64("monthly_kwh", rep.Totals.MonthlyKWh).
		Float64("peak_kw", rep.Totals.PeakKW).
		Msg("Report built")
	return rep, nil
}

func notices(ds model.Dataset, series occupancy.Series) []Notice {
	var out []Notice
	switch {
	case ds.OccupancyErr != nil:
		out = append(out, Notice{
			Level:   NoticeWarning,
			Source:  "occupancy",
			Message: fmt.Sprintf("occupancy log unavailable, peak occupancy unknown: %v", ds.OccupancyErr),
		})
	case series.Empty():
		out = append(out, Notice{
			Level:   NoticeWarning,
			Source:  "occupancy",
			Message: "occupancy log has no usable events, peak occupancy unknown",
		})
	}
	if ds.DroppedEvents > 0 {
		out = append(out, Notice{
			Level:   NoticeInfo,
			Source:  "occupancy",
			Message: fmt.Sprintf("%d occupancy rows dropped", ds.DroppedEvents),
		})
	}
	if ds.SkippedRows > 0 {
		out = append(out, Notice{
			Level:   NoticeInfo,
			Source:  "inventory",
			Message: fmt.Sprintf("%d inventory rows skipped", ds.SkippedRows),
		})
	}
	return out
}

// Filter narrows the report's records to those matching every non-empty value in by, keeping
// records and metrics aligned.
func (r *Report) Filter(by map[Dimension]string) ([]model.EquipmentRecord, []model.ComputedMetrics) {
	var recs []model.EquipmentRecord
	var mets []model.ComputedMetrics
	for i, rec := range r.Records {
		keep := true
		for dim, want := range by {
			if want != "" && dim.Key(rec) != want {
				keep = false
				break
			}
		}
		if keep {
			recs = append(recs, rec)
			mets = append(mets, r.Metrics[i])
		}
	}
	return recs, mets
}
