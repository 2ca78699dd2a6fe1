package demand

import (
	"sort"

	"github.com/thatsimonsguy/energy-accounting/internal/calculator"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

type CapacityStatus string

const (
	StatusBelowPeak      CapacityStatus = "below_peak"
	StatusWithinCapacity CapacityStatus = "within_capacity"
	StatusAbovePeak      CapacityStatus = "above_peak"
)

// comfortableShare is the share of the estimated peak under which average use is considered
// well below the peak.
const comfortableShare = 0.7

type CategoryDemand struct {
	Category     model.Category `json:"category"`
	InstalledKW  float64        `json:"installed_kw"`
	EstimatedKW  float64        `json:"estimated_kw"`
	Factor       float64        `json:"factor"`
	DemandCharge float64        `json:"demand_charge"`
}

type Utilization struct {
	AveragePowerKW      float64        `json:"average_power_kw"`
	UsageVsPeakPct      float64        `json:"usage_vs_peak_pct"`
	UsageVsInstalledPct float64        `json:"usage_vs_installed_pct"`
	Status              CapacityStatus `json:"status"`
}

// EstimatePeak sums the estimated coincident demand of every record.
func EstimatePeak(metrics []model.ComputedMetrics) float64 {
	var total float64
	for _, m := range metrics {
		total += m.EstimatedDemandKW
	}
	return total
}

// ByCategory subtotals installed and estimated demand per category, largest first. records
// and metrics must be index-aligned.
func ByCategory(records []model.EquipmentRecord, metrics []model.ComputedMetrics, demandRate float64) []CategoryDemand {
	byCat := make(map[model.Category]*CategoryDemand)
	for i, rec := range records {
		if i >= len(metrics) {
			break
		}
		cd, ok := byCat[rec.Category]
		if !ok {
			cd = &CategoryDemand{Category: rec.Category, Factor: calculator.DemandFactor(rec.Category)}
			byCat[rec.Category] = cd
		}
		cd.InstalledKW += metrics[i].InstalledKW
		cd.EstimatedKW += metrics[i].EstimatedDemandKW
	}

	out := make([]CategoryDemand, 0, len(byCat))
	for _, cd := range byCat {
		cd.DemandCharge = cd.EstimatedKW * demandRate
		out = append(out, *cd)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EstimatedKW != out[j].EstimatedKW {
			return out[i].EstimatedKW > out[j].EstimatedKW
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TransformerKVA sizes the transformer for the estimated peak at the given power factor.
func TransformerKVA(peakKW, powerFactor float64) float64 {
	if powerFactor <= 0 || peakKW <= 0 {
		return 0
	}
	return peakKW / powerFactor
}

// AveragePower spreads the monthly energy over every hour of the billing days.
func AveragePower(monthlyKWh float64, days int) float64 {
	hours := float64(days) * 24
	if hours <= 0 {
		return 0
	}
	return monthlyKWh / hours
}

func Utilize(avgKW, peakKW, installedKW float64) Utilization {
	u := Utilization{AveragePowerKW: avgKW}
	if peakKW > 0 {
		u.UsageVsPeakPct = avgKW / peakKW * 100
	}
	if installedKW > 0 {
		u.UsageVsInstalledPct = avgKW / installedKW * 100
	}
	switch {
	case avgKW <= 0, avgKW < comfortableShare*peakKW:
		u.Status = StatusBelowPeak
	case avgKW < peakKW:
		u.Status = StatusWithinCapacity
	default:
		u.Status = StatusAbovePeak
	}
	return u
}
