package calculator

import (
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/textmatch"
)

const alwaysOnHours = 24.0

// DemandFactors is the fraction of each category's installed capacity assumed to be drawing
// power at the building peak.
var DemandFactors = map[model.Category]float64{
	model.CategoryHVAC:      0.85,
	model.CategoryLighting:  1.00,
	model.CategoryIT:        0.70,
	model.CategoryAppliance: 0.50,
	model.CategoryElevator:  0.30,
	model.CategoryPump:      0.70,
	model.CategoryOther:     0.50,
}

const defaultDemandFactor = 0.50

func DemandFactor(c model.Category) float64 {
	if f, ok := DemandFactors[c]; ok {
		return f
	}
	return defaultDemandFactor
}

// IsAlwaysOn reports whether the record runs 24h: either its room is flagged or its name
// matches an always-on keyword.
func IsAlwaysOn(rec model.EquipmentRecord, profile model.UsageProfile) bool {
	for _, room := range profile.AlwaysOnRooms {
		if room == rec.RoomID {
			return true
		}
	}
	if len(profile.AlwaysOnKeywords) == 0 {
		return false
	}
	return textmatch.ContainsAny(rec.DisplayName, profile.AlwaysOnKeywords) ||
		textmatch.ContainsAny(rec.GenericName, profile.AlwaysOnKeywords)
}

func DutyCycle(profile model.UsageProfile, c model.Category) float64 {
	if d, ok := profile.DutyCycle[c]; ok {
		return d
	}
	return model.DefaultDutyCycle
}

// ComputeMetrics derives monthly energy, cost and estimated demand for one record.
func ComputeMetrics(rec model.EquipmentRecord, profile model.UsageProfile, tariff model.TariffSchedule) model.ComputedMetrics {
	alwaysOn := IsAlwaysOn(rec, profile)

	var hours, peakWindow float64
	var days int
	if alwaysOn {
		hours = alwaysOnHours
		days = profile.AlwaysOnDaysPerMonth
		peakWindow = tariff.AlwaysOnPeakHours
	} else {
		hours = profile.HoursPerDay[rec.Category]
		days = profile.BillingDaysPerMonth
		peakWindow = tariff.PeakHoursPerDay
	}
	duty := DutyCycle(profile, rec.Category)

	watts := rec.TotalPowerWatts
	if watts < 0 {
		watts = 0
	}

	kwh := watts * hours * float64(days) * duty / 1000
	pf := PeakFraction(peakWindow, hours)
	peakKWh := kwh * pf
	offPeakKWh := kwh * (1 - pf)

	return model.ComputedMetrics{
		MonthlyKWh:        kwh,
		PeakKWh:           peakKWh,
		OffPeakKWh:        offPeakKWh,
		MonthlyCost:       peakKWh*tariff.PeakRate + offPeakKWh*tariff.OffPeakRate,
		EstimatedDemandKW: watts / 1000 * DemandFactor(rec.Category),
		InstalledKW:       watts / 1000,
		HoursPerDay:       hours,
		DaysPerMonth:      days,
		DutyCycle:         duty,
		PeakFraction:      pf,
		AlwaysOn:          alwaysOn,
	}
}

// PeakFraction is the share of the daily operating hours billed at the peak rate. The peak
// window is capped at the operating hours; zero operating hours give zero.
func PeakFraction(peakHours, hoursPerDay float64) float64 {
	if hoursPerDay <= 0 || peakHours <= 0 {
		return 0
	}
	if peakHours > hoursPerDay {
		peakHours = hoursPerDay
	}
	return peakHours / hoursPerDay
}

// ComputeAll runs ComputeMetrics for every record under a sanitized copy of the scenario.
// The result is index-aligned with records.
func ComputeAll(records []model.EquipmentRecord, scenario model.Scenario) []model.ComputedMetrics {
	s := scenario.Sanitize()
	out := make([]model.ComputedMetrics, len(records))
	for i, rec := range records {
		out[i] = ComputeMetrics(rec, s.Profile, s.Tariff)
	}
	return out
}
