package model

import "math"

const (
	DefaultBillingDays       = 22
	DefaultAlwaysOnDays      = 30
	DefaultHoursPerDay       = 11.5 // 07:00-18:30 business window
	DefaultPeakHoursPerDay   = 0.5  // 18:00-18:30
	DefaultAlwaysOnPeakHours = 3.0
	DefaultPowerFactor       = 0.92
	DefaultDutyCycle         = 1.0
)

// DefaultAlwaysOnKeywords names equipment that runs around the clock wherever it is installed.
var DefaultAlwaysOnKeywords = []string{
	"SERVIDOR", "SERVER", "RACK", "NOBREAK", "NO-BREAK", "UPS",
	"GELADEIRA", "REFRIGERADOR", "FRIGOBAR",
}

func DefaultProfile() UsageProfile {
	hours := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		hours[c] = DefaultHoursPerDay
	}
	return UsageProfile{
		HoursPerDay: hours,
		DutyCycle: map[Category]float64{
			CategoryHVAC:     0.60,
			CategoryIT:       0.80,
			CategoryLighting: 1.00,
		},
		BillingDaysPerMonth:  DefaultBillingDays,
		AlwaysOnDaysPerMonth: DefaultAlwaysOnDays,
		AlwaysOnKeywords:     append([]string(nil), DefaultAlwaysOnKeywords...),
	}
}

func DefaultTariff() TariffSchedule {
	return TariffSchedule{
		PeakRate:          2.90,
		OffPeakRate:       0.70,
		DemandRate:        40.0,
		PeakHoursPerDay:   DefaultPeakHoursPerDay,
		AlwaysOnPeakHours: DefaultAlwaysOnPeakHours,
		PowerFactor:       DefaultPowerFactor,
	}
}

func DefaultScenario() Scenario {
	return Scenario{Profile: DefaultProfile(), Tariff: DefaultTariff()}
}

// Sanitize returns a copy with every input clamped into its valid range. Maps and slices are
// copied so the result shares nothing with the receiver.
func (s Scenario) Sanitize() Scenario {
	return Scenario{Profile: s.Profile.Sanitize(), Tariff: s.Tariff.Sanitize()}
}

func (p UsageProfile) Sanitize() UsageProfile {
	out := UsageProfile{
		HoursPerDay:          make(map[Category]float64, len(p.HoursPerDay)),
		DutyCycle:            make(map[Category]float64, len(p.DutyCycle)),
		BillingDaysPerMonth:  p.BillingDaysPerMonth,
		AlwaysOnDaysPerMonth: p.AlwaysOnDaysPerMonth,
		AlwaysOnRooms:        append([]string(nil), p.AlwaysOnRooms...),
		AlwaysOnKeywords:     append([]string(nil), p.AlwaysOnKeywords...),
	}
	for c, h := range p.HoursPerDay {
		out.HoursPerDay[c] = clamp(h, 0, 24)
	}
	for c, d := range p.DutyCycle {
		out.DutyCycle[c] = clamp(d, 0, 1)
	}
	if out.BillingDaysPerMonth <= 0 {
		out.BillingDaysPerMonth = DefaultBillingDays
	}
	if out.AlwaysOnDaysPerMonth <= 0 {
		out.AlwaysOnDaysPerMonth = DefaultAlwaysOnDays
	}
	return out
}

func (t TariffSchedule) Sanitize() TariffSchedule {
	t.PeakRate = clamp(t.PeakRate, 0, math.MaxFloat64)
	t.OffPeakRate = clamp(t.OffPeakRate, 0, math.MaxFloat64)
	t.DemandRate = clamp(t.DemandRate, 0, math.MaxFloat64)
	t.PeakHoursPerDay = clamp(t.PeakHoursPerDay, 0, 24)
	t.AlwaysOnPeakHours = clamp(t.AlwaysOnPeakHours, 0, 24)
	if t.PowerFactor <= 0 || t.PowerFactor > 1 || math.IsNaN(t.PowerFactor) {
		t.PowerFactor = DefaultPowerFactor
	}
	return t
}

// AverageRate is the flat mean of the peak and off-peak rates, used for savings estimates.
func (t TariffSchedule) AverageRate() float64 {
	return (t.PeakRate + t.OffPeakRate) / 2
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
