package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

func acUnit(qty int, watts float64) model.EquipmentRecord {
	return model.EquipmentRecord{
		Quantity:            qty,
		RatedPower:          watts,
		PowerUnit:           model.UnitWatt,
		Category:            model.CategoryHVAC,
		RoomID:              "101",
		DisplayName:         "Ar condicionado split",
		GenericName:         "Ar condicionado",
		EffectivePowerWatts: watts,
		TotalPowerWatts:     watts * float64(qty),
	}
}

func TestComputeMetrics_ReferenceScenario(t *testing.T) {
	profile := model.DefaultProfile()
	tariff := model.DefaultTariff()

	m := ComputeMetrics(acUnit(1, 1000), profile, tariff)

	assert.InDelta(t, 151.8, m.MonthlyKWh, 1e-9)
	assert.InDelta(t, 0.5/11.5, m.PeakFraction, 1e-9)
	assert.InDelta(t, 120.78, m.MonthlyCost, 0.01)
	assert.InDelta(t, 0.85, m.EstimatedDemandKW, 1e-9)
	assert.Equal(t, 11.5, m.HoursPerDay)
	assert.Equal(t, 22, m.DaysPerMonth)
	assert.False(t, m.AlwaysOn)
}

func TestComputeMetrics_PeakSplitConservesEnergy(t *testing.T) {
	profile := model.DefaultProfile()
	tariff := model.DefaultTariff()

	for _, hours := range []float64{0.25, 0.5, 1, 8, 11.5, 24} {
		profile.HoursPerDay[model.CategoryHVAC] = hours
		m := ComputeMetrics(acUnit(3, 750), profile, tariff)
		assert.InDelta(t, m.MonthlyKWh, m.PeakKWh+m.OffPeakKWh, 1e-9, "hours=%v", hours)
		assert.InDelta(t, m.MonthlyKWh, m.MonthlyKWh*m.PeakFraction+m.MonthlyKWh*(1-m.PeakFraction), 1e-9)
	}
}

func TestComputeMetrics_AlwaysOnRoomOverridesHours(t *testing.T) {
	profile := model.DefaultProfile()
	profile.AlwaysOnKeywords = nil
	profile.AlwaysOnRooms = []string{"101"}
	tariff := model.DefaultTariff()

	for _, c := range model.Categories {
		profile.HoursPerDay[c] = 2
		rec := acUnit(1, 100)
		rec.Category = c
		m := ComputeMetrics(rec, profile, tariff)

		assert.True(t, m.AlwaysOn)
		assert.Equal(t, 24.0, m.HoursPerDay)
		assert.Equal(t, 30, m.DaysPerMonth)
		assert.InDelta(t, 100*24*30*DutyCycle(profile, c)/1000, m.MonthlyKWh, 1e-9)
		assert.InDelta(t, 3.0/24.0, m.PeakFraction, 1e-9)
	}
}

func TestComputeMetrics_AlwaysOnKeyword(t *testing.T) {
	rec := model.EquipmentRecord{
		Quantity: 1, Category: model.CategoryAppliance, RoomID: "Copa",
		DisplayName: "Geladeira Frost Free", TotalPowerWatts: 150,
	}

	m := ComputeMetrics(rec, model.DefaultProfile(), model.DefaultTariff())

	assert.True(t, m.AlwaysOn)
	assert.InDelta(t, 150*24*30/1000.0, m.MonthlyKWh, 1e-9)
}

func TestComputeMetrics_ZeroSafety(t *testing.T) {
	profile := model.DefaultProfile()
	tariff := model.DefaultTariff()

	for _, rec := range []model.EquipmentRecord{acUnit(0, 1000), acUnit(5, 0)} {
		m := ComputeMetrics(rec, profile, tariff)
		assert.Zero(t, m.MonthlyKWh)
		assert.Zero(t, m.MonthlyCost)
		assert.Zero(t, m.EstimatedDemandKW)
	}
}

func TestComputeMetrics_ZeroHoursGivesZeroFraction(t *testing.T) {
	profile := model.DefaultProfile()
	profile.HoursPerDay[model.CategoryHVAC] = 0

	m := ComputeMetrics(acUnit(1, 1000), profile, model.DefaultTariff())

	assert.Zero(t, m.PeakFraction)
	assert.Zero(t, m.MonthlyKWh)
	assert.Zero(t, m.MonthlyCost)
}

func TestComputeMetrics_Monotonic(t *testing.T) {
	profile := model.DefaultProfile()
	tariff := model.DefaultTariff()

	prev := ComputeMetrics(acUnit(1, 100), profile, tariff)
	for _, step := range []struct {
		qty   int
		watts float64
	}{{1, 200}, {2, 200}, {2, 900}, {7, 900}, {7, 5000}} {
		m := ComputeMetrics(acUnit(step.qty, step.watts), profile, tariff)
		assert.GreaterOrEqual(t, m.MonthlyKWh, prev.MonthlyKWh)
		assert.GreaterOrEqual(t, m.MonthlyCost, prev.MonthlyCost)
		assert.GreaterOrEqual(t, m.EstimatedDemandKW, prev.EstimatedDemandKW)
		prev = m
	}
}

func TestDutyCycle_DefaultsToOne(t *testing.T) {
	profile := model.DefaultProfile()

	assert.Equal(t, 0.6, DutyCycle(profile, model.CategoryHVAC))
	assert.Equal(t, 1.0, DutyCycle(profile, model.CategoryElevator))
}

func TestPeakFraction(t *testing.T) {
	assert.Zero(t, PeakFraction(0.5, 0))
	assert.Zero(t, PeakFraction(0, 8))
	assert.Equal(t, 1.0, PeakFraction(3, 2))
	assert.Equal(t, 0.25, PeakFraction(2, 8))
}

func TestComputeAll_SanitizesScenario(t *testing.T) {
	scenario := model.DefaultScenario()
	scenario.Tariff.PeakRate = -10
	scenario.Tariff.OffPeakRate = -10

	metrics := ComputeAll([]model.EquipmentRecord{acUnit(1, 1000), acUnit(2, 500)}, scenario)

	require.Len(t, metrics, 2)
	for _, m := range metrics {
		assert.Zero(t, m.MonthlyCost)
		assert.Greater(t, m.MonthlyKWh, 0.0)
	}
}
