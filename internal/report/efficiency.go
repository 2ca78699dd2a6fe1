package report

import (
	"math"
	"sort"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

// ReductionPotential is the share of each category's monthly energy that a typical efficiency
// programme can remove.
var ReductionPotential = map[model.Category]float64{
	model.CategoryLighting:  0.60,
	model.CategoryHVAC:      0.35,
	model.CategoryIT:        0.40,
	model.CategoryAppliance: 0.20,
	model.CategoryElevator:  0.05,
	model.CategoryPump:      0.15,
	model.CategoryOther:     0.10,
}

const defaultReduction = 0.10

type CategorySavings struct {
	Category     model.Category `json:"category"`
	MonthlyKWh   float64        `json:"monthly_kwh"`
	Reduction    float64        `json:"reduction"`
	SavingsKWh   float64        `json:"savings_kwh"`
	SavingsValue float64        `json:"savings_value"`
}

type EfficiencyReport struct {
	Categories   []CategorySavings `json:"categories"`
	AverageRate  float64           `json:"average_rate"`
	SavingsKWh   float64           `json:"savings_kwh"`
	SavingsValue float64           `json:"savings_value"`
}

// Efficiency estimates the monthly savings per category, priced at the mean of the peak and
// off-peak rates.
func Efficiency(records []model.EquipmentRecord, metrics []model.ComputedMetrics, tariff model.TariffSchedule) EfficiencyReport {
	rate := tariff.Sanitize().AverageRate()
	rep := EfficiencyReport{AverageRate: rate}

	for _, g := range GroupBy(records, metrics, ByCategory) {
		cat := model.Category(g.Key)
		reduction, ok := ReductionPotential[cat]
		if !ok {
			reduction = defaultReduction
		}
		s := CategorySavings{
			Category:   cat,
			MonthlyKWh: g.MonthlyKWh,
			Reduction:  reduction,
			SavingsKWh: g.MonthlyKWh * reduction,
		}
		s.SavingsValue = s.SavingsKWh * rate
		rep.Categories = append(rep.Categories, s)
		rep.SavingsKWh += s.SavingsKWh
		rep.SavingsValue += s.SavingsValue
	}
	sort.SliceStable(rep.Categories, func(i, j int) bool {
		return rep.Categories[i].SavingsValue > rep.Categories[j].SavingsValue
	})
	return rep
}

const DefaultRetrofitBudget = 50000.0

// UnitCosts is the price of one replacement unit for each retrofit action.
type UnitCosts struct {
	LED        float64 `json:"led"`
	InverterAC float64 `json:"inverter_ac"`
	MiniPC     float64 `json:"mini_pc"`
}

func DefaultUnitCosts() UnitCosts {
	return UnitCosts{LED: 25, InverterAC: 3500, MiniPC: 2800}
}

// retrofitAction describes one replacement: the category it draws units from and the kW saved
// per replaced unit while running.
type retrofitAction struct {
	name     string
	category model.Category
	savedKW  float64
	unitCost func(UnitCosts) float64
}

// Actions are funded in this order until the budget runs out.
var retrofitActions = []retrofitAction{
	{"led", model.CategoryLighting, 0.030 * 0.60, func(c UnitCosts) float64 { return c.LED }},
	{"inverter_ac", model.CategoryHVAC, 1.4 * 0.35, func(c UnitCosts) float64 { return c.InverterAC }},
	{"mini_pc", model.CategoryIT, 0.115, func(c UnitCosts) float64 { return c.MiniPC }},
}

type RetrofitStep struct {
	Action         string         `json:"action"`
	Category       model.Category `json:"category"`
	Available      int            `json:"available"`
	UnitCost       float64        `json:"unit_cost"`
	Allocated      float64        `json:"allocated"`
	Units          int            `json:"units"`
	MonthlySavings float64        `json:"monthly_savings"`
}

type PaybackRating string

const (
	PaybackExcellent PaybackRating = "excellent"
	PaybackGood      PaybackRating = "good"
	PaybackLong      PaybackRating = "long"
	PaybackUnknown   PaybackRating = "unknown"
)

type Retrofit struct {
	Budget         float64        `json:"budget"`
	Steps          []RetrofitStep `json:"steps"`
	MonthlySavings float64        `json:"monthly_savings"`
	// Nil when nothing is saved.
	PaybackMonths *float64      `json:"payback_months"`
	Rating        PaybackRating `json:"rating"`
}

// SimulateRetrofit spends budget on LED lamps, then inverter air conditioners, then mini PCs,
// never buying more units than the inventory holds. Savings use each category's configured
// hours, the billing days and the average rate.
func SimulateRetrofit(records []model.EquipmentRecord, scenario model.Scenario, budget float64, costs UnitCosts) Retrofit {
	if budget < 0 || math.IsNaN(budget) {
		budget = 0
	}
	scenario = scenario.Sanitize()
	available := make(map[model.Category]int)
	for _, rec := range records {
		available[rec.Category] += rec.Quantity
	}

	rate := scenario.Tariff.AverageRate()
	days := float64(scenario.Profile.BillingDaysPerMonth)
	res := Retrofit{Budget: budget}
	remaining := budget

	for _, a := range retrofitActions {
		step := RetrofitStep{
			Action:    a.name,
			Category:  a.category,
			Available: available[a.category],
			UnitCost:  a.unitCost(costs),
		}
		if step.UnitCost > 0 {
			step.Allocated = math.Min(remaining, float64(step.Available)*step.UnitCost)
			step.Units = int(step.Allocated / step.UnitCost)
		}
		remaining -= step.Allocated
		hours := scenario.Profile.HoursPerDay[a.category]
		step.MonthlySavings = float64(step.Units) * a.savedKW * hours * days * rate
		res.MonthlySavings += step.MonthlySavings
		res.Steps = append(res.Steps, step)
	}

	res.Rating = PaybackUnknown
	if res.MonthlySavings > 0 {
		months := budget / res.MonthlySavings
		res.PaybackMonths = &months
		switch {
		case months < 12:
			res.Rating = PaybackExcellent
		case months < 36:
			res.Rating = PaybackGood
		default:
			res.Rating = PaybackLong
		}
	}
	return res
}
