package report

import (
	"sort"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/textmatch"
)

// ThermalKeywords picks out cooling, heating and kitchen equipment by generic name.
var ThermalKeywords = []string{
	"AR CONDICIONADO", "GELADEIRA", "FRIGOBAR", "REFRIGERADOR",
	"BEBEDOURO", "DESUMIDIFICADOR", "VENTILADOR", "MICROONDAS",
	"TORRADEIRA", "CAFETEIRA", "CHALEIRA", "FOGAO", "FORNO",
	"AQUECEDOR", "FOGAREIRO",
}

type NamedCost struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	MonthlyKWh  float64 `json:"monthly_kwh"`
	MonthlyCost float64 `json:"monthly_cost"`
}

type ThermalReport struct {
	Items       []NamedCost `json:"items"`
	MonthlyKWh  float64     `json:"monthly_kwh"`
	MonthlyCost float64     `json:"monthly_cost"`
}

// ThermalAndKitchen totals the equipment whose generic name matches ThermalKeywords, grouped by
// that name, most expensive first.
func ThermalAndKitchen(records []model.EquipmentRecord, metrics []model.ComputedMetrics) ThermalReport {
	byName := make(map[string]*NamedCost)
	var rep ThermalReport
	for i, rec := range records {
		if i >= len(metrics) {
			break
		}
		if !textmatch.ContainsAny(rec.GenericName, ThermalKeywords) {
			continue
		}
		nc, ok := byName[rec.GenericName]
		if !ok {
			nc = &NamedCost{Name: rec.GenericName}
			byName[rec.GenericName] = nc
		}
		nc.Quantity += rec.Quantity
		nc.MonthlyKWh += metrics[i].MonthlyKWh
		nc.MonthlyCost += metrics[i].MonthlyCost
		rep.MonthlyKWh += metrics[i].MonthlyKWh
		rep.MonthlyCost += metrics[i].MonthlyCost
	}

	rep.Items = make([]NamedCost, 0, len(byName))
	for _, nc := range byName {
		rep.Items = append(rep.Items, *nc)
	}
	sort.Slice(rep.Items, func(i, j int) bool {
		if rep.Items[i].MonthlyCost != rep.Items[j].MonthlyCost {
			return rep.Items[i].MonthlyCost > rep.Items[j].MonthlyCost
		}
		return rep.Items[i].Name < rep.Items[j].Name
	})
	return rep
}
