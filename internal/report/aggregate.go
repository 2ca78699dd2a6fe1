package report

import (
	"fmt"
	"sort"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

type Dimension string

const (
	ByCategory   Dimension = "category"
	ByRoom       Dimension = "room"
	ByFloor      Dimension = "floor"
	ByDepartment Dimension = "department"
)

var Dimensions = []Dimension{ByCategory, ByRoom, ByFloor, ByDepartment}

func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// Key returns the value of rec along the dimension.
func (d Dimension) Key(rec model.EquipmentRecord) string {
	switch d {
	case ByCategory:
		return string(rec.Category)
	case ByRoom:
		return rec.RoomID
	case ByFloor:
		return rec.FloorID
	case ByDepartment:
		return rec.Department
	}
	return model.Unidentified
}

type Group struct {
	Key         string  `json:"key"`
	Records     int     `json:"records"`
	Quantity    int     `json:"quantity"`
	InstalledKW float64 `json:"installed_kw"`
	DemandKW    float64 `json:"demand_kw"`
	MonthlyKWh  float64 `json:"monthly_kwh"`
	PeakKWh     float64 `json:"peak_kwh"`
	OffPeakKWh  float64 `json:"offpeak_kwh"`
	MonthlyCost float64 `json:"monthly_cost"`
}

func (g *Group) add(rec model.EquipmentRecord, m model.ComputedMetrics) {
	g.Records++
	g.Quantity += rec.Quantity
	g.InstalledKW += m.InstalledKW
	g.DemandKW += m.EstimatedDemandKW
	g.MonthlyKWh += m.MonthlyKWh
	g.PeakKWh += m.PeakKWh
	g.OffPeakKWh += m.OffPeakKWh
	g.MonthlyCost += m.MonthlyCost
}

// GroupBy reduces index-aligned records and metrics along dim, most expensive group first.
func GroupBy(records []model.EquipmentRecord, metrics []model.ComputedMetrics, dim Dimension) []Group {
	groups := make(map[string]*Group)
	for i, rec := range records {
		if i >= len(metrics) {
			break
		}
		key := dim.Key(rec)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key}
			groups[key] = g
		}
		g.add(rec, metrics[i])
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthlyCost != out[j].MonthlyCost {
			return out[i].MonthlyCost > out[j].MonthlyCost
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// AverageQuantity is the mean number of installed units per distinct value of dim.
func AverageQuantity(records []model.EquipmentRecord, dim Dimension) float64 {
	perKey := make(map[string]int)
	total := 0
	for _, rec := range records {
		perKey[dim.Key(rec)] += rec.Quantity
		total += rec.Quantity
	}
	if len(perKey) == 0 {
		return 0
	}
	return float64(total) / float64(len(perKey))
}
