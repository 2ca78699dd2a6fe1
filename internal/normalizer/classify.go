package normalizer

import (
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/textmatch"
)

type Rule struct {
	Category model.Category
	Matcher  textmatch.Matcher
}

// Rules is evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{model.CategoryHVAC, textmatch.Matcher{Substrings: []string{"CLIM", "CONDICIONAD"}, Words: []string{"AR"}}},
	{model.CategoryLighting, textmatch.Matcher{Substrings: []string{"ILUM", "LAMP", "LUMINARIA"}}},
	{model.CategoryIT, textmatch.Matcher{Substrings: []string{"COMP", "MONIT", "INFORM"}}},
	{model.CategoryAppliance, textmatch.Matcher{Substrings: []string{"ELETRO", "DOMESTICO", "COPA", "COZINHA"}}},
	{model.CategoryElevator, textmatch.Matcher{Substrings: []string{"ELEV"}}},
	{model.CategoryPump, textmatch.Matcher{Substrings: []string{"BOMB"}}},
}

// Classify maps free-text category and name to a category. The category text is tried first,
// then the display name; anything unmatched is OTHER.
func Classify(categoryRaw, displayName string) model.Category {
	for _, text := range []string{categoryRaw, displayName} {
		for _, r := range Rules {
			if r.Matcher.Match(text) {
				return r.Category
			}
		}
	}
	return model.CategoryOther
}

type WattageDefault struct {
	Keyword string
	Watts   float64
}

// DefaultWattage backs ImputeMissingPower. Keys are name substrings, values are watts.
var DefaultWattage = []WattageDefault{
	{"FRIGOBAR", 80},
	{"GELADEIRA", 150},
	{"REFRIGERADOR", 150},
	{"BEBEDOURO", 100},
	{"MICROONDAS", 1200},
	{"CAFETEIRA", 800},
	{"CHALEIRA", 1500},
	{"AR CONDICIONADO", 1400},
	{"VENTILADOR", 100},
	{"COMPUTADOR", 200},
	{"NOTEBOOK", 65},
	{"MONITOR", 30},
	{"IMPRESSORA", 300},
	{"TELEVISOR", 120},
	{"LAMPADA", 40},
}

// LookupWattage returns the first default whose keyword appears in any of the names.
func LookupWattage(table []WattageDefault, names ...string) (float64, bool) {
	for _, d := range table {
		for _, n := range names {
			if textmatch.ContainsAny(n, []string{d.Keyword}) {
				return d.Watts, true
			}
		}
	}
	return 0, false
}
