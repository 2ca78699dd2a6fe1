package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

const (
	// COP is the assumed average coefficient of performance for BTU-rated air conditioners.
	COP          = 3.0
	WattsPerBTUh = 0.293
	WattsPerHP   = 735.5
)

// Column aliases, checked in order. Headers are matched lower-cased.
var (
	quantityColumns    = []string{"quantity", "quant", "qtd", "quantidade"}
	ratedPowerColumns  = []string{"rated_power", "num_potencia", "potencia"}
	powerUnitColumns   = []string{"power_unit", "des_potencia", "unidade"}
	categoryColumns    = []string{"category", "des_categoria", "categoria"}
	displayNameColumns = []string{"display_name", "des_nome_equipamento", "equipamento"}
	genericNameColumns = []string{"generic_name", "des_nome_generico_equipamento"}
	roomColumns        = []string{"room_id", "id_sala", "sala"}
	floorColumns       = []string{"floor_id", "num_andar", "andar"}
	departmentColumns  = []string{"department", "setor"}
)

type Options struct {
	// ImputeMissingPower substitutes a name-keyed default wattage when rated power is zero.
	ImputeMissingPower bool
	DefaultWattage     []WattageDefault
}

type Result struct {
	Records []model.EquipmentRecord
	Skipped int
}

// Normalize turns raw inventory rows into equipment records. It never fails: bad cells fall
// back to defaults and rows with no usable content are skipped and counted.
func Normalize(rows []model.RawRow, opts Options) Result {
	res := Result{Records: make([]model.EquipmentRecord, 0, len(rows))}
	table := opts.DefaultWattage
	if table == nil {
		table = DefaultWattage
	}

	for _, row := range rows {
		if blankRow(row) {
			res.Skipped++
			continue
		}
		rec := normalizeRow(row)
		if rec.RatedPower == 0 && opts.ImputeMissingPower {
			if w, ok := LookupWattage(table, rec.DisplayName, rec.GenericName); ok {
				rec.RatedPower = w
				rec.PowerUnit = model.UnitWatt
				rec.PowerImputed = true
			}
		}
		rec.EffectivePowerWatts = finite(ConvertPower(rec.RatedPower, rec.PowerUnit))
		rec.TotalPowerWatts = finite(rec.EffectivePowerWatts * float64(rec.Quantity))
		res.Records = append(res.Records, rec)
	}

	log.Debug().
		Int("rows", len(rows)).
		Int("records", len(res.Records)).
		Int("skipped", res.Skipped).
		Msg("Normalized inventory")
	return res
}

func normalizeRow(row model.RawRow) model.EquipmentRecord {
	display := lookup(row, displayNameColumns)
	generic := lookup(row, genericNameColumns)
	if generic == "" {
		generic = display
	}
	categoryRaw := lookup(row, categoryColumns)

	return model.EquipmentRecord{
		Quantity:    parseQuantity(lookup(row, quantityColumns)),
		RatedPower:  parsePower(lookup(row, ratedPowerColumns)),
		PowerUnit:   ParsePowerUnit(lookup(row, powerUnitColumns)),
		CategoryRaw: categoryRaw,
		Category:    Classify(categoryRaw, display),
		RoomID:      identifier(lookup(row, roomColumns)),
		FloorID:     identifier(strings.TrimSuffix(lookup(row, floorColumns), ".0")),
		Department:  identifier(lookup(row, departmentColumns)),
		DisplayName: display,
		GenericName: generic,
	}
}

// ConvertPower returns the electrical draw in watts for a rating expressed in unit.
func ConvertPower(value float64, unit model.PowerUnit) float64 {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	switch unit {
	case model.UnitBTUPerHour:
		return value * WattsPerBTUh / COP
	case model.UnitHP:
		return value * WattsPerHP
	case model.UnitKW:
		return value * 1000
	default:
		return value
	}
}

func ParsePowerUnit(text string) model.PowerUnit {
	u := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case u == "":
		return model.UnitUnknown
	case strings.Contains(u, "BTU"):
		return model.UnitBTUPerHour
	case strings.Contains(u, "KW"):
		return model.UnitKW
	case strings.Contains(u, "HP"), strings.Contains(u, "CV"):
		return model.UnitHP
	case strings.Contains(u, "W"):
		return model.UnitWatt
	default:
		return model.UnitUnknown
	}
}

// ParseNumber accepts "1500", "1,5", "1.234,56" and "1,234.56".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Larger counts are treated as unreadable.
const maxQuantity = math.MaxInt32

func parseQuantity(s string) int {
	v, ok := ParseNumber(s)
	if !ok {
		return 1
	}
	if v < 0 {
		return 0
	}
	if v > maxQuantity {
		return 1
	}
	return int(v)
}

// finite maps overflowed or negative power to 0.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func parsePower(s string) float64 {
	v, ok := ParseNumber(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

func identifier(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return model.Unidentified
	}
	return s
}

func lookup(row model.RawRow, columns []string) string {
	for _, c := range columns {
		if v, ok := row[c]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func blankRow(row model.RawRow) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var canonicalAliases = map[string][]string{
	"quantity":     quantityColumns,
	"rated_power":  ratedPowerColumns,
	"power_unit":   powerUnitColumns,
	"category":     categoryColumns,
	"display_name": displayNameColumns,
	"generic_name": genericNameColumns,
	"room_id":      roomColumns,
	"floor_id":     floorColumns,
	"department":   departmentColumns,
}

// Canonical resolves column aliases so the row is keyed by model.InventoryColumns. Values are kept
// as raw text; nothing is parsed or converted.
func Canonical(row model.RawRow) model.RawRow {
	out := make(model.RawRow, len(model.InventoryColumns))
	for _, c := range model.InventoryColumns {
		out[c] = lookup(row, canonicalAliases[c])
	}
	return out
}
