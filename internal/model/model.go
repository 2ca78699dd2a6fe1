package model

import "time"

const Unidentified = "Unidentified"

// RawRow is one inventory line as read from the source, keyed by lower-cased header.
type RawRow map[string]string

// InventoryColumns are the canonical inventory fields, in storage order.
var InventoryColumns = []string{
	"quantity", "rated_power", "power_unit", "category", "display_name",
	"generic_name", "room_id", "floor_id", "department",
}

type Category string

const (
	CategoryHVAC      Category = "HVAC"
	CategoryLighting  Category = "LIGHTING"
	CategoryIT        Category = "IT"
	CategoryAppliance Category = "APPLIANCE"
	CategoryElevator  Category = "ELEVATOR"
	CategoryPump      Category = "PUMP"
	CategoryOther     Category = "OTHER"
)

// Categories lists every category in classification order.
var Categories = []Category{
	CategoryHVAC,
	CategoryLighting,
	CategoryIT,
	CategoryAppliance,
	CategoryElevator,
	CategoryPump,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type PowerUnit string

const (
	UnitWatt       PowerUnit = "W"
	UnitBTUPerHour PowerUnit = "BTU/h"
	UnitHP         PowerUnit = "HP"
	UnitKW         PowerUnit = "kW"
	UnitUnknown    PowerUnit = ""
)

type EquipmentRecord struct {
	Quantity    int       `json:"quantity"`
	RatedPower  float64   `json:"rated_power"`
	PowerUnit   PowerUnit `json:"power_unit"`
	CategoryRaw string    `json:"category_raw"`
	Category    Category  `json:"category"`
	RoomID      string    `json:"room_id"`
	FloorID     string    `json:"floor_id"`
	Department  string    `json:"department"`
	DisplayName string    `json:"display_name"`
	GenericName string    `json:"generic_name"`

	EffectivePowerWatts float64 `json:"effective_power_watts"`
	TotalPowerWatts     float64 `json:"total_power_watts"`
	PowerImputed        bool    `json:"power_imputed"`
}

type UsageProfile struct {
	HoursPerDay          map[Category]float64 `json:"hours_per_day"`
	DutyCycle            map[Category]float64 `json:"duty_cycle"`
	BillingDaysPerMonth  int                  `json:"billing_days_per_month"`
	AlwaysOnDaysPerMonth int                  `json:"always_on_days_per_month"`
	AlwaysOnRooms        []string             `json:"always_on_rooms"`
	AlwaysOnKeywords     []string             `json:"always_on_keywords"`
}

type TariffSchedule struct {
	PeakRate          float64 `json:"peak_rate"`
	OffPeakRate       float64 `json:"offpeak_rate"`
	DemandRate        float64 `json:"demand_rate"`
	PeakHoursPerDay   float64 `json:"peak_hours_per_day"`
	AlwaysOnPeakHours float64 `json:"always_on_peak_hours"`
	PowerFactor       float64 `json:"power_factor"`
}

// Scenario is the full set of assumptions for one calculation run.
type Scenario struct {
	Profile UsageProfile   `json:"profile"`
	Tariff  TariffSchedule `json:"tariff"`
}

type ComputedMetrics struct {
	MonthlyKWh        float64 `json:"monthly_kwh"`
	PeakKWh           float64 `json:"peak_kwh"`
	OffPeakKWh        float64 `json:"offpeak_kwh"`
	MonthlyCost       float64 `json:"monthly_cost"`
	EstimatedDemandKW float64 `json:"estimated_demand_kw"`
	InstalledKW       float64 `json:"installed_kw"`
	HoursPerDay       float64 `json:"hours_per_day"`
	DaysPerMonth      int     `json:"days_per_month"`
	DutyCycle         float64 `json:"duty_cycle"`
	PeakFraction      float64 `json:"peak_fraction"`
	AlwaysOn          bool    `json:"always_on"`
}

type EventKind string

const (
	EventEntry EventKind = "ENTRY"
	EventExit  EventKind = "EXIT"
)

type OccupancyEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
}

// OccupancyPoint is the adjusted head count right after an event.
type OccupancyPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Day       string    `json:"day"`
	Count     int       `json:"count"`
}

type DailyPeak struct {
	Day   string    `json:"day"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// Dataset is everything loaded from the sources for one session. Records are normalized and
// never mutated afterwards.
type Dataset struct {
	Records       []EquipmentRecord
	SkippedRows   int
	Events        []OccupancyEvent
	DroppedEvents int
	InventoryErr  error
	OccupancyErr  error
	LoadedAt      time.Time
}
