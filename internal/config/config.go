package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
)

type Config struct {
	ConfigFile string        `json:"-"`
	LogLevel   zerolog.Level `json:"-"`
	LogFile    string        `json:"-"`

	// InventorySource is a CSV path or URL. InventoryDB, when set, names a SQLite file whose
	// inventory table is read instead.
	InventorySource string `json:"inventory_source"`
	InventoryDB     string `json:"inventory_db"`
	OccupancySource string `json:"occupancy_source"`

	ListenPort          int  `json:"listen_port"`
	FetchTimeoutSeconds int  `json:"fetch_timeout_seconds"`
	ImputeMissingPower  bool `json:"impute_missing_power"`

	Profile        model.UsageProfile   `json:"profile"`
	Tariff         model.TariffSchedule `json:"tariff"`
	Retrofit       report.UnitCosts     `json:"retrofit"`
	RetrofitBudget float64              `json:"retrofit_budget"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	NtfyTopic  string `json:"ntfy_topic"`
	NtfyServer string `json:"ntfy_server"`
}

func Load() Config {
	var configFile, logLevel, logFile string

	flag.StringVar(&configFile, "config-file", "config.json", "Path to service config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "/var/log/energy-accounting.log", "Path to log file, empty for console only")
	flag.Parse()

	// a missing .env is fine
	_ = godotenv.Load()

	cfg := LoadFile(configFile)
	cfg.LogLevel = parseLogLevel(logLevel)
	cfg.LogFile = logFile
	return cfg
}

// LoadFile reads the JSON config at path, applies environment overrides and defaults, and
// validates the result. It panics on any problem.
func LoadFile(path string) Config {
	cfg := Config{
		ConfigFile: path,
		Profile:    model.DefaultProfile(),
		Tariff:     model.DefaultTariff(),
		Retrofit:   report.DefaultUnitCosts(),
	}

	file, err := os.Open(path)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.validate()
	return cfg
}

func (cfg *Config) applyEnv() {
	overrides := map[string]*string{
		"INVENTORY_SOURCE": &cfg.InventorySource,
		"INVENTORY_DB":     &cfg.InventoryDB,
		"OCCUPANCY_SOURCE": &cfg.OccupancySource,
		"NTFY_TOPIC":       &cfg.NtfyTopic,
		"DD_AGENT_ADDR":    &cfg.DDAgentAddr,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = strings.TrimSpace(v)
		}
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8080
	}
	if cfg.FetchTimeoutSeconds == 0 {
		cfg.FetchTimeoutSeconds = 30
	}
	if cfg.RetrofitBudget == 0 {
		cfg.RetrofitBudget = report.DefaultRetrofitBudget
	}
	if cfg.DDAgentAddr == "" {
		cfg.DDAgentAddr = "127.0.0.1:8125"
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "energy."
	}
	if cfg.NtfyServer == "" {
		cfg.NtfyServer = "https://ntfy.sh"
	}
}

// Scenario is the configured starting scenario.
func (cfg *Config) Scenario() model.Scenario {
	return model.Scenario{Profile: cfg.Profile, Tariff: cfg.Tariff}.Sanitize()
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var problems []string

	if cfg.InventorySource == "" && cfg.InventoryDB == "" {
		problems = append(problems, "inventory_source or inventory_db is required")
	}
	if cfg.ListenPort < 1 || cfg.ListenPort > 65535 {
		problems = append(problems, fmt.Sprintf("listen_port %d out of range", cfg.ListenPort))
	}
	if cfg.FetchTimeoutSeconds < 0 {
		problems = append(problems, "fetch_timeout_seconds must not be negative")
	}

	rates := map[string]float64{
		"tariff.peak_rate":     cfg.Tariff.PeakRate,
		"tariff.offpeak_rate":  cfg.Tariff.OffPeakRate,
		"tariff.demand_rate":   cfg.Tariff.DemandRate,
		"retrofit.led":         cfg.Retrofit.LED,
		"retrofit.inverter_ac": cfg.Retrofit.InverterAC,
		"retrofit.mini_pc":     cfg.Retrofit.MiniPC,
		"retrofit_budget":      cfg.RetrofitBudget,
	}
	for name, v := range rates {
		if v < 0 {
			problems = append(problems, name+" must not be negative")
		}
	}
	for c := range cfg.Profile.HoursPerDay {
		if !c.Valid() {
			problems = append(problems, fmt.Sprintf("profile.hours_per_day: unknown category %q", c))
		}
	}
	for c := range cfg.Profile.DutyCycle {
		if !c.Valid() {
			problems = append(problems, fmt.Sprintf("profile.duty_cycle: unknown category %q", c))
		}
	}

	if len(problems) > 0 {
		panic("Invalid config: " + strings.Join(problems, "; "))
	}
}
