package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/thatsimonsguy/energy-accounting/db"
	"github.com/thatsimonsguy/energy-accounting/internal/config"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/normalizer"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
	"github.com/thatsimonsguy/energy-accounting/internal/source"
	"github.com/thatsimonsguy/energy-accounting/internal/store"
	"github.com/thatsimonsguy/energy-accounting/system/startup"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath, command, csvPath, configFile, unitPath, execPath, user string
	flag.StringVar(&dbPath, "db", "data/inventory.db", "Path to the SQLite database file")
	flag.StringVar(&command, "cmd", "", "Command to run: import-csv, summary, install-service")
	flag.StringVar(&csvPath, "csv", "", "Inventory CSV path or URL for import-csv")
	flag.StringVar(&configFile, "config-file", "config.json", "Path to service config file for summary")
	flag.StringVar(&unitPath, "unit", "/etc/systemd/system/energy-accounting.service", "Unit file path for install-service")
	flag.StringVar(&execPath, "exec", "/usr/local/bin/energy-accounting", "Service binary for install-service")
	flag.StringVar(&user, "user", "energy", "Service user for install-service")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of energy-debug:")
		fmt.Println("  -cmd string\tCommand to run: import-csv, summary, install-service")
		fmt.Println("  -db string\tPath to the SQLite database file (default 'data/inventory.db')")
		fmt.Println("  -csv string\tInventory CSV path or URL for import-csv")
		fmt.Println("  -config-file string\tService config file for summary (default 'config.json')")
		fmt.Println("  -unit string\tUnit file path for install-service")
		fmt.Println("  -exec string\tService binary for install-service")
		fmt.Println("  -user string\tService user for install-service")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "import-csv":
		if csvPath == "" {
			fmt.Println("Error: -csv is required")
			os.Exit(1)
		}
		err = importCSV(csvPath, dbPath)
	case "summary":
		err = summary(configFile)
	case "install-service":
		err = startup.InstallService(unitPath, execPath, configFile, user)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
	fmt.Printf("Command %s completed successfully\n", command)
}

func importCSV(csvPath, dbPath string) error {
	data, err := source.NewFetcher(30*time.Second).Fetch(context.Background(), csvPath)
	if err != nil {
		return err
	}
	text, err := source.DecodeText(data)
	if err != nil {
		return err
	}
	rows, skipped, err := source.ParseCSV(text)
	if err != nil {
		return err
	}

	canonical := make([]model.RawRow, 0, len(rows))
	for _, row := range rows {
		canonical = append(canonical, normalizer.Canonical(row))
	}
	n, err := db.ImportInventoryCLI(dbPath, canonical)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d rows into %s (%d malformed lines skipped)\n", n, dbPath, skipped)
	return nil
}

func summary(configFile string) error {
	cfg := config.LoadFile(configFile)
	ds := store.Load(context.Background(), startup.Sources(&cfg), source.NewFetcher(time.Duration(cfg.FetchTimeoutSeconds)*time.Second))

	rep, err := report.Build(ds, cfg.Scenario())
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(struct {
		RunID   string          `json:"run_id"`
		Totals  report.Totals   `json:"totals"`
		Notices []report.Notice `json:"notices"`
	}{rep.RunID, rep.Totals, rep.Notices}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
