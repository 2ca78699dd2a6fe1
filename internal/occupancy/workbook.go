package occupancy

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/textmatch"
)

var (
	timestampHeaders = []string{"DATAHORA", "TIMESTAMP", "DATETIME"}
	kindHeaders      = []string{"ENTRADASAIDA", "DIRECTION", "EVENT"}
)

// headerScanRows bounds how far down a sheet the header row is looked for.
const headerScanRows = 5

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
}

// LoadWorkbook reads entry/exit events from an XLSX workbook. The first sheet whose header
// carries both a timestamp and an entry/exit column is used, falling back to the first sheet.
func LoadWorkbook(r io.Reader) ([]model.OccupancyEvent, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open occupancy workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("occupancy workbook has no sheets")
	}

	var (
		chosen string
		rows   [][]string
		found  bool
	)
	for _, sheet := range sheets {
		sheetRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheet).Msg("Skipping unreadable occupancy sheet")
			continue
		}
		if !found {
			chosen, rows, found = sheet, sheetRows, true
		}
		if _, ok := findHeader(sheetRows); ok {
			chosen, rows = sheet, sheetRows
			break
		}
	}
	if !found {
		return nil, 0, fmt.Errorf("no readable sheet in occupancy workbook")
	}

	events, dropped := ParseEvents(rows)
	log.Info().
		Str("sheet", chosen).
		Int("events", len(events)).
		Int("dropped", dropped).
		Msg("Loaded occupancy log")
	return events, dropped, nil
}

// ParseEvents converts sheet rows into events. Rows with an unparseable timestamp or an
// unrecognised direction are dropped and counted.
func ParseEvents(rows [][]string) ([]model.OccupancyEvent, int) {
	headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, len(rows)
	}
	tsCol := columnIndex(rows[headerIdx], timestampHeaders)
	kindCol := columnIndex(rows[headerIdx], kindHeaders)

	var events []model.OccupancyEvent
	dropped := 0
	for _, row := range rows[headerIdx+1:] {
		if tsCol >= len(row) || kindCol >= len(row) {
			dropped++
			continue
		}
		ts, ok := ParseTimestamp(row[tsCol])
		if !ok {
			dropped++
			continue
		}
		kind, ok := ParseKind(row[kindCol])
		if !ok {
			dropped++
			continue
		}
		events = append(events, model.OccupancyEvent{Timestamp: ts, Kind: kind})
	}
	return events, dropped
}

func findHeader(rows [][]string) (int, bool) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if columnIndex(rows[i], timestampHeaders) >= 0 && columnIndex(rows[i], kindHeaders) >= 0 {
			return i, true
		}
	}
	return 0, false
}

func columnIndex(header []string, names []string) int {
	for i, h := range header {
		folded := strings.NewReplacer(" ", "", "_", "", "/", "").Replace(textmatch.Fold(h))
		for _, n := range names {
			if folded == n {
				return i
			}
		}
	}
	return -1
}

// ParseTimestamp accepts Excel serial dates and common textual layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseKind maps the direction column: "Entrada"/"E"/"Entry"/"In" are entries,
// "Saída"/"S"/"Exit"/"Out" are exits.
func ParseKind(s string) (model.EventKind, bool) {
	v := textmatch.Fold(s)
	switch {
	case v == "":
		return "", false
	case strings.HasPrefix(v, "ENTRY"), v == "IN":
		return model.EventEntry, true
	case strings.HasPrefix(v, "EXIT"), v == "OUT":
		return model.EventExit, true
	case v[0] == 'E':
		return model.EventEntry, true
	case v[0] == 'S':
		return model.EventExit, true
	}
	return "", false
}
