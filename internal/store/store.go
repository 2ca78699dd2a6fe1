package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/db"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/normalizer"
	"github.com/thatsimonsguy/energy-accounting/internal/occupancy"
	"github.com/thatsimonsguy/energy-accounting/internal/source"
)

// Sources says where the inventory and occupancy data live. InventoryDB, when set, takes
// precedence over the Inventory CSV location.
type Sources struct {
	Inventory   string
	InventoryDB string
	Occupancy   string
	Normalize   normalizer.Options
}

// Store holds the dataset for the life of the process. It is loaded on first use and only
// reloaded after Invalidate.
type Store struct {
	mu      sync.Mutex
	sources Sources
	fetcher *source.Fetcher
	dataset *model.Dataset

	// OnLoad, if set, is called with every freshly loaded dataset.
	OnLoad func(model.Dataset)
}

func New(sources Sources, fetcher *source.Fetcher) *Store {
	return &Store{sources: sources, fetcher: fetcher}
}

// Get returns the cached dataset, loading it first if needed. Concurrent callers wait for a
// single load.
func (s *Store) Get(ctx context.Context) model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		ds := Load(ctx, s.sources, s.fetcher)
		s.dataset = &ds
		if s.OnLoad != nil {
			s.OnLoad(ds)
		}
	}
	return *s.dataset
}

// Invalidate drops the cached dataset so the next Get refetches every source.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = nil
	log.Info().Msg("Dataset cache invalidated")
}

var ErrEmptyInventory = errors.New("inventory has no usable rows")

// Load reads and normalizes both sources. Failures never abort: they leave the affected half
// of the dataset empty and are recorded on it.
func Load(ctx context.Context, src Sources, fetcher *source.Fetcher) model.Dataset {
	ds := model.Dataset{LoadedAt: time.Now()}

	rows, skipped, err := loadInventoryRows(ctx, src, fetcher)
	if err != nil {
		ds.InventoryErr = err
		log.Error().Err(err).Msg("Inventory unavailable")
	} else {
		res := normalizer.Normalize(rows, src.Normalize)
		ds.Records = res.Records
		ds.SkippedRows = skipped + res.Skipped
		if len(ds.Records) == 0 {
			ds.InventoryErr = ErrEmptyInventory
			log.Error().Int("skipped_rows", ds.SkippedRows).Msg("Inventory has no usable rows")
		}
	}

	events, dropped, err := loadOccupancy(ctx, src.Occupancy, fetcher)
	if err != nil {
		ds.OccupancyErr = err
		log.Warn().Err(err).Msg("Occupancy log unavailable")
	} else {
		ds.Events = events
		ds.DroppedEvents = dropped
	}

	log.Info().
		Int("records", len(ds.Records)).
		Int("skipped_rows", ds.SkippedRows).
		Int("events", len(ds.Events)).
		Int("dropped_events", ds.DroppedEvents).
		Msg("Dataset loaded")
	return ds
}

func loadInventoryRows(ctx context.Context, src Sources, fetcher *source.Fetcher) ([]model.RawRow, int, error) {
	if src.InventoryDB != "" {
		conn, err := db.OpenReadOnly(src.InventoryDB)
		if err != nil {
			return nil, 0, err
		}
		defer conn.Close()
		rows, err := db.LoadInventoryRows(conn)
		return rows, 0, err
	}

	data, err := fetcher.Fetch(ctx, src.Inventory)
	if err != nil {
		return nil, 0, fmt.Errorf("inventory: %w", err)
	}
	text, err := source.DecodeText(data)
	if err != nil {
		return nil, 0, fmt.Errorf("inventory: %w", err)
	}
	return source.ParseCSV(text)
}

func loadOccupancy(ctx context.Context, location string, fetcher *source.Fetcher) ([]model.OccupancyEvent, int, error) {
	if strings.TrimSpace(location) == "" {
		return nil, 0, fmt.Errorf("no occupancy source configured")
	}
	data, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, 0, fmt.Errorf("occupancy: %w", err)
	}
	return occupancy.LoadWorkbook(bytes.NewReader(data))
}
