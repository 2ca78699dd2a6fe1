package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/config"
	"github.com/thatsimonsguy/energy-accounting/internal/demand"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
)

// DatasetSource is the process-level dataset cache.
type DatasetSource interface {
	Get(ctx context.Context) model.Dataset
	Invalidate()
}

type Server struct {
	data      DatasetSource
	budget    float64
	unitCosts report.UnitCosts

	mu       sync.RWMutex
	scenario model.Scenario

	// OnReport, if set, is called with every report the server builds.
	OnReport func(*report.Report)
}

type SummaryResponse struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Totals      report.Totals   `json:"totals"`
	Notices     []report.Notice `json:"notices"`
}

type EquipmentResponse struct {
	Record  model.EquipmentRecord `json:"record"`
	Metrics model.ComputedMetrics `json:"metrics"`
}

type AggregatesResponse struct {
	Dimension       report.Dimension `json:"dimension"`
	Groups          []report.Group   `json:"groups"`
	AverageQuantity float64          `json:"average_quantity"`
}

type DemandResponse struct {
	PeakKW         float64                 `json:"peak_kw"`
	InstalledKW    float64                 `json:"installed_kw"`
	TransformerKVA float64                 `json:"transformer_kva"`
	DemandCharge   float64                 `json:"demand_charge"`
	Utilization    demand.Utilization      `json:"utilization"`
	Categories     []demand.CategoryDemand `json:"categories"`
}

type OccupancyResponse struct {
	Available  bool                   `json:"available"`
	Peak       *int                   `json:"peak"`
	PeakAt     *time.Time             `json:"peak_at"`
	DailyPeaks []model.DailyPeak      `json:"daily_peaks"`
	Points     []model.OccupancyPoint `json:"points"`
}

type ReloadResponse struct {
	Records        int    `json:"records"`
	SkippedRows    int    `json:"skipped_rows"`
	Events         int    `json:"events"`
	InventoryError string `json:"inventory_error,omitempty"`
	OccupancyError string `json:"occupancy_error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(data DatasetSource, cfg *config.Config) *Server {
	return &Server{
		data:      data,
		budget:    cfg.RetrofitBudget,
		unitCosts: cfg.Retrofit,
		scenario:  cfg.Scenario(),
	}
}

// Handler returns the API routes wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/equipment", s.handleEquipment)
	mux.HandleFunc("/api/aggregates/", s.handleAggregates)
	mux.HandleFunc("/api/demand", s.handleDemand)
	mux.HandleFunc("/api/efficiency", s.handleEfficiency)
	mux.HandleFunc("/api/retrofit", s.handleRetrofit)
	mux.HandleFunc("/api/thermal", s.handleThermal)
	mux.HandleFunc("/api/occupancy", s.handleOccupancy)
	mux.HandleFunc("/api/scenario", s.handleScenario)
	mux.HandleFunc("/api/reload", s.handleReload)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

// NewHTTPServer builds the listening server; the caller owns its lifecycle.
func (s *Server) NewHTTPServer(port int) *http.Server {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) currentScenario() model.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenario.Sanitize()
}

// buildReport runs a full recomputation for the request. It writes the error response itself
// and returns nil when the report cannot be built.
func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) *report.Report {
	ds := s.data.Get(r.Context())
	rep, err := report.Build(ds, s.currentScenario())
	if err != nil {
		if errors.Is(err, report.ErrNoInventory) {
			s.writeError(w, http.StatusServiceUnavailable, "Inventory unavailable, no figures can be computed: "+err.Error())
			return nil
		}
		log.Error().Err(err).Msg("Failed to build report")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	if s.OnReport != nil {
		s.OnReport(rep)
	}
	return rep
}

func (s *Server) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, SummaryResponse{
		RunID:       rep.RunID,
		GeneratedAt: rep.GeneratedAt,
		Totals:      rep.Totals,
		Notices:     rep.Notices,
	})
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	filter := map[report.Dimension]string{
		report.ByRoom:       q.Get("room"),
		report.ByFloor:      q.Get("floor"),
		report.ByDepartment: q.Get("department"),
		report.ByCategory:   strings.ToUpper(q.Get("category")),
	}
	if c := filter[report.ByCategory]; c != "" && !model.Category(c).Valid() {
		s.writeError(w, http.StatusBadRequest, "Unknown category: "+c)
		return
	}

	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	recs, mets := rep.Filter(filter)
	response := make([]EquipmentResponse, 0, len(recs))
	for i := range recs {
		response = append(response, EquipmentResponse{Record: recs[i], Metrics: mets[i]})
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	dim, err := report.ParseDimension(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/aggregates/"), "/"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Invalid dimension. Valid dimensions: category, room, floor, department")
		return
	}

	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, AggregatesResponse{
		Dimension:       dim,
		Groups:          report.GroupBy(rep.Records, rep.Metrics, dim),
		AverageQuantity: report.AverageQuantity(rep.Records, dim),
	})
}

func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, DemandResponse{
		PeakKW:         rep.Totals.PeakKW,
		InstalledKW:    rep.Totals.InstalledKW,
		TransformerKVA: rep.Totals.TransformerKVA,
		DemandCharge:   rep.Totals.DemandCharge,
		Utilization:    rep.Totals.Utilization,
		Categories:     rep.Demand,
	})
}

func (s *Server) handleEfficiency(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.Efficiency(rep.Records, rep.Metrics, rep.Scenario.Tariff))
}

func (s *Server) handleRetrofit(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	budget := s.budget
	if raw := r.URL.Query().Get("budget"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid budget. Must be a non-negative number")
			return
		}
		budget = v
	}

	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.SimulateRetrofit(rep.Records, rep.Scenario, budget, s.unitCosts))
}

func (s *Server) handleThermal(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.ThermalAndKitchen(rep.Records, rep.Metrics))
}

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	rep := s.buildReport(w, r)
	if rep == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, OccupancyResponse{
		Available:  !rep.Occupancy.Empty(),
		Peak:       rep.Totals.PeakOccupancy,
		PeakAt:     rep.Totals.PeakOccupancyAt,
		DailyPeaks: rep.DailyPeaks,
		Points:     rep.Occupancy.Points,
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.currentScenario())
	case http.MethodPut:
		s.setScenario(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// setScenario merges the request body over the current scenario; fields left out keep their
// value.
func (s *Server) setScenario(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	next := s.scenario.Sanitize()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	for c := range next.Profile.HoursPerDay {
		if !c.Valid() {
			s.mu.Unlock()
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category: %s", c))
			return
		}
	}
	s.scenario = next.Sanitize()
	current := s.scenario
	s.mu.Unlock()

	log.Info().
		Float64("peak_rate", current.Tariff.PeakRate).
		Float64("offpeak_rate", current.Tariff.OffPeakRate).
		Int("billing_days", current.Profile.BillingDaysPerMonth).
		Msg("Scenario updated via API")
	s.writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.data.Invalidate()
	// The cached dataset outlives this request.
	ds := s.data.Get(context.WithoutCancel(r.Context()))

	response := ReloadResponse{
		Records:     len(ds.Records),
		SkippedRows: ds.SkippedRows,
		Events:      len(ds.Events),
	}
	if ds.InventoryErr != nil {
		response.InventoryError = ds.InventoryErr.Error()
	}
	if ds.OccupancyErr != nil {
		response.OccupancyError = ds.OccupancyErr.Error()
	}
	log.Info().Int("records", response.Records).Msg("Dataset reloaded via API")
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		s.writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
