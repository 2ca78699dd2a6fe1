package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/energy-accounting/internal/config"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
	"github.com/thatsimonsguy/energy-accounting/internal/report"
)

type fakeSource struct {
	dataset     model.Dataset
	gets        int
	invalidated int
	ctxErr      error
}

func (f *fakeSource) Get(ctx context.Context) model.Dataset {
	f.gets++
	f.ctxErr = ctx.Err()
	return f.dataset
}

func (f *fakeSource) Invalidate() {
	f.invalidated++
}

func record(cat model.Category, qty int, watts float64, room, floor, dept, name string) model.EquipmentRecord {
	return model.EquipmentRecord{
		Quantity:            qty,
		RatedPower:          watts,
		PowerUnit:           model.UnitWatt,
		Category:            cat,
		RoomID:              room,
		FloorID:             floor,
		Department:          dept,
		DisplayName:         name,
		GenericName:         name,
		EffectivePowerWatts: watts,
		TotalPowerWatts:     watts * float64(qty),
	}
}

func testDataset() model.Dataset {
	day := time.Date(2025, 10, 1, 7, 0, 0, 0, time.UTC)
	return model.Dataset{
		Records: []model.EquipmentRecord{
			record(model.CategoryHVAC, 2, 1000, "101", "1", "Reitoria", "Ar condicionado"),
			record(model.CategoryLighting, 10, 40, "101", "1", "Reitoria", "Lâmpada"),
			record(model.CategoryIT, 3, 200, "202", "2", "Biblioteca", "Computador"),
		},
		Events: []model.OccupancyEvent{
			{Timestamp: day, Kind: model.EventEntry},
			{Timestamp: day.Add(time.Minute), Kind: model.EventEntry},
			{Timestamp: day.Add(time.Hour), Kind: model.EventExit},
		},
	}
}

func setupTestServer(t *testing.T, ds model.Dataset) (*Server, *fakeSource) {
	t.Helper()
	src := &fakeSource{dataset: ds}
	cfg := &config.Config{
		Profile:        model.DefaultProfile(),
		Tariff:         model.DefaultTariff(),
		Retrofit:       report.DefaultUnitCosts(),
		RetrofitBudget: report.DefaultRetrofitBudget,
	}
	cfg.Profile.AlwaysOnKeywords = nil
	return NewServer(src, cfg), src
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGetSummary(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())
	var reports int
	server.OnReport = func(*report.Report) { reports++ }

	w := do(t, server, http.MethodGet, "/api/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Totals.Records)
	assert.InDelta(t, 3.0, resp.Totals.InstalledKW, 1e-9)
	require.NotNil(t, resp.Totals.PeakOccupancy)
	assert.Equal(t, 2, *resp.Totals.PeakOccupancy)
	assert.Equal(t, 1, reports)
}

func TestNoInventory_ServiceUnavailable(t *testing.T) {
	server, _ := setupTestServer(t, model.Dataset{InventoryErr: errors.New("connection refused")})

	for _, path := range []string{"/api/summary", "/api/equipment", "/api/aggregates/room", "/api/demand", "/api/thermal"} {
		w := do(t, server, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "connection refused")
	}
}

func TestOccupancyAbsent_IsNotice(t *testing.T) {
	ds := testDataset()
	ds.Events = nil
	ds.OccupancyErr = errors.New("no such file")
	server, _ := setupTestServer(t, ds)

	w := do(t, server, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Totals.PeakOccupancy)
	require.NotEmpty(t, resp.Notices)
	assert.Equal(t, report.NoticeWarning, resp.Notices[0].Level)

	w = do(t, server, http.MethodGet, "/api/occupancy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var occ OccupancyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &occ))
	assert.False(t, occ.Available)
	assert.Nil(t, occ.Peak)
}

func TestGetEquipment_Filters(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/equipment?room=101&category=hvac", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []EquipmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, model.CategoryHVAC, resp[0].Record.Category)
	assert.InDelta(t, 303.6, resp[0].Metrics.MonthlyKWh, 1e-9)

	w = do(t, server, http.MethodGet, "/api/equipment?category=heating", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAggregates(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/aggregates/floor", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp AggregatesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, report.ByFloor, resp.Dimension)
	assert.Len(t, resp.Groups, 2)
	assert.InDelta(t, 7.5, resp.AverageQuantity, 1e-9)

	w = do(t, server, http.MethodGet, "/api/aggregates/building", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDemand(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/demand", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DemandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 2.0*0.85 + 0.4*1.0 + 0.6*0.7
	assert.InDelta(t, 2.52, resp.PeakKW, 1e-9)
	assert.InDelta(t, 2.52/0.92, resp.TransformerKVA, 1e-9)
	require.Len(t, resp.Categories, 3)
	assert.Equal(t, model.CategoryHVAC, resp.Categories[0].Category)
}

func TestGetRetrofit(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/retrofit?budget=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp report.Retrofit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Budget)
	assert.Equal(t, 4, resp.Steps[0].Units)

	w = do(t, server, http.MethodGet, "/api/retrofit?budget=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEfficiencyAndThermal(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/efficiency", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var eff report.EfficiencyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eff))
	assert.Len(t, eff.Categories, 3)
	assert.Greater(t, eff.SavingsValue, 0.0)

	w = do(t, server, http.MethodGet, "/api/thermal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var th report.ThermalReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &th))
	require.Len(t, th.Items, 1)
	assert.Equal(t, "Ar condicionado", th.Items[0].Name)
}

func TestScenario_UpdateTriggersRecompute(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	before := do(t, server, http.MethodGet, "/api/summary", nil)
	var first SummaryResponse
	require.NoError(t, json.Unmarshal(before.Body.Bytes(), &first))

	w := do(t, server, http.MethodPut, "/api/scenario", []byte(`{"tariff": {"offpeak_rate": -3, "peak_rate": 0}}`))
	require.Equal(t, http.StatusOK, w.Code)
	var sc model.Scenario
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sc))
	assert.Equal(t, 0.0, sc.Tariff.OffPeakRate)
	assert.Equal(t, 40.0, sc.Tariff.DemandRate)
	assert.Equal(t, 22, sc.Profile.BillingDaysPerMonth)

	after := do(t, server, http.MethodGet, "/api/summary", nil)
	var second SummaryResponse
	require.NoError(t, json.Unmarshal(after.Body.Bytes(), &second))
	assert.Equal(t, 0.0, second.Totals.VariableCost)
	assert.Greater(t, first.Totals.VariableCost, 0.0)
	assert.Equal(t, first.Totals.MonthlyKWh, second.Totals.MonthlyKWh)
	assert.NotEqual(t, first.RunID, second.RunID)

	w = do(t, server, http.MethodGet, "/api/scenario", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestScenario_Invalid(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodPut, "/api/scenario", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, server, http.MethodPut, "/api/scenario", []byte(`{"profile": {"hours_per_day": {"HEATING": 3}}}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, server, http.MethodDelete, "/api/scenario", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestReload(t *testing.T) {
	server, src := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodGet, "/api/reload", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(t, server, http.MethodPost, "/api/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, 3, resp.Events)
	assert.Equal(t, 1, src.invalidated)
}

func TestReload_SurvivesClientDisconnect(t *testing.T) {
	server, src := setupTestServer(t, testDataset())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, src.ctxErr)
}

func TestUnencodableReport_InternalError(t *testing.T) {
	ds := testDataset()
	ds.Records[0].TotalPowerWatts = math.Inf(1)
	server, _ := setupTestServer(t, ds)

	w := do(t, server, http.MethodGet, "/api/summary", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestPreflight(t *testing.T) {
	server, src := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodOptions, "/api/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, src.gets)
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t, testDataset())

	w := do(t, server, http.MethodPost, "/api/summary", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
