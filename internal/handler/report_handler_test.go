package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dealerdesk/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReportRouter(reports *MockReportService, exports *MockExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	h := NewReportHandler(reports, exports)
	router.GET("/api/dashboard", h.GetDashboard)
	router.GET("/api/vehicles/:id/profit-loss", h.GetVehicleProfitLoss)
	router.GET("/api/reports/profit-loss", h.GetProfitLoss)
	router.GET("/api/reports/profit-loss/export", h.ExportProfitLoss)
	router.GET("/api/reports/inventory-aging", h.GetInventoryAging)
	router.GET("/api/reports/inventory-aging/export", h.ExportInventoryAging)
	router.GET("/api/reports/expense-breakdown", h.GetExpenseBreakdown)
	router.GET("/api/reports/expense-breakdown/export", h.ExportExpenseBreakdown)
	return router
}

func TestReportHandler_Dashboard(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	avg := 15.0
	reports.On("GetDashboardKpis", mock.Anything).Return(model.DashboardKpi{
		TotalInventory:           12,
		TotalInventoryValue:      decimal.NewFromInt(180000),
		VehiclesInReconditioning: 3,
		VehiclesListed:           5,
		VehiclesSoldThisMonth:    4,
		TotalProfitThisMonth:     decimal.NewFromInt(11000),
		AvgDaysToSale:            &avg,
	}, nil)

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(12), data["total_inventory"])
	assert.Equal(t, "180000", data["total_inventory_value"])
	assert.Equal(t, float64(5), data["vehicles_listed"])
	assert.Equal(t, float64(15), data["avg_days_to_sale"])
}

func TestReportHandler_ProfitLoss_PassesFilter(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expectedFilter := model.ReportFilter{StartDate: &start, Make: "Honda"}
	reports.On("GetProfitLossReport", mock.Anything, expectedFilter).
		Return([]model.ProfitLossRow{}, nil)

	req := httptest.NewRequest("GET", "/api/reports/profit-loss?start_date=2024-01-01&make=Honda", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	reports.AssertExpectations(t)
}

func TestReportHandler_ProfitLoss_InvalidStartDate(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	req := httptest.NewRequest("GET", "/api/reports/profit-loss?start_date=01/15/2024", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid start_date format, expected YYYY-MM-DD", resp["error"])
	reports.AssertNotCalled(t, "GetProfitLossReport", mock.Anything, mock.Anything)
}

func TestReportHandler_VehicleProfitLoss_BadID(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	req := httptest.NewRequest("GET", "/api/vehicles/not-a-uuid/profit-loss", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid vehicle id", resp["error"])
	reports.AssertNotCalled(t, "GetVehicleProfitLoss", mock.Anything, mock.Anything)
}

func TestReportHandler_VehicleProfitLoss_NotFound(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	id := uuid.MustParse("f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01")
	reports.On("GetVehicleProfitLoss", mock.Anything, id).Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/vehicles/f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01/profit-loss", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Vehicle not found", resp["error"])
}

func TestReportHandler_ExportProfitLossCSV(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	csv := "Vehicle ID,VIN,Make,Model,Acquisition Cost,Total Expenses,Sale Price,Profit/Loss\n"
	exports.On("ProfitLossCSV", mock.Anything, model.ReportFilter{}).Return([]byte(csv), nil)

	req := httptest.NewRequest("GET", "/api/reports/profit-loss/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename=profit_loss_"))
	assert.True(t, strings.HasSuffix(disposition, ".csv"))
	assert.Equal(t, csv, w.Body.String())
	exports.AssertExpectations(t)
}

func TestReportHandler_ExportProfitLossXLSX(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	exports.On("ProfitLossXLSX", mock.Anything, model.ReportFilter{}).Return([]byte{0x50, 0x4b, 0x03, 0x04}, nil)

	req := httptest.NewRequest("GET", "/api/reports/profit-loss/export?format=xlsx", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename=profit_loss_"))
	assert.True(t, strings.HasSuffix(disposition, ".xlsx"))
	exports.AssertNotCalled(t, "ProfitLossCSV", mock.Anything, mock.Anything)
}

func TestReportHandler_ExportInventoryAging(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	csv := "Vehicle ID,VIN,Make,Model,Year,Status,Days in Inventory,Total Cost\n"
	exports.On("InventoryAgingCSV", mock.Anything).Return([]byte(csv), nil)

	req := httptest.NewRequest("GET", "/api/reports/inventory-aging/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=inventory_aging_"))
	assert.Equal(t, csv, w.Body.String())
}

func TestReportHandler_ExportExpenseBreakdown_InvalidEndDate(t *testing.T) {
	reports := new(MockReportService)
	exports := new(MockExportService)
	router := newReportRouter(reports, exports)

	req := httptest.NewRequest("GET", "/api/reports/expense-breakdown/export?end_date=2024-13-45", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid end_date format, expected YYYY-MM-DD", resp["error"])
	exports.AssertNotCalled(t, "ExpenseBreakdownCSV", mock.Anything, mock.Anything)
}
