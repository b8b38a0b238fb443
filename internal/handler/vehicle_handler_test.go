package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealerdesk/internal/model"
	"dealerdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVehicleRouter(svc *MockVehicleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware("user-1"))
	h := NewVehicleHandler(svc)
	router.GET("/api/vehicles", h.ListVehicles)
	router.POST("/api/vehicles", h.CreateVehicle)
	router.GET("/api/vehicles/:id", h.GetVehicle)
	router.PUT("/api/vehicles/:id", h.UpdateVehicle)
	router.DELETE("/api/vehicles/:id", h.DeleteVehicle)
	return router
}

func TestVehicleHandler_Create(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	expectedReq := service.CreateVehicleRequest{
		VIN:             "1HGCM82633A004352",
		Make:            "Honda",
		Model:           "Accord",
		Year:            2019,
		Mileage:         42000,
		AcquisitionCost: "15000",
		AcquisitionDate: "2024-01-05",
	}
	svc.On("CreateVehicle", mock.Anything, "user-1", expectedReq).
		Return(service.VehicleResponse{
			ID:              "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01",
			VIN:             "1HGCM82633A004352",
			Make:            "Honda",
			Model:           "Accord",
			Year:            2019,
			Status:          model.VehicleStatusAcquired,
			AcquisitionCost: "15000.00",
			AcquisitionDate: "2024-01-05",
		}, nil)

	body := `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2019,"mileage":42000,"acquisition_cost":"15000","acquisition_date":"2024-01-05"}`
	req := httptest.NewRequest("POST", "/api/vehicles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "1HGCM82633A004352", data["vin"])
	assert.Equal(t, model.VehicleStatusAcquired, data["status"])
	svc.AssertExpectations(t)
}

func TestVehicleHandler_Create_DuplicateVIN(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	svc.On("CreateVehicle", mock.Anything, "user-1", mock.AnythingOfType("service.CreateVehicleRequest")).
		Return(service.VehicleResponse{}, fmt.Errorf("VIN 1HGCM82633A004352: %w", service.ErrDuplicateVIN))

	body := `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2019,"acquisition_cost":"15000"}`
	req := httptest.NewRequest("POST", "/api/vehicles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "VIN 1HGCM82633A004352: vehicle with this VIN already exists", resp["error"])
}

func TestVehicleHandler_Create_InvalidPayload(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	// vin and acquisition_cost are required
	body := `{"make":"Honda","model":"Accord","year":2019}`
	req := httptest.NewRequest("POST", "/api/vehicles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything, mock.Anything)
}

func TestVehicleHandler_Get_NotFound(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	svc.On("GetVehicle", mock.Anything, "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01").Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/vehicles/f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Vehicle not found", resp["error"])
}

func TestVehicleHandler_Get_IncludesProfitLoss(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	profit := decimal.NewFromInt(3500)
	detail := &service.VehicleDetailResponse{
		Vehicle: service.VehicleResponse{
			ID:     "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01",
			VIN:    "1HGCM82633A004352",
			Status: model.VehicleStatusSold,
		},
		Expenses:     []service.ExpenseResponse{},
		Transactions: []service.TransactionResponse{},
		ProfitLoss: &model.ProfitLossRow{
			TotalCost:  decimal.NewFromInt(17500),
			ProfitLoss: &profit,
			IsSold:     true,
		},
	}
	svc.On("GetVehicle", mock.Anything, "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01").Return(detail, nil)

	req := httptest.NewRequest("GET", "/api/vehicles/f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	vehicle := data["vehicle"].(map[string]interface{})
	assert.Equal(t, "1HGCM82633A004352", vehicle["vin"])
	pl := data["profit_loss"].(map[string]interface{})
	assert.Equal(t, "17500", pl["total_cost"])
	assert.Equal(t, true, pl["is_sold"])
}

func TestVehicleHandler_List_ReturnsPaginationMeta(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	vehicles := []service.VehicleResponse{
		{ID: "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", VIN: "1HGCM82633A004352", Status: model.VehicleStatusListed},
		{ID: "a1e2d3c4-b5a6-4978-8a9b-0c1d2e3f4a5b", VIN: "2T1BURHE5JC014321", Status: model.VehicleStatusListed},
	}
	svc.On("GetVehicles", mock.Anything, model.VehicleStatusListed, "", "", 2, 10).
		Return(vehicles, int64(35), nil)

	req := httptest.NewRequest("GET", "/api/vehicles?status=LISTED&page=2&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Len(t, resp["data"], 2)
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(10), meta["limit"])
	assert.Equal(t, float64(35), meta["total"])
	assert.Equal(t, float64(4), meta["total_pages"])
	svc.AssertExpectations(t)
}

func TestVehicleHandler_Update_NotFound(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	svc.On("UpdateVehicle", mock.Anything, "user-1", "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", mock.AnythingOfType("service.UpdateVehicleRequest")).
		Return(service.VehicleResponse{}, service.ErrVehicleNotFound)

	body := `{"status":"LISTED"}`
	req := httptest.NewRequest("PUT", "/api/vehicles/f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "vehicle not found", resp["error"])
}

func TestVehicleHandler_Delete(t *testing.T) {
	svc := new(MockVehicleService)
	router := newVehicleRouter(svc)

	svc.On("DeleteVehicle", mock.Anything, "user-1", "f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01").Return(nil)

	req := httptest.NewRequest("DELETE", "/api/vehicles/f3b9c6de-0a51-4c8f-9b2e-7d4a1c5e8f01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Vehicle deleted successfully", resp["data"])
	svc.AssertExpectations(t)
}
