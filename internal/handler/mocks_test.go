package handler

import (
	"context"

	"dealerdesk/internal/model"
	"dealerdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func setUserIDMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// MockVehicleService is a mock implementation of service.VehicleService
type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) CreateVehicle(ctx context.Context, userID string, req service.CreateVehicleRequest) (service.VehicleResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(service.VehicleResponse), args.Error(1)
}

func (m *MockVehicleService) UpdateVehicle(ctx context.Context, userID string, id string, req service.UpdateVehicleRequest) (service.VehicleResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return args.Get(0).(service.VehicleResponse), args.Error(1)
}

func (m *MockVehicleService) DeleteVehicle(ctx context.Context, userID string, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockVehicleService) GetVehicle(ctx context.Context, id string) (*service.VehicleDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VehicleDetailResponse), args.Error(1)
}

func (m *MockVehicleService) GetVehicles(ctx context.Context, status, vehicleMake, search string, page, limit int) ([]service.VehicleResponse, int64, error) {
	args := m.Called(ctx, status, vehicleMake, search, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]service.VehicleResponse), args.Get(1).(int64), args.Error(2)
}

// MockVendorService is a mock implementation of service.VendorService
type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) CreateVendor(ctx context.Context, userID string, req service.CreateVendorRequest) (service.VendorResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(service.VendorResponse), args.Error(1)
}

func (m *MockVendorService) UpdateVendor(ctx context.Context, userID string, id string, req service.UpdateVendorRequest) (service.VendorResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return args.Get(0).(service.VendorResponse), args.Error(1)
}

func (m *MockVendorService) DeleteVendor(ctx context.Context, userID string, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockVendorService) GetVendors(ctx context.Context, vendorType, search string, page, limit int) ([]service.VendorResponse, int64, error) {
	args := m.Called(ctx, vendorType, search, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]service.VendorResponse), args.Get(1).(int64), args.Error(2)
}

// MockReportService is a mock implementation of service.ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GetProfitLossReport(ctx context.Context, filter model.ReportFilter) ([]model.ProfitLossRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProfitLossRow), args.Error(1)
}

func (m *MockReportService) GetVehicleProfitLoss(ctx context.Context, id uuid.UUID) (*model.ProfitLossRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProfitLossRow), args.Error(1)
}

func (m *MockReportService) GetInventoryAging(ctx context.Context) ([]model.InventoryAgingRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryAgingRow), args.Error(1)
}

func (m *MockReportService) GetExpenseBreakdown(ctx context.Context, filter model.ReportFilter) ([]model.ExpenseBreakdownRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpenseBreakdownRow), args.Error(1)
}

func (m *MockReportService) GetDashboardKpis(ctx context.Context) (model.DashboardKpi, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.DashboardKpi), args.Error(1)
}

// MockExportService is a mock implementation of service.ExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ProfitLossCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExportService) InventoryAgingCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExportService) ExpenseBreakdownCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExportService) ProfitLossXLSX(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
