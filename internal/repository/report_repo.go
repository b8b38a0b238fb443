package repository

import (
	"context"
	"fmt"
	"time"

	"dealerdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository exposes the aggregate queries behind reports and the
// dashboard. Result rows carry raw sums; derived fields are filled by the
// service layer.
type ReportRepository interface {
	GetProfitLossRows(ctx context.Context, filter model.ReportFilter) ([]model.ProfitLossRow, error)
	GetVehicleProfitLossRow(ctx context.Context, id uuid.UUID) (*model.ProfitLossRow, error)
	GetInventoryAgingRows(ctx context.Context) ([]model.InventoryAgingRow, error)
	GetExpenseBreakdown(ctx context.Context, filter model.ReportFilter) ([]model.ExpenseBreakdownRow, error)

	CountVehiclesExcluding(ctx context.Context, statuses []string) (int64, error)
	SumAcquisitionCostExcluding(ctx context.Context, statuses []string) (decimal.Decimal, error)
	SumExpensesExcluding(ctx context.Context, statuses []string) (decimal.Decimal, error)
	CountVehiclesByStatus(ctx context.Context, status string) (int64, error)
	CountSoldBetween(ctx context.Context, start, end time.Time) (int64, error)
	GetSoldProfitRows(ctx context.Context, start, end time.Time) ([]model.ProfitLossRow, error)
	GetAvgDaysToSale(ctx context.Context) (*float64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

const profitLossSelect = "vehicles.id as vehicle_id, vehicles.vin, vehicles.make, vehicles.model, " +
	"vehicles.acquisition_cost, COALESCE(SUM(expenses.amount), 0) as total_expenses, " +
	"vehicles.sale_price, vehicles.sale_date"

const profitLossGroup = "vehicles.id, vehicles.vin, vehicles.make, vehicles.model, " +
	"vehicles.acquisition_cost, vehicles.acquisition_date, vehicles.sale_price, vehicles.sale_date"

func (r *reportRepository) GetProfitLossRows(ctx context.Context, filter model.ReportFilter) ([]model.ProfitLossRow, error) {
	var rows []model.ProfitLossRow

	query := GetDB(ctx, r.db).Table("vehicles").
		Select(profitLossSelect).
		Joins("LEFT JOIN expenses ON expenses.vehicle_id = vehicles.id")
	query = applyVehicleScope(query, filter)

	if err := query.
		Group(profitLossGroup).
		Order("vehicles.acquisition_date DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query profit/loss rows: %w", err)
	}
	return rows, nil
}

// GetVehicleProfitLossRow returns nil without error when the vehicle does not
// exist, so lookups stay distinct from store failures.
func (r *reportRepository) GetVehicleProfitLossRow(ctx context.Context, id uuid.UUID) (*model.ProfitLossRow, error) {
	var row model.ProfitLossRow

	result := GetDB(ctx, r.db).Table("vehicles").
		Select(profitLossSelect).
		Joins("LEFT JOIN expenses ON expenses.vehicle_id = vehicles.id").
		Where("vehicles.id = ?", id).
		Group(profitLossGroup).
		Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query vehicle profit/loss: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *reportRepository) GetInventoryAgingRows(ctx context.Context) ([]model.InventoryAgingRow, error) {
	var rows []model.InventoryAgingRow

	if err := GetDB(ctx, r.db).Table("vehicles").
		Select("vehicles.id as vehicle_id, vehicles.vin, vehicles.make, vehicles.model, vehicles.year, "+
			"vehicles.status, vehicles.acquisition_date, vehicles.acquisition_cost, "+
			"COALESCE(SUM(expenses.amount), 0) as total_expenses").
		Joins("LEFT JOIN expenses ON expenses.vehicle_id = vehicles.id").
		Where("vehicles.status = ?", model.VehicleStatusListed).
		Group("vehicles.id, vehicles.vin, vehicles.make, vehicles.model, vehicles.year, "+
			"vehicles.status, vehicles.acquisition_date, vehicles.acquisition_cost").
		Order("vehicles.acquisition_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query inventory aging rows: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) GetExpenseBreakdown(ctx context.Context, filter model.ReportFilter) ([]model.ExpenseBreakdownRow, error) {
	var rows []model.ExpenseBreakdownRow

	query := GetDB(ctx, r.db).Table("expenses").
		Select("expenses.type as expense_type, COALESCE(SUM(expenses.amount), 0) as total_amount, COUNT(expenses.id) as count")

	// Vehicle-attribute filters need the join; date filters hit expenses directly.
	if filter.HasVehicleScope() {
		query = query.Joins("JOIN vehicles ON vehicles.id = expenses.vehicle_id")
		if filter.Status != "" {
			query = query.Where("vehicles.status = ?", filter.Status)
		}
		if filter.Make != "" {
			query = query.Where("vehicles.make = ?", filter.Make)
		}
		if filter.Model != "" {
			query = query.Where("vehicles.model = ?", filter.Model)
		}
	}
	if filter.StartDate != nil {
		query = query.Where("expenses.expense_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("expenses.expense_date <= ?", *filter.EndDate)
	}

	if err := query.
		Group("expenses.type").
		Order("total_amount DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query expense breakdown: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) CountVehiclesExcluding(ctx context.Context, statuses []string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Vehicle{}).
		Where("status NOT IN ?", statuses).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return count, nil
}

func (r *reportRepository) SumAcquisitionCostExcluding(ctx context.Context, statuses []string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.Vehicle{}).
		Select("COALESCE(SUM(acquisition_cost), 0) as total").
		Where("status NOT IN ?", statuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum acquisition costs: %w", err)
	}
	return result.Total, nil
}

func (r *reportRepository) SumExpensesExcluding(ctx context.Context, statuses []string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Table("expenses").
		Select("COALESCE(SUM(expenses.amount), 0) as total").
		Joins("JOIN vehicles ON vehicles.id = expenses.vehicle_id").
		Where("vehicles.status NOT IN ?", statuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return result.Total, nil
}

func (r *reportRepository) CountVehiclesByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Vehicle{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vehicles by status: %w", err)
	}
	return count, nil
}

func (r *reportRepository) CountSoldBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Vehicle{}).
		Where("status = ? AND sale_date >= ? AND sale_date <= ?", model.VehicleStatusSold, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sold vehicles: %w", err)
	}
	return count, nil
}

func (r *reportRepository) GetSoldProfitRows(ctx context.Context, start, end time.Time) ([]model.ProfitLossRow, error) {
	var rows []model.ProfitLossRow

	if err := GetDB(ctx, r.db).Table("vehicles").
		Select(profitLossSelect).
		Joins("LEFT JOIN expenses ON expenses.vehicle_id = vehicles.id").
		Where("vehicles.status = ? AND vehicles.sale_price IS NOT NULL AND vehicles.sale_date >= ? AND vehicles.sale_date <= ?",
			model.VehicleStatusSold, start, end).
		Group(profitLossGroup).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query sold profit rows: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) GetAvgDaysToSale(ctx context.Context) (*float64, error) {
	query := `
		SELECT AVG(v.sale_date - v.acquisition_date)::float8 AS avg_days
		FROM vehicles v
		WHERE v.status = $1
		  AND v.sale_date IS NOT NULL
	`

	var result struct {
		AvgDays *float64
	}
	if err := GetDB(ctx, r.db).Raw(query, model.VehicleStatusSold).Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to query average days to sale: %w", err)
	}
	return result.AvgDays, nil
}

func applyVehicleScope(query *gorm.DB, filter model.ReportFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("vehicles.acquisition_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("vehicles.acquisition_date <= ?", *filter.EndDate)
	}
	if filter.Status != "" {
		query = query.Where("vehicles.status = ?", filter.Status)
	}
	if filter.Make != "" {
		query = query.Where("vehicles.make = ?", filter.Make)
	}
	if filter.Model != "" {
		query = query.Where("vehicles.model = ?", filter.Model)
	}
	return query
}
