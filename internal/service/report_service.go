package service

import (
	"context"
	"time"

	"dealerdesk/internal/model"
	"dealerdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService derives profit/loss, aging, expense breakdown and dashboard
// figures from the stored tables. The clock is injected so month boundaries
// and aging stay pinnable in tests.
type ReportService interface {
	GetProfitLossReport(ctx context.Context, filter model.ReportFilter) ([]model.ProfitLossRow, error)
	GetVehicleProfitLoss(ctx context.Context, id uuid.UUID) (*model.ProfitLossRow, error)
	GetInventoryAging(ctx context.Context) ([]model.InventoryAgingRow, error)
	GetExpenseBreakdown(ctx context.Context, filter model.ReportFilter) ([]model.ExpenseBreakdownRow, error)
	GetDashboardKpis(ctx context.Context) (model.DashboardKpi, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo, now: time.Now}
}

func (s *reportService) GetProfitLossReport(ctx context.Context, filter model.ReportFilter) ([]model.ProfitLossRow, error) {
	rows, err := s.reportRepo.GetProfitLossRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		deriveProfitLoss(&rows[i])
	}
	return rows, nil
}

// GetVehicleProfitLoss returns nil for an unknown vehicle rather than an
// error.
func (s *reportService) GetVehicleProfitLoss(ctx context.Context, id uuid.UUID) (*model.ProfitLossRow, error) {
	row, err := s.reportRepo.GetVehicleProfitLossRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	deriveProfitLoss(row)
	return row, nil
}

// GetInventoryAging covers LISTED vehicles only. Days in inventory are whole
// days, truncated.
func (s *reportService) GetInventoryAging(ctx context.Context) ([]model.InventoryAgingRow, error) {
	rows, err := s.reportRepo.GetInventoryAgingRows(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range rows {
		rows[i].DaysInInventory = wholeDaysBetween(rows[i].AcquisitionDate, now)
		rows[i].TotalCost = rows[i].AcquisitionCost.Add(rows[i].TotalExpenses)
	}
	return rows, nil
}

func (s *reportService) GetExpenseBreakdown(ctx context.Context, filter model.ReportFilter) ([]model.ExpenseBreakdownRow, error) {
	return s.reportRepo.GetExpenseBreakdown(ctx, filter)
}

// GetDashboardKpis snapshots the headline numbers. The queries run
// independently, not inside one transaction, so a concurrent write can land
// between them.
func (s *reportService) GetDashboardKpis(ctx context.Context) (model.DashboardKpi, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	excluded := []string{model.VehicleStatusSold, model.VehicleStatusArchived}

	totalInventory, err := s.reportRepo.CountVehiclesExcluding(ctx, excluded)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	acquisitionValue, err := s.reportRepo.SumAcquisitionCostExcluding(ctx, excluded)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	expenseValue, err := s.reportRepo.SumExpensesExcluding(ctx, excluded)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	reconditioning, err := s.reportRepo.CountVehiclesByStatus(ctx, model.VehicleStatusReconditioning)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	listed, err := s.reportRepo.CountVehiclesByStatus(ctx, model.VehicleStatusListed)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	soldThisMonth, err := s.reportRepo.CountSoldBetween(ctx, monthStart, now)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	profitRows, err := s.reportRepo.GetSoldProfitRows(ctx, monthStart, now)
	if err != nil {
		return model.DashboardKpi{}, err
	}
	profitThisMonth := decimal.Zero
	for _, row := range profitRows {
		if row.SalePrice == nil {
			continue
		}
		profitThisMonth = profitThisMonth.Add(row.SalePrice.Sub(row.AcquisitionCost).Sub(row.TotalExpenses))
	}

	avgDays, err := s.reportRepo.GetAvgDaysToSale(ctx)
	if err != nil {
		return model.DashboardKpi{}, err
	}

	return model.DashboardKpi{
		TotalInventory:           int(totalInventory),
		TotalInventoryValue:      acquisitionValue.Add(expenseValue),
		VehiclesInReconditioning: int(reconditioning),
		VehiclesListed:           int(listed),
		VehiclesSoldThisMonth:    int(soldThisMonth),
		TotalProfitThisMonth:     profitThisMonth,
		AvgDaysToSale:            avgDays,
		GeneratedAt:              now,
	}, nil
}

// --- Derivation helpers ---

// deriveProfitLoss fills the computed fields of a raw row. A vehicle counts
// as sold here purely by having a sale_price on record, regardless of what
// the status column says.
func deriveProfitLoss(row *model.ProfitLossRow) {
	row.TotalCost = row.AcquisitionCost.Add(row.TotalExpenses)
	if row.SalePrice != nil {
		profit := row.SalePrice.Sub(row.TotalCost)
		row.ProfitLoss = &profit
		row.IsSold = true
	}
}

func wholeDaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
