package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter narrows report queries. Zero-valued fields impose no
// constraint; supplied fields combine with AND.
type ReportFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Make      string
	Model     string
}

// HasVehicleScope reports whether any vehicle-attribute filter is set,
// which forces expense queries to join the vehicles table.
func (f ReportFilter) HasVehicleScope() bool {
	return f.Status != "" || f.Make != "" || f.Model != ""
}

// ProfitLossRow is one vehicle's profit/loss line. TotalCost, ProfitLoss and
// IsSold are derived in the service layer; the rest comes from a grouped query.
type ProfitLossRow struct {
	VehicleID       string           `json:"vehicle_id"`
	VIN             string           `gorm:"column:vin" json:"vin"`
	Make            string           `json:"make"`
	Model           string           `json:"model"`
	AcquisitionCost decimal.Decimal  `json:"acquisition_cost"`
	TotalExpenses   decimal.Decimal  `json:"total_expenses"`
	TotalCost       decimal.Decimal  `gorm:"-" json:"total_cost"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	SaleDate        *time.Time       `json:"sale_date"`
	ProfitLoss      *decimal.Decimal `gorm:"-" json:"profit_loss"`
	IsSold          bool             `gorm:"-" json:"is_sold"`
}

// InventoryAgingRow is one listed vehicle's aging line. DaysInInventory and
// TotalCost are derived in the service layer.
type InventoryAgingRow struct {
	VehicleID       string          `json:"vehicle_id"`
	VIN             string          `gorm:"column:vin" json:"vin"`
	Make            string          `json:"make"`
	Model           string          `json:"model"`
	Year            int             `json:"year"`
	Status          string          `json:"status"`
	AcquisitionDate time.Time       `json:"acquisition_date"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	DaysInInventory int             `gorm:"-" json:"days_in_inventory"`
	TotalCost       decimal.Decimal `gorm:"-" json:"total_cost"`
}

// ExpenseBreakdownRow aggregates spend for a single expense category.
// Categories with no matching expenses never appear.
type ExpenseBreakdownRow struct {
	ExpenseType string          `json:"expense_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

// DashboardKpi is a point-in-time snapshot of headline metrics
type DashboardKpi struct {
	TotalInventory           int             `json:"total_inventory"`
	TotalInventoryValue      decimal.Decimal `json:"total_inventory_value"`
	VehiclesInReconditioning int             `json:"vehicles_in_reconditioning"`
	VehiclesListed           int             `json:"vehicles_listed"`
	VehiclesSoldThisMonth    int             `json:"vehicles_sold_this_month"`
	TotalProfitThisMonth     decimal.Decimal `json:"total_profit_this_month"`
	AvgDaysToSale            *float64        `json:"avg_days_to_sale"`
	GeneratedAt              time.Time       `json:"generated_at"`
}
