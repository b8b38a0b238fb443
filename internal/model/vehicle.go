package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleStatus enum constants
const (
	VehicleStatusAcquired       = "ACQUIRED"
	VehicleStatusReconditioning = "RECONDITIONING"
	VehicleStatusListed         = "LISTED"
	VehicleStatusSold           = "SOLD"
	VehicleStatusArchived       = "ARCHIVED"
)

// Vehicle represents a unit of inventory from acquisition through sale
type Vehicle struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VIN             string           `gorm:"column:vin;type:varchar(17);uniqueIndex;not null" json:"vin"`
	Make            string           `gorm:"type:varchar(100);not null" json:"make"`
	Model           string           `gorm:"type:varchar(100);not null" json:"model"`
	Year            int              `gorm:"type:int;not null" json:"year"`
	Mileage         int              `gorm:"type:int;default:0" json:"mileage"`
	Color           string           `gorm:"type:varchar(50)" json:"color"`
	Status          string           `gorm:"type:varchar(20);not null;index;default:'ACQUIRED'" json:"status"`
	AcquisitionCost decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"acquisition_cost"`
	AcquisitionDate time.Time        `gorm:"type:date;not null" json:"acquisition_date"`
	ListingPrice    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"listing_price"`
	SalePrice       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	SaleDate        *time.Time       `gorm:"type:date" json:"sale_date"`
	Notes           string           `gorm:"type:text" json:"notes"`
	Expenses        []Expense        `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"expenses,omitempty"`
	Transactions    []Transaction    `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IsSold reports whether the vehicle has a recorded sale price.
// Profit/loss math keys off this rather than the status column.
func (v *Vehicle) IsSold() bool {
	return v.SalePrice != nil
}
