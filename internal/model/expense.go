package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseType enum constants
const (
	ExpenseTypeParts      = "PARTS"
	ExpenseTypeRepair     = "REPAIR"
	ExpenseTypeBodywork   = "BODYWORK"
	ExpenseTypeDetailing  = "DETAILING"
	ExpenseTypeTransport  = "TRANSPORT"
	ExpenseTypeInspection = "INSPECTION"
	ExpenseTypeStorage    = "STORAGE"
	ExpenseTypeMarketing  = "MARKETING"
	ExpenseTypeOther      = "OTHER"
)

// Expense represents a reconditioning or holding cost attributed to a vehicle
type Expense struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle   *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	VendorID  *uuid.UUID `gorm:"type:uuid;index" json:"vendor_id"`
	Vendor    *Vendor    `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`

	Type        string          `gorm:"type:varchar(20);not null;index" json:"type"` // PARTS, REPAIR, BODYWORK, ...
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	ExpenseDate time.Time       `gorm:"type:date;not null" json:"expense_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
