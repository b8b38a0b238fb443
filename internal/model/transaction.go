package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enum constants
const (
	TxTypeExpense = "EXPENSE"
	TxTypeSale    = "SALE"
	TxTypeRefund  = "REFUND"
)

// Transaction represents a money movement in the ledger. SALE rows carry the
// vehicle's sale side effects; EXPENSE and REFUND rows are plain entries.
type Transaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle   *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`

	Type            string          `gorm:"type:varchar(10);not null;index" json:"type"` // EXPENSE, SALE, REFUND
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description     string          `gorm:"type:text" json:"description"`
	TransactionDate time.Time       `gorm:"type:date;not null" json:"transaction_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
