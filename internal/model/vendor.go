package model

import (
	"time"

	"github.com/google/uuid"
)

// VendorType enum constants
const (
	VendorTypeMechanic    = "MECHANIC"
	VendorTypeBodyShop    = "BODY_SHOP"
	VendorTypeDetailer    = "DETAILER"
	VendorTypeTransporter = "TRANSPORTER"
	VendorTypeAuction     = "AUCTION"
	VendorTypeOther       = "OTHER"
)

// Vendor represents an external service provider expenses are booked against
type Vendor struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Type          string    `gorm:"type:varchar(20);not null;index" json:"type"` // MECHANIC, BODY_SHOP, DETAILER, TRANSPORTER, AUCTION, OTHER
	ContactPerson string    `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string    `gorm:"type:varchar(50)" json:"phone"`
	Email         string    `gorm:"type:varchar(255)" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
