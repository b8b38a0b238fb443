package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"dealerdesk/internal/model"
	"dealerdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateVendorRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type UpdateVendorRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

type VendorResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// --- Interface ---

type VendorService interface {
	CreateVendor(ctx context.Context, userID string, req CreateVendorRequest) (VendorResponse, error)
	UpdateVendor(ctx context.Context, userID string, id string, req UpdateVendorRequest) (VendorResponse, error)
	DeleteVendor(ctx context.Context, userID string, id string) error
	GetVendors(ctx context.Context, vendorType, search string, page, limit int) ([]VendorResponse, int64, error)
}

type vendorService struct {
	vendorRepo repository.VendorRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewVendorService(vendorRepo repository.VendorRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) VendorService {
	return &vendorService{vendorRepo: vendorRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Validation helpers ---

var validVendorTypes = map[string]bool{
	model.VendorTypeMechanic:    true,
	model.VendorTypeBodyShop:    true,
	model.VendorTypeDetailer:    true,
	model.VendorTypeTransporter: true,
	model.VendorTypeAuction:     true,
	model.VendorTypeOther:       true,
}

// --- CRUD ---

func (s *vendorService) CreateVendor(ctx context.Context, userID string, req CreateVendorRequest) (VendorResponse, error) {
	if req.Name == "" {
		return VendorResponse{}, fmt.Errorf("name is required")
	}
	if !validVendorTypes[req.Type] {
		return VendorResponse{}, fmt.Errorf("type must be one of: MECHANIC, BODY_SHOP, DETAILER, TRANSPORTER, AUCTION, OTHER")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return VendorResponse{}, fmt.Errorf("invalid email format")
		}
	}

	vendor := &model.Vendor{
		Name:          req.Name,
		Type:          req.Type,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vendorRepo.Create(txCtx, vendor); createErr != nil {
			return fmt.Errorf("failed to create vendor: %w", createErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateVendor,
			EntityID:   vendor.ID.String(),
			EntityName: vendor.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(*vendor), nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, userID string, id string, req UpdateVendorRequest) (VendorResponse, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return VendorResponse{}, fmt.Errorf("invalid vendor id: %w", err)
	}

	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VendorResponse{}, ErrVendorNotFound
		}
		return VendorResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return VendorResponse{}, fmt.Errorf("name cannot be empty")
		}
		vendor.Name = *req.Name
	}
	if req.Type != nil {
		if !validVendorTypes[*req.Type] {
			return VendorResponse{}, fmt.Errorf("type must be one of: MECHANIC, BODY_SHOP, DETAILER, TRANSPORTER, AUCTION, OTHER")
		}
		vendor.Type = *req.Type
	}
	if req.Email != nil && *req.Email != "" {
		if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
			return VendorResponse{}, fmt.Errorf("invalid email format")
		}
		vendor.Email = *req.Email
	} else if req.Email != nil {
		vendor.Email = ""
	}
	if req.ContactPerson != nil {
		vendor.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.vendorRepo.Update(txCtx, vendor); updateErr != nil {
			return fmt.Errorf("failed to update vendor: %w", updateErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateVendor,
			EntityID:   vendor.ID.String(),
			EntityName: vendor.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(*vendor), nil
}

// DeleteVendor refuses to remove a vendor that expenses still reference.
func (s *vendorService) DeleteVendor(ctx context.Context, userID string, id string) error {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid vendor id: %w", err)
	}

	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVendorNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	count, err := s.vendorRepo.CountExpenses(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("failed to count vendor expenses: %w", err)
	}
	if count > 0 {
		return ErrVendorHasExpenses
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.vendorRepo.Delete(txCtx, vendorID); delErr != nil {
			return fmt.Errorf("failed to delete vendor: %w", delErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteVendor,
			EntityID:   vendor.ID.String(),
			EntityName: vendor.Name,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func (s *vendorService) GetVendors(ctx context.Context, vendorType, search string, page, limit int) ([]VendorResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	vendors, total, err := s.vendorRepo.List(ctx, vendorType, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vendors: %w", err)
	}

	res := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		res = append(res, toVendorResponse(v))
	}

	return res, total, nil
}

// --- Response mappers ---

func toVendorResponse(v model.Vendor) VendorResponse {
	return VendorResponse{
		ID:            v.ID.String(),
		Name:          v.Name,
		Type:          v.Type,
		ContactPerson: v.ContactPerson,
		Phone:         v.Phone,
		Email:         v.Email,
		Address:       v.Address,
		IsActive:      v.IsActive,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
