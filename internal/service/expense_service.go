package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealerdesk/internal/model"
	"dealerdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	VehicleID   string `json:"vehicle_id" binding:"required"`
	VendorID    string `json:"vendor_id"`
	Type        string `json:"type" binding:"required"`
	Amount      string `json:"amount" binding:"required"` // Decimal string, must be positive
	Description string `json:"description"`
	ExpenseDate string `json:"expense_date"` // YYYY-MM-DD, defaults to today
}

type UpdateExpenseRequest struct {
	VendorID    *string `json:"vendor_id"` // empty string detaches the vendor
	Type        *string `json:"type"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	ExpenseDate *string `json:"expense_date"`
}

type ExpenseResponse struct {
	ID          string  `json:"id"`
	VehicleID   string  `json:"vehicle_id"`
	VendorID    *string `json:"vendor_id"`
	VendorName  string  `json:"vendor_name,omitempty"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	ExpenseDate string  `json:"expense_date"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error)
	UpdateExpense(ctx context.Context, userID string, id string, req UpdateExpenseRequest) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, userID string, id string) error
	GetExpenses(ctx context.Context, vehicleID, expenseType string, page, limit int) ([]ExpenseResponse, int64, error)
	GetExpenseTypes() []string
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	vehicleRepo repository.VehicleRepository
	vendorRepo  repository.VendorRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	vehicleRepo repository.VehicleRepository,
	vendorRepo repository.VendorRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		vehicleRepo: vehicleRepo,
		vendorRepo:  vendorRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Validation helpers ---

var validExpenseTypes = map[string]bool{
	model.ExpenseTypeParts:      true,
	model.ExpenseTypeRepair:     true,
	model.ExpenseTypeBodywork:   true,
	model.ExpenseTypeDetailing:  true,
	model.ExpenseTypeTransport:  true,
	model.ExpenseTypeInspection: true,
	model.ExpenseTypeStorage:    true,
	model.ExpenseTypeMarketing:  true,
	model.ExpenseTypeOther:      true,
}

// expenseTypeList keeps the documented category order for the types endpoint.
var expenseTypeList = []string{
	model.ExpenseTypeParts,
	model.ExpenseTypeRepair,
	model.ExpenseTypeBodywork,
	model.ExpenseTypeDetailing,
	model.ExpenseTypeTransport,
	model.ExpenseTypeInspection,
	model.ExpenseTypeStorage,
	model.ExpenseTypeMarketing,
	model.ExpenseTypeOther,
}

func parsePositiveAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be greater than 0")
	}
	return amount, nil
}

func (s *expenseService) resolveVendorID(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	vendorID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid vendor_id: %w", err)
	}
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &vendorID, nil
}

// --- CRUD ---

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid vehicle_id: %w", err)
	}
	if _, err := s.vehicleRepo.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExpenseResponse{}, ErrVehicleNotFound
		}
		return ExpenseResponse{}, fmt.Errorf("database error: %w", err)
	}

	if !validExpenseTypes[req.Type] {
		return ExpenseResponse{}, fmt.Errorf("type must be one of: PARTS, REPAIR, BODYWORK, DETAILING, TRANSPORT, INSPECTION, STORAGE, MARKETING, OTHER")
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return ExpenseResponse{}, err
	}

	vendorID, err := s.resolveVendorID(ctx, req.VendorID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		parsed, parseErr := time.Parse(dateLayout, req.ExpenseDate)
		if parseErr != nil {
			return ExpenseResponse{}, fmt.Errorf("invalid expense_date: expected YYYY-MM-DD")
		}
		expenseDate = parsed
	}

	expense := model.Expense{
		VehicleID:   vehicleID,
		VendorID:    vendorID,
		Type:        req.Type,
		Amount:      amount,
		Description: req.Description,
		ExpenseDate: expenseDate,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.expenseRepo.Create(txCtx, &expense); createErr != nil {
			return fmt.Errorf("failed to create expense: %w", createErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Type,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(expense), nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID string, id string, req UpdateExpenseRequest) (ExpenseResponse, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid expense id: %w", err)
	}

	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExpenseResponse{}, ErrExpenseNotFound
		}
		return ExpenseResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.Type != nil {
		if !validExpenseTypes[*req.Type] {
			return ExpenseResponse{}, fmt.Errorf("type must be one of: PARTS, REPAIR, BODYWORK, DETAILING, TRANSPORT, INSPECTION, STORAGE, MARKETING, OTHER")
		}
		expense.Type = *req.Type
	}
	if req.Amount != nil {
		amount, parseErr := parsePositiveAmount(*req.Amount)
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.Amount = amount
	}
	if req.VendorID != nil {
		vendorID, resolveErr := s.resolveVendorID(ctx, *req.VendorID)
		if resolveErr != nil {
			return ExpenseResponse{}, resolveErr
		}
		expense.VendorID = vendorID
		expense.Vendor = nil
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.ExpenseDate != nil && *req.ExpenseDate != "" {
		parsed, parseErr := time.Parse(dateLayout, *req.ExpenseDate)
		if parseErr != nil {
			return ExpenseResponse{}, fmt.Errorf("invalid expense_date: expected YYYY-MM-DD")
		}
		expense.ExpenseDate = parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
			return fmt.Errorf("failed to update expense: %w", updateErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Type,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(*expense), nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID string, id string) error {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}

	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.expenseRepo.Delete(txCtx, expenseID); delErr != nil {
			return fmt.Errorf("failed to delete expense: %w", delErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Type,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func (s *expenseService) GetExpenses(ctx context.Context, vehicleID, expenseType string, page, limit int) ([]ExpenseResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var vehicleUUID *uuid.UUID
	if vehicleID != "" {
		parsed, err := uuid.Parse(vehicleID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid vehicle_id: %w", err)
		}
		vehicleUUID = &parsed
	}
	if expenseType != "" && !validExpenseTypes[expenseType] {
		return nil, 0, fmt.Errorf("unknown expense type: %s", expenseType)
	}

	expenses, total, err := s.expenseRepo.List(ctx, vehicleUUID, expenseType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		result = append(result, toExpenseResponse(e))
	}
	return result, total, nil
}

func (s *expenseService) GetExpenseTypes() []string {
	return expenseTypeList
}

// --- Helpers ---

func toExpenseResponse(e model.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID.String(),
		VehicleID:   e.VehicleID.String(),
		Type:        e.Type,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format(dateLayout),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}

	if e.VendorID != nil {
		s := e.VendorID.String()
		resp.VendorID = &s
	}
	if e.Vendor != nil {
		resp.VendorName = e.Vendor.Name
	}

	return resp
}
