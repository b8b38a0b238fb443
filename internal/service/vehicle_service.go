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
	"gorm.io/gorm"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// --- DTOs ---

type CreateVehicleRequest struct {
	VIN             string `json:"vin" binding:"required"`
	Make            string `json:"make" binding:"required"`
	Model           string `json:"model" binding:"required"`
	Year            int    `json:"year" binding:"required"`
	Mileage         int    `json:"mileage"`
	Color           string `json:"color"`
	AcquisitionCost string `json:"acquisition_cost" binding:"required"` // Decimal string
	AcquisitionDate string `json:"acquisition_date"`                    // YYYY-MM-DD, defaults to today
	ListingPrice    string `json:"listing_price"`
	Notes           string `json:"notes"`
}

// UpdateVehicleRequest uses pointers so nil means "not sent". Status and the
// sale fields mutate independently here; only the sale-transaction path keeps
// them in sync.
type UpdateVehicleRequest struct {
	VIN          *string `json:"vin"`
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	Year         *int    `json:"year"`
	Mileage      *int    `json:"mileage"`
	Color        *string `json:"color"`
	Status       *string `json:"status"`
	ListingPrice *string `json:"listing_price"` // empty string clears the value
	SalePrice    *string `json:"sale_price"`
	SaleDate     *string `json:"sale_date"`
	Notes        *string `json:"notes"`
}

type VehicleResponse struct {
	ID              string  `json:"id"`
	VIN             string  `json:"vin"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	Year            int     `json:"year"`
	Mileage         int     `json:"mileage"`
	Color           string  `json:"color"`
	Status          string  `json:"status"`
	AcquisitionCost string  `json:"acquisition_cost"`
	AcquisitionDate string  `json:"acquisition_date"`
	ListingPrice    *string `json:"listing_price"`
	SalePrice       *string `json:"sale_price"`
	SaleDate        *string `json:"sale_date"`
	Notes           string  `json:"notes"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// VehicleDetailResponse bundles the vehicle with its cost history and the
// derived profit/loss line.
type VehicleDetailResponse struct {
	Vehicle      VehicleResponse       `json:"vehicle"`
	Expenses     []ExpenseResponse     `json:"expenses"`
	Transactions []TransactionResponse `json:"transactions"`
	ProfitLoss   *model.ProfitLossRow  `json:"profit_loss"`
}

// --- Interface ---

type VehicleService interface {
	CreateVehicle(ctx context.Context, userID string, req CreateVehicleRequest) (VehicleResponse, error)
	UpdateVehicle(ctx context.Context, userID string, id string, req UpdateVehicleRequest) (VehicleResponse, error)
	DeleteVehicle(ctx context.Context, userID string, id string) error
	GetVehicle(ctx context.Context, id string) (*VehicleDetailResponse, error)
	GetVehicles(ctx context.Context, status, vehicleMake, search string, page, limit int) ([]VehicleResponse, int64, error)
}

type vehicleService struct {
	vehicleRepo     repository.VehicleRepository
	expenseRepo     repository.ExpenseRepository
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	reportService   ReportService
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	expenseRepo repository.ExpenseRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	reportService ReportService,
) VehicleService {
	return &vehicleService{
		vehicleRepo:     vehicleRepo,
		expenseRepo:     expenseRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		reportService:   reportService,
	}
}

// --- Validation helpers ---

var validVehicleStatuses = map[string]bool{
	model.VehicleStatusAcquired:       true,
	model.VehicleStatusReconditioning: true,
	model.VehicleStatusListed:         true,
	model.VehicleStatusSold:           true,
	model.VehicleStatusArchived:       true,
}

func parseOptionalDecimal(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &d, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected YYYY-MM-DD", field)
	}
	return &t, nil
}

// --- CRUD ---

func (s *vehicleService) CreateVehicle(ctx context.Context, userID string, req CreateVehicleRequest) (VehicleResponse, error) {
	cost, err := decimal.NewFromString(req.AcquisitionCost)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid acquisition_cost: %w", err)
	}
	if cost.IsNegative() {
		return VehicleResponse{}, fmt.Errorf("acquisition_cost cannot be negative")
	}

	acquisitionDate := time.Now()
	if req.AcquisitionDate != "" {
		parsed, parseErr := time.Parse(dateLayout, req.AcquisitionDate)
		if parseErr != nil {
			return VehicleResponse{}, fmt.Errorf("invalid acquisition_date: expected YYYY-MM-DD")
		}
		acquisitionDate = parsed
	}

	listingPrice, err := parseOptionalDecimal("listing_price", req.ListingPrice)
	if err != nil {
		return VehicleResponse{}, err
	}

	if _, findErr := s.vehicleRepo.FindByVIN(ctx, req.VIN); findErr == nil {
		return VehicleResponse{}, fmt.Errorf("VIN %s: %w", req.VIN, ErrDuplicateVIN)
	} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return VehicleResponse{}, fmt.Errorf("failed to check VIN: %w", findErr)
	}

	vehicle := model.Vehicle{
		VIN:             req.VIN,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		Mileage:         req.Mileage,
		Color:           req.Color,
		Status:          model.VehicleStatusAcquired,
		AcquisitionCost: cost,
		AcquisitionDate: acquisitionDate,
		ListingPrice:    listingPrice,
		Notes:           req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vehicleRepo.Create(txCtx, &vehicle); createErr != nil {
			return fmt.Errorf("failed to create vehicle: %w", createErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateVehicle,
			EntityID:   vehicle.ID.String(),
			EntityName: vehicle.VIN,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VehicleResponse{}, err
	}

	return toVehicleResponse(vehicle), nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, userID string, id string, req UpdateVehicleRequest) (VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VehicleResponse{}, ErrVehicleNotFound
		}
		return VehicleResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.VIN != nil {
		if *req.VIN == "" {
			return VehicleResponse{}, fmt.Errorf("vin cannot be empty")
		}
		vehicle.VIN = *req.VIN
	}
	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.Status != nil {
		if !validVehicleStatuses[*req.Status] {
			return VehicleResponse{}, fmt.Errorf("status must be one of: ACQUIRED, RECONDITIONING, LISTED, SOLD, ARCHIVED")
		}
		vehicle.Status = *req.Status
	}
	if req.ListingPrice != nil {
		price, parseErr := parseOptionalDecimal("listing_price", *req.ListingPrice)
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.ListingPrice = price
	}
	if req.SalePrice != nil {
		price, parseErr := parseOptionalDecimal("sale_price", *req.SalePrice)
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.SalePrice = price
	}
	if req.SaleDate != nil {
		date, parseErr := parseOptionalDate("sale_date", *req.SaleDate)
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.SaleDate = date
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
			return fmt.Errorf("failed to update vehicle: %w", updateErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateVehicle,
			EntityID:   vehicle.ID.String(),
			EntityName: vehicle.VIN,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VehicleResponse{}, err
	}

	return toVehicleResponse(*vehicle), nil
}

// DeleteVehicle removes the vehicle and everything booked against it in one
// transaction.
func (s *vehicleService) DeleteVehicle(ctx context.Context, userID string, id string) error {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.expenseRepo.DeleteByVehicleID(txCtx, vehicleID); delErr != nil {
			return fmt.Errorf("failed to delete vehicle expenses: %w", delErr)
		}
		if delErr := s.transactionRepo.DeleteByVehicleID(txCtx, vehicleID); delErr != nil {
			return fmt.Errorf("failed to delete vehicle transactions: %w", delErr)
		}
		if delErr := s.vehicleRepo.Delete(txCtx, vehicleID); delErr != nil {
			return fmt.Errorf("failed to delete vehicle: %w", delErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteVehicle,
			EntityID:   vehicle.ID.String(),
			EntityName: vehicle.VIN,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// GetVehicle returns nil without error when the id is unknown. Pure lookups
// stay distinct from store failures.
func (s *vehicleService) GetVehicle(ctx context.Context, id string) (*VehicleDetailResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByIDWithDetails(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	profitLoss, err := s.reportService.GetVehicleProfitLoss(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute profit/loss: %w", err)
	}

	expenses := make([]ExpenseResponse, 0, len(vehicle.Expenses))
	for _, e := range vehicle.Expenses {
		expenses = append(expenses, toExpenseResponse(e))
	}
	transactions := make([]TransactionResponse, 0, len(vehicle.Transactions))
	for _, t := range vehicle.Transactions {
		transactions = append(transactions, toTransactionResponse(t))
	}

	return &VehicleDetailResponse{
		Vehicle:      toVehicleResponse(*vehicle),
		Expenses:     expenses,
		Transactions: transactions,
		ProfitLoss:   profitLoss,
	}, nil
}

func (s *vehicleService) GetVehicles(ctx context.Context, status, vehicleMake, search string, page, limit int) ([]VehicleResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	if status != "" && !validVehicleStatuses[status] {
		return nil, 0, fmt.Errorf("status must be one of: ACQUIRED, RECONDITIONING, LISTED, SOLD, ARCHIVED")
	}

	vehicles, total, err := s.vehicleRepo.List(ctx, status, vehicleMake, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	res := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		res = append(res, toVehicleResponse(v))
	}

	return res, total, nil
}

// --- Response mappers ---

func toVehicleResponse(v model.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:              v.ID.String(),
		VIN:             v.VIN,
		Make:            v.Make,
		Model:           v.Model,
		Year:            v.Year,
		Mileage:         v.Mileage,
		Color:           v.Color,
		Status:          v.Status,
		AcquisitionCost: v.AcquisitionCost.StringFixed(2),
		AcquisitionDate: v.AcquisitionDate.Format(dateLayout),
		Notes:           v.Notes,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       v.UpdatedAt.Format(time.RFC3339),
	}

	if v.ListingPrice != nil {
		s := v.ListingPrice.StringFixed(2)
		resp.ListingPrice = &s
	}
	if v.SalePrice != nil {
		s := v.SalePrice.StringFixed(2)
		resp.SalePrice = &s
	}
	if v.SaleDate != nil {
		s := v.SaleDate.Format(dateLayout)
		resp.SaleDate = &s
	}

	return resp
}
