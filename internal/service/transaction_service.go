package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealerdesk/internal/model"
	"dealerdesk/internal/repository"
	ws "dealerdesk/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTransactionRequest struct {
	VehicleID       string `json:"vehicle_id" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Amount          string `json:"amount" binding:"required"` // Decimal string, must be positive
	Description     string `json:"description"`
	TransactionDate string `json:"transaction_date"` // YYYY-MM-DD, defaults to today
}

// UpdateTransactionRequest omits the type on purpose. Changing a SALE into
// something else would strand the vehicle's sold state, so the type is fixed
// at creation and only create/delete move the vehicle.
type UpdateTransactionRequest struct {
	Amount          *string `json:"amount"`
	Description     *string `json:"description"`
	TransactionDate *string `json:"transaction_date"`
}

type TransactionResponse struct {
	ID              string `json:"id"`
	VehicleID       string `json:"vehicle_id"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	TransactionDate string `json:"transaction_date"`
	CreatedAt       string `json:"created_at"`
}

// LedgerEvent is pushed to websocket clients when a sale lands or is undone.
type LedgerEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// --- Interface ---

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (TransactionResponse, error)
	UpdateTransaction(ctx context.Context, userID string, id string, req UpdateTransactionRequest) (TransactionResponse, error)
	DeleteTransaction(ctx context.Context, userID string, id string) error
	GetTransactions(ctx context.Context, vehicleID, txType string, page, limit int) ([]TransactionResponse, int64, error)
}

type transactionService struct {
	transactionRepo repository.TransactionRepository
	vehicleRepo     repository.VehicleRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *ws.Hub
}

func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		vehicleRepo:     vehicleRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

// --- Validation helpers ---

var validTransactionTypes = map[string]bool{
	model.TxTypeExpense: true,
	model.TxTypeSale:    true,
	model.TxTypeRefund:  true,
}

// --- CRUD ---

// CreateTransaction records a ledger entry. A SALE additionally flips the
// vehicle to SOLD and stamps sale_price/sale_date, all under one transaction
// with the vehicle row locked against concurrent sales.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (TransactionResponse, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("invalid vehicle_id: %w", err)
	}

	if !validTransactionTypes[req.Type] {
		return TransactionResponse{}, fmt.Errorf("type must be one of: EXPENSE, SALE, REFUND")
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return TransactionResponse{}, err
	}

	txDate := time.Now()
	if req.TransactionDate != "" {
		parsed, parseErr := time.Parse(dateLayout, req.TransactionDate)
		if parseErr != nil {
			return TransactionResponse{}, fmt.Errorf("invalid transaction_date: expected YYYY-MM-DD")
		}
		txDate = parsed
	}

	transaction := model.Transaction{
		VehicleID:       vehicleID,
		Type:            req.Type,
		Amount:          amount,
		Description:     req.Description,
		TransactionDate: txDate,
	}

	var vehicle *model.Vehicle
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		vehicle, findErr = s.vehicleRepo.FindByIDForUpdate(txCtx, vehicleID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("database error: %w", findErr)
		}

		if createErr := s.transactionRepo.Create(txCtx, &transaction); createErr != nil {
			return fmt.Errorf("failed to create transaction: %w", createErr)
		}

		if transaction.Type == model.TxTypeSale {
			salePrice := amount
			saleDate := txDate
			vehicle.Status = model.VehicleStatusSold
			vehicle.SalePrice = &salePrice
			vehicle.SaleDate = &saleDate
			if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
				return fmt.Errorf("failed to mark vehicle as sold: %w", updateErr)
			}
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateTransaction,
			EntityID:   transaction.ID.String(),
			EntityName: transaction.Type,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	if transaction.Type == model.TxTypeSale {
		s.broadcast("vehicle_sold", map[string]interface{}{
			"vehicle_id": vehicleID.String(),
			"vin":        vehicle.VIN,
			"sale_price": amount.StringFixed(2),
			"sale_date":  txDate.Format(dateLayout),
		})
	}

	return toTransactionResponse(transaction), nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, userID string, id string, req UpdateTransactionRequest) (TransactionResponse, error) {
	transactionID, err := uuid.Parse(id)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("invalid transaction id: %w", err)
	}

	transaction, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransactionResponse{}, ErrTransactionNotFound
		}
		return TransactionResponse{}, fmt.Errorf("database error: %w", err)
	}

	if req.Amount != nil {
		amount, parseErr := parsePositiveAmount(*req.Amount)
		if parseErr != nil {
			return TransactionResponse{}, parseErr
		}
		transaction.Amount = amount
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.TransactionDate != nil && *req.TransactionDate != "" {
		parsed, parseErr := time.Parse(dateLayout, *req.TransactionDate)
		if parseErr != nil {
			return TransactionResponse{}, fmt.Errorf("invalid transaction_date: expected YYYY-MM-DD")
		}
		transaction.TransactionDate = parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.transactionRepo.Update(txCtx, transaction); updateErr != nil {
			return fmt.Errorf("failed to update transaction: %w", updateErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateTransaction,
			EntityID:   transaction.ID.String(),
			EntityName: transaction.Type,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TransactionResponse{}, err
	}

	return toTransactionResponse(*transaction), nil
}

// DeleteTransaction removes a ledger entry. Deleting a SALE reverts the
// vehicle to LISTED and clears sale_price/sale_date in the same transaction.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID string, id string) error {
	transactionID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid transaction id: %w", err)
	}

	transaction, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if transaction.Type == model.TxTypeSale {
			vehicle, findErr := s.vehicleRepo.FindByIDForUpdate(txCtx, transaction.VehicleID)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return ErrVehicleNotFound
				}
				return fmt.Errorf("database error: %w", findErr)
			}

			vehicle.Status = model.VehicleStatusListed
			vehicle.SalePrice = nil
			vehicle.SaleDate = nil
			if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
				return fmt.Errorf("failed to revert vehicle sale: %w", updateErr)
			}
		}

		if delErr := s.transactionRepo.Delete(txCtx, transactionID); delErr != nil {
			return fmt.Errorf("failed to delete transaction: %w", delErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}

		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteTransaction,
			EntityID:   transaction.ID.String(),
			EntityName: transaction.Type,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if transaction.Type == model.TxTypeSale {
		s.broadcast("sale_reverted", map[string]interface{}{
			"vehicle_id":     transaction.VehicleID.String(),
			"transaction_id": transactionID.String(),
		})
	}

	return nil
}

func (s *transactionService) GetTransactions(ctx context.Context, vehicleID, txType string, page, limit int) ([]TransactionResponse, int64, error) {
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
	if txType != "" && !validTransactionTypes[txType] {
		return nil, 0, fmt.Errorf("unknown transaction type: %s", txType)
	}

	transactions, total, err := s.transactionRepo.List(ctx, vehicleUUID, txType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	result := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, toTransactionResponse(t))
	}
	return result, total, nil
}

// --- Helpers ---

func (s *transactionService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(LedgerEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func toTransactionResponse(t model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID.String(),
		VehicleID:       t.VehicleID.String(),
		Type:            t.Type,
		Amount:          t.Amount.StringFixed(2),
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
}
