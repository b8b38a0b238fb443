package service

import "errors"

// Sentinel errors that handlers translate into HTTP status codes.
var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")

	// ErrVendorHasExpenses blocks vendor deletion while expenses still
	// reference the vendor.
	ErrVendorHasExpenses = errors.New("vendor has expenses and cannot be deleted")

	// ErrDuplicateVIN rejects a second vehicle with the same VIN.
	ErrDuplicateVIN = errors.New("vehicle with this VIN already exists")
)
