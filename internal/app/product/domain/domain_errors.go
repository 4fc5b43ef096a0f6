package domain

import "errors"

// Domain errors as sentinel values
var (
	// Product errors
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrInvalidPrice    = errors.New("product price must be positive")
	ErrInvalidCategory = errors.New("product category cannot be empty")
	ErrUnknownField    = errors.New("unknown product field")
	ErrInvalidMoney    = errors.New("invalid money value")
	ErrMoneyOverflow   = errors.New("money value exceeds storage capacity")

	// Status errors
	ErrAlreadyActive        = errors.New("product is already active")
	ErrAlreadyInactive      = errors.New("product is already inactive")
	ErrAlreadyArchived      = errors.New("product is already archived")
	ErrCannotModifyArchived = errors.New("cannot modify archived product")
	ErrInvalidStatus        = errors.New("invalid product status")
)
