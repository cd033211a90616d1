package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки валидации аргументов инструментов
	ErrProductIDRequired   = fmt.Errorf("product id is required")
	ErrProductIDsRequired  = fmt.Errorf("at least one product id is required")
	ErrOrderIDRequired     = fmt.Errorf("order id is required")
	ErrUpdatesRequired     = fmt.Errorf("no fields to update")
	ErrInvalidUpdateFields = fmt.Errorf("invalid update fields")
	ErrProductNameRequired = fmt.Errorf("product name cannot be empty")
	ErrPriceMustBePositive = fmt.Errorf("price cannot be negative")
	ErrNegativeStock       = fmt.Errorf("stock count cannot be negative")
	ErrNegativeQuantity    = fmt.Errorf("quantity cannot be negative")
	ErrQuantityNotPositive = fmt.Errorf("quantity must be at least 1")
	ErrQuantityRequired    = fmt.Errorf("quantity is required")
	ErrInsufficientStock   = fmt.Errorf("not enough items in stock")
	ErrInvalidDate         = fmt.Errorf("invalid date, expected YYYY-MM-DD or RFC3339")
	ErrInvalidDateRange    = fmt.Errorf("start date is after end date")
	ErrInvalidPeriod       = fmt.Errorf("invalid period, expected one of all, 30days, 90days, year")
	ErrInvalidArguments    = fmt.Errorf("invalid tool arguments")
	ErrSessionRequired     = fmt.Errorf("session id is required")

	// Ошибки внешнего API магазина
	ErrNotFound     = fmt.Errorf("resource not found")
	ErrUnauthorized = fmt.Errorf("not authorized")
	ErrUpstream     = fmt.Errorf("store api request failed")

	// Ошибки доступа и конкурентных изменений
	ErrAdminRequired = fmt.Errorf("admin privileges required")
	ErrConflict      = fmt.Errorf("product was modified since it was read")

	// Ошибки локального состояния клиента
	ErrMalformedState = fmt.Errorf("malformed client state")

	// Ошибки реестра инструментов
	ErrUnknownTool = fmt.Errorf("unknown tool")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Kind классифицирует ошибку для конверта ответа инструмента.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
	KindAuth       Kind = "auth"
	KindConflict   Kind = "conflict"
	KindState      Kind = "state"
)

var validationErrors = []error{
	ErrProductIDRequired,
	ErrProductIDsRequired,
	ErrOrderIDRequired,
	ErrUpdatesRequired,
	ErrInvalidUpdateFields,
	ErrProductNameRequired,
	ErrPriceMustBePositive,
	ErrNegativeStock,
	ErrNegativeQuantity,
	ErrQuantityNotPositive,
	ErrQuantityRequired,
	ErrInsufficientStock,
	ErrInvalidDate,
	ErrInvalidDateRange,
	ErrInvalidPeriod,
	ErrInvalidArguments,
	ErrSessionRequired,
}

// KindOf возвращает класс ошибки. Всё, что не распознано, считается ошибкой внешнего API.
func KindOf(err error) Kind {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAdminRequired):
		return KindAuth
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrMalformedState):
		return KindState
	default:
		return KindUpstream
	}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
