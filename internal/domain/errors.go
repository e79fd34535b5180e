package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отсутствующего VIN.
	ErrVINRequired = errors.New("order vin is required")
	// Ошибка пустого имени позиции заказа.
	ErrItemNameRequired = errors.New("order item name is required")
	// Ошибка при некорректном количестве позиции (<= 0).
	ErrItemQtyInvalid = errors.New("order item qty must be greater than zero")
	// Ошибка нарушения единственности лидера по имени позиции.
	ErrDuplicateLeader = errors.New("more than one leader for the same item name")
	// ErrOrderNotFound возвращается, если заказ не найден в снапшоте или на сервисе.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOfferNotFound возвращается, если предложение или его позиция не найдены.
	ErrOfferNotFound = errors.New("offer item not found")
)

// TransportError сигнализирует о сетевой недоступности сервиса заказов.
type TransportError struct {
	// Op — операция шлюза, на которой произошёл сбой.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError оборачивает сетевую ошибку с указанием операции.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsTransport проверяет, является ли ошибка транспортной.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ConflictError означает, что сервис отклонил уже применённую оптимистичную мутацию.
// Восстановление всегда одно: сбросить локальный оптимизм принудительным refresh.
type ConflictError struct {
	Op      string
	OrderID string
	Err     error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("gateway rejected %s for order %s: %v", e.Op, e.OrderID, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsConflict проверяет, является ли ошибка отказом после оптимистичной мутации.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
