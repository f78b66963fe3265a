package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
// Todos son errores de negocio recuperables por el caller, nunca fatales.
var (
	ErrMaterialNotFound    = errors.New("material no encontrado")
	ErrMaterialExists      = errors.New("el material ya está registrado")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia: el agregado fue modificado por otro proceso")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInvalidInput        = errors.New("entrada inválida")
)

// UnitMismatchError indica una operación aritmética entre cantidades de unidades distintas.
type UnitMismatchError struct {
	Left  string
	Right string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unidades incompatibles: %q vs %q", e.Left, e.Right)
}

// UnderflowError indica una resta cuyo resultado sería negativo.
type UnderflowError struct {
	Have decimal.Decimal
	Take decimal.Decimal
	Unit string
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("resta inválida: %s %s menos %s %s sería negativo",
		e.Have, e.Unit, e.Take, e.Unit)
}

// InsufficientStockError indica que la cantidad disponible no cubre la solicitada.
// Lleva solicitado vs disponible para que el caller arme un mensaje accionable.
type InsufficientStockError struct {
	MaterialID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
	Unit       string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para material %s: solicitado %s %s, disponible %s %s",
		e.MaterialID, e.Requested, e.Unit, e.Available, e.Unit)
}

// InactiveReservationError indica una transición sobre una reserva que ya no está activa.
type InactiveReservationError struct {
	ReservationID string
	Status        string
}

func (e *InactiveReservationError) Error() string {
	return fmt.Sprintf("la reserva %s no está activa (estado %s)", e.ReservationID, e.Status)
}

// OverConsumptionError indica un consumo mayor a la cantidad reservada.
type OverConsumptionError struct {
	ReservationID string
	Reserved      decimal.Decimal
	Requested     decimal.Decimal
	Unit          string
}

func (e *OverConsumptionError) Error() string {
	return fmt.Sprintf("consumo excede la reserva %s: reservado %s %s, solicitado %s %s",
		e.ReservationID, e.Reserved, e.Unit, e.Requested, e.Unit)
}

// AlreadyConsumedError indica un intento de cancelar una reserva ya consumida.
type AlreadyConsumedError struct {
	ReservationID string
}

func (e *AlreadyConsumedError) Error() string {
	return fmt.Sprintf("la reserva %s ya fue consumida", e.ReservationID)
}

// InvalidExpiryError indica una extensión de vencimiento ilegal
// (reserva no activa o fecha no estrictamente futura).
type InvalidExpiryError struct {
	ReservationID string
	Expiry        time.Time
}

func (e *InvalidExpiryError) Error() string {
	return fmt.Sprintf("vencimiento inválido para la reserva %s: %s", e.ReservationID, e.Expiry.Format(time.RFC3339))
}
