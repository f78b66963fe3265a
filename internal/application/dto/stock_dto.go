package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMaterialRequest alta del stock de un material.
type RegisterMaterialRequest struct {
	MaterialID    string          `json:"material_id"`
	Unit          string          `json:"unit"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	MaxLevel      decimal.Decimal `json:"max_level"`
}

// ReserveRequest crea una reserva. TTLMinutes cero usa la política por defecto.
type ReserveRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Unit       string          `json:"unit"`
	Owner      string          `json:"owner"`
	TTLMinutes int             `json:"ttl_minutes"`
}

// ConsumeRequest descuenta stock físico; ReservationID es opcional.
type ConsumeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Unit          string          `json:"unit"`
	Reason        string          `json:"reason"`
	ReservationID string          `json:"reservation_id"`
}

// ReceiveRequest ingresa stock físico de proveedor.
type ReceiveRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Unit        string          `json:"unit"`
	Reason      string          `json:"reason"`
	SupplierRef string          `json:"supplier_ref"`
}

// AdjustRequest fija el stock al valor contado en inventario físico.
type AdjustRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Unit          string          `json:"unit"`
	Reason        string          `json:"reason"`
}

// ExtendReservationRequest corre el vencimiento de una reserva activa.
type ExtendReservationRequest struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// ReservationResponse vista externa de una reserva.
type ReservationResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Amount     decimal.Decimal `json:"amount"`
	Unit       string          `json:"unit"`
	Owner      string          `json:"owner"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// ConsumeResponse resultado de un consumo: remanente de la reserva cubierta.
type ConsumeResponse struct {
	RemainderAmount decimal.Decimal `json:"remainder_amount"`
	Unit            string          `json:"unit"`
}

// LowStockItem fila del reporte de bajo stock.
type LowStockItem struct {
	MaterialID   string          `json:"material_id"`
	Current      decimal.Decimal `json:"current"`
	Available    decimal.Decimal `json:"available"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Unit         string          `json:"unit"`
}

// MovementResponse fila del historial de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Unit           string          `json:"unit"`
	Reason         string          `json:"reason,omitempty"`
	SupplierRef    string          `json:"supplier_ref,omitempty"`
	ReservationRef string          `json:"reservation_ref,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ErrorResponse cuerpo de error HTTP. Requested/Available acompañan los
// errores de stock insuficiente para armar mensajes accionables.
type ErrorResponse struct {
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Requested *decimal.Decimal `json:"requested,omitempty"`
	Available *decimal.Decimal `json:"available,omitempty"`
}
