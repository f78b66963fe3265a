package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento emitidos por el motor de stock.
type Type string

const (
	TypeStockReserved      Type = "stock.reserved"
	TypeStockConsumed      Type = "stock.consumed"
	TypeMaterialReceived   Type = "material.received"
	TypeLowStockAlert      Type = "stock.low_stock_alert"
	TypeReservationExpired Type = "reservation.expired"
)

// Event es la carga común de los eventos de dominio: ids, cantidades y timestamp.
// La emisión es un valor explícito del caso de uso, no un canal lateral.
type Event struct {
	Type          Type            `json:"type"`
	MaterialID    string          `json:"material_id"`
	ReservationID string          `json:"reservation_id,omitempty"`
	Owner         string          `json:"owner,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Unit          string          `json:"unit"`
	Reason        string          `json:"reason,omitempty"`
	Available     decimal.Decimal `json:"available,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher es el puerto de publicación hacia los colaboradores externos
// (notificaciones, pricing). Las implementaciones no deben bloquear el flujo
// de negocio más allá de su timeout interno.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// StockReserved se emite al crear una reserva.
func StockReserved(materialID, reservationID, owner string, amount decimal.Decimal, unit string, ts time.Time) Event {
	return Event{
		Type:          TypeStockReserved,
		MaterialID:    materialID,
		ReservationID: reservationID,
		Owner:         owner,
		Amount:        amount,
		Unit:          unit,
		Timestamp:     ts,
	}
}

// StockConsumed se emite al descontar stock físico.
func StockConsumed(materialID, reservationID, reason string, amount decimal.Decimal, unit string, ts time.Time) Event {
	return Event{
		Type:          TypeStockConsumed,
		MaterialID:    materialID,
		ReservationID: reservationID,
		Reason:        reason,
		Amount:        amount,
		Unit:          unit,
		Timestamp:     ts,
	}
}

// MaterialReceived se emite al ingresar stock de proveedor.
func MaterialReceived(materialID, supplierRef string, amount decimal.Decimal, unit string, ts time.Time) Event {
	return Event{
		Type:       TypeMaterialReceived,
		MaterialID: materialID,
		Reason:     supplierRef,
		Amount:     amount,
		Unit:       unit,
		Timestamp:  ts,
	}
}

// LowStockAlert se emite cuando la disponibilidad queda en o bajo el reorden.
func LowStockAlert(materialID string, available, reorderLevel decimal.Decimal, unit string, ts time.Time) Event {
	return Event{
		Type:       TypeLowStockAlert,
		MaterialID: materialID,
		Amount:     reorderLevel,
		Available:  available,
		Unit:       unit,
		Timestamp:  ts,
	}
}

// ReservationExpired se emite por cada reserva vencida por el barrido.
func ReservationExpired(materialID, reservationID, owner string, amount decimal.Decimal, unit string, ts time.Time) Event {
	return Event{
		Type:          TypeReservationExpired,
		MaterialID:    materialID,
		ReservationID: reservationID,
		Owner:         owner,
		Amount:        amount,
		Unit:          unit,
		Timestamp:     ts,
	}
}
