package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de stock.
const (
	MovementINBOUND    = "INBOUND"    // entrada (recepción de proveedor)
	MovementOUTBOUND   = "OUTBOUND"   // salida (consumo)
	MovementADJUSTMENT = "ADJUSTMENT" // ajuste por conteo físico
)

// MovementRecord es un registro inmutable de un cambio de cantidad física.
// Solo se agrega, nunca se actualiza ni borra; la secuencia por material
// queda totalmente ordenada por la exclusión del agregado y sirve para
// auditoría y reconciliación.
type MovementRecord struct {
	ID             string
	MaterialID     string
	Type           string
	Quantity       Quantity
	Reason         string
	Timestamp      time.Time
	SupplierRef    string
	ReservationRef string
}

func newMovementRecord(materialID, movType string, q Quantity, reason string, now time.Time) MovementRecord {
	return MovementRecord{
		ID:         uuid.New().String(),
		MaterialID: materialID,
		Type:       movType,
		Quantity:   q,
		Reason:     reason,
		Timestamp:  now,
	}
}
