package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/domain"
)

// Estados de una reserva. ACTIVE es el único estado no terminal:
// EXPIRED, CONSUMED y CANCELLED no aceptan más transiciones.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationConsumed  ReservationStatus = "CONSUMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// DefaultReservationTTL es la vigencia por defecto cuando el caller no indica duración.
const DefaultReservationTTL = 24 * time.Hour

// Reservation es un reclamo acotado en el tiempo contra el stock de un material,
// en nombre de un owner externo (ej. referencia de cotización u orden).
// Pertenece a exactamente un MaterialStock; se referencia por ID y owner.
type Reservation struct {
	ID         string
	MaterialID string
	Quantity   Quantity
	Owner      string
	Status     ReservationStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// NewReservation construye una reserva ACTIVE con vencimiento absoluto.
// Una duración no positiva cae en DefaultReservationTTL.
func NewReservation(materialID string, q Quantity, owner string, duration time.Duration, now time.Time) *Reservation {
	if duration <= 0 {
		duration = DefaultReservationTTL
	}
	return &Reservation{
		ID:         uuid.New().String(),
		MaterialID: materialID,
		Quantity:   q,
		Owner:      owner,
		Status:     ReservationActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(duration),
	}
}

// IsExpired responde si el vencimiento ya pasó.
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsActive responde si la reserva sigue contando para la disponibilidad:
// estado ACTIVE y vencimiento no alcanzado.
func (r *Reservation) IsActive(now time.Time) bool {
	return r.Status == ReservationActive && !r.IsExpired(now)
}

// Consume transiciona ACTIVE → CONSUMED reportando el consumo real y devuelve
// el remanente no usado (reservado − consumido). El caller decide si libera o
// re-reserva ese remanente.
func (r *Reservation) Consume(actual Quantity, now time.Time) (Quantity, error) {
	if !r.IsActive(now) {
		status := r.Status
		if status == ReservationActive {
			// Activa pero vencida: chequeo perezoso, cuenta como inactiva.
			status = ReservationExpired
		}
		return Quantity{}, &domain.InactiveReservationError{ReservationID: r.ID, Status: string(status)}
	}
	if r.Quantity.Unit != actual.Unit {
		return Quantity{}, &domain.UnitMismatchError{Left: r.Quantity.Unit, Right: actual.Unit}
	}
	if actual.Amount.GreaterThan(r.Quantity.Amount) {
		return Quantity{}, &domain.OverConsumptionError{
			ReservationID: r.ID,
			Reserved:      r.Quantity.Amount,
			Requested:     actual.Amount,
			Unit:          r.Quantity.Unit,
		}
	}
	remainder, err := r.Quantity.Sub(actual)
	if err != nil {
		return Quantity{}, err
	}
	r.Status = ReservationConsumed
	return remainder, nil
}

// Cancel transiciona ACTIVE → CANCELLED (liberación explícita).
func (r *Reservation) Cancel() error {
	switch r.Status {
	case ReservationActive:
		r.Status = ReservationCancelled
		return nil
	case ReservationConsumed:
		return &domain.AlreadyConsumedError{ReservationID: r.ID}
	default:
		return &domain.InactiveReservationError{ReservationID: r.ID, Status: string(r.Status)}
	}
}

// Extend corre el vencimiento. Solo legal mientras la reserva está activa
// y la nueva fecha es estrictamente futura.
func (r *Reservation) Extend(newExpiry, now time.Time) error {
	if !r.IsActive(now) || !newExpiry.After(now) {
		return &domain.InvalidExpiryError{ReservationID: r.ID, Expiry: newExpiry}
	}
	r.ExpiresAt = newExpiry
	return nil
}

// expire marca ACTIVE → EXPIRED. Solo la invoca el agregado durante el barrido;
// no mueve cantidades, solo vuelve inerte la reserva para la disponibilidad.
func (r *Reservation) expire() {
	r.Status = ReservationExpired
}

// Clone devuelve una copia independiente (snapshots de repositorio).
func (r *Reservation) Clone() *Reservation {
	c := *r
	return &c
}
