package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-api/internal/domain"
)

// MaterialStock es la raíz de agregado del motor de reservas: posee la cantidad
// física actual, la colección de reservas y emite registros de movimiento.
// Reserva y stock físico se llevan en dos ejes independientes (CurrentQuantity
// vs. Reservations) y se reconcilian solo en AvailableQuantity; una reserva es
// un reclamo optimista sujeto a vencimiento, no un lock pesimista.
//
// El agregado no es seguro para uso concurrente por sí mismo: la capa de
// aplicación serializa todas las operaciones sobre un mismo material.
type MaterialStock struct {
	ID              string
	MaterialID      string
	CurrentQuantity Quantity
	ReorderLevel    Quantity
	MaxLevel        Quantity
	Reservations    []*Reservation
	Version         int64
	LastUpdated     time.Time

	// movements acumula los registros generados en la sesión actual;
	// el repositorio los persiste (append-only) y los drena al guardar.
	movements []MovementRecord
}

// NewMaterialStock construye el agregado con unidades consistentes entre
// cantidad inicial, punto de reorden y nivel máximo.
func NewMaterialStock(materialID string, initial, reorderLevel, maxLevel Quantity, now time.Time) (*MaterialStock, error) {
	if materialID == "" {
		return nil, domain.ErrInvalidInput
	}
	if reorderLevel.Unit != initial.Unit {
		return nil, &domain.UnitMismatchError{Left: initial.Unit, Right: reorderLevel.Unit}
	}
	if maxLevel.Unit != initial.Unit {
		return nil, &domain.UnitMismatchError{Left: initial.Unit, Right: maxLevel.Unit}
	}
	return &MaterialStock{
		ID:              uuid.New().String(),
		MaterialID:      materialID,
		CurrentQuantity: initial,
		ReorderLevel:    reorderLevel,
		MaxLevel:        maxLevel,
		LastUpdated:     now,
	}, nil
}

// activeReservedTotal suma las reservas ACTIVE no vencidas.
func (s *MaterialStock) activeReservedTotal(now time.Time) Quantity {
	total := ZeroQuantity(s.CurrentQuantity.Unit)
	for _, r := range s.Reservations {
		if !r.IsActive(now) {
			continue
		}
		if sum, err := total.Add(r.Quantity); err == nil {
			total = sum
		}
	}
	return total
}

// AvailableQuantity devuelve stock físico menos reservas activas no vencidas.
// Nunca negativa: el clamp en cero es un piso defensivo; si se alcanza hay un
// bug de contabilidad, no un valor normal.
func (s *MaterialStock) AvailableQuantity(now time.Time) Quantity {
	reserved := s.activeReservedTotal(now)
	available, err := s.CurrentQuantity.Sub(reserved)
	if err != nil {
		return ZeroQuantity(s.CurrentQuantity.Unit)
	}
	return available
}

// CanReserve responde si la disponibilidad actual cubre q.
func (s *MaterialStock) CanReserve(q Quantity, now time.Time) bool {
	return s.AvailableQuantity(now).IsSufficientFor(q)
}

// ReserveStock crea una reserva ACTIVE contra la disponibilidad y la agrega a
// la colección. No toca CurrentQuantity: reservar es un reclamo, no un retiro.
func (s *MaterialStock) ReserveStock(q Quantity, owner string, duration time.Duration, now time.Time) (*Reservation, error) {
	if !q.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if !s.CanReserve(q, now) {
		available := s.AvailableQuantity(now)
		return nil, &domain.InsufficientStockError{
			MaterialID: s.MaterialID,
			Requested:  q.Amount,
			Available:  available.Amount,
			Unit:       s.CurrentQuantity.Unit,
		}
	}
	res := NewReservation(s.MaterialID, q, owner, duration, now)
	s.Reservations = append(s.Reservations, res)
	s.LastUpdated = now
	return res, nil
}

// AddStock incrementa el stock físico (recepción) y agrega un movimiento INBOUND.
func (s *MaterialStock) AddStock(q Quantity, reason, supplierRef string, now time.Time) (MovementRecord, error) {
	if !q.IsPositive() {
		return MovementRecord{}, domain.ErrInvalidQuantity
	}
	newQty, err := s.CurrentQuantity.Add(q)
	if err != nil {
		return MovementRecord{}, err
	}
	s.CurrentQuantity = newQty
	s.LastUpdated = now

	mov := newMovementRecord(s.MaterialID, MovementINBOUND, q, reason, now)
	mov.SupplierRef = supplierRef
	s.movements = append(s.movements, mov)
	return mov, nil
}

// ConsumeStock descuenta stock físico y agrega un movimiento OUTBOUND.
// El chequeo es contra stock físico, no disponibilidad: el consumo puede comerse
// stock reservado por la misma reserva que se está cumpliendo. Si reservationRef
// referencia una reserva activa, esa reserva se consume por la porción que cubre
// y se devuelve el remanente (reservado − consumido) al caller. Política estricta:
// ninguna otra reserva activa se descuenta proporcionalmente.
// Ante cualquier error el estado queda intacto.
func (s *MaterialStock) ConsumeStock(q Quantity, reason, reservationRef string, now time.Time) (Quantity, error) {
	remainder := ZeroQuantity(s.CurrentQuantity.Unit)
	if !q.IsPositive() {
		return remainder, domain.ErrInvalidQuantity
	}
	if q.Unit != s.CurrentQuantity.Unit {
		return remainder, &domain.UnitMismatchError{Left: s.CurrentQuantity.Unit, Right: q.Unit}
	}
	if s.CurrentQuantity.Amount.LessThan(q.Amount) {
		return remainder, &domain.InsufficientStockError{
			MaterialID: s.MaterialID,
			Requested:  q.Amount,
			Available:  s.CurrentQuantity.Amount,
			Unit:       s.CurrentQuantity.Unit,
		}
	}

	var res *Reservation
	if reservationRef != "" {
		res = s.FindReservation(reservationRef)
		if res == nil {
			return remainder, &domain.InactiveReservationError{ReservationID: reservationRef, Status: "desconocida"}
		}
		// Validar la transición antes de mutar nada del agregado.
		covered := q
		if !res.Quantity.IsSufficientFor(q) {
			covered = res.Quantity
		}
		rem, err := res.Consume(covered, now)
		if err != nil {
			return remainder, err
		}
		remainder = rem
	}

	newQty, err := s.CurrentQuantity.Sub(q)
	if err != nil {
		return remainder, err
	}
	s.CurrentQuantity = newQty
	s.LastUpdated = now

	mov := newMovementRecord(s.MaterialID, MovementOUTBOUND, q, reason, now)
	mov.ReservationRef = reservationRef
	s.movements = append(s.movements, mov)
	return remainder, nil
}

// AdjustStock fija el stock físico al valor contado (inventario físico) y
// registra un movimiento ADJUSTMENT con el delta absoluto.
func (s *MaterialStock) AdjustStock(counted Quantity, reason string, now time.Time) (MovementRecord, error) {
	if counted.Unit != s.CurrentQuantity.Unit {
		return MovementRecord{}, &domain.UnitMismatchError{Left: s.CurrentQuantity.Unit, Right: counted.Unit}
	}
	delta := counted.Amount.Sub(s.CurrentQuantity.Amount).Abs()
	deltaQty := Quantity{Amount: delta, Unit: s.CurrentQuantity.Unit}

	s.CurrentQuantity = counted
	s.LastUpdated = now

	mov := newMovementRecord(s.MaterialID, MovementADJUSTMENT, deltaQty, reason, now)
	s.movements = append(s.movements, mov)
	return mov, nil
}

// ExpireOldReservations pasa a EXPIRED toda reserva ACTIVE con vencimiento
// cumplido y devuelve las recién vencidas (para que el caller emita eventos).
// Idempotente: una segunda pasada sin nuevos vencimientos devuelve vacío.
func (s *MaterialStock) ExpireOldReservations(now time.Time) []*Reservation {
	var expired []*Reservation
	for _, r := range s.Reservations {
		if r.Status == ReservationActive && r.IsExpired(now) {
			r.expire()
			expired = append(expired, r)
		}
	}
	if len(expired) > 0 {
		s.LastUpdated = now
	}
	return expired
}

// IsLowStock responde si el stock físico está en o bajo el punto de reorden.
func (s *MaterialStock) IsLowStock() bool {
	return s.CurrentQuantity.Amount.LessThanOrEqual(s.ReorderLevel.Amount)
}

// NeedsReplenishment es la señal estricta consciente de reservas: la
// disponibilidad puede estar crítica aunque el stock físico se vea adecuado.
func (s *MaterialStock) NeedsReplenishment(now time.Time) bool {
	return s.AvailableQuantity(now).Amount.LessThanOrEqual(s.ReorderLevel.Amount)
}

// IsOverstocked responde si el stock físico supera el nivel máximo.
func (s *MaterialStock) IsOverstocked() bool {
	return s.MaxLevel.IsPositive() && s.CurrentQuantity.Amount.GreaterThan(s.MaxLevel.Amount)
}

// FindReservation busca una reserva por ID. Devuelve nil si no existe.
func (s *MaterialStock) FindReservation(id string) *Reservation {
	for _, r := range s.Reservations {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ReservationsByOwner devuelve las reservas del owner dado (cualquier estado).
func (s *MaterialStock) ReservationsByOwner(owner string) []*Reservation {
	var out []*Reservation
	for _, r := range s.Reservations {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	return out
}

// PendingMovements devuelve los registros generados desde la última persistencia.
func (s *MaterialStock) PendingMovements() []MovementRecord {
	return s.movements
}

// DrainMovements devuelve y vacía los movimientos pendientes. Lo usa el
// repositorio al persistir el snapshot del agregado.
func (s *MaterialStock) DrainMovements() []MovementRecord {
	out := s.movements
	s.movements = nil
	return out
}

// RestoreMovements repone movimientos drenados cuando una persistencia falla.
func (s *MaterialStock) RestoreMovements(movs []MovementRecord) {
	s.movements = append(movs, s.movements...)
}

// Clone devuelve una copia profunda del agregado (snapshots de repositorio).
func (s *MaterialStock) Clone() *MaterialStock {
	c := *s
	c.Reservations = make([]*Reservation, len(s.Reservations))
	for i, r := range s.Reservations {
		c.Reservations[i] = r.Clone()
	}
	c.movements = append([]MovementRecord(nil), s.movements...)
	return &c
}
