package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/event"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
	"github.com/jhoicas/materiales-api/pkg/logger"
)

// UseCase expone los contratos de frontera del motor de reservas a los dominios
// llamadores (cotizaciones, cumplimiento de órdenes, recepción, producción).
//
// Toda operación que muta un agregado se serializa con la exclusión por
// material; el motor nunca reintenta internamente: ante
// domain.ErrConcurrencyConflict el caller recarga y reintenta la operación
// completa de forma idempotente.
type UseCase struct {
	repo       repository.MaterialStockRepository
	publisher  event.Publisher
	clock      Clock
	locks      *materialLocks
	log        *logger.Logger
	defaultTTL time.Duration
}

// NewUseCase construye el caso de uso. defaultTTL no positivo cae en la
// política por defecto de la entidad (24h).
func NewUseCase(
	repo repository.MaterialStockRepository,
	publisher event.Publisher,
	clock Clock,
	log *logger.Logger,
	defaultTTL time.Duration,
) *UseCase {
	if defaultTTL <= 0 {
		defaultTTL = entity.DefaultReservationTTL
	}
	return &UseCase{
		repo:       repo,
		publisher:  publisher,
		clock:      clock,
		locks:      newMaterialLocks(),
		log:        log,
		defaultTTL: defaultTTL,
	}
}

// RegisterMaterial da de alta el stock de un material nuevo.
func (u *UseCase) RegisterMaterial(ctx context.Context, materialID string, initial, reorderLevel, maxLevel entity.Quantity) (*entity.MaterialStock, error) {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return nil, err
	}
	defer u.locks.Release(materialID)

	if _, err := u.repo.Load(ctx, materialID); err == nil {
		return nil, domain.ErrMaterialExists
	} else if !errors.Is(err, domain.ErrMaterialNotFound) {
		return nil, err
	}

	stock, err := entity.NewMaterialStock(materialID, initial, reorderLevel, maxLevel, u.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, stock); err != nil {
		return nil, err
	}
	u.log.Info().
		Str("material_id", materialID).
		Str("initial", initial.String()).
		Msg("material registrado")
	return stock, nil
}

// CheckAvailability responde si la disponibilidad del material cubre q.
func (u *UseCase) CheckAvailability(ctx context.Context, materialID string, q entity.Quantity) (bool, error) {
	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return false, err
	}
	return stock.CanReserve(q, u.clock.Now()), nil
}

// Reserve crea una reserva acotada en el tiempo contra la disponibilidad del
// material y emite StockReserved (y LowStockAlert si corresponde).
func (u *UseCase) Reserve(ctx context.Context, materialID string, q entity.Quantity, owner string, duration time.Duration) (*entity.Reservation, error) {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return nil, err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if duration <= 0 {
		duration = u.defaultTTL
	}
	res, err := stock.ReserveStock(q, owner, duration, now)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			reservationsTotal.WithLabelValues("insufficient").Inc()
		} else {
			reservationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if err := u.save(ctx, stock); err != nil {
		reservationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	reservationsTotal.WithLabelValues("ok").Inc()

	u.publish(ctx, event.StockReserved(materialID, res.ID, owner, q.Amount, q.Unit, now))
	u.alertIfLow(ctx, stock, now)

	u.log.Info().
		Str("material_id", materialID).
		Str("reservation_id", res.ID).
		Str("owner", owner).
		Str("quantity", q.String()).
		Time("expires_at", res.ExpiresAt).
		Msg("stock reservado")
	return res, nil
}

// CancelReservation libera explícitamente una reserva activa; la disponibilidad
// vuelve a su valor previo a la reserva.
func (u *UseCase) CancelReservation(ctx context.Context, materialID, reservationID string) error {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return err
	}
	res := stock.FindReservation(reservationID)
	if res == nil {
		return &domain.InactiveReservationError{ReservationID: reservationID, Status: "desconocida"}
	}
	if err := res.Cancel(); err != nil {
		return err
	}
	if err := u.save(ctx, stock); err != nil {
		return err
	}
	u.log.Info().
		Str("material_id", materialID).
		Str("reservation_id", reservationID).
		Msg("reserva cancelada")
	return nil
}

// ExtendReservation corre el vencimiento de una reserva activa a una fecha
// estrictamente futura.
func (u *UseCase) ExtendReservation(ctx context.Context, materialID, reservationID string, newExpiry time.Time) error {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return err
	}
	res := stock.FindReservation(reservationID)
	if res == nil {
		return &domain.InactiveReservationError{ReservationID: reservationID, Status: "desconocida"}
	}
	if err := res.Extend(newExpiry, u.clock.Now()); err != nil {
		return err
	}
	return u.save(ctx, stock)
}

// Consume descuenta stock físico por consumo real (órdenes, producción).
// Si reservationRef cubre parte del consumo, esa reserva pasa a CONSUMED y se
// devuelve el remanente no usado para que el caller decida liberarlo o
// re-reservarlo. Emite StockConsumed.
func (u *UseCase) Consume(ctx context.Context, materialID string, q entity.Quantity, reason, reservationRef string) (entity.Quantity, error) {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return entity.Quantity{}, err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return entity.Quantity{}, err
	}

	now := u.clock.Now()
	remainder, err := stock.ConsumeStock(q, reason, reservationRef, now)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			consumptionsTotal.WithLabelValues("insufficient").Inc()
		} else {
			consumptionsTotal.WithLabelValues("error").Inc()
		}
		return entity.Quantity{}, err
	}
	if err := u.save(ctx, stock); err != nil {
		consumptionsTotal.WithLabelValues("error").Inc()
		return entity.Quantity{}, err
	}
	consumptionsTotal.WithLabelValues("ok").Inc()

	u.publish(ctx, event.StockConsumed(materialID, reservationRef, reason, q.Amount, q.Unit, now))
	u.alertIfLow(ctx, stock, now)

	u.log.Info().
		Str("material_id", materialID).
		Str("quantity", q.String()).
		Str("reason", reason).
		Str("reservation_ref", reservationRef).
		Str("remainder", remainder.String()).
		Msg("stock consumido")
	return remainder, nil
}

// Receive ingresa stock físico (recepción de proveedor) y emite MaterialReceived.
func (u *UseCase) Receive(ctx context.Context, materialID string, q entity.Quantity, reason, supplierRef string) error {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return err
	}

	now := u.clock.Now()
	if _, err := stock.AddStock(q, reason, supplierRef, now); err != nil {
		return err
	}
	if err := u.save(ctx, stock); err != nil {
		return err
	}
	receiptsTotal.Inc()

	u.publish(ctx, event.MaterialReceived(materialID, supplierRef, q.Amount, q.Unit, now))

	u.log.Info().
		Str("material_id", materialID).
		Str("quantity", q.String()).
		Str("reason", reason).
		Str("supplier_ref", supplierRef).
		Msg("material recibido")
	return nil
}

// Adjust fija el stock físico al valor contado en inventario físico.
func (u *UseCase) Adjust(ctx context.Context, materialID string, counted entity.Quantity, reason string) error {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return err
	}
	now := u.clock.Now()
	mov, err := stock.AdjustStock(counted, reason, now)
	if err != nil {
		return err
	}
	if err := u.save(ctx, stock); err != nil {
		return err
	}
	u.log.Info().
		Str("material_id", materialID).
		Str("counted", counted.String()).
		Str("delta", mov.Quantity.String()).
		Str("reason", reason).
		Msg("stock ajustado")
	return nil
}

// ExpireMaterial vence las reservas pasadas de fecha de un material bajo su
// exclusión y emite un ReservationExpired por cada una. Lo invoca el barrido.
func (u *UseCase) ExpireMaterial(ctx context.Context, materialID string) ([]*entity.Reservation, error) {
	if err := u.locks.Acquire(ctx, materialID); err != nil {
		return nil, err
	}
	defer u.locks.Release(materialID)

	stock, err := u.repo.Load(ctx, materialID)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	expired := stock.ExpireOldReservations(now)
	if len(expired) == 0 {
		return nil, nil
	}
	if err := u.save(ctx, stock); err != nil {
		return nil, err
	}
	expiredReservationsTotal.Add(float64(len(expired)))

	for _, r := range expired {
		u.publish(ctx, event.ReservationExpired(materialID, r.ID, r.Owner, r.Quantity.Amount, r.Quantity.Unit, now))
	}
	u.log.Info().
		Str("material_id", materialID).
		Int("expired", len(expired)).
		Msg("reservas vencidas")
	return expired, nil
}

// LowStockReport devuelve los materiales cuya disponibilidad está en o bajo el
// punto de reorden (señal estricta consciente de reservas).
func (u *UseCase) LowStockReport(ctx context.Context) ([]dto.LowStockItem, error) {
	stocks, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	items := make([]dto.LowStockItem, 0)
	for _, s := range stocks {
		if !s.NeedsReplenishment(now) {
			continue
		}
		items = append(items, dto.LowStockItem{
			MaterialID:   s.MaterialID,
			Current:      s.CurrentQuantity.Amount,
			Available:    s.AvailableQuantity(now).Amount,
			ReorderLevel: s.ReorderLevel.Amount,
			Unit:         s.CurrentQuantity.Unit,
		})
	}
	return items, nil
}

// Movements devuelve el historial append-only de un material para auditoría.
func (u *UseCase) Movements(ctx context.Context, materialID string, limit int) ([]entity.MovementRecord, error) {
	if _, err := u.repo.Load(ctx, materialID); err != nil {
		return nil, err
	}
	return u.repo.ListMovements(ctx, materialID, limit)
}

// MaterialIDs devuelve los códigos de todos los materiales conocidos.
func (u *UseCase) MaterialIDs(ctx context.Context) ([]string, error) {
	stocks, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(stocks))
	for _, s := range stocks {
		ids = append(ids, s.MaterialID)
	}
	return ids, nil
}

// save persiste el snapshot y contabiliza conflictos de concurrencia.
func (u *UseCase) save(ctx context.Context, stock *entity.MaterialStock) error {
	if err := u.repo.Save(ctx, stock); err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			concurrencyConflictsTotal.Inc()
			return err
		}
		return fmt.Errorf("guardar agregado %s: %w", stock.MaterialID, err)
	}
	return nil
}

// publish emite el evento; un fallo de publicación se loguea y no voltea la
// operación de negocio ya persistida.
func (u *UseCase) publish(ctx context.Context, ev event.Event) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, ev); err != nil {
		u.log.Warn().
			Err(err).
			Str("type", string(ev.Type)).
			Str("material_id", ev.MaterialID).
			Msg("publicación de evento fallida")
	}
}

// alertIfLow emite LowStockAlert cuando la disponibilidad quedó crítica.
func (u *UseCase) alertIfLow(ctx context.Context, stock *entity.MaterialStock, now time.Time) {
	if !stock.NeedsReplenishment(now) {
		return
	}
	available := stock.AvailableQuantity(now)
	u.publish(ctx, event.LowStockAlert(stock.MaterialID, available.Amount, stock.ReorderLevel.Amount, available.Unit, now))
}
