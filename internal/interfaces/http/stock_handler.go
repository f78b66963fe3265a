package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/stock"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de reservas de material.
// Es un adaptador fino: valida lo mínimo, delega en el caso de uso y traduce
// los errores de negocio a respuestas estructuradas.
type StockHandler struct {
	uc *stock.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RegisterMaterial da de alta el stock de un material.
// POST /api/v1/materials
func (h *StockHandler) RegisterMaterial(c *fiber.Ctx) error {
	var in dto.RegisterMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	initial, err := entity.NewQuantity(in.InitialAmount, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	reorder, err := entity.NewQuantity(in.ReorderLevel, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	max, err := entity.NewQuantity(in.MaxLevel, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	created, err := h.uc.RegisterMaterial(c.Context(), in.MaterialID, initial, reorder, max)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"material_id": created.MaterialID,
		"current":     created.CurrentQuantity.Amount,
		"unit":        created.CurrentQuantity.Unit,
	})
}

// CheckAvailability responde si la disponibilidad cubre la cantidad pedida.
// GET /api/v1/materials/:id/availability?amount=&unit=
func (h *StockHandler) CheckAvailability(c *fiber.Ctx) error {
	q, err := parseQuantityQuery(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "amount/unit inválidos")
	}
	ok, err := h.uc.CheckAvailability(c.Context(), c.Params("id"), q)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"material_id": c.Params("id"), "available": ok})
}

// Reserve crea una reserva acotada en el tiempo.
// POST /api/v1/materials/:id/reservations
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Owner == "" {
		return badRequest(c, "VALIDATION", "owner es obligatorio")
	}
	q, err := entity.NewQuantity(in.Amount, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	duration := time.Duration(in.TTLMinutes) * time.Minute
	res, err := h.uc.Reserve(c.Context(), c.Params("id"), q, in.Owner, duration)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}

// CancelReservation libera explícitamente una reserva activa.
// DELETE /api/v1/materials/:id/reservations/:reservationID
func (h *StockHandler) CancelReservation(c *fiber.Ctx) error {
	err := h.uc.CancelReservation(c.Context(), c.Params("id"), c.Params("reservationID"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva cancelada"})
}

// ExtendReservation corre el vencimiento de una reserva activa.
// PATCH /api/v1/materials/:id/reservations/:reservationID
func (h *StockHandler) ExtendReservation(c *fiber.Ctx) error {
	var in dto.ExtendReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	err := h.uc.ExtendReservation(c.Context(), c.Params("id"), c.Params("reservationID"), in.ExpiresAt)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva extendida"})
}

// Consume descuenta stock físico por consumo real.
// POST /api/v1/materials/:id/consume
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	q, err := entity.NewQuantity(in.Amount, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	remainder, err := h.uc.Consume(c.Context(), c.Params("id"), q, in.Reason, in.ReservationID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.ConsumeResponse{RemainderAmount: remainder.Amount, Unit: remainder.Unit})
}

// Receive ingresa stock físico de proveedor.
// POST /api/v1/materials/:id/receive
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	q, err := entity.NewQuantity(in.Amount, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	if err := h.uc.Receive(c.Context(), c.Params("id"), q, in.Reason, in.SupplierRef); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "material recibido"})
}

// Adjust fija el stock al valor contado en inventario físico.
// POST /api/v1/materials/:id/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	counted, err := entity.NewQuantity(in.CountedAmount, in.Unit)
	if err != nil {
		return writeDomainError(c, err)
	}
	if err := h.uc.Adjust(c.Context(), c.Params("id"), counted, in.Reason); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock ajustado"})
}

// LowStockReport devuelve los materiales con disponibilidad crítica.
// GET /api/v1/reports/low-stock
func (h *StockHandler) LowStockReport(c *fiber.Ctx) error {
	items, err := h.uc.LowStockReport(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// Movements devuelve el historial append-only de un material.
// GET /api/v1/materials/:id/movements?limit=
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	movs, err := h.uc.Movements(c.Context(), c.Params("id"), limit)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovementResponse{
			ID:             m.ID,
			Type:           m.Type,
			Amount:         m.Quantity.Amount,
			Unit:           m.Quantity.Unit,
			Reason:         m.Reason,
			SupplierRef:    m.SupplierRef,
			ReservationRef: m.ReservationRef,
			Timestamp:      m.Timestamp,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

func parseQuantityQuery(c *fiber.Ctx) (entity.Quantity, error) {
	raw := c.Query("amount")
	if raw == "" {
		return entity.Quantity{}, domain.ErrInvalidInput
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return entity.Quantity{}, err
	}
	return entity.NewQuantity(amount, c.Query("unit"))
}

func toReservationResponse(res *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:         res.ID,
		MaterialID: res.MaterialID,
		Amount:     res.Quantity.Amount,
		Unit:       res.Quantity.Unit,
		Owner:      res.Owner,
		Status:     string(res.Status),
		CreatedAt:  res.CreatedAt,
		ExpiresAt:  res.ExpiresAt,
	}
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// writeDomainError traduce el error de negocio a una respuesta estructurada:
// el caller recibe ids y cantidades suficientes para armar un mensaje
// accionable sin que el motor sepa de presentación.
func writeDomainError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   insufficient.Error(),
			Requested: &insufficient.Requested,
			Available: &insufficient.Available,
		})
	}
	var overConsumption *domain.OverConsumptionError
	if errors.As(err, &overConsumption) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:      "OVER_CONSUMPTION",
			Message:   overConsumption.Error(),
			Requested: &overConsumption.Requested,
			Available: &overConsumption.Reserved,
		})
	}
	var inactive *domain.InactiveReservationError
	if errors.As(err, &inactive) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INACTIVE_RESERVATION", Message: inactive.Error()})
	}
	var alreadyConsumed *domain.AlreadyConsumedError
	if errors.As(err, &alreadyConsumed) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CONSUMED", Message: alreadyConsumed.Error()})
	}
	var unitMismatch *domain.UnitMismatchError
	if errors.As(err, &unitMismatch) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNIT_MISMATCH", Message: unitMismatch.Error()})
	}
	var underflow *domain.UnderflowError
	if errors.As(err, &underflow) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNDERFLOW", Message: underflow.Error()})
	}
	var invalidExpiry *domain.InvalidExpiryError
	if errors.As(err, &invalidExpiry) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_EXPIRY", Message: invalidExpiry.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrMaterialNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "MATERIAL_NOT_FOUND", Message: "material no encontrado"})
	case errors.Is(err, domain.ErrMaterialExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MATERIAL_EXISTS", Message: "el material ya está registrado"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		// El caller recarga y reintenta la operación completa.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "el agregado fue modificado, reintente"})
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
