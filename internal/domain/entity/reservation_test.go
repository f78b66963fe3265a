package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Reservation: máquina de estados ACTIVE → {EXPIRED, CONSUMED, CANCELLED}.
// Los estados terminales no aceptan más transiciones.
// ──────────────────────────────────────────────────────────────────────────────

func TestNewReservation_ActivaConVencimientoAbsoluto(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(80, "kg"), "quote-42", time.Hour, baseTime)

	assert.Equal(t, entity.ReservationActive, res.Status)
	assert.Equal(t, baseTime.Add(time.Hour), res.ExpiresAt, "la duración se convierte en vencimiento absoluto")
	assert.NotEmpty(t, res.ID)
	assert.True(t, res.IsActive(baseTime))
}

func TestNewReservation_DuracionNoPositivaUsaDefault(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "quote-1", 0, baseTime)
	assert.Equal(t, baseTime.Add(entity.DefaultReservationTTL), res.ExpiresAt,
		"sin duración del caller aplica la política de 24 horas")
}

func TestReservation_ConsumeDevuelveRemanente(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(80, "kg"), "order-7", time.Hour, baseTime)

	remainder, err := res.Consume(entity.MustQuantity(50, "kg"), baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConsumed, res.Status)
	assert.True(t, remainder.Equal(entity.MustQuantity(30, "kg")),
		"el remanente (80 - 50 = 30 kg) vuelve al caller, que decide liberarlo o re-reservarlo")
}

func TestReservation_ConsumeMasDeLoReservadoFalla(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(80, "kg"), "order-7", time.Hour, baseTime)

	_, err := res.Consume(entity.MustQuantity(81, "kg"), baseTime)
	var over *domain.OverConsumptionError
	require.ErrorAs(t, err, &over, "consumir más de lo reservado debe fallar con OverConsumption")
	assert.Equal(t, res.ID, over.ReservationID)
	assert.Equal(t, entity.ReservationActive, res.Status, "el fallo no debe cambiar el estado")
}

func TestReservation_ConsumeVencidaFalla(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "order-7", time.Hour, baseTime)

	// Chequeo perezoso: aún ACTIVE por estado pero pasada de fecha
	_, err := res.Consume(entity.MustQuantity(5, "kg"), baseTime.Add(2*time.Hour))
	var inactive *domain.InactiveReservationError
	require.ErrorAs(t, err, &inactive, "una reserva vencida cuenta como inactiva")
	assert.Equal(t, string(entity.ReservationExpired), inactive.Status)
}

func TestReservation_Cancel(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "quote-1", time.Hour, baseTime)

	require.NoError(t, res.Cancel())
	assert.Equal(t, entity.ReservationCancelled, res.Status)

	// CANCELLED es terminal
	var inactive *domain.InactiveReservationError
	require.ErrorAs(t, res.Cancel(), &inactive, "cancelar dos veces debe fallar")
}

func TestReservation_CancelTrasConsumoFalla(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "order-1", time.Hour, baseTime)
	_, err := res.Consume(entity.MustQuantity(10, "kg"), baseTime)
	require.NoError(t, err)

	var already *domain.AlreadyConsumedError
	require.ErrorAs(t, res.Cancel(), &already, "cancelar una reserva consumida debe fallar con AlreadyConsumed")
	assert.Equal(t, res.ID, already.ReservationID)
}

func TestReservation_Extend(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "quote-1", time.Hour, baseTime)

	newExpiry := baseTime.Add(3 * time.Hour)
	require.NoError(t, res.Extend(newExpiry, baseTime))
	assert.Equal(t, newExpiry, res.ExpiresAt)

	// Fecha no estrictamente futura
	var invalid *domain.InvalidExpiryError
	require.ErrorAs(t, res.Extend(baseTime, baseTime), &invalid,
		"extender a una fecha no futura debe fallar con InvalidExpiry")

	// Sobre una reserva no activa
	require.NoError(t, res.Cancel())
	require.ErrorAs(t, res.Extend(baseTime.Add(5*time.Hour), baseTime), &invalid,
		"extender una reserva cancelada debe fallar")
}

func TestReservation_IsActiveConVencimiento(t *testing.T) {
	res := entity.NewReservation("MAT-001", entity.MustQuantity(10, "kg"), "quote-1", time.Hour, baseTime)

	assert.True(t, res.IsActive(baseTime.Add(59*time.Minute)))
	assert.True(t, res.IsActive(baseTime.Add(time.Hour)), "el límite exacto aún no venció")
	assert.False(t, res.IsActive(baseTime.Add(time.Hour+time.Second)), "pasado el vencimiento deja de contar")
}
