package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Quantity: primitiva aritmética con unidad tipada. Inmutable, nunca negativa;
// la aritmética entre unidades distintas falla, salvo IsSufficientFor que
// responde false por diseño de chequeo de disponibilidad.
// ──────────────────────────────────────────────────────────────────────────────

func TestNewQuantity_RechazaNegativosYUnidadVacia(t *testing.T) {
	_, err := entity.NewQuantity(decimal.NewFromInt(-5), "kg")
	require.ErrorIs(t, err, domain.ErrInvalidQuantity, "un monto negativo debe rechazarse")

	_, err = entity.NewQuantity(decimal.NewFromInt(5), "")
	require.ErrorIs(t, err, domain.ErrInvalidQuantity, "una unidad vacía debe rechazarse")

	q, err := entity.NewQuantity(decimal.Zero, "kg")
	require.NoError(t, err, "cero es una cantidad válida")
	assert.True(t, q.IsZero())
}

func TestQuantity_AddSub(t *testing.T) {
	a := entity.MustQuantity(10.5, "kg")
	b := entity.MustQuantity(2.5, "kg")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(entity.MustQuantity(13, "kg")), "10.5 + 2.5 = 13 kg")

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(entity.MustQuantity(8, "kg")), "10.5 - 2.5 = 8 kg")

	// Inmutabilidad: los operandos no cambian
	assert.True(t, a.Equal(entity.MustQuantity(10.5, "kg")), "el operando izquierdo no debe mutar")
	assert.True(t, b.Equal(entity.MustQuantity(2.5, "kg")), "el operando derecho no debe mutar")
}

func TestQuantity_UnidadesIncompatiblesFallan(t *testing.T) {
	kg := entity.MustQuantity(10, "kg")
	m := entity.MustQuantity(3, "m")

	_, err := kg.Add(m)
	var mismatch *domain.UnitMismatchError
	require.ErrorAs(t, err, &mismatch, "sumar kg + m debe fallar con UnitMismatch")
	assert.Equal(t, "kg", mismatch.Left)
	assert.Equal(t, "m", mismatch.Right)

	_, err = kg.Sub(m)
	require.ErrorAs(t, err, &mismatch, "restar kg - m debe fallar con UnitMismatch")
}

func TestQuantity_SubConUnderflow(t *testing.T) {
	a := entity.MustQuantity(3, "kg")
	b := entity.MustQuantity(5, "kg")

	_, err := a.Sub(b)
	var underflow *domain.UnderflowError
	require.ErrorAs(t, err, &underflow, "3 - 5 debe fallar con Underflow, nunca dar negativo")
	assert.Equal(t, "kg", underflow.Unit)
}

func TestQuantity_IsSufficientFor(t *testing.T) {
	have := entity.MustQuantity(100, "kg")

	assert.True(t, have.IsSufficientFor(entity.MustQuantity(100, "kg")), "igual cantidad alcanza")
	assert.True(t, have.IsSufficientFor(entity.MustQuantity(99.9, "kg")))
	assert.False(t, have.IsSufficientFor(entity.MustQuantity(100.1, "kg")))

	// Unidad distinta: false, no error — "no puede satisfacer"
	assert.False(t, have.IsSufficientFor(entity.MustQuantity(1, "m")),
		"unidad distinta significa que no puede satisfacer, sin error")
}

func TestQuantity_String(t *testing.T) {
	q := entity.MustQuantity(12.5, "kg")
	assert.Equal(t, "12.5 kg", q.String())
}
