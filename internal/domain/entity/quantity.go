package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/materiales-api/internal/domain"
)

// Quantity es una cantidad no negativa tipada por unidad ("kg", "m", "un").
// Inmutable: toda operación aritmética devuelve un valor nuevo.
type Quantity struct {
	Amount decimal.Decimal
	Unit   string
}

// NewQuantity construye una cantidad validada. Falla con ErrInvalidQuantity
// si el monto es negativo o la unidad está vacía.
func NewQuantity(amount decimal.Decimal, unit string) (Quantity, error) {
	if unit == "" {
		return Quantity{}, fmt.Errorf("%w: unidad vacía", domain.ErrInvalidQuantity)
	}
	if amount.IsNegative() {
		return Quantity{}, fmt.Errorf("%w: monto negativo %s", domain.ErrInvalidQuantity, amount)
	}
	return Quantity{Amount: amount, Unit: unit}, nil
}

// MustQuantity construye una cantidad y entra en pánico si es inválida.
// Para literales en tests y wiring, no para entrada de usuario.
func MustQuantity(amount float64, unit string) Quantity {
	q, err := NewQuantity(decimal.NewFromFloat(amount), unit)
	if err != nil {
		panic(err)
	}
	return q
}

// ZeroQuantity devuelve la cantidad cero en la unidad dada.
func ZeroQuantity(unit string) Quantity {
	return Quantity{Amount: decimal.Zero, Unit: unit}
}

// Add suma dos cantidades de la misma unidad.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.Unit != other.Unit {
		return Quantity{}, &domain.UnitMismatchError{Left: q.Unit, Right: other.Unit}
	}
	return Quantity{Amount: q.Amount.Add(other.Amount), Unit: q.Unit}, nil
}

// Sub resta dos cantidades de la misma unidad. Falla con UnderflowError
// si el resultado sería negativo.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if q.Unit != other.Unit {
		return Quantity{}, &domain.UnitMismatchError{Left: q.Unit, Right: other.Unit}
	}
	if q.Amount.LessThan(other.Amount) {
		return Quantity{}, &domain.UnderflowError{Have: q.Amount, Take: other.Amount, Unit: q.Unit}
	}
	return Quantity{Amount: q.Amount.Sub(other.Amount), Unit: q.Unit}, nil
}

// IsSufficientFor responde si esta cantidad alcanza para cubrir need.
// Una diferencia de unidad devuelve false, no error: para chequeos de
// disponibilidad "unidad distinta" significa "no puede satisfacer".
func (q Quantity) IsSufficientFor(need Quantity) bool {
	if q.Unit != need.Unit {
		return false
	}
	return q.Amount.GreaterThanOrEqual(need.Amount)
}

// IsZero responde si el monto es cero.
func (q Quantity) IsZero() bool {
	return q.Amount.IsZero()
}

// IsPositive responde si el monto es estrictamente mayor a cero.
func (q Quantity) IsPositive() bool {
	return q.Amount.GreaterThan(decimal.Zero)
}

// Equal compara monto y unidad.
func (q Quantity) Equal(other Quantity) bool {
	return q.Unit == other.Unit && q.Amount.Equal(other.Amount)
}

// String renderiza "12.5 kg".
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", q.Amount, q.Unit)
}
