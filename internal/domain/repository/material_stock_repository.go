package repository

import (
	"context"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

// MaterialStockRepository carga y persiste snapshots completos del agregado.
// Save debe aplicar concurrencia optimista: si la versión persistida no coincide
// con la versión cargada devuelve domain.ErrConcurrencyConflict y el caller
// recarga y reintenta la operación completa. Con Version == 0 inserta.
type MaterialStockRepository interface {
	// Load devuelve el agregado por código de material o domain.ErrMaterialNotFound.
	Load(ctx context.Context, materialID string) (*entity.MaterialStock, error)
	// Save persiste el snapshot, drena los movimientos pendientes (append-only)
	// e incrementa Version en el agregado recibido.
	Save(ctx context.Context, stock *entity.MaterialStock) error
	// ListAll devuelve snapshots de todos los agregados (lo usa el barrido).
	ListAll(ctx context.Context) ([]*entity.MaterialStock, error)
	// ListMovements devuelve el historial de movimientos de un material,
	// del más reciente al más antiguo.
	ListMovements(ctx context.Context, materialID string, limit int) ([]entity.MovementRecord, error)
}
