package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.MaterialStockRepository = (*MaterialStockRepo)(nil)

// MaterialStockRepo es la implementación en memoria del repositorio de
// agregados: corridas locales y tests. Aplica la misma concurrencia optimista
// que el adaptador PostgreSQL (chequeo de versión en Save) y entrega snapshots
// profundos para que ningún caller mute estado compartido por fuera del Save.
type MaterialStockRepo struct {
	mu        sync.RWMutex
	stocks    map[string]*entity.MaterialStock
	movements map[string][]entity.MovementRecord
}

// NewMaterialStockRepository construye el repositorio vacío.
func NewMaterialStockRepository() *MaterialStockRepo {
	return &MaterialStockRepo{
		stocks:    make(map[string]*entity.MaterialStock),
		movements: make(map[string][]entity.MovementRecord),
	}
}

// Load devuelve un snapshot profundo del agregado.
func (r *MaterialStockRepo) Load(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stock, ok := r.stocks[materialID]
	if !ok {
		return nil, domain.ErrMaterialNotFound
	}
	return stock.Clone(), nil
}

// Save persiste el snapshot con chequeo de versión y drena los movimientos
// pendientes al historial append-only.
func (r *MaterialStockRepo) Save(ctx context.Context, stock *entity.MaterialStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.stocks[stock.MaterialID]
	if stock.Version == 0 {
		if exists {
			return domain.ErrMaterialExists
		}
	} else {
		if !exists {
			return domain.ErrMaterialNotFound
		}
		if current.Version != stock.Version {
			return domain.ErrConcurrencyConflict
		}
	}

	movements := stock.DrainMovements()
	r.movements[stock.MaterialID] = append(r.movements[stock.MaterialID], movements...)

	stock.Version++
	r.stocks[stock.MaterialID] = stock.Clone()
	return nil
}

// ListAll devuelve snapshots de todos los agregados.
func (r *MaterialStockRepo) ListAll(ctx context.Context) ([]*entity.MaterialStock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.MaterialStock, 0, len(r.stocks))
	for _, stock := range r.stocks {
		out = append(out, stock.Clone())
	}
	return out, nil
}

// ListMovements devuelve el historial de un material, del más reciente al más antiguo.
func (r *MaterialStockRepo) ListMovements(ctx context.Context, materialID string, limit int) ([]entity.MovementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.movements[materialID]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]entity.MovementRecord, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}
