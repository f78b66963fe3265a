package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.MaterialStockRepository = (*MaterialStockRepo)(nil)

// MaterialStockRepo persiste snapshots completos del agregado sobre PostgreSQL.
// Concurrencia optimista vía columna version: el UPDATE condiciona sobre la
// versión cargada y cero filas afectadas significa ErrConcurrencyConflict.
// Los movimientos son append-only: solo INSERT, jamás UPDATE ni DELETE.
type MaterialStockRepo struct {
	pool *pgxpool.Pool
}

// NewMaterialStockRepository construye el adaptador sobre el pool.
func NewMaterialStockRepository(pool *pgxpool.Pool) *MaterialStockRepo {
	return &MaterialStockRepo{pool: pool}
}

// Load carga el agregado con sus reservas, ordenadas por creación.
func (r *MaterialStockRepo) Load(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	query := `
		SELECT id, material_id, unit, current_qty, reorder_level, max_level, version, last_updated
		FROM material_stock WHERE material_id = $1`
	stock, err := scanStock(r.pool.QueryRow(ctx, query, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("load material stock: %w", err)
	}

	reservations, err := r.loadReservations(ctx, materialID)
	if err != nil {
		return nil, err
	}
	stock.Reservations = reservations
	return stock, nil
}

// Save persiste el snapshot en una transacción: fila del agregado con chequeo
// de versión, reservas reescritas y movimientos pendientes insertados.
func (r *MaterialStockRepo) Save(ctx context.Context, stock *entity.MaterialStock) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movements := stock.DrainMovements()
	restore := func() { stock.RestoreMovements(movements) }

	newVersion := stock.Version + 1
	if stock.Version == 0 {
		insert := `
			INSERT INTO material_stock (id, material_id, unit, current_qty, reorder_level, max_level, version, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = tx.Exec(ctx, insert,
			stock.ID, stock.MaterialID, stock.CurrentQuantity.Unit,
			stock.CurrentQuantity.Amount, stock.ReorderLevel.Amount, stock.MaxLevel.Amount,
			newVersion, stock.LastUpdated,
		)
		if err != nil {
			restore()
			if isUniqueViolation(err) {
				return domain.ErrMaterialExists
			}
			return fmt.Errorf("insert material stock: %w", err)
		}
	} else {
		update := `
			UPDATE material_stock
			SET current_qty = $1, reorder_level = $2, max_level = $3, version = $4, last_updated = $5
			WHERE material_id = $6 AND version = $7`
		tag, err := tx.Exec(ctx, update,
			stock.CurrentQuantity.Amount, stock.ReorderLevel.Amount, stock.MaxLevel.Amount,
			newVersion, stock.LastUpdated, stock.MaterialID, stock.Version,
		)
		if err != nil {
			restore()
			return fmt.Errorf("update material stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			restore()
			return domain.ErrConcurrencyConflict
		}
	}

	// Las reservas viven dentro del agregado: se reescriben con el snapshot.
	if _, err := tx.Exec(ctx, `DELETE FROM stock_reservations WHERE material_id = $1`, stock.MaterialID); err != nil {
		restore()
		return fmt.Errorf("delete reservations: %w", err)
	}
	for _, res := range stock.Reservations {
		insert := `
			INSERT INTO stock_reservations (id, material_id, amount, unit, owner, status, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.Exec(ctx, insert,
			res.ID, res.MaterialID, res.Quantity.Amount, res.Quantity.Unit,
			res.Owner, string(res.Status), res.CreatedAt, res.ExpiresAt,
		); err != nil {
			restore()
			return fmt.Errorf("insert reservation: %w", err)
		}
	}

	for _, mov := range movements {
		insert := `
			INSERT INTO stock_movements (id, material_id, type, amount, unit, reason, supplier_ref, reservation_ref, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err := tx.Exec(ctx, insert,
			mov.ID, mov.MaterialID, mov.Type, mov.Quantity.Amount, mov.Quantity.Unit,
			mov.Reason, nullable(mov.SupplierRef), nullable(mov.ReservationRef), mov.Timestamp,
		); err != nil {
			restore()
			return fmt.Errorf("insert movement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		restore()
		return fmt.Errorf("commit transaction: %w", err)
	}
	stock.Version = newVersion
	return nil
}

// ListAll carga snapshots de todos los agregados (para el barrido y reportes).
func (r *MaterialStockRepo) ListAll(ctx context.Context) ([]*entity.MaterialStock, error) {
	query := `
		SELECT id, material_id, unit, current_qty, reorder_level, max_level, version, last_updated
		FROM material_stock ORDER BY material_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list material stocks: %w", err)
	}
	defer rows.Close()

	byMaterial := make(map[string]*entity.MaterialStock)
	var stocks []*entity.MaterialStock
	for rows.Next() {
		stock, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material stock: %w", err)
		}
		byMaterial[stock.MaterialID] = stock
		stocks = append(stocks, stock)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	resQuery := `
		SELECT id, material_id, amount, unit, owner, status, created_at, expires_at
		FROM stock_reservations ORDER BY created_at`
	resRows, err := r.pool.Query(ctx, resQuery)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer resRows.Close()
	for resRows.Next() {
		res, err := scanReservation(resRows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if stock, ok := byMaterial[res.MaterialID]; ok {
			stock.Reservations = append(stock.Reservations, res)
		}
	}
	return stocks, resRows.Err()
}

// ListMovements devuelve el historial de un material, del más reciente al más antiguo.
func (r *MaterialStockRepo) ListMovements(ctx context.Context, materialID string, limit int) ([]entity.MovementRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, material_id, type, amount, unit, reason, supplier_ref, reservation_ref, created_at
		FROM stock_movements WHERE material_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, materialID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []entity.MovementRecord
	for rows.Next() {
		var m entity.MovementRecord
		var supplierRef, reservationRef *string
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.Type, &m.Quantity.Amount, &m.Quantity.Unit,
			&m.Reason, &supplierRef, &reservationRef, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if supplierRef != nil {
			m.SupplierRef = *supplierRef
		}
		if reservationRef != nil {
			m.ReservationRef = *reservationRef
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *MaterialStockRepo) loadReservations(ctx context.Context, materialID string) ([]*entity.Reservation, error) {
	query := `
		SELECT id, material_id, amount, unit, owner, status, created_at, expires_at
		FROM stock_reservations WHERE material_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func scanStock(row pgx.Row) (*entity.MaterialStock, error) {
	var s entity.MaterialStock
	var unit string
	err := row.Scan(&s.ID, &s.MaterialID, &unit,
		&s.CurrentQuantity.Amount, &s.ReorderLevel.Amount, &s.MaxLevel.Amount,
		&s.Version, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	s.CurrentQuantity.Unit = unit
	s.ReorderLevel.Unit = unit
	s.MaxLevel.Unit = unit
	return &s, nil
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	var status string
	err := row.Scan(&res.ID, &res.MaterialID, &res.Quantity.Amount, &res.Quantity.Unit,
		&res.Owner, &status, &res.CreatedAt, &res.ExpiresAt)
	if err != nil {
		return nil, err
	}
	res.Status = entity.ReservationStatus(status)
	return &res, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
