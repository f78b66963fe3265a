package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/memory"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newStock(t *testing.T, id string) *entity.MaterialStock {
	t.Helper()
	stock, err := entity.NewMaterialStock(id,
		entity.MustQuantity(1000, "kg"),
		entity.MustQuantity(100, "kg"),
		entity.MustQuantity(2000, "kg"),
		baseTime,
	)
	require.NoError(t, err)
	return stock
}

func TestRepo_SaveLoadRoundTrip(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()

	stock := newStock(t, "MAT-ACERO")
	_, err := stock.ReserveStock(entity.MustQuantity(300, "kg"), "quote-1", time.Hour, baseTime)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, stock))
	assert.Equal(t, int64(1), stock.Version, "el primer Save deja la versión en 1")

	loaded, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	assert.True(t, loaded.CurrentQuantity.Equal(entity.MustQuantity(1000, "kg")))
	require.Len(t, loaded.Reservations, 1)
	assert.Equal(t, "quote-1", loaded.Reservations[0].Owner)
}

func TestRepo_LoadInexistente(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	_, err := repo.Load(context.Background(), "NO-EXISTE")
	require.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

func TestRepo_InsertDuplicadoFalla(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newStock(t, "MAT-ACERO")))
	err := repo.Save(ctx, newStock(t, "MAT-ACERO"))
	require.ErrorIs(t, err, domain.ErrMaterialExists)
}

func TestRepo_ConflictoDeVersion(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newStock(t, "MAT-ACERO")))

	// Dos lectores cargan la misma versión
	a, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	b, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)

	_, err = a.AddStock(entity.MustQuantity(10, "kg"), "receipt", "", baseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a), "el primer escritor gana")

	_, err = b.AddStock(entity.MustQuantity(20, "kg"), "receipt", "", baseTime)
	require.NoError(t, err)
	require.ErrorIs(t, repo.Save(ctx, b), domain.ErrConcurrencyConflict,
		"el escritor con versión vieja debe perder")

	// El estado persistido es el del ganador
	final, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	assert.True(t, final.CurrentQuantity.Equal(entity.MustQuantity(1010, "kg")))
}

func TestRepo_SnapshotsAislados(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newStock(t, "MAT-ACERO")))

	loaded, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	_, err = loaded.ReserveStock(entity.MustQuantity(500, "kg"), "quote-1", time.Hour, baseTime)
	require.NoError(t, err)

	// Sin Save, el estado guardado no cambia
	fresh, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	assert.Empty(t, fresh.Reservations, "mutar un snapshot no afecta lo persistido hasta el Save")
}

func TestRepo_MovimientosDelMasRecienteAlMasAntiguo(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()

	stock := newStock(t, "MAT-ACERO")
	require.NoError(t, repo.Save(ctx, stock))

	loaded, err := repo.Load(ctx, "MAT-ACERO")
	require.NoError(t, err)
	_, err = loaded.AddStock(entity.MustQuantity(100, "kg"), "receipt", "PO-1", baseTime.Add(time.Minute))
	require.NoError(t, err)
	_, err = loaded.ConsumeStock(entity.MustQuantity(50, "kg"), "orden", "", baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	assert.Empty(t, loaded.PendingMovements(), "Save drena los movimientos pendientes del agregado")

	movs, err := repo.ListMovements(ctx, "MAT-ACERO", 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementOUTBOUND, movs[0].Type, "el más reciente primero")
	assert.Equal(t, entity.MovementINBOUND, movs[1].Type)

	limited, err := repo.ListMovements(ctx, "MAT-ACERO", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, entity.MovementOUTBOUND, limited[0].Type)
}

func TestRepo_ListAll(t *testing.T) {
	repo := memory.NewMaterialStockRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newStock(t, "MAT-A")))
	require.NoError(t, repo.Save(ctx, newStock(t, "MAT-B")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
