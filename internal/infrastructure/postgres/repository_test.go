package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/config"
)

// testPool se conecta a TEST_DATABASE_URL; sin ella las pruebas se omiten.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestPostgres_InsumoYLibro(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	ings := NewIngredientRepository(pool)
	ops := NewInventoryOperationRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	ing := &entity.Ingredient{
		ID:        uuid.New().String(),
		Name:      "Harina " + uuid.NewString()[:8],
		Category:  "secos",
		Unit:      "kg",
		Quantity:  decimal.RequireFromString("10.5"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, ings.Create(ctx, ing))

	dup := *ing
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, ings.Create(ctx, &dup), domain.ErrDuplicate)

	got, err := ings.GetByID(ctx, ing.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(ing.Quantity))

	missing, err := ings.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, ops.Create(ctx, &entity.InventoryOperation{
		ID:            uuid.New().String(),
		IngredientID:  ing.ID,
		OperationType: entity.OperationTypeOUT,
		Quantity:      decimal.NewFromInt(2),
		OperatorID:    "u-ful",
		CreatedAt:     now,
	}))
	hist, err := ops.ListByIngredient(ctx, ing.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.True(t, hist[0].SignedQuantity().Equal(decimal.NewFromInt(-2)))

	assert.ErrorIs(t, ings.Delete(ctx, ing.ID), domain.ErrConflict)
}

func TestPostgres_TxRunnerRevierte(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.New().String()

	err := NewTxRunner(pool).Run(ctx, func(ingRepo repository.IngredientRepository, _ repository.InventoryOperationRepository, _ repository.MaterialRequestRepository) error {
		if err := ingRepo.Create(ctx, &entity.Ingredient{
			ID: id, Name: "Temporal " + id[:8], Unit: "kg", Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := NewIngredientRepository(pool).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
