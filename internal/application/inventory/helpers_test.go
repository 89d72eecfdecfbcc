package inventory_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/store"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var (
	admin     = entity.Actor{ID: "u-admin", Role: entity.RoleAdministrator}
	fulfiller = entity.Actor{ID: "u-fulfiller", Role: entity.RoleFulfiller}
)

type env struct {
	st          *store.Store
	ledger      *inventory.LedgerUseCase
	ingredients *inventory.IngredientUseCase
	batch       *inventory.BatchProcessor
	reports     *inventory.ReportUseCase
	now         time.Time
}

// newEnv arma los casos de uso sobre SQLite en un directorio temporal con el reloj fijo en now.
func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()
	st, err := store.Open(context.Background(), &config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "almacen.db"),
	}})
	require.NoError(t, err)
	t.Cleanup(st.Close)

	settings := inventory.DefaultSettings()
	settings.Now = func() time.Time { return now }
	log := logger.Nop()
	ledger := inventory.NewLedgerUseCase(st.TxRunner, st.Ingredients, st.Operations, settings, log)
	return &env{
		st:          st,
		ledger:      ledger,
		ingredients: inventory.NewIngredientUseCase(st.TxRunner, st.Ingredients, ledger, settings, log),
		batch:       inventory.NewBatchProcessor(ledger, log),
		reports:     inventory.NewReportUseCase(st.Ingredients, st.Operations, nil, settings),
		now:         now,
	}
}

func (e *env) createIngredient(t *testing.T, name, qty string) *dto.IngredientResponse {
	t.Helper()
	out, err := e.ingredients.Create(context.Background(), admin, dto.CreateIngredientRequest{
		Name:     name,
		Category: "secos",
		Unit:     "kg",
		Quantity: decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
	return out
}

func (e *env) post(kind, ingredientID, qty string) (*dto.OperationResponse, error) {
	return e.ledger.Post(context.Background(), fulfiller, dto.CreateOperationRequest{
		IngredientID:  ingredientID,
		OperationType: kind,
		Quantity:      decimal.RequireFromString(qty),
	})
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
