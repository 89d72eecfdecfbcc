package workflow_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/workflow"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/store"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var (
	requester = entity.Actor{ID: "u-req", Role: entity.RoleRequester}
	approver  = entity.Actor{ID: "u-apr", Role: entity.RoleApprover}
	approver2 = entity.Actor{ID: "u-apr-2", Role: entity.RoleApprover}
	fulfiller = entity.Actor{ID: "u-ful", Role: entity.RoleFulfiller}
	admin     = entity.Actor{ID: "u-adm", Role: entity.RoleAdministrator}
	fixedNow  = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

type env struct {
	st          *store.Store
	engine      *workflow.Engine
	ledger      *inventory.LedgerUseCase
	ingredients *inventory.IngredientUseCase
}

// newEnv arma el motor sobre SQLite en un directorio temporal.
func newEnv(t testing.TB, settings workflow.Settings) *env {
	t.Helper()
	st, err := store.Open(context.Background(), &config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "almacen.db"),
	}})
	require.NoError(t, err)
	t.Cleanup(st.Close)

	invSettings := inventory.DefaultSettings()
	invSettings.Now = func() time.Time { return fixedNow }
	if settings.Now == nil {
		settings.Now = invSettings.Now
	}
	log := logger.Nop()
	ledger := inventory.NewLedgerUseCase(st.TxRunner, st.Ingredients, st.Operations, invSettings, log)
	return &env{
		st:          st,
		engine:      workflow.NewEngine(st.TxRunner, st.Requests, ledger, settings, log),
		ledger:      ledger,
		ingredients: inventory.NewIngredientUseCase(st.TxRunner, st.Ingredients, ledger, invSettings, log),
	}
}

func (e *env) ingredient(t testing.TB, name, qty string) string {
	t.Helper()
	out, err := e.ingredients.Create(context.Background(), admin, dto.CreateIngredientRequest{
		Name:     name,
		Unit:     "kg",
		Quantity: decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
	return out.ID
}

func (e *env) request(t testing.TB, lines map[string]string, order ...string) string {
	t.Helper()
	in := dto.CreateMaterialRequestRequest{Title: "Producción", Description: "turno mañana"}
	for _, id := range order {
		in.Items = append(in.Items, dto.MaterialRequestItemRequest{IngredientID: id, Quantity: decimal.RequireFromString(lines[id])})
	}
	out, err := e.engine.Create(context.Background(), requester, in)
	require.NoError(t, err)
	return out.ID
}

// inProgress lleva una solicitud nueva hasta in_progress asignada a fulfiller.
func (e *env) inProgress(t testing.TB, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.engine.Approve(ctx, approver, id)
	require.NoError(t, err)
	_, err = e.engine.Assign(ctx, approver, id, fulfiller.ID)
	require.NoError(t, err)
	_, err = e.engine.StartProcessing(ctx, fulfiller, id)
	require.NoError(t, err)
}

func (e *env) quantity(t testing.TB, ingredientID string) decimal.Decimal {
	t.Helper()
	ing, err := e.st.Ingredients.GetByID(context.Background(), ingredientID)
	require.NoError(t, err)
	require.NotNil(t, ing)
	return ing.Quantity
}
