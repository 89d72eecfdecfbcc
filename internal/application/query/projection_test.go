package query_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/store"
	"github.com/jhoicas/almacen-api/pkg/config"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seed(t *testing.T) (*query.ProjectionUseCase, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, &config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "almacen.db"),
	}})
	require.NoError(t, err)
	t.Cleanup(st.Close)

	ingredients := []*entity.Ingredient{
		{ID: "ing-1", Name: "Leche", Unit: "l", Quantity: decimal.NewFromInt(10), ExpiryDate: day(15)},
		{ID: "ing-2", Name: "Yogur", Unit: "l", Quantity: decimal.NewFromInt(10), ExpiryDate: day(12)},
		{ID: "ing-3", Name: "Crema", Unit: "l", Quantity: decimal.NewFromInt(10), ExpiryDate: day(9)},
		{ID: "ing-4", Name: "Queso", Unit: "kg", Quantity: decimal.Zero, ExpiryDate: day(11)},
		{ID: "ing-5", Name: "Mantequilla", Unit: "kg", Quantity: decimal.NewFromInt(2)},
		{ID: "ing-6", Name: "Harina", Unit: "kg", Quantity: decimal.NewFromInt(50), ExpiryDate: day(30)},
	}
	for _, ing := range ingredients {
		ing.CreatedAt, ing.UpdatedAt = now, now
		require.NoError(t, st.Ingredients.Create(ctx, ing))
	}

	settings := inventory.DefaultSettings()
	settings.Now = func() time.Time { return now }
	return query.NewProjectionUseCase(st.Ingredients, st.Requests, settings), st
}

func TestPorVencerDentroDe(t *testing.T) {
	uc, _ := seed(t)

	list, err := uc.ExpiringWithin(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 2, "sin stock o fuera de la ventana no cuentan")
	assert.Equal(t, "Yogur", list[0].Name, "ordenado por vencimiento")
	assert.Equal(t, "Leche", list[1].Name)

	list, err = uc.ExpiringWithin(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.ExpiringWithin(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVencidos(t *testing.T) {
	uc, _ := seed(t)

	list, err := uc.Expired(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Crema", list[0].Name)
	assert.Equal(t, entity.IngredientStatusExpired, list[0].Status)
}

func TestBajoUmbral(t *testing.T) {
	uc, _ := seed(t)

	list, err := uc.BelowThreshold(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(list))
	for _, it := range list {
		got = append(got, it.Name)
	}
	assert.ElementsMatch(t, []string{"Queso", "Mantequilla"}, got)
}

func TestPorEstado(t *testing.T) {
	uc, _ := seed(t)

	list, err := uc.ByStatus(context.Background(), entity.IngredientStatusNormal)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = uc.ByStatus(context.Background(), "raro")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVistasDeSolicitudes(t *testing.T) {
	uc, st := seed(t)
	ctx := context.Background()

	for i, assignee := range []string{"u-1", "u-2", "u-1"} {
		at := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, st.Requests.Create(ctx, &entity.MaterialRequest{
			ID:          "mr-" + string(rune('a'+i)),
			Title:       "Solicitud",
			Status:      entity.RequestStatusApproved,
			RequestedBy: "u-req",
			RequestedAt: at,
			ApprovedBy:  "u-apr",
			ApprovedAt:  &at,
			AssignedTo:  assignee,
			AssignedAt:  &at,
			UpdatedAt:   at,
			Items: []entity.MaterialRequestItem{
				{ID: "it-" + string(rune('a'+i)), IngredientID: "ing-1", Quantity: decimal.NewFromInt(1)},
			},
		}))
	}

	mine, err := uc.AssignedTo(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "mr-c", mine[0].ID, "más recientes primero")

	_, err = uc.AssignedTo(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	approved, err := uc.RequestsByStatus(ctx, entity.RequestStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 3)

	_, err = uc.RequestsByStatus(ctx, "archivada")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
