package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func draft(ingredientID, kind, qty string) inventory.OperationDraft {
	return inventory.OperationDraft{Input: dto.CreateOperationRequest{
		IngredientID:  ingredientID,
		OperationType: kind,
		Quantity:      decimal.RequireFromString(qty),
	}}
}

func TestLote_ElementoInvalidoNoAborta(t *testing.T) {
	e := newEnv(t, fixedNow)
	rice := e.createIngredient(t, "Arroz", "0")

	res, err := e.batch.Apply(context.Background(), fulfiller, []inventory.OperationDraft{
		draft(rice.ID, entity.OperationTypeIN, "5"),
		draft(rice.ID, entity.OperationTypeOUT, "9"),
		draft(rice.ID, entity.OperationTypeOUT, "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)

	require.Len(t, res.Results, 2)
	assert.Equal(t, entity.OperationTypeIN, res.Results[0].OperationType)
	assert.Equal(t, entity.OperationTypeOUT, res.Results[1].OperationType)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Errors, "quantity")
	assert.IsType(t, dto.CreateOperationRequest{}, res.Errors[0].Operation, "sin Source se devuelve la entrada")

	balance, err := e.ledger.Balance(context.Background(), rice.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(balance.Quantity()))
}

func TestLote_PreprocesadoInvalidoConservaOrigen(t *testing.T) {
	e := newEnv(t, fixedNow)
	beans := e.createIngredient(t, "Frijol", "1")

	source := map[string]string{"ingredient": "???", "line": "3"}
	res, err := e.batch.Apply(context.Background(), fulfiller, []inventory.OperationDraft{
		{Source: source, Invalid: map[string]string{"ingredient": "insumo no encontrado"}},
		draft(beans.ID, entity.OperationTypeIN, "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Index)
	assert.Equal(t, source, res.Errors[0].Operation)
}

func TestLote_Vacio(t *testing.T) {
	e := newEnv(t, fixedNow)
	_, err := e.batch.Apply(context.Background(), fulfiller, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLote_ContextoCancelado(t *testing.T) {
	e := newEnv(t, fixedNow)
	rice := e.createIngredient(t, "Arroz", "1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.batch.Apply(ctx, fulfiller, []inventory.OperationDraft{draft(rice.ID, entity.OperationTypeIN, "1")})
	assert.ErrorIs(t, err, context.Canceled)
}
