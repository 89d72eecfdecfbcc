package workflow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/workflow"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

func TestMotor_CicloCompleto(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	flour := e.ingredient(t, "Harina", "10")
	sugar := e.ingredient(t, "Azúcar", "5")
	id := e.request(t, map[string]string{flour: "4", sugar: "5"}, flour, sugar)

	got, err := e.engine.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusPending, got.Status)
	assert.Equal(t, requester.ID, got.RequestedBy)
	require.Len(t, got.Items, 2)

	e.inProgress(t, id)

	done, err := e.engine.Complete(ctx, fulfiller, id)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCompleted, done.Status)
	assert.Equal(t, fulfiller.ID, done.CompletedBy)
	assert.NotNil(t, done.CompletedAt)

	assert.True(t, decimal.NewFromInt(6).Equal(e.quantity(t, flour)))
	assert.True(t, e.quantity(t, sugar).IsZero())

	n, err := e.st.Operations.CountByRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "un asiento de salida por línea")

	_, err = e.engine.Complete(ctx, fulfiller, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "completed es terminal")
}

func TestMotor_RechazarYLuegoAprobar(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "1")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	out, err := e.engine.Reject(ctx, approver, id, "  sin presupuesto ")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRejected, out.Status)
	assert.Equal(t, "sin presupuesto", out.RejectReason)

	_, err = e.engine.Approve(ctx, approver, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMotor_AsignarDosVeces(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "1")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	_, err := e.engine.Approve(ctx, approver, id)
	require.NoError(t, err)
	_, err = e.engine.Assign(ctx, approver, id, fulfiller.ID)
	require.NoError(t, err)

	_, err = e.engine.Assign(ctx, admin, id, "otro")
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)

	got, err := e.engine.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fulfiller.ID, got.AssignedTo)
}

func TestMotor_CompletarEsTodoONada(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	a := e.ingredient(t, "Harina", "10")
	b := e.ingredient(t, "Huevos", "2")
	c := e.ingredient(t, "Leche", "10")
	id := e.request(t, map[string]string{a: "3", b: "6", c: "1"}, a, b, c)
	e.inProgress(t, id)

	_, err := e.engine.Complete(ctx, fulfiller, id)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, decimal.NewFromInt(10).Equal(e.quantity(t, a)))
	assert.True(t, decimal.NewFromInt(2).Equal(e.quantity(t, b)))
	assert.True(t, decimal.NewFromInt(10).Equal(e.quantity(t, c)))

	n, err := e.st.Operations.CountByRequest(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := e.engine.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusInProgress, got.Status)

	_, err = e.ledger.Post(ctx, fulfiller, dto.CreateOperationRequest{IngredientID: b, OperationType: entity.OperationTypeIN, Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)
	done, err := e.engine.Complete(ctx, fulfiller, id)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCompleted, done.Status)
}

func TestMotor_AprobacionConcurrenteUnSoloGanador(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "1")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)
	for i := 0; i < workers; i++ {
		actor := approver
		if i%2 == 1 {
			actor = approver2
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.engine.Approve(ctx, actor, id)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if assert.ErrorIs(t, err, domain.ErrInvalidState) {
				losers++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, losers)
}

func TestMotor_RepeticionIdempotente(t *testing.T) {
	e := newEnv(t, workflow.Settings{IdempotentReplay: true})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "1")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	_, err := e.engine.Approve(ctx, approver, id)
	require.NoError(t, err)
	again, err := e.engine.Approve(ctx, approver, id)
	require.NoError(t, err, "mismo actor, mismo resultado")
	assert.Equal(t, entity.RequestStatusApproved, again.Status)

	_, err = e.engine.Approve(ctx, approver2, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "otro actor no es una repetición")

	_, err = e.engine.Assign(ctx, approver, id, fulfiller.ID)
	require.NoError(t, err)
	_, err = e.engine.Assign(ctx, approver, id, fulfiller.ID)
	assert.NoError(t, err)
	_, err = e.engine.Assign(ctx, approver, id, "otro")
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
}

func TestMotor_ReglasDeRol(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "5")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	_, err := e.engine.Approve(ctx, fulfiller, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.engine.Reject(ctx, requester, id, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.engine.Approve(ctx, admin, id)
	require.NoError(t, err)
	_, err = e.engine.Assign(ctx, fulfiller, id, fulfiller.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.engine.Assign(ctx, approver, id, fulfiller.ID)
	require.NoError(t, err)

	_, err = e.engine.StartProcessing(ctx, approver, id)
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo el asignado o un administrador")
	_, err = e.engine.StartProcessing(ctx, admin, id)
	require.NoError(t, err)
	_, err = e.engine.Complete(ctx, requester, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMotor_EditarYEliminar(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "5")
	pepper := e.ingredient(t, "Pimienta", "5")
	id := e.request(t, map[string]string{salt: "1"}, salt)

	title := "Producción tarde"
	items := []dto.MaterialRequestItemRequest{{IngredientID: pepper, Quantity: decimal.NewFromInt(2)}}
	out, err := e.engine.Edit(ctx, requester, id, dto.UpdateMaterialRequestRequest{Title: &title, Items: &items})
	require.NoError(t, err)
	assert.Equal(t, title, out.Title)
	require.Len(t, out.Items, 1)
	assert.Equal(t, pepper, out.Items[0].IngredientID)

	_, err = e.engine.Edit(ctx, approver, id, dto.UpdateMaterialRequestRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	bad := []dto.MaterialRequestItemRequest{{IngredientID: "no-existe", Quantity: decimal.NewFromInt(1)}}
	_, err = e.engine.Edit(ctx, requester, id, dto.UpdateMaterialRequestRequest{Items: &bad})
	assert.Error(t, err)

	assert.ErrorIs(t, e.engine.Delete(ctx, requester, id), domain.ErrForbidden)
	require.NoError(t, e.engine.Delete(ctx, admin, id))
	_, err = e.engine.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMotor_EliminarConHistorialEnLibro(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "5")
	id := e.request(t, map[string]string{salt: "1"}, salt)
	e.inProgress(t, id)
	_, err := e.engine.Complete(ctx, fulfiller, id)
	require.NoError(t, err)

	assert.ErrorIs(t, e.engine.Delete(ctx, admin, id), domain.ErrConflict)
}

func TestMotor_ValidacionAlCrear(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()

	_, err := e.engine.Create(ctx, requester, dto.CreateMaterialRequestRequest{Title: "vacía"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.engine.Create(ctx, entity.Actor{}, dto.CreateMaterialRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = e.engine.Create(ctx, requester, dto.CreateMaterialRequestRequest{
		Title: "fantasma",
		Items: []dto.MaterialRequestItemRequest{{IngredientID: "no-existe", Quantity: decimal.NewFromInt(1)}},
	})
	assert.Error(t, err)
}

func TestMotor_FiltrosDeListado(t *testing.T) {
	e := newEnv(t, workflow.Settings{})
	ctx := context.Background()
	salt := e.ingredient(t, "Sal", "5")
	first := e.request(t, map[string]string{salt: "1"}, salt)
	e.request(t, map[string]string{salt: "1"}, salt)
	_, err := e.engine.Approve(ctx, approver, first)
	require.NoError(t, err)

	out, err := e.engine.List(ctx, repository.MaterialRequestFilter{Status: entity.RequestStatusPending})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	out, err = e.engine.List(ctx, repository.MaterialRequestFilter{RequestedBy: requester.ID})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	_, err = e.engine.List(ctx, repository.MaterialRequestFilter{Status: "archivada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
