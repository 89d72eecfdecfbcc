package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// OperationFilter filtros del libro. Limit <= 0 devuelve todos.
type OperationFilter struct {
	IngredientID     string
	OperationType    string
	RelatedRequestID string
	From             *time.Time
	To               *time.Time
	Limit            int
	Offset           int
}

// InventoryOperationRepository puerto del libro de inventario (solo inserción).
type InventoryOperationRepository interface {
	Create(ctx context.Context, op *entity.InventoryOperation) error
	GetByID(ctx context.Context, id string) (*entity.InventoryOperation, error)
	// ListByIngredient devuelve todos los asientos del insumo en orden de creación.
	ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.InventoryOperation, error)
	// List ordena por created_at descendente.
	List(ctx context.Context, f OperationFilter) ([]*entity.InventoryOperation, error)
	CountByIngredient(ctx context.Context, ingredientID string) (int, error)
	CountByRequest(ctx context.Context, requestID string) (int, error)
}
