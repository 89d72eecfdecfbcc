package ports

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
// Garantiza atomicidad para el libro de inventario y el motor de solicitudes.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ingRepo repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error) error
}
