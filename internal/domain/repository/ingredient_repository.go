package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// IngredientFilter filtros de listado de insumos. Limit <= 0 devuelve todos.
type IngredientFilter struct {
	Category string
	Search   string // subcadena del nombre, sin distinguir mayúsculas
	Limit    int
	Offset   int
}

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
// Las lecturas devuelven (nil, nil) si no existe.
type IngredientRepository interface {
	Create(ctx context.Context, ing *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	GetByName(ctx context.Context, name string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error)
	// Update persiste los metadatos; nunca la cantidad.
	Update(ctx context.Context, ing *entity.Ingredient) error
	// SetQuantity reemplaza la proyección memorizada tras un asiento.
	SetQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f IngredientFilter) ([]*entity.Ingredient, error)
}
