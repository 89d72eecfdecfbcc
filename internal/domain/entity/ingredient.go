package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un insumo. Nunca se persisten: se calculan al leer.
const (
	IngredientStatusNormal       = "normal"
	IngredientStatusLow          = "low"
	IngredientStatusExpired      = "expired"
	IngredientStatusPendingCheck = "pending_check"
)

// Ingredient insumo del almacén.
// Quantity es la proyección del libro de movimientos; solo el Ledger la actualiza.
type Ingredient struct {
	ID            string
	Name          string
	Category      string
	Unit          string
	Quantity      decimal.Decimal
	MinStock      *decimal.Decimal // umbral propio; nil = umbral configurado
	ExpiryDate    *time.Time
	LastCheckDate *time.Time
	Location      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidIngredientStatus indica si s es un estado derivado conocido.
func IsValidIngredientStatus(s string) bool {
	switch s {
	case IngredientStatusNormal, IngredientStatusLow, IngredientStatusExpired, IngredientStatusPendingCheck:
		return true
	}
	return false
}
