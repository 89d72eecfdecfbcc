package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIngredientRequest body para POST /api/ingredients/.
// Fechas en formato YYYY-MM-DD. Quantity > 0 genera un asiento de apertura.
type CreateIngredientRequest struct {
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Unit          string           `json:"unit"`
	Quantity      decimal.Decimal  `json:"quantity"`
	MinStock      *decimal.Decimal `json:"min_stock,omitempty"`
	ExpiryDate    *string          `json:"expiry_date,omitempty"`
	LastCheckDate *string          `json:"last_check_date,omitempty"`
	Location      string           `json:"location"`
}

// UpdateIngredientRequest body para PATCH /api/ingredients/{id}/. La cantidad no se edita.
type UpdateIngredientRequest struct {
	Name       *string          `json:"name,omitempty"`
	Category   *string          `json:"category,omitempty"`
	Unit       *string          `json:"unit,omitempty"`
	MinStock   *decimal.Decimal `json:"min_stock,omitempty"`
	ExpiryDate *string          `json:"expiry_date,omitempty"`
	Location   *string          `json:"location,omitempty"`
}

// IngredientResponse insumo con su estado derivado.
type IngredientResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Unit          string           `json:"unit"`
	Quantity      decimal.Decimal  `json:"quantity"`
	MinStock      *decimal.Decimal `json:"min_stock,omitempty"`
	ExpiryDate    *string          `json:"expiry_date,omitempty"`
	LastCheckDate *string          `json:"last_check_date,omitempty"`
	Location      string           `json:"location"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IngredientListResponse listado paginado de insumos.
type IngredientListResponse struct {
	Items []IngredientResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
