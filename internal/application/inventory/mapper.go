package inventory

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
)

// DateLayout formato de fechas (sin hora) en la API.
const DateLayout = "2006-01-02"

// ToIngredientResponse mapea el insumo y deriva su estado en now.
func ToIngredientResponse(ing *entity.Ingredient, p domaininv.StatusPolicy, now time.Time) dto.IngredientResponse {
	return dto.IngredientResponse{
		ID:            ing.ID,
		Name:          ing.Name,
		Category:      ing.Category,
		Unit:          ing.Unit,
		Quantity:      ing.Quantity,
		MinStock:      ing.MinStock,
		ExpiryDate:    FormatDate(ing.ExpiryDate),
		LastCheckDate: FormatDate(ing.LastCheckDate),
		Location:      ing.Location,
		Status:        domaininv.DeriveStatus(ing, p, now),
		CreatedAt:     ing.CreatedAt,
		UpdatedAt:     ing.UpdatedAt,
	}
}

// ToOperationResponse mapea un asiento del libro.
func ToOperationResponse(op *entity.InventoryOperation) dto.OperationResponse {
	return dto.OperationResponse{
		ID:               op.ID,
		IngredientID:     op.IngredientID,
		OperationType:    op.OperationType,
		Quantity:         op.Quantity,
		OperatorID:       op.OperatorID,
		InspectorID:      op.InspectorID,
		ProductionDate:   FormatDate(op.ProductionDate),
		ExpiryPeriod:     op.ExpiryPeriod,
		Notes:            op.Notes,
		RelatedRequestID: op.RelatedRequestID,
		CreatedAt:        op.CreatedAt,
	}
}

// FormatDate devuelve YYYY-MM-DD o nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate interpreta YYYY-MM-DD; nil o vacío devuelve nil. El error es de validación sobre field.
func ParseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, domain.NewValidationError(field, "fecha inválida, formato YYYY-MM-DD")
	}
	return &t, nil
}
