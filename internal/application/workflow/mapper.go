package workflow

import (
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ToMaterialRequestResponse mapea el agregado y calcula status_display.
func ToMaterialRequestResponse(r *entity.MaterialRequest) dto.MaterialRequestResponse {
	items := make([]dto.MaterialRequestItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.MaterialRequestItemResponse{
			ID:           it.ID,
			IngredientID: it.IngredientID,
			Quantity:     it.Quantity,
			Notes:        it.Notes,
		})
	}
	return dto.MaterialRequestResponse{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		StatusDisplay: entity.StatusDisplay(r.Status),
		RequestedBy:   r.RequestedBy,
		RequestedAt:   r.RequestedAt,
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    r.ApprovedAt,
		RejectReason:  r.RejectReason,
		AssignedTo:    r.AssignedTo,
		AssignedAt:    r.AssignedAt,
		CompletedBy:   r.CompletedBy,
		CompletedAt:   r.CompletedAt,
		Items:         items,
	}
}
