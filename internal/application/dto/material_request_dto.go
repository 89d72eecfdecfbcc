package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialRequestItemRequest línea de una solicitud en creación o edición.
type MaterialRequestItemRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes,omitempty"`
}

// CreateMaterialRequestRequest body para POST /api/material-requests/.
type CreateMaterialRequestRequest struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Items       []MaterialRequestItemRequest `json:"items"`
}

// UpdateMaterialRequestRequest body para PATCH /api/material-requests/{id}/ (solo en pending).
type UpdateMaterialRequestRequest struct {
	Title       *string                       `json:"title,omitempty"`
	Description *string                       `json:"description,omitempty"`
	Items       *[]MaterialRequestItemRequest `json:"items,omitempty"`
}

// RejectMaterialRequestRequest body opcional para PUT .../reject/.
type RejectMaterialRequestRequest struct {
	Reason string `json:"reason"`
}

// AssignMaterialRequestRequest body para PUT .../assign/.
type AssignMaterialRequestRequest struct {
	EmployeeID string `json:"employee_id"`
}

// MaterialRequestItemResponse línea de la solicitud.
type MaterialRequestItemResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes,omitempty"`
}

// MaterialRequestResponse solicitud con su estado legible.
type MaterialRequestResponse struct {
	ID            string                        `json:"id"`
	Title         string                        `json:"title"`
	Description   string                        `json:"description"`
	Status        string                        `json:"status"`
	StatusDisplay string                        `json:"status_display"`
	RequestedBy   string                        `json:"requested_by"`
	RequestedAt   time.Time                     `json:"requested_at"`
	ApprovedBy    string                        `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time                    `json:"approved_at,omitempty"`
	RejectReason  string                        `json:"reject_reason,omitempty"`
	AssignedTo    string                        `json:"assigned_to,omitempty"`
	AssignedAt    *time.Time                    `json:"assigned_at,omitempty"`
	CompletedBy   string                        `json:"completed_by,omitempty"`
	CompletedAt   *time.Time                    `json:"completed_at,omitempty"`
	Items         []MaterialRequestItemResponse `json:"items"`
}

// MaterialRequestListResponse listado paginado de solicitudes.
type MaterialRequestListResponse struct {
	Items []MaterialRequestResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}
