package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOperationRequest body para POST /api/inventory-operations/ y cada elemento del lote.
type CreateOperationRequest struct {
	IngredientID     string          `json:"ingredient_id"`
	OperationType    string          `json:"operation_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	InspectorID      string          `json:"inspector_id,omitempty"`
	ProductionDate   *string         `json:"production_date,omitempty"`
	ExpiryPeriod     string          `json:"expiry_period,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	RelatedRequestID string          `json:"related_request_id,omitempty"`
}

// OperationResponse asiento del libro.
type OperationResponse struct {
	ID               string          `json:"id"`
	IngredientID     string          `json:"ingredient_id"`
	OperationType    string          `json:"operation_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	OperatorID       string          `json:"operator_id"`
	InspectorID      string          `json:"inspector_id,omitempty"`
	ProductionDate   *string         `json:"production_date,omitempty"`
	ExpiryPeriod     string          `json:"expiry_period,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	RelatedRequestID string          `json:"related_request_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OperationListResponse listado paginado del libro.
type OperationListResponse struct {
	Items []OperationResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// BatchOperationError fallo de un elemento del lote, con su posición en la entrada.
type BatchOperationError struct {
	Index     int               `json:"index"`
	Operation any               `json:"operation"`
	Errors    map[string]string `json:"errors"`
}

// BatchOperationResponse resultado de POST /api/inventory-operations/batch_operation/.
// Results y Errors conservan el orden de la entrada.
type BatchOperationResponse struct {
	Success int                   `json:"success"`
	Failed  int                   `json:"failed"`
	Results []OperationResponse   `json:"results"`
	Errors  []BatchOperationError `json:"errors"`
}
