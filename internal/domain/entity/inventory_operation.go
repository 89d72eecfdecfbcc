package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación del libro de inventario.
const (
	OperationTypeIN  = "in"  // entrada
	OperationTypeOUT = "out" // salida
)

// InventoryOperation asiento inmutable del libro: un delta con signo sobre un insumo.
// Quantity siempre es positiva; el signo lo da OperationType.
type InventoryOperation struct {
	ID               string
	IngredientID     string
	OperationType    string
	Quantity         decimal.Decimal
	OperatorID       string
	InspectorID      string
	ProductionDate   *time.Time
	ExpiryPeriod     string
	Notes            string
	RelatedRequestID string
	CreatedAt        time.Time
}

// SignedQuantity devuelve la cantidad con signo (+ entrada, - salida).
func (o *InventoryOperation) SignedQuantity() decimal.Decimal {
	if o.OperationType == OperationTypeOUT {
		return o.Quantity.Neg()
	}
	return o.Quantity
}

// IsValidOperationType indica si t es in u out.
func IsValidOperationType(t string) bool {
	return t == OperationTypeIN || t == OperationTypeOUT
}

// QuantityScale decimales que guarda el almacenamiento: NUMERIC(18,4).
const QuantityScale = 4

// QuantityLimitMsg mensaje de validación para cantidades fuera de NUMERIC(18,4).
const QuantityLimitMsg = "máximo 4 decimales y 14 dígitos enteros"

var maxQuantity = decimal.New(1, 18-QuantityScale)

// FitsQuantity indica si q se guarda sin redondeo: a lo sumo QuantityScale decimales
// significativos y parte entera dentro de NUMERIC(18,4). Los ceros finales no cuentan.
func FitsQuantity(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(maxQuantity)
}
