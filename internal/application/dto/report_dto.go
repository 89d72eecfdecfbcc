package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de reporte de inventario.
const (
	ReportTypeDaily   = "daily"
	ReportTypeWeekly  = "weekly"
	ReportTypeMonthly = "monthly"
)

// ReportIngredientTotal totales de un insumo en la ventana del reporte.
type ReportIngredientTotal struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	In           decimal.Decimal `json:"in"`
	Out          decimal.Decimal `json:"out"`
}

// ReportEntry asiento listado en el detalle del reporte.
type ReportEntry struct {
	CreatedAt      time.Time       `json:"created_at"`
	OperationType  string          `json:"operation_type"`
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// InventoryReportResponse reporte generado para GET /api/inventory-reports/generate_report/.
type InventoryReportResponse struct {
	Type        string                  `json:"type"`
	Title       string                  `json:"title"`
	StartDate   string                  `json:"start_date"`
	EndDate     string                  `json:"end_date"`
	InCount     int                     `json:"in_count"`
	OutCount    int                     `json:"out_count"`
	Summary     string                  `json:"summary"`
	Totals      []ReportIngredientTotal `json:"totals"`
	Entries     []ReportEntry           `json:"entries"`
	GeneratedAt time.Time               `json:"generated_at"`
}
