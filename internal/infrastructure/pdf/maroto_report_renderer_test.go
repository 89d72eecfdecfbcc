package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

func TestRenderizarInforme_GeneraPDF(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rep := &dto.InventoryReportResponse{
		Type:      dto.ReportTypeDaily,
		Title:     "Reporte diario de inventario - 2026-03-10",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-10",
		InCount:   1,
		OutCount:  1,
		Summary:   "En el periodo hubo 1 entradas y 1 salidas sobre 1 insumos.",
		Totals: []dto.ReportIngredientTotal{
			{IngredientID: "i1", Name: "Harina", Unit: "kg", In: decimal.NewFromInt(10), Out: decimal.NewFromInt(3)},
		},
		Entries: []dto.ReportEntry{
			{CreatedAt: now, OperationType: "in", IngredientID: "i1", IngredientName: "Harina", Quantity: decimal.NewFromInt(10), Unit: "kg"},
			{CreatedAt: now, OperationType: "out", IngredientID: "i1", IngredientName: "Harina", Quantity: decimal.NewFromInt(3), Unit: "kg"},
		},
		GeneratedAt: now,
	}

	out, err := NewMarotoReportRenderer("Almacén").RenderInventoryReport(context.Background(), rep)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderizarInforme_InformeVacio(t *testing.T) {
	rep := &dto.InventoryReportResponse{
		Type:        dto.ReportTypeWeekly,
		Title:       "Reporte semanal de inventario",
		StartDate:   "2026-03-04",
		EndDate:     "2026-03-10",
		GeneratedAt: time.Now(),
	}
	out, err := NewMarotoReportRenderer("").RenderInventoryReport(context.Background(), rep)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderizarInforme_InformeNil(t *testing.T) {
	_, err := NewMarotoReportRenderer("").RenderInventoryReport(context.Background(), nil)
	assert.Error(t, err)
}
