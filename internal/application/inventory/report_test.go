package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestVentanaDeInforme(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	start, end, err := inventory.ReportWindow(dto.ReportTypeDaily, now)
	require.NoError(t, err)
	assert.Equal(t, day(10), start)
	assert.Equal(t, day(11), end)

	start, _, err = inventory.ReportWindow(dto.ReportTypeWeekly, now)
	require.NoError(t, err)
	assert.Equal(t, day(4), start, "siete días incluido hoy")

	start, _, err = inventory.ReportWindow(dto.ReportTypeMonthly, now)
	require.NoError(t, err)
	assert.Equal(t, day(1), start)

	_, _, err = inventory.ReportWindow("yearly", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInforme_GenerarTotales(t *testing.T) {
	e := newEnv(t, fixedNow)
	flour := e.createIngredient(t, "Harina", "10")
	_, err := e.post(entity.OperationTypeOUT, flour.ID, "4")
	require.NoError(t, err)
	e.createIngredient(t, "Azúcar", "2")

	rep, err := e.reports.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, dto.ReportTypeDaily, rep.Type)
	assert.Equal(t, "2024-03-10", rep.StartDate)
	assert.Equal(t, "2024-03-10", rep.EndDate)
	assert.Equal(t, 2, rep.InCount)
	assert.Equal(t, 1, rep.OutCount)
	assert.Len(t, rep.Entries, 3)

	require.Len(t, rep.Totals, 2)
	assert.Equal(t, "Azúcar", rep.Totals[0].Name)
	assert.Equal(t, "Harina", rep.Totals[1].Name)
	assert.True(t, decimal.NewFromInt(10).Equal(rep.Totals[1].In))
	assert.True(t, decimal.NewFromInt(4).Equal(rep.Totals[1].Out))
	assert.NotEmpty(t, rep.Summary)
}

func TestInforme_PDFSinRenderizador(t *testing.T) {
	e := newEnv(t, fixedNow)
	_, _, err := e.reports.GeneratePDF(context.Background(), dto.ReportTypeDaily)
	assert.Error(t, err)
}
