package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ReportUseCase genera reportes de movimientos (diario, semanal, mensual) a partir del libro.
type ReportUseCase struct {
	ingRepo  repository.IngredientRepository
	opRepo   repository.InventoryOperationRepository
	renderer ports.ReportRenderer
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso. renderer puede ser nil si no se exporta PDF.
func NewReportUseCase(
	ingRepo repository.IngredientRepository,
	opRepo repository.InventoryOperationRepository,
	renderer ports.ReportRenderer,
	settings Settings,
) *ReportUseCase {
	return &ReportUseCase{ingRepo: ingRepo, opRepo: opRepo, renderer: renderer, now: settings.clock()}
}

// ReportWindow calcula [start, end) del reporte: daily = hoy; weekly = últimos 7 días
// incluido hoy; monthly = desde el día 1 del mes en curso.
func ReportWindow(reportType string, now time.Time) (start, end time.Time, err error) {
	today := domaininv.StartOfDay(now)
	end = today.AddDate(0, 0, 1)
	switch reportType {
	case dto.ReportTypeDaily:
		start = today
	case dto.ReportTypeWeekly:
		start = today.AddDate(0, 0, -6)
	case dto.ReportTypeMonthly:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	default:
		return time.Time{}, time.Time{}, domain.NewValidationError("type", "tipo de reporte no soportado")
	}
	return start, end, nil
}

// Generate arma el reporte del tipo indicado (por defecto daily).
func (uc *ReportUseCase) Generate(ctx context.Context, reportType string) (*dto.InventoryReportResponse, error) {
	if reportType == "" {
		reportType = dto.ReportTypeDaily
	}
	now := uc.now()
	start, end, err := ReportWindow(reportType, now)
	if err != nil {
		return nil, err
	}
	ops, err := uc.opRepo.List(ctx, repository.OperationFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].CreatedAt.Before(ops[j].CreatedAt) })

	names := make(map[string]*entity.Ingredient)
	totals := make(map[string]*dto.ReportIngredientTotal)
	rep := &dto.InventoryReportResponse{
		Type:        reportType,
		StartDate:   start.Format(DateLayout),
		EndDate:     end.AddDate(0, 0, -1).Format(DateLayout),
		Entries:     make([]dto.ReportEntry, 0, len(ops)),
		Totals:      []dto.ReportIngredientTotal{},
		GeneratedAt: now,
	}
	for _, op := range ops {
		ing, ok := names[op.IngredientID]
		if !ok {
			ing, err = uc.ingRepo.GetByID(ctx, op.IngredientID)
			if err != nil {
				return nil, err
			}
			if ing == nil {
				ing = &entity.Ingredient{ID: op.IngredientID, Name: op.IngredientID}
			}
			names[op.IngredientID] = ing
		}
		t, ok := totals[op.IngredientID]
		if !ok {
			t = &dto.ReportIngredientTotal{IngredientID: ing.ID, Name: ing.Name, Unit: ing.Unit, In: decimal.Zero, Out: decimal.Zero}
			totals[op.IngredientID] = t
		}
		if op.OperationType == entity.OperationTypeIN {
			rep.InCount++
			t.In = t.In.Add(op.Quantity)
		} else {
			rep.OutCount++
			t.Out = t.Out.Add(op.Quantity)
		}
		rep.Entries = append(rep.Entries, dto.ReportEntry{
			CreatedAt:      op.CreatedAt,
			OperationType:  op.OperationType,
			IngredientID:   op.IngredientID,
			IngredientName: ing.Name,
			Quantity:       op.Quantity,
			Unit:           ing.Unit,
		})
	}
	for _, t := range totals {
		rep.Totals = append(rep.Totals, *t)
	}
	sort.Slice(rep.Totals, func(i, j int) bool { return rep.Totals[i].Name < rep.Totals[j].Name })

	switch reportType {
	case dto.ReportTypeDaily:
		rep.Title = "Reporte diario de inventario - " + rep.StartDate
	case dto.ReportTypeWeekly:
		rep.Title = fmt.Sprintf("Reporte semanal de inventario - %s a %s", rep.StartDate, rep.EndDate)
	case dto.ReportTypeMonthly:
		rep.Title = "Reporte mensual de inventario - " + start.Format("2006-01")
	}
	rep.Summary = fmt.Sprintf("En el periodo hubo %d entradas y %d salidas sobre %d insumos.",
		rep.InCount, rep.OutCount, len(rep.Totals))
	return rep, nil
}

// GeneratePDF genera el reporte y lo renderiza con el ReportRenderer.
func (uc *ReportUseCase) GeneratePDF(ctx context.Context, reportType string) ([]byte, *dto.InventoryReportResponse, error) {
	if uc.renderer == nil {
		return nil, nil, fmt.Errorf("report: renderer no configurado")
	}
	rep, err := uc.Generate(ctx, reportType)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := uc.renderer.RenderInventoryReport(ctx, rep)
	if err != nil {
		return nil, nil, err
	}
	return pdf, rep, nil
}
