package ports

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// ReportRenderer define el puerto de salida para renderizar reportes de inventario (PDF).
type ReportRenderer interface {
	RenderInventoryReport(ctx context.Context, report *dto.InventoryReportResponse) ([]byte, error)
}
