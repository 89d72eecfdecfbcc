package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

// ReportHandler expone los reportes de movimientos (protegido).
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// GenerateReport godoc
// @Summary      Generar reporte de inventario
// @Description  Resume entradas y salidas del periodo. Con format=pdf devuelve el documento.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Param        type    query  string  false  "daily (defecto) | weekly | monthly"
// @Param        format  query  string  false  "json (defecto) | pdf"
// @Success      200  {object}  dto.InventoryReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory-reports/generate_report/ [get]
func (h *ReportHandler) GenerateReport(c *fiber.Ctx) error {
	reportType := c.Query("type")
	if strings.EqualFold(c.Query("format"), "pdf") {
		doc, rep, err := h.uc.GeneratePDF(c.Context(), reportType)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="reporte-%s-%s.pdf"`, rep.Type, rep.StartDate))
		return c.Send(doc)
	}
	out, err := h.uc.Generate(c.Context(), reportType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
