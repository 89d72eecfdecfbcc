package http

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/csvimport"
)

// InventoryHandler maneja el libro de inventario: asientos, lotes e importación CSV (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	batch  *inventory.BatchProcessor
	csv    *csvimport.Reader
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, batch *inventory.BatchProcessor, csv *csvimport.Reader) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, batch: batch, csv: csv}
}

// batchBody cuerpo de POST /api/inventory-operations/batch_operation/.
type batchBody struct {
	Operations []json.RawMessage `json:"operations"`
}

// Post godoc
// @Summary      Registrar asiento en el libro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOperationRequest  true  "ingredient_id, operation_type (in|out), quantity"
// @Success      201  {object}  dto.OperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-operations/ [post]
func (h *InventoryHandler) Post(c *fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor.ID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.Post(c.Context(), actor, in)
	if err != nil {
		return respondErrorStock(c, err, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar asientos del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        ingredient_id       query  string  false  "Filtrar por insumo"
// @Param        operation_type      query  string  false  "in | out"
// @Param        related_request_id  query  string  false  "Filtrar por solicitud"
// @Param        from                query  string  false  "Desde (YYYY-MM-DD, incluido)"
// @Param        to                  query  string  false  "Hasta (YYYY-MM-DD, incluido)"
// @Param        limit               query  int     false  "Límite (máx 100)"
// @Param        offset              query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.OperationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory-operations/ [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	f := repository.OperationFilter{
		IngredientID:     c.Query("ingredient_id"),
		OperationType:    c.Query("operation_type"),
		RelatedRequestID: c.Query("related_request_id"),
		Limit:            page.Limit,
		Offset:           page.Offset,
	}
	ve := &domain.ValidationError{}
	if s := c.Query("from"); s != "" {
		from, err := inventory.ParseDate("from", &s)
		if err != nil {
			ve.Add("from", "fecha inválida, formato YYYY-MM-DD")
		}
		f.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := inventory.ParseDate("to", &s)
		if err != nil {
			ve.Add("to", "fecha inválida, formato YYYY-MM-DD")
		} else {
			end := to.Add(24 * time.Hour)
			f.To = &end
		}
	}
	if err := ve.OrNil(); err != nil {
		return respondError(c, err)
	}
	out, err := h.ledger.List(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener asiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      200  {object}  dto.OperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-operations/{id}/ [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.ledger.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BatchOperation godoc
// @Summary      Registrar lote de asientos
// @Description  Cada elemento es independiente: los inválidos se devuelven en errors sin abortar el lote.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  batchBody  true  "operations: lista de asientos"
// @Success      200  {object}  dto.BatchOperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory-operations/batch_operation/ [post]
func (h *InventoryHandler) BatchOperation(c *fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor.ID == "" {
		return unauthorized(c)
	}
	var body batchBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	drafts := make([]inventory.OperationDraft, 0, len(body.Operations))
	for _, raw := range body.Operations {
		drafts = append(drafts, draftFromJSON(raw))
	}
	out, err := h.batch.Apply(c.Context(), actor, drafts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ImportCSV godoc
// @Summary      Importar conteo físico desde CSV
// @Description  Columnas: ingredient, operation_type, quantity, notes, production_date, expiry_period.
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Archivo CSV"
// @Param        encoding  formData  string  false  "utf-8 (defecto) | latin1"
// @Success      200  {object}  dto.BatchOperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory-operations/import_csv/ [post]
func (h *InventoryHandler) ImportCSV(c *fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor.ID == "" {
		return unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, domain.NewValidationError("file", "archivo CSV requerido"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	encoding := c.FormValue("encoding", c.Query("encoding"))
	drafts, err := h.csv.Read(c.Context(), f, encoding)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.batch.Apply(c.Context(), actor, drafts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// draftFromJSON decodifica un elemento del lote. Un elemento mal formado queda como
// borrador inválido para que el resto del lote siga su curso.
func draftFromJSON(raw json.RawMessage) inventory.OperationDraft {
	var source any
	if err := json.Unmarshal(raw, &source); err != nil {
		return inventory.OperationDraft{Source: string(raw), Invalid: map[string]string{"operation": "JSON inválido"}}
	}
	var in dto.CreateOperationRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		field := "operation"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return inventory.OperationDraft{Source: source, Invalid: map[string]string{field: "valor inválido"}}
	}
	return inventory.OperationDraft{Input: in, Source: source}
}
