package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/query"
)

// IngredientHandler maneja las peticiones HTTP de insumos (protegido).
type IngredientHandler struct {
	uc               *inventory.IngredientUseCase
	views            *query.ProjectionUseCase
	expiringSoonDays int
}

// NewIngredientHandler construye el handler. expiringSoonDays es la ventana por defecto de expiring_soon.
func NewIngredientHandler(uc *inventory.IngredientUseCase, views *query.ProjectionUseCase, expiringSoonDays int) *IngredientHandler {
	return &IngredientHandler{uc: uc, views: views, expiringSoonDays: expiringSoonDays}
}

// List godoc
// @Summary      Listar insumos
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Categoría exacta"
// @Param        search    query  string  false  "Subcadena del nombre"
// @Param        status    query  string  false  "normal | low | expired | pending_check"
// @Param        limit     query  int     false  "Límite (máx 100)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.IngredientListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ingredients/ [get]
func (h *IngredientHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	out, err := h.uc.List(c.Context(), inventory.IngredientListInput{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear insumo
// @Description  Si quantity > 0 registra un asiento de apertura en el libro.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "name, unit, quantity, min_stock, expiry_date, location"
// @Success      201  {object}  dto.IngredientResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ingredients/ [post]
func (h *IngredientHandler) Create(c *fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor.ID == "" {
		return unauthorized(c)
	}
	var in dto.CreateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener insumo
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del insumo"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/ [get]
func (h *IngredientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar metadatos del insumo
// @Description  La cantidad no se edita: se corrige con asientos compensatorios.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del insumo"
// @Param        body  body  dto.UpdateIngredientRequest  true  "campos a modificar"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/ [patch]
func (h *IngredientHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar insumo sin movimientos
// @Tags         ingredients
// @Security     Bearer
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/ [delete]
func (h *IngredientHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkChecked godoc
// @Summary      Marcar insumo como revisado hoy
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del insumo"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/mark_checked/ [put]
func (h *IngredientHandler) MarkChecked(c *fiber.Ctx) error {
	out, err := h.uc.MarkChecked(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExpiringSoon godoc
// @Summary      Insumos por vencer
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (por defecto la configurada)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ingredients/expiring_soon/ [get]
func (h *IngredientHandler) ExpiringSoon(c *fiber.Ctx) error {
	list, err := h.views.ExpiringWithin(c.Context(), c.QueryInt("days", h.expiringSoonDays))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// Expired godoc
// @Summary      Insumos vencidos con stock
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ingredients/expired/ [get]
func (h *IngredientHandler) Expired(c *fiber.Ctx) error {
	list, err := h.views.Expired(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// LowStock godoc
// @Summary      Insumos bajo el umbral de stock
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ingredients/low_stock/ [get]
func (h *IngredientHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.views.BelowThreshold(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}
