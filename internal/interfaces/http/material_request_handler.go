package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/internal/application/workflow"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// MaterialRequestHandler maneja el ciclo de vida de las solicitudes de material (protegido).
type MaterialRequestHandler struct {
	engine *workflow.Engine
	views  *query.ProjectionUseCase
}

// NewMaterialRequestHandler construye el handler.
func NewMaterialRequestHandler(engine *workflow.Engine, views *query.ProjectionUseCase) *MaterialRequestHandler {
	return &MaterialRequestHandler{engine: engine, views: views}
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "pending | approved | in_progress | completed | rejected"
// @Param        assigned_to   query  string  false  "Empleado asignado"
// @Param        requested_by  query  string  false  "Solicitante"
// @Param        limit         query  int     false  "Límite (máx 100)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MaterialRequestListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/material-requests/ [get]
func (h *MaterialRequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	out, err := h.engine.List(c.Context(), repository.MaterialRequestFilter{
		Status:      c.Query("status"),
		AssignedTo:  c.Query("assigned_to"),
		RequestedBy: c.Query("requested_by"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear solicitud de material
// @Tags         material-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequestRequest  true  "title, description, items"
// @Success      201  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/material-requests/ [post]
func (h *MaterialRequestHandler) Create(c *fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor.ID == "" {
		return unauthorized(c)
	}
	var in dto.CreateMaterialRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.engine.Create(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/ [get]
func (h *MaterialRequestHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.engine.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar solicitud pendiente
// @Tags         material-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true  "ID de la solicitud"
// @Param        body  body  dto.UpdateMaterialRequestRequest  true  "campos a modificar"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/ [patch]
func (h *MaterialRequestHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.engine.Edit(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar solicitud pendiente
// @Tags         material-requests
// @Security     Bearer
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/ [delete]
func (h *MaterialRequestHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.Context(), ActorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignedToMe godoc
// @Summary      Solicitudes asignadas al usuario del token
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/material-requests/assigned_to_me/ [get]
func (h *MaterialRequestHandler) AssignedToMe(c *fiber.Ctx) error {
	list, err := h.views.AssignedTo(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/approve/ [put]
func (h *MaterialRequestHandler) Approve(c *fiber.Ctx) error {
	out, err := h.engine.Approve(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         material-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true   "ID de la solicitud"
// @Param        body  body  dto.RejectMaterialRequestRequest  false  "motivo"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/reject/ [put]
func (h *MaterialRequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectMaterialRequestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.engine.Reject(c.Context(), ActorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Asignar solicitud aprobada a un empleado
// @Tags         material-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true  "ID de la solicitud"
// @Param        body  body  dto.AssignMaterialRequestRequest  true  "employee_id"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/assign/ [put]
func (h *MaterialRequestHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignMaterialRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.engine.Assign(c.Context(), ActorFrom(c), c.Params("id"), in.EmployeeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StartProcessing godoc
// @Summary      Iniciar preparación de la solicitud
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/start_processing/ [put]
func (h *MaterialRequestHandler) StartProcessing(c *fiber.Ctx) error {
	out, err := h.engine.StartProcessing(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar solicitud
// @Description  Registra una salida por cada línea en una sola transacción; si alguna no tiene stock no se registra ninguna.
// @Tags         material-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MaterialRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/material-requests/{id}/complete/ [put]
func (h *MaterialRequestHandler) Complete(c *fiber.Ctx) error {
	out, err := h.engine.Complete(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
