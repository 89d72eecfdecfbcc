// Package workflow implementa el ciclo de vida de las solicitudes de material:
//
//	pending --approve--> approved --assign--> approved(asignada) --start_processing--> in_progress --complete--> completed
//	pending --reject--> rejected
//
// Cada transición corre en una transacción que bloquea la fila de la solicitud,
// de modo que dos llamadas concurrentes sobre la misma solicitud se serializan.
// complete registra todas las salidas en el libro dentro de la misma transacción:
// si una línea falla no queda ningún asiento y la solicitud sigue en in_progress.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Settings comportamiento configurable del motor.
type Settings struct {
	// IdempotentReplay: repetir approve/reject/assign que ya dejó la solicitud en el
	// mismo estado, por el mismo actor, devuelve éxito sin escribir.
	IdempotentReplay bool
	// Now reloj inyectable; nil = time.Now.
	Now func() time.Time
}

// Engine motor de solicitudes de material.
type Engine struct {
	txRunner ports.TxRunner
	reqRepo  repository.MaterialRequestRepository
	ledger   *inventory.LedgerUseCase
	settings Settings
	log      *logger.Logger
	now      func() time.Time
}

// NewEngine construye el motor.
func NewEngine(
	txRunner ports.TxRunner,
	reqRepo repository.MaterialRequestRepository,
	ledger *inventory.LedgerUseCase,
	settings Settings,
	log *logger.Logger,
) *Engine {
	now := settings.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		txRunner: txRunner,
		reqRepo:  reqRepo,
		ledger:   ledger,
		settings: settings,
		log:      log,
		now:      now,
	}
}

// Create crea una solicitud en pending a nombre del actor.
func (e *Engine) Create(ctx context.Context, actor entity.Actor, in dto.CreateMaterialRequestRequest) (*dto.MaterialRequestResponse, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := e.now()
	req := &entity.MaterialRequest{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      entity.RequestStatusPending,
		RequestedBy: actor.ID,
		RequestedAt: now,
		UpdatedAt:   now,
		Items:       toItems(in.Items),
	}
	if err := validateHeader(req); err != nil {
		return nil, err
	}
	assignItemIDs(req)

	err := e.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		_ repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		if err := checkIngredients(ctx, ingRepo, req.Items); err != nil {
			return err
		}
		return reqRepo.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("request_id", req.ID).Str("actor_id", actor.ID).Int("items", len(req.Items)).Msg("solicitud creada")
	out := ToMaterialRequestResponse(req)
	return &out, nil
}

// Edit modifica título, descripción o líneas mientras la solicitud está en pending.
func (e *Engine) Edit(ctx context.Context, actor entity.Actor, id string, in dto.UpdateMaterialRequestRequest) (*dto.MaterialRequestResponse, error) {
	var out *entity.MaterialRequest
	err := e.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		_ repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		req, err := reqRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := req.CanEdit(actor); err != nil {
			return err
		}
		if in.Title != nil {
			req.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			req.Description = *in.Description
		}
		if in.Items != nil {
			req.Items = toItems(*in.Items)
		}
		if err := validateHeader(req); err != nil {
			return err
		}
		req.UpdatedAt = e.now()
		if in.Items != nil {
			assignItemIDs(req)
			if err := checkIngredients(ctx, ingRepo, req.Items); err != nil {
				return err
			}
			if err := reqRepo.ReplaceItems(ctx, req.ID, req.Items); err != nil {
				return err
			}
		}
		if err := reqRepo.Update(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToMaterialRequestResponse(out)
	return &resp, nil
}

// Delete borra una solicitud. Es una acción administrativa: solo administradores y
// solo si ningún asiento del libro la referencia.
func (e *Engine) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := e.txRunner.Run(ctx, func(
		_ repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		req, err := reqRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		n, err := opRepo.CountByRequest(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrConflict
		}
		return reqRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("request_id", id).Str("actor_id", actor.ID).Msg("solicitud eliminada")
	return nil
}

// Get devuelve la solicitud o ErrNotFound.
func (e *Engine) Get(ctx context.Context, id string) (*dto.MaterialRequestResponse, error) {
	req, err := e.reqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	out := ToMaterialRequestResponse(req)
	return &out, nil
}

// List lista solicitudes con filtros (más recientes primero).
func (e *Engine) List(ctx context.Context, f repository.MaterialRequestFilter) (*dto.MaterialRequestListResponse, error) {
	if f.Status != "" && !entity.IsValidRequestStatus(f.Status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	list, err := e.reqRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialRequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, ToMaterialRequestResponse(r))
	}
	return &dto.MaterialRequestListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// Approve pending → approved (approver o administrator).
func (e *Engine) Approve(ctx context.Context, actor entity.Actor, id string) (*dto.MaterialRequestResponse, error) {
	return e.transition(ctx, "approve", actor, id,
		func(r *entity.MaterialRequest) bool {
			return r.Status == entity.RequestStatusApproved && r.ApprovedBy == actor.ID
		},
		func(r *entity.MaterialRequest, now time.Time) error { return r.Approve(actor, now) },
	)
}

// Reject pending → rejected (terminal). reason es opcional.
func (e *Engine) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*dto.MaterialRequestResponse, error) {
	return e.transition(ctx, "reject", actor, id,
		func(r *entity.MaterialRequest) bool {
			return r.Status == entity.RequestStatusRejected && r.ApprovedBy == actor.ID
		},
		func(r *entity.MaterialRequest, now time.Time) error {
			return r.Reject(actor, strings.TrimSpace(reason), now)
		},
	)
}

// Assign fija el empleado responsable; nunca sobrescribe una asignación previa.
func (e *Engine) Assign(ctx context.Context, actor entity.Actor, id, employeeID string) (*dto.MaterialRequestResponse, error) {
	employeeID = strings.TrimSpace(employeeID)
	return e.transition(ctx, "assign", actor, id,
		func(r *entity.MaterialRequest) bool {
			return actor.CanDecide() && r.Status == entity.RequestStatusApproved && r.AssignedTo == employeeID && employeeID != ""
		},
		func(r *entity.MaterialRequest, now time.Time) error { return r.Assign(actor, employeeID, now) },
	)
}

// StartProcessing approved → in_progress (asignado o administrator).
func (e *Engine) StartProcessing(ctx context.Context, actor entity.Actor, id string) (*dto.MaterialRequestResponse, error) {
	return e.transition(ctx, "start_processing", actor, id, nil,
		func(r *entity.MaterialRequest, now time.Time) error { return r.StartProcessing(actor, now) },
	)
}

// Complete in_progress → completed. Registra una salida por línea, etiquetada con la
// solicitud, en la misma transacción; cualquier fallo revierte todo.
// Los insumos se bloquean en orden ascendente de ID para evitar interbloqueos entre
// cierres concurrentes.
func (e *Engine) Complete(ctx context.Context, actor entity.Actor, id string) (*dto.MaterialRequestResponse, error) {
	var out *entity.MaterialRequest
	err := e.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		req, err := reqRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := req.CanComplete(actor); err != nil {
			return err
		}
		now := e.now()
		items := make([]entity.MaterialRequestItem, len(req.Items))
		copy(items, req.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].IngredientID < items[j].IngredientID })
		for _, it := range items {
			op := &entity.InventoryOperation{
				IngredientID:     it.IngredientID,
				OperationType:    entity.OperationTypeOUT,
				Quantity:         it.Quantity,
				OperatorID:       actor.ID,
				Notes:            fmt.Sprintf("Solicitud %q", req.Title),
				RelatedRequestID: req.ID,
				CreatedAt:        now,
			}
			if err := e.ledger.PostInTx(ctx, ingRepo, opRepo, op); err != nil {
				return fmt.Errorf("línea %d (insumo %s): %w", it.Position+1, it.IngredientID, err)
			}
		}
		if err := req.Complete(actor, now); err != nil {
			return err
		}
		if err := reqRepo.Update(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("request_id", id).Str("actor_id", actor.ID).Msg("complete rechazado")
		return nil, err
	}
	e.log.Info().Str("request_id", id).Str("actor_id", actor.ID).Int("items", len(out.Items)).Msg("solicitud completada")
	resp := ToMaterialRequestResponse(out)
	return &resp, nil
}

// transition carga y bloquea la solicitud, aplica la transición y persiste la cabecera.
// replayed (opcional) detecta una repetición ya aplicada cuando IdempotentReplay está activo.
func (e *Engine) transition(
	ctx context.Context,
	action string,
	actor entity.Actor,
	id string,
	replayed func(r *entity.MaterialRequest) bool,
	apply func(r *entity.MaterialRequest, now time.Time) error,
) (*dto.MaterialRequestResponse, error) {
	var out *entity.MaterialRequest
	err := e.txRunner.Run(ctx, func(
		_ repository.IngredientRepository,
		_ repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		req, err := reqRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if e.settings.IdempotentReplay && replayed != nil && replayed(req) {
			out = req
			return nil
		}
		if err := apply(req, e.now()); err != nil {
			return err
		}
		if err := reqRepo.Update(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("action", action).Str("request_id", id).Str("actor_id", actor.ID).Msg("transición rechazada")
		return nil, err
	}
	e.log.Info().Str("action", action).Str("request_id", id).Str("actor_id", actor.ID).Str("status", out.Status).Msg("transición aplicada")
	resp := ToMaterialRequestResponse(out)
	return &resp, nil
}

func validateHeader(req *entity.MaterialRequest) error {
	ve := &domain.ValidationError{}
	if req.Title == "" {
		ve.Add("title", "requerido")
	}
	var fe *domain.ValidationError
	if err := entity.ValidateItems(req.Items); errors.As(err, &fe) {
		for k, v := range fe.Fields {
			ve.Add(k, v)
		}
	}
	return ve.OrNil()
}

func checkIngredients(ctx context.Context, ingRepo repository.IngredientRepository, items []entity.MaterialRequestItem) error {
	ve := &domain.ValidationError{}
	for i, it := range items {
		ing, err := ingRepo.GetByID(ctx, it.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			ve.Add(fmt.Sprintf("items[%d].ingredient_id", i), "insumo no encontrado")
		}
	}
	return ve.OrNil()
}

func toItems(in []dto.MaterialRequestItemRequest) []entity.MaterialRequestItem {
	items := make([]entity.MaterialRequestItem, 0, len(in))
	for i, it := range in {
		items = append(items, entity.MaterialRequestItem{
			IngredientID: strings.TrimSpace(it.IngredientID),
			Quantity:     it.Quantity,
			Notes:        it.Notes,
			Position:     i,
		})
	}
	return items
}

func assignItemIDs(req *entity.MaterialRequest) {
	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = uuid.New().String()
		}
		req.Items[i].RequestID = req.ID
	}
}
