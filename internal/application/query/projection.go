// Package query contiene las vistas de lectura del almacén. Son filtros deterministas
// sobre el estado proyectado actual, sin efectos secundarios.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/workflow"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProjectionUseCase vistas derivadas de insumos y solicitudes.
type ProjectionUseCase struct {
	ingRepo repository.IngredientRepository
	reqRepo repository.MaterialRequestRepository
	policy  domaininv.StatusPolicy
	now     func() time.Time
}

// NewProjectionUseCase construye el caso de uso.
func NewProjectionUseCase(
	ingRepo repository.IngredientRepository,
	reqRepo repository.MaterialRequestRepository,
	settings inventory.Settings,
) *ProjectionUseCase {
	now := settings.Now
	if now == nil {
		now = time.Now
	}
	return &ProjectionUseCase{ingRepo: ingRepo, reqRepo: reqRepo, policy: settings.Policy, now: now}
}

// ExpiringWithin insumos con stock cuyo vencimiento cae entre hoy y hoy+days (ambos incluidos),
// ordenados por fecha de vencimiento.
func (uc *ProjectionUseCase) ExpiringWithin(ctx context.Context, days int) ([]dto.IngredientResponse, error) {
	if days < 0 {
		return nil, domain.NewValidationError("days", "no puede ser negativo")
	}
	now := uc.now()
	return uc.ingredients(ctx, now, func(ing *entity.Ingredient) bool {
		if ing.ExpiryDate == nil || !ing.Quantity.IsPositive() {
			return false
		}
		d := domaininv.DaysBetween(now, *ing.ExpiryDate)
		return d >= 0 && d <= days
	}, byExpiry)
}

// Expired insumos con stock y vencimiento anterior a hoy, ordenados por fecha de vencimiento.
func (uc *ProjectionUseCase) Expired(ctx context.Context) ([]dto.IngredientResponse, error) {
	now := uc.now()
	return uc.ingredients(ctx, now, func(ing *entity.Ingredient) bool {
		return ing.ExpiryDate != nil && ing.Quantity.IsPositive() && domaininv.DaysBetween(now, *ing.ExpiryDate) < 0
	}, byExpiry)
}

// BelowThreshold insumos cuya cantidad es menor que su umbral efectivo.
func (uc *ProjectionUseCase) BelowThreshold(ctx context.Context) ([]dto.IngredientResponse, error) {
	return uc.ingredients(ctx, uc.now(), func(ing *entity.Ingredient) bool {
		return ing.Quantity.LessThan(uc.policy.ThresholdFor(ing))
	}, nil)
}

// ByStatus insumos cuyo estado derivado es status.
func (uc *ProjectionUseCase) ByStatus(ctx context.Context, status string) ([]dto.IngredientResponse, error) {
	if !entity.IsValidIngredientStatus(status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	now := uc.now()
	return uc.ingredients(ctx, now, func(ing *entity.Ingredient) bool {
		return domaininv.DeriveStatus(ing, uc.policy, now) == status
	}, nil)
}

// AssignedTo solicitudes asignadas al actor (más recientes primero).
func (uc *ProjectionUseCase) AssignedTo(ctx context.Context, actorID string) ([]dto.MaterialRequestResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.requests(ctx, repository.MaterialRequestFilter{AssignedTo: actorID})
}

// RequestsByStatus solicitudes en el estado indicado (más recientes primero).
func (uc *ProjectionUseCase) RequestsByStatus(ctx context.Context, status string) ([]dto.MaterialRequestResponse, error) {
	if !entity.IsValidRequestStatus(status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	return uc.requests(ctx, repository.MaterialRequestFilter{Status: status})
}

func (uc *ProjectionUseCase) ingredients(
	ctx context.Context,
	now time.Time,
	keep func(*entity.Ingredient) bool,
	less func(a, b *entity.Ingredient) bool,
) ([]dto.IngredientResponse, error) {
	all, err := uc.ingRepo.List(ctx, repository.IngredientFilter{})
	if err != nil {
		return nil, err
	}
	selected := make([]*entity.Ingredient, 0, len(all))
	for _, ing := range all {
		if keep(ing) {
			selected = append(selected, ing)
		}
	}
	if less != nil {
		sort.SliceStable(selected, func(i, j int) bool { return less(selected[i], selected[j]) })
	}
	out := make([]dto.IngredientResponse, 0, len(selected))
	for _, ing := range selected {
		out = append(out, inventory.ToIngredientResponse(ing, uc.policy, now))
	}
	return out, nil
}

func (uc *ProjectionUseCase) requests(ctx context.Context, f repository.MaterialRequestFilter) ([]dto.MaterialRequestResponse, error) {
	list, err := uc.reqRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialRequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, workflow.ToMaterialRequestResponse(r))
	}
	return out, nil
}

func byExpiry(a, b *entity.Ingredient) bool {
	return a.ExpiryDate.Before(*b.ExpiryDate)
}
