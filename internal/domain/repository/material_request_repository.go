package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MaterialRequestFilter filtros de listado de solicitudes. Limit <= 0 devuelve todas.
type MaterialRequestFilter struct {
	Status      string
	AssignedTo  string
	RequestedBy string
	Limit       int
	Offset      int
}

// MaterialRequestRepository persiste el agregado solicitud + líneas.
type MaterialRequestRepository interface {
	// Create inserta cabecera y líneas.
	Create(ctx context.Context, req *entity.MaterialRequest) error
	GetByID(ctx context.Context, id string) (*entity.MaterialRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error)
	// Update persiste la cabecera (estado, actores, marcas de tiempo, título, descripción).
	Update(ctx context.Context, req *entity.MaterialRequest) error
	ReplaceItems(ctx context.Context, requestID string, items []entity.MaterialRequestItem) error
	Delete(ctx context.Context, id string) error
	// List ordena por requested_at descendente.
	List(ctx context.Context, f MaterialRequestFilter) ([]*entity.MaterialRequest, error)
}
