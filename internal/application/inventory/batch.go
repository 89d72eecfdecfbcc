package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// OperationDraft elemento de un lote.
// Source es el payload original que se devuelve en el error; Invalid trae errores
// de lectura (JSON o CSV) detectados antes de llegar al libro.
type OperationDraft struct {
	Input   dto.CreateOperationRequest
	Source  any
	Invalid map[string]string
}

// BatchProcessor aplica borradores uno a uno sobre el Ledger.
// Cada elemento es atómico por sí mismo; el lote nunca se aborta por un elemento inválido.
type BatchProcessor struct {
	ledger *LedgerUseCase
	log    *logger.Logger
}

// NewBatchProcessor construye el procesador.
func NewBatchProcessor(ledger *LedgerUseCase, log *logger.Logger) *BatchProcessor {
	return &BatchProcessor{ledger: ledger, log: log}
}

// Apply registra los borradores en orden y devuelve el resumen.
// Results y Errors conservan el orden de entrada; Errors[i].Index es la posición original.
// Un lote vacío es un error de validación. Solo la cancelación del contexto corta el lote.
func (p *BatchProcessor) Apply(ctx context.Context, actor entity.Actor, drafts []OperationDraft) (*dto.BatchOperationResponse, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(drafts) == 0 {
		return nil, domain.NewValidationError("operations", "no se enviaron operaciones")
	}

	out := &dto.BatchOperationResponse{
		Results: make([]dto.OperationResponse, 0, len(drafts)),
		Errors:  []dto.BatchOperationError{},
	}
	for i, d := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		source := d.Source
		if source == nil {
			source = d.Input
		}
		if len(d.Invalid) > 0 {
			out.Errors = append(out.Errors, dto.BatchOperationError{Index: i, Operation: source, Errors: d.Invalid})
			continue
		}
		res, err := p.ledger.Post(ctx, actor, d.Input)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			out.Errors = append(out.Errors, dto.BatchOperationError{
				Index:     i,
				Operation: source,
				Errors:    domain.FieldErrors(err),
			})
			continue
		}
		out.Results = append(out.Results, *res)
	}
	out.Success = len(out.Results)
	out.Failed = len(out.Errors)

	p.log.Info().
		Str("actor_id", actor.ID).
		Int("success", out.Success).
		Int("failed", out.Failed).
		Msg("lote de asientos aplicado")
	return out, nil
}
