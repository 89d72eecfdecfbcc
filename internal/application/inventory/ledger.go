package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// LedgerUseCase libro de inventario de solo inserción.
// Cada asiento se registra en una transacción que bloquea la fila del insumo (SELECT FOR UPDATE),
// recalcula el saldo como fold de sus asientos y rechaza salidas que lo dejarían negativo.
type LedgerUseCase struct {
	txRunner ports.TxRunner
	ingRepo  repository.IngredientRepository
	opRepo   repository.InventoryOperationRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner ports.TxRunner,
	ingRepo repository.IngredientRepository,
	opRepo repository.InventoryOperationRepository,
	settings Settings,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner: txRunner,
		ingRepo:  ingRepo,
		opRepo:   opRepo,
		log:      log,
		now:      settings.clock(),
	}
}

// Post valida y registra un asiento. El operador es siempre el actor de la llamada.
func (uc *LedgerUseCase) Post(ctx context.Context, actor entity.Actor, in dto.CreateOperationRequest) (*dto.OperationResponse, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	op, err := BuildOperation(actor, in)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		reqRepo repository.MaterialRequestRepository,
	) error {
		if op.RelatedRequestID != "" {
			req, err := reqRepo.GetByID(ctx, op.RelatedRequestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.NewValidationError("related_request_id", "solicitud no encontrada")
			}
		}
		return uc.PostInTx(ctx, ingRepo, opRepo, op)
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("ingredient_id", op.IngredientID).
			Str("operation_type", op.OperationType).
			Str("quantity", op.Quantity.String()).
			Str("actor_id", actor.ID).
			Msg("asiento rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("operation_id", op.ID).
		Str("ingredient_id", op.IngredientID).
		Str("operation_type", op.OperationType).
		Str("quantity", op.Quantity.String()).
		Str("actor_id", actor.ID).
		Msg("asiento registrado")
	out := ToOperationResponse(op)
	return &out, nil
}

// PostInTx registra op usando los repositorios de la transacción del caller.
// Bloquea el insumo, proyecta su saldo, valida la salida, inserta el asiento y
// reemplaza la cantidad memorizada. Lo usan Post, la apertura de insumos y el
// cierre de solicitudes (varias salidas en una sola transacción).
func (uc *LedgerUseCase) PostInTx(
	ctx context.Context,
	ingRepo repository.IngredientRepository,
	opRepo repository.InventoryOperationRepository,
	op *entity.InventoryOperation,
) error {
	if !entity.IsValidOperationType(op.OperationType) {
		return domain.NewValidationError("operation_type", "debe ser in u out")
	}
	if !op.Quantity.GreaterThan(decimal.Zero) {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if !entity.FitsQuantity(op.Quantity) {
		return domain.NewValidationError("quantity", entity.QuantityLimitMsg)
	}
	ing, err := ingRepo.GetForUpdate(ctx, op.IngredientID)
	if err != nil {
		return err
	}
	if ing == nil {
		return domain.ErrNotFound
	}
	entries, err := opRepo.ListByIngredient(ctx, op.IngredientID)
	if err != nil {
		return err
	}
	balance := domaininv.Project(entries)
	if op.OperationType == entity.OperationTypeOUT && !balance.CanWithdraw(op.Quantity) {
		return domain.ErrInsufficientStock
	}

	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = uc.now()
	}
	if err := opRepo.Create(ctx, op); err != nil {
		return err
	}
	return ingRepo.SetQuantity(ctx, ing.ID, balance.Quantity().Add(op.SignedQuantity()), op.CreatedAt)
}

// Balance proyecta el saldo de un insumo directamente desde el libro.
func (uc *LedgerUseCase) Balance(ctx context.Context, ingredientID string) (domaininv.Balance, error) {
	ing, err := uc.ingRepo.GetByID(ctx, ingredientID)
	if err != nil {
		return domaininv.Balance{}, err
	}
	if ing == nil {
		return domaininv.Balance{}, domain.ErrNotFound
	}
	entries, err := uc.opRepo.ListByIngredient(ctx, ingredientID)
	if err != nil {
		return domaininv.Balance{}, err
	}
	return domaininv.Project(entries), nil
}

// GetByID devuelve un asiento o ErrNotFound.
func (uc *LedgerUseCase) GetByID(ctx context.Context, id string) (*dto.OperationResponse, error) {
	op, err := uc.opRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, domain.ErrNotFound
	}
	out := ToOperationResponse(op)
	return &out, nil
}

// List lista asientos (más recientes primero).
func (uc *LedgerUseCase) List(ctx context.Context, f repository.OperationFilter) (*dto.OperationListResponse, error) {
	if f.OperationType != "" && !entity.IsValidOperationType(f.OperationType) {
		return nil, domain.NewValidationError("operation_type", "debe ser in u out")
	}
	ops, err := uc.opRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OperationResponse, 0, len(ops))
	for _, op := range ops {
		items = append(items, ToOperationResponse(op))
	}
	return &dto.OperationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// BuildOperation valida el borrador y construye el asiento (sin persistir).
func BuildOperation(actor entity.Actor, in dto.CreateOperationRequest) (*entity.InventoryOperation, error) {
	ve := &domain.ValidationError{}
	if in.IngredientID == "" {
		ve.Add("ingredient_id", "requerido")
	}
	if !entity.IsValidOperationType(in.OperationType) {
		ve.Add("operation_type", "debe ser in u out")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		ve.Add("quantity", "debe ser mayor que cero")
	} else if !entity.FitsQuantity(in.Quantity) {
		ve.Add("quantity", entity.QuantityLimitMsg)
	}
	production, err := ParseDate("production_date", in.ProductionDate)
	if err != nil {
		ve.Add("production_date", "fecha inválida, formato YYYY-MM-DD")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return &entity.InventoryOperation{
		IngredientID:     in.IngredientID,
		OperationType:    in.OperationType,
		Quantity:         in.Quantity,
		OperatorID:       actor.ID,
		InspectorID:      in.InspectorID,
		ProductionDate:   production,
		ExpiryPeriod:     in.ExpiryPeriod,
		Notes:            in.Notes,
		RelatedRequestID: in.RelatedRequestID,
	}, nil
}
