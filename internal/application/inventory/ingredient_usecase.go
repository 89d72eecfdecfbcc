package inventory

import (
	"context"
	"strings"
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

// IngredientUseCase casos de uso del Stock Store (alta, edición de metadatos, revisión, baja).
// La cantidad nunca se edita aquí: solo el Ledger la mueve.
type IngredientUseCase struct {
	txRunner ports.TxRunner
	repo     repository.IngredientRepository
	ledger   *LedgerUseCase
	policy   domaininv.StatusPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(
	txRunner ports.TxRunner,
	repo repository.IngredientRepository,
	ledger *LedgerUseCase,
	settings Settings,
	log *logger.Logger,
) *IngredientUseCase {
	return &IngredientUseCase{
		txRunner: txRunner,
		repo:     repo,
		ledger:   ledger,
		policy:   settings.Policy,
		log:      log,
		now:      settings.clock(),
	}
}

// Create da de alta un insumo. Si Quantity > 0 registra un asiento de apertura
// en la misma transacción, de modo que el saldo siempre sea el fold del libro.
func (uc *IngredientUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	ve := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		ve.Add("name", "requerido")
	}
	if strings.TrimSpace(in.Unit) == "" {
		ve.Add("unit", "requerido")
	}
	if in.Quantity.IsNegative() {
		ve.Add("quantity", "no puede ser negativa")
	} else if !entity.FitsQuantity(in.Quantity) {
		ve.Add("quantity", entity.QuantityLimitMsg)
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			ve.Add("min_stock", "no puede ser negativo")
		} else if !entity.FitsQuantity(*in.MinStock) {
			ve.Add("min_stock", entity.QuantityLimitMsg)
		}
	}
	expiry, err := ParseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		ve.Add("expiry_date", "fecha inválida, formato YYYY-MM-DD")
	}
	lastCheck, err := ParseDate("last_check_date", in.LastCheckDate)
	if err != nil {
		ve.Add("last_check_date", "fecha inválida, formato YYYY-MM-DD")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := uc.now()
	ing := &entity.Ingredient{
		ID:            uuid.New().String(),
		Name:          name,
		Category:      strings.TrimSpace(in.Category),
		Unit:          strings.TrimSpace(in.Unit),
		Quantity:      decimal.Zero,
		MinStock:      in.MinStock,
		ExpiryDate:    expiry,
		LastCheckDate: lastCheck,
		Location:      in.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		_ repository.MaterialRequestRepository,
	) error {
		existing, err := ingRepo.GetByName(ctx, ing.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := ingRepo.Create(ctx, ing); err != nil {
			return err
		}
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil
		}
		opening := &entity.InventoryOperation{
			IngredientID:  ing.ID,
			OperationType: entity.OperationTypeIN,
			Quantity:      in.Quantity,
			OperatorID:    actor.ID,
			Notes:         "saldo inicial",
			CreatedAt:     now,
		}
		if err := uc.ledger.PostInTx(ctx, ingRepo, opRepo, opening); err != nil {
			return err
		}
		ing.Quantity = in.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("ingredient_id", ing.ID).Str("name", ing.Name).Str("actor_id", actor.ID).Msg("insumo creado")
	out := ToIngredientResponse(ing, uc.policy, now)
	return &out, nil
}

// GetByID devuelve el insumo con su estado derivado o ErrNotFound.
func (uc *IngredientUseCase) GetByID(ctx context.Context, id string) (*dto.IngredientResponse, error) {
	ing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	out := ToIngredientResponse(ing, uc.policy, uc.now())
	return &out, nil
}

// IngredientListInput filtros del listado. Status se evalúa sobre el estado derivado.
type IngredientListInput struct {
	Category string
	Search   string
	Status   string
	Limit    int
	Offset   int
}

// List lista insumos ordenados por categoría y nombre.
func (uc *IngredientUseCase) List(ctx context.Context, in IngredientListInput) (*dto.IngredientListResponse, error) {
	if in.Status != "" && !entity.IsValidIngredientStatus(in.Status) {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	now := uc.now()
	f := repository.IngredientFilter{Category: in.Category, Search: in.Search, Limit: in.Limit, Offset: in.Offset}
	if in.Status != "" {
		// el estado no está en la tabla: se filtra en memoria y luego se pagina
		f.Limit, f.Offset = 0, 0
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		r := ToIngredientResponse(ing, uc.policy, now)
		if in.Status != "" && r.Status != in.Status {
			continue
		}
		items = append(items, r)
	}
	total := 0
	if in.Status != "" {
		total = len(items)
		items = paginate(items, in.Limit, in.Offset)
	}
	return &dto.IngredientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Update edita metadatos. La cantidad queda fuera: se corrige con asientos compensatorios.
// Lectura y escritura van en una transacción con el insumo bloqueado.
func (uc *IngredientUseCase) Update(ctx context.Context, id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	ve := &domain.ValidationError{}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		ve.Add("name", "no puede estar vacío")
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) == "" {
		ve.Add("unit", "no puede estar vacío")
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			ve.Add("min_stock", "no puede ser negativo")
		} else if !entity.FitsQuantity(*in.MinStock) {
			ve.Add("min_stock", entity.QuantityLimitMsg)
		}
	}
	var expiry *time.Time
	if in.ExpiryDate != nil {
		var err error
		if expiry, err = ParseDate("expiry_date", in.ExpiryDate); err != nil {
			ve.Add("expiry_date", "fecha inválida, formato YYYY-MM-DD")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := uc.now()
	var ing *entity.Ingredient
	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		_ repository.InventoryOperationRepository,
		_ repository.MaterialRequestRepository,
	) error {
		var err error
		if ing, err = ingRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			ing.Name = strings.TrimSpace(*in.Name)
			other, err := ingRepo.GetByName(ctx, ing.Name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != ing.ID {
				return domain.ErrDuplicate
			}
		}
		if in.Category != nil {
			ing.Category = strings.TrimSpace(*in.Category)
		}
		if in.Unit != nil {
			ing.Unit = strings.TrimSpace(*in.Unit)
		}
		if in.MinStock != nil {
			ing.MinStock = in.MinStock
		}
		if in.ExpiryDate != nil {
			ing.ExpiryDate = expiry
		}
		if in.Location != nil {
			ing.Location = *in.Location
		}
		ing.UpdatedAt = now
		return ingRepo.Update(ctx, ing)
	})
	if err != nil {
		return nil, err
	}
	out := ToIngredientResponse(ing, uc.policy, now)
	return &out, nil
}

// MarkChecked registra la revisión física del insumo con la fecha de hoy.
func (uc *IngredientUseCase) MarkChecked(ctx context.Context, actor entity.Actor, id string) (*dto.IngredientResponse, error) {
	now := uc.now()
	// fecha calendario local guardada como medianoche UTC, igual que las fechas de la API
	today := domaininv.CalendarDate(now, time.UTC)
	var ing *entity.Ingredient
	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		_ repository.InventoryOperationRepository,
		_ repository.MaterialRequestRepository,
	) error {
		var err error
		if ing, err = ingRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		ing.LastCheckDate = &today
		ing.UpdatedAt = now
		return ingRepo.Update(ctx, ing)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("ingredient_id", id).Str("actor_id", actor.ID).Msg("insumo revisado")
	out := ToIngredientResponse(ing, uc.policy, now)
	return &out, nil
}

// Delete da de baja un insumo sin asientos. Solo administradores.
// Con historial en el libro devuelve ErrConflict: el libro no se borra.
func (uc *IngredientUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		opRepo repository.InventoryOperationRepository,
		_ repository.MaterialRequestRepository,
	) error {
		ing, err := ingRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		n, err := opRepo.CountByIngredient(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrConflict
		}
		return ingRepo.Delete(ctx, id)
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
