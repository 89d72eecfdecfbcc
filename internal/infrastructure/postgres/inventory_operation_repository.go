package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.InventoryOperationRepository = (*InventoryOperationRepo)(nil)

const operationColumns = `id, ingredient_id, operation_type, quantity, operator_id, inspector_id,
	production_date, expiry_period, notes, related_request_id, created_at`

// InventoryOperationRepo libro de inventario sobre PostgreSQL. Solo inserción.
type InventoryOperationRepo struct {
	q Querier
}

// NewInventoryOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryOperationRepository(q Querier) *InventoryOperationRepo {
	return &InventoryOperationRepo{q: q}
}

func (r *InventoryOperationRepo) Create(ctx context.Context, op *entity.InventoryOperation) error {
	query := `
		INSERT INTO inventory_operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		op.ID, op.IngredientID, op.OperationType, op.Quantity, op.OperatorID, nullString(op.InspectorID),
		op.ProductionDate, op.ExpiryPeriod, op.Notes, nullString(op.RelatedRequestID), op.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create inventory operation: %w", err)
	}
	return nil
}

func (r *InventoryOperationRepo) GetByID(ctx context.Context, id string) (*entity.InventoryOperation, error) {
	row := r.q.QueryRow(ctx, `SELECT `+operationColumns+` FROM inventory_operations WHERE id = $1`, id)
	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory operation: %w", err)
	}
	return op, nil
}

// ListByIngredient asientos del insumo en orden de creación.
func (r *InventoryOperationRepo) ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.InventoryOperation, error) {
	return r.list(ctx, `SELECT `+operationColumns+` FROM inventory_operations
		WHERE ingredient_id = $1 ORDER BY created_at, id`, ingredientID)
}

// List From es inclusivo y To exclusivo; más recientes primero.
func (r *InventoryOperationRepo) List(ctx context.Context, f repository.OperationFilter) ([]*entity.InventoryOperation, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.IngredientID != "" {
		add("ingredient_id = $%d", f.IngredientID)
	}
	if f.OperationType != "" {
		add("operation_type = $%d", f.OperationType)
	}
	if f.RelatedRequestID != "" {
		add("related_request_id = $%d", f.RelatedRequestID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	query := `SELECT ` + operationColumns + ` FROM inventory_operations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query, args = appendPaging(query, args, f.Limit, f.Offset)
	return r.list(ctx, query, args...)
}

func (r *InventoryOperationRepo) CountByIngredient(ctx context.Context, ingredientID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM inventory_operations WHERE ingredient_id = $1`, ingredientID)
}

func (r *InventoryOperationRepo) CountByRequest(ctx context.Context, requestID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM inventory_operations WHERE related_request_id = $1`, requestID)
}

func (r *InventoryOperationRepo) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inventory operations: %w", err)
	}
	return n, nil
}

func (r *InventoryOperationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryOperation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory operations: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory operation: %w", err)
		}
		list = append(list, op)
	}
	return list, rows.Err()
}

func scanOperation(row pgx.Row) (*entity.InventoryOperation, error) {
	var (
		op               entity.InventoryOperation
		inspector, reqID *string
	)
	if err := row.Scan(
		&op.ID, &op.IngredientID, &op.OperationType, &op.Quantity, &op.OperatorID, &inspector,
		&op.ProductionDate, &op.ExpiryPeriod, &op.Notes, &reqID, &op.CreatedAt,
	); err != nil {
		return nil, err
	}
	op.InspectorID = derefString(inspector)
	op.RelatedRequestID = derefString(reqID)
	return &op, nil
}
