package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.InventoryOperationRepository = (*InventoryOperationRepo)(nil)

const operationColumns = `id, ingredient_id, operation_type, quantity, operator_id, inspector_id,
	production_date, expiry_period, notes, related_request_id, created_at`

// InventoryOperationRepo libro de inventario sobre SQLite. Solo inserción.
type InventoryOperationRepo struct {
	q Querier
}

func NewInventoryOperationRepository(q Querier) *InventoryOperationRepo {
	return &InventoryOperationRepo{q: q}
}

func (r *InventoryOperationRepo) Create(ctx context.Context, op *entity.InventoryOperation) error {
	query := `INSERT INTO inventory_operations (` + operationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		op.ID, op.IngredientID, op.OperationType, op.Quantity.String(), op.OperatorID, nullString(op.InspectorID),
		nullDate(op.ProductionDate), op.ExpiryPeriod, op.Notes, nullString(op.RelatedRequestID), formatTime(op.CreatedAt),
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
	op, err := scanOperation(r.q.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM inventory_operations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory operation: %w", err)
	}
	return op, nil
}

func (r *InventoryOperationRepo) ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.InventoryOperation, error) {
	return r.list(ctx, `SELECT `+operationColumns+` FROM inventory_operations
		WHERE ingredient_id = ? ORDER BY created_at, rowid`, ingredientID)
}

// List From es inclusivo y To exclusivo; más recientes primero.
func (r *InventoryOperationRepo) List(ctx context.Context, f repository.OperationFilter) ([]*entity.InventoryOperation, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.IngredientID != "" {
		add("ingredient_id = ?", f.IngredientID)
	}
	if f.OperationType != "" {
		add("operation_type = ?", f.OperationType)
	}
	if f.RelatedRequestID != "" {
		add("related_request_id = ?", f.RelatedRequestID)
	}
	if f.From != nil {
		add("created_at >= ?", formatTime(*f.From))
	}
	if f.To != nil {
		add("created_at < ?", formatTime(*f.To))
	}
	query := `SELECT ` + operationColumns + ` FROM inventory_operations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	query, args = appendPaging(query, args, f.Limit, f.Offset)
	return r.list(ctx, query, args...)
}

func (r *InventoryOperationRepo) CountByIngredient(ctx context.Context, ingredientID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM inventory_operations WHERE ingredient_id = ?`, ingredientID)
}

func (r *InventoryOperationRepo) CountByRequest(ctx context.Context, requestID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM inventory_operations WHERE related_request_id = ?`, requestID)
}

func (r *InventoryOperationRepo) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inventory operations: %w", err)
	}
	return n, nil
}

func (r *InventoryOperationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryOperation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
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

func scanOperation(row scanner) (*entity.InventoryOperation, error) {
	var (
		op                       entity.InventoryOperation
		qty, createdAt           string
		inspector, reqID, prodAt sql.NullString
	)
	if err := row.Scan(
		&op.ID, &op.IngredientID, &op.OperationType, &qty, &op.OperatorID, &inspector,
		&prodAt, &op.ExpiryPeriod, &op.Notes, &reqID, &createdAt,
	); err != nil {
		return nil, err
	}
	var err error
	if op.Quantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	if op.ProductionDate, err = parseNullDate(prodAt); err != nil {
		return nil, err
	}
	if op.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	op.InspectorID = inspector.String
	op.RelatedRequestID = reqID.String
	return &op, nil
}
