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

var _ repository.MaterialRequestRepository = (*MaterialRequestRepo)(nil)

const requestColumns = `id, title, description, status, requested_by, requested_at, approved_by, approved_at,
	reject_reason, assigned_to, assigned_at, completed_by, completed_at, updated_at`

// MaterialRequestRepo persiste solicitudes y sus líneas. Create y ReplaceItems esperan correr dentro de una tx.
type MaterialRequestRepo struct {
	q Querier
}

// NewMaterialRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRequestRepository(q Querier) *MaterialRequestRepo {
	return &MaterialRequestRepo{q: q}
}

func (r *MaterialRequestRepo) Create(ctx context.Context, req *entity.MaterialRequest) error {
	query := `
		INSERT INTO material_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.Title, req.Description, req.Status, req.RequestedBy, req.RequestedAt,
		nullString(req.ApprovedBy), req.ApprovedAt, nullString(req.RejectReason),
		nullString(req.AssignedTo), req.AssignedAt, nullString(req.CompletedBy), req.CompletedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create material request: %w", err)
	}
	return r.insertItems(ctx, req.ID, req.Items)
}

func (r *MaterialRequestRepo) GetByID(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM material_requests WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas solo cambian con la cabecera bloqueada.
func (r *MaterialRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM material_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *MaterialRequestRepo) Update(ctx context.Context, req *entity.MaterialRequest) error {
	query := `
		UPDATE material_requests SET
			title = $2, description = $3, status = $4,
			approved_by = $5, approved_at = $6, reject_reason = $7,
			assigned_to = $8, assigned_at = $9, completed_by = $10, completed_at = $11,
			updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.Title, req.Description, req.Status,
		nullString(req.ApprovedBy), req.ApprovedAt, nullString(req.RejectReason),
		nullString(req.AssignedTo), req.AssignedAt, nullString(req.CompletedBy), req.CompletedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update material request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRequestRepo) ReplaceItems(ctx context.Context, requestID string, items []entity.MaterialRequestItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM material_request_items WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("delete material request items: %w", err)
	}
	return r.insertItems(ctx, requestID, items)
}

func (r *MaterialRequestRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM material_requests WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete material request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List más recientes primero, con líneas.
func (r *MaterialRequestRepo) List(ctx context.Context, f repository.MaterialRequestFilter) ([]*entity.MaterialRequest, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.AssignedTo != "" {
		add("assigned_to = $%d", f.AssignedTo)
	}
	if f.RequestedBy != "" {
		add("requested_by = $%d", f.RequestedBy)
	}
	query := `SELECT ` + requestColumns + ` FROM material_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY requested_at DESC, id DESC"
	query, args = appendPaging(query, args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list material requests: %w", err)
	}
	var list []*entity.MaterialRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan material request: %w", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list material requests: %w", err)
	}

	// Las líneas se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, req := range list {
		if req.Items, err = r.items(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *MaterialRequestRepo) getOne(ctx context.Context, query, id string) (*entity.MaterialRequest, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material request: %w", err)
	}
	if req.Items, err = r.items(ctx, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *MaterialRequestRepo) items(ctx context.Context, requestID string) ([]entity.MaterialRequestItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, ingredient_id, quantity, notes, position
		FROM material_request_items WHERE request_id = $1 ORDER BY position`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list material request items: %w", err)
	}
	defer rows.Close()

	var items []entity.MaterialRequestItem
	for rows.Next() {
		var it entity.MaterialRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.IngredientID, &it.Quantity, &it.Notes, &it.Position); err != nil {
			return nil, fmt.Errorf("scan material request item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MaterialRequestRepo) insertItems(ctx context.Context, requestID string, items []entity.MaterialRequestItem) error {
	query := `
		INSERT INTO material_request_items (id, request_id, ingredient_id, quantity, notes, position)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, requestID, it.IngredientID, it.Quantity, it.Notes, it.Position); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("insert material request item: %w", err)
		}
	}
	return nil
}

func scanRequest(row pgx.Row) (*entity.MaterialRequest, error) {
	var (
		req                                         entity.MaterialRequest
		approvedBy, reason, assignedTo, completedBy *string
	)
	if err := row.Scan(
		&req.ID, &req.Title, &req.Description, &req.Status, &req.RequestedBy, &req.RequestedAt,
		&approvedBy, &req.ApprovedAt, &reason, &assignedTo, &req.AssignedAt, &completedBy, &req.CompletedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	req.ApprovedBy = derefString(approvedBy)
	req.RejectReason = derefString(reason)
	req.AssignedTo = derefString(assignedTo)
	req.CompletedBy = derefString(completedBy)
	return &req, nil
}
