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

var _ repository.MaterialRequestRepository = (*MaterialRequestRepo)(nil)

const requestColumns = `id, title, description, status, requested_by, requested_at, approved_by, approved_at,
	reject_reason, assigned_to, assigned_at, completed_by, completed_at, updated_at`

// MaterialRequestRepo persiste solicitudes y sus líneas sobre SQLite.
type MaterialRequestRepo struct {
	q Querier
}

func NewMaterialRequestRepository(q Querier) *MaterialRequestRepo {
	return &MaterialRequestRepo{q: q}
}

func (r *MaterialRequestRepo) Create(ctx context.Context, req *entity.MaterialRequest) error {
	query := `INSERT INTO material_requests (` + requestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		req.ID, req.Title, req.Description, req.Status, req.RequestedBy, formatTime(req.RequestedAt),
		nullString(req.ApprovedBy), nullTime(req.ApprovedAt), nullString(req.RejectReason),
		nullString(req.AssignedTo), nullTime(req.AssignedAt), nullString(req.CompletedBy), nullTime(req.CompletedAt),
		formatTime(req.UpdatedAt),
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
	req, err := scanRequest(r.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM material_requests WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material request: %w", err)
	}
	if req.Items, err = r.items(ctx, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

// GetForUpdate en SQLite la tx ya tiene el bloqueo de escritura (BEGIN IMMEDIATE).
func (r *MaterialRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRequestRepo) Update(ctx context.Context, req *entity.MaterialRequest) error {
	query := `
		UPDATE material_requests SET
			title = ?, description = ?, status = ?,
			approved_by = ?, approved_at = ?, reject_reason = ?,
			assigned_to = ?, assigned_at = ?, completed_by = ?, completed_at = ?,
			updated_at = ?
		WHERE id = ?`
	res, err := r.q.ExecContext(ctx, query,
		req.Title, req.Description, req.Status,
		nullString(req.ApprovedBy), nullTime(req.ApprovedAt), nullString(req.RejectReason),
		nullString(req.AssignedTo), nullTime(req.AssignedAt), nullString(req.CompletedBy), nullTime(req.CompletedAt),
		formatTime(req.UpdatedAt), req.ID,
	)
	if err != nil {
		return fmt.Errorf("update material request: %w", err)
	}
	return expectRow(res)
}

func (r *MaterialRequestRepo) ReplaceItems(ctx context.Context, requestID string, items []entity.MaterialRequestItem) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM material_request_items WHERE request_id = ?`, requestID); err != nil {
		return fmt.Errorf("delete material request items: %w", err)
	}
	return r.insertItems(ctx, requestID, items)
}

func (r *MaterialRequestRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM material_requests WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete material request: %w", err)
	}
	return expectRow(res)
}

func (r *MaterialRequestRepo) List(ctx context.Context, f repository.MaterialRequestFilter) ([]*entity.MaterialRequest, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}
	if f.AssignedTo != "" {
		add("assigned_to = ?", f.AssignedTo)
	}
	if f.RequestedBy != "" {
		add("requested_by = ?", f.RequestedBy)
	}
	query := `SELECT ` + requestColumns + ` FROM material_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY requested_at DESC, rowid DESC"
	query, args = appendPaging(query, args, f.Limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
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

	// Con una sola conexión, rows debe cerrarse antes de consultar las líneas.
	for _, req := range list {
		if req.Items, err = r.items(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *MaterialRequestRepo) items(ctx context.Context, requestID string) ([]entity.MaterialRequestItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, request_id, ingredient_id, quantity, notes, position
		FROM material_request_items WHERE request_id = ? ORDER BY position`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list material request items: %w", err)
	}
	defer rows.Close()

	var items []entity.MaterialRequestItem
	for rows.Next() {
		var (
			it  entity.MaterialRequestItem
			qty string
		)
		if err := rows.Scan(&it.ID, &it.RequestID, &it.IngredientID, &qty, &it.Notes, &it.Position); err != nil {
			return nil, fmt.Errorf("scan material request item: %w", err)
		}
		if it.Quantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MaterialRequestRepo) insertItems(ctx context.Context, requestID string, items []entity.MaterialRequestItem) error {
	query := `INSERT INTO material_request_items (id, request_id, ingredient_id, quantity, notes, position) VALUES (?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		if _, err := r.q.ExecContext(ctx, query, it.ID, requestID, it.IngredientID, it.Quantity.String(), it.Notes, it.Position); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("insert material request item: %w", err)
		}
	}
	return nil
}

func scanRequest(row scanner) (*entity.MaterialRequest, error) {
	var (
		req                                         entity.MaterialRequest
		requestedAt, updatedAt                      string
		approvedBy, reason, assignedTo, completedBy sql.NullString
		approvedAt, assignedAt, completedAt         sql.NullString
	)
	if err := row.Scan(
		&req.ID, &req.Title, &req.Description, &req.Status, &req.RequestedBy, &requestedAt,
		&approvedBy, &approvedAt, &reason, &assignedTo, &assignedAt, &completedBy, &completedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if req.RequestedAt, err = parseTime(requestedAt); err != nil {
		return nil, err
	}
	if req.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if req.ApprovedAt, err = parseNullTime(approvedAt); err != nil {
		return nil, err
	}
	if req.AssignedAt, err = parseNullTime(assignedAt); err != nil {
		return nil, err
	}
	if req.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	req.ApprovedBy = approvedBy.String
	req.RejectReason = reason.String
	req.AssignedTo = assignedTo.String
	req.CompletedBy = completedBy.String
	return &req, nil
}
