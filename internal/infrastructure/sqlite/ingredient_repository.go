package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

const ingredientColumns = `id, name, category, unit, quantity, min_stock, expiry_date, last_check_date, location, created_at, updated_at`

// IngredientRepo implementación de IngredientRepository sobre SQLite.
type IngredientRepo struct {
	q Querier
}

func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

func (r *IngredientRepo) Create(ctx context.Context, ing *entity.Ingredient) error {
	query := `INSERT INTO ingredients (` + ingredientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		ing.ID, ing.Name, ing.Category, ing.Unit, ing.Quantity.String(), nullDecimal(ing.MinStock),
		nullDate(ing.ExpiryDate), nullDate(ing.LastCheckDate), ing.Location,
		formatTime(ing.CreatedAt), formatTime(ing.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id)
}

func (r *IngredientRepo) GetByName(ctx context.Context, name string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE lower(name) = lower(?)`, name)
}

// GetForUpdate en SQLite la tx ya tiene el bloqueo de escritura (BEGIN IMMEDIATE).
func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, id)
}

func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		UPDATE ingredients SET
			name = ?, category = ?, unit = ?, min_stock = ?,
			expiry_date = ?, last_check_date = ?, location = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.q.ExecContext(ctx, query,
		ing.Name, ing.Category, ing.Unit, nullDecimal(ing.MinStock),
		nullDate(ing.ExpiryDate), nullDate(ing.LastCheckDate), ing.Location, formatTime(ing.UpdatedAt),
		ing.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update ingredient: %w", err)
	}
	return expectRow(res)
}

func (r *IngredientRepo) SetQuantity(ctx context.Context, id string, qty decimal.Decimal, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE ingredients SET quantity = ?, updated_at = ? WHERE id = ?`, qty.String(), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("set ingredient quantity: %w", err)
	}
	return expectRow(res)
}

func (r *IngredientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	return expectRow(res)
}

func (r *IngredientRepo) List(ctx context.Context, f repository.IngredientFilter) ([]*entity.Ingredient, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "lower(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(s)+"%")
	}
	query := `SELECT ` + ingredientColumns + ` FROM ingredients`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY category, name"
	query, args = appendPaging(query, args, f.Limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}

func (r *IngredientRepo) getOne(ctx context.Context, query string, arg any) (*entity.Ingredient, error) {
	ing, err := scanIngredient(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

func scanIngredient(row scanner) (*entity.Ingredient, error) {
	var (
		ing                         entity.Ingredient
		qty, createdAt, updatedAt   string
		minStock, expiry, lastCheck sql.NullString
	)
	if err := row.Scan(
		&ing.ID, &ing.Name, &ing.Category, &ing.Unit, &qty, &minStock,
		&expiry, &lastCheck, &ing.Location, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if ing.Quantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	if ing.MinStock, err = parseNullDecimal(minStock); err != nil {
		return nil, err
	}
	if ing.ExpiryDate, err = parseNullDate(expiry); err != nil {
		return nil, err
	}
	if ing.LastCheckDate, err = parseNullDate(lastCheck); err != nil {
		return nil, err
	}
	if ing.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ing.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &ing, nil
}

func expectRow(res sql.Result) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
