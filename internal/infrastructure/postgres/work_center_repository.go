package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.WorkCenterRepository = (*WorkCenterRepo)(nil)

const wcColumns = `id, name, name_key, capacity, cost_per_hour, status, created_at, updated_at`

// WorkCenterRepo centros de trabajo; name_key único.
type WorkCenterRepo struct {
	q Querier
}

// NewWorkCenterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkCenterRepository(q Querier) *WorkCenterRepo {
	return &WorkCenterRepo{q: q}
}

// Create inserta el centro; ErrDuplicateName si el nombre ya existe.
func (r *WorkCenterRepo) Create(ctx context.Context, wc *entity.WorkCenter) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO work_centers (`+wcColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		wc.ID, wc.Name, wc.NameKey, wc.Capacity, wc.CostPerHour, wc.Status, wc.CreatedAt, wc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert work center: %w", err)
	}
	return nil
}

// GetByID obtiene el centro; nil si no existe.
func (r *WorkCenterRepo) GetByID(ctx context.Context, id string) (*entity.WorkCenter, error) {
	return r.getOne(ctx, `SELECT `+wcColumns+` FROM work_centers WHERE id = $1`, id)
}

// GetByNameKey busca por nombre normalizado.
func (r *WorkCenterRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.WorkCenter, error) {
	return r.getOne(ctx, `SELECT `+wcColumns+` FROM work_centers WHERE name_key = $1`, nameKey)
}

func (r *WorkCenterRepo) getOne(ctx context.Context, query string, arg any) (*entity.WorkCenter, error) {
	wc, err := scanWorkCenter(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work center: %w", err)
	}
	return wc, nil
}

// Update persiste capacidad, costo y estado.
func (r *WorkCenterRepo) Update(ctx context.Context, wc *entity.WorkCenter) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE work_centers SET capacity = $2, cost_per_hour = $3, status = $4, updated_at = $5
		WHERE id = $1`, wc.ID, wc.Capacity, wc.CostPerHour, wc.Status, wc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update work center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List centros en orden de alta.
func (r *WorkCenterRepo) List(ctx context.Context, limit, offset int) ([]*entity.WorkCenter, error) {
	lim, off := limitOffset(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+wcColumns+` FROM work_centers
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list work centers: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkCenter
	for rows.Next() {
		wc, err := scanWorkCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work center: %w", err)
		}
		list = append(list, wc)
	}
	return list, rows.Err()
}

func scanWorkCenter(row pgx.Row) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := row.Scan(&wc.ID, &wc.Name, &wc.NameKey, &wc.Capacity, &wc.CostPerHour, &wc.Status, &wc.CreatedAt, &wc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wc, nil
}
