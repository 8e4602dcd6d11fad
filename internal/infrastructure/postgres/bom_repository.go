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

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo versiones de BOM en boms y sus líneas en bom_components.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// Create inserta la cabecera y sus líneas. Debe correr dentro de una tx para que sea atómico.
func (r *BOMRepo) Create(ctx context.Context, b *entity.BOM) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO boms (product_id, version, active, locked, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ProductID, b.Version, b.Active, b.Locked, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bom %s v%d: %w", b.ProductID, b.Version, domain.ErrConflict)
		}
		return fmt.Errorf("insert bom: %w", err)
	}
	return r.insertComponents(ctx, b.ProductID, b.Version, b.Components)
}

func (r *BOMRepo) insertComponents(ctx context.Context, productID string, version int, comps []entity.BOMComponent) error {
	batch := &pgx.Batch{}
	for _, c := range comps {
		batch.Queue(`
			INSERT INTO bom_components (product_id, version, line, component_product_id, quantity, unit, cost, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			productID, version, c.Line, c.ComponentProductID, c.Quantity, c.Unit, c.Cost, c.Total)
	}
	if batch.Len() == 0 {
		return nil
	}
	results := r.q.SendBatch(ctx, batch)
	defer results.Close()
	for range comps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert bom component: %w", err)
		}
	}
	return nil
}

// Get devuelve la versión indicada con sus componentes; nil si no existe.
func (r *BOMRepo) Get(ctx context.Context, productID string, version int) (*entity.BOM, error) {
	return r.getOne(ctx, `
		SELECT product_id, version, active, locked, created_by, created_at, updated_at
		FROM boms WHERE product_id = $1 AND version = $2`, productID, version)
}

// GetActive devuelve la versión activa; nil si el producto no tiene BOM activa.
func (r *BOMRepo) GetActive(ctx context.Context, productID string) (*entity.BOM, error) {
	return r.getOne(ctx, `
		SELECT product_id, version, active, locked, created_by, created_at, updated_at
		FROM boms WHERE product_id = $1 AND active`, productID)
}

func (r *BOMRepo) getOne(ctx context.Context, query string, args ...any) (*entity.BOM, error) {
	var b entity.BOM
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&b.ProductID, &b.Version, &b.Active, &b.Locked, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}
	comps, err := r.components(ctx, b.ProductID, b.Version)
	if err != nil {
		return nil, err
	}
	b.Components = comps
	return &b, nil
}

func (r *BOMRepo) components(ctx context.Context, productID string, version int) ([]entity.BOMComponent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT line, component_product_id, quantity, unit, cost, total
		FROM bom_components
		WHERE product_id = $1 AND version = $2
		ORDER BY line`, productID, version)
	if err != nil {
		return nil, fmt.Errorf("list bom components: %w", err)
	}
	defer rows.Close()
	var comps []entity.BOMComponent
	for rows.Next() {
		var c entity.BOMComponent
		if err := rows.Scan(&c.Line, &c.ComponentProductID, &c.Quantity, &c.Unit, &c.Cost, &c.Total); err != nil {
			return nil, fmt.Errorf("scan bom component: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// LatestVersion mayor versión registrada; 0 si no hay ninguna.
func (r *BOMRepo) LatestVersion(ctx context.Context, productID string) (int, error) {
	var v int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM boms WHERE product_id = $1`, productID).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("latest bom version: %w", err)
	}
	return v, nil
}

// ListByProduct todas las versiones ordenadas de menor a mayor.
func (r *BOMRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.BOM, error) {
	rows, err := r.q.Query(ctx, `SELECT version FROM boms WHERE product_id = $1 ORDER BY version`, productID)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan bom version: %w", err)
	}
	list := make([]*entity.BOM, 0, len(versions))
	for _, v := range versions {
		b, err := r.Get(ctx, productID, v)
		if err != nil {
			return nil, err
		}
		if b != nil {
			list = append(list, b)
		}
	}
	return list, nil
}

// SetActive activa version y desactiva las demás del producto en una sola sentencia.
func (r *BOMRepo) SetActive(ctx context.Context, productID string, version int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE boms SET active = (version = $2), updated_at = now()
		WHERE product_id = $1`, productID, version)
	if err != nil {
		return fmt.Errorf("set active bom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceComponents reescribe las líneas de una versión no bloqueada (FOR UPDATE sobre la cabecera).
func (r *BOMRepo) ReplaceComponents(ctx context.Context, productID string, version int, comps []entity.BOMComponent) error {
	var locked bool
	err := r.q.QueryRow(ctx, `
		SELECT locked FROM boms WHERE product_id = $1 AND version = $2 FOR UPDATE`,
		productID, version).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock bom: %w", err)
	}
	if locked {
		return fmt.Errorf("bom %s v%d bloqueada: %w", productID, version, domain.ErrConflict)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM bom_components WHERE product_id = $1 AND version = $2`, productID, version); err != nil {
		return fmt.Errorf("delete bom components: %w", err)
	}
	if _, err := r.q.Exec(ctx, `UPDATE boms SET updated_at = now() WHERE product_id = $1 AND version = $2`, productID, version); err != nil {
		return fmt.Errorf("touch bom: %w", err)
	}
	return r.insertComponents(ctx, productID, version, comps)
}

// MarkLocked congela la versión; es idempotente.
func (r *BOMRepo) MarkLocked(ctx context.Context, productID string, version int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE boms SET locked = TRUE, updated_at = now()
		WHERE product_id = $1 AND version = $2`, productID, version)
	if err != nil {
		return fmt.Errorf("lock bom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
