package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación en memoria del catálogo.
type ProductRepository struct {
	c *conn
}

// Create inserta el producto; ErrDuplicateName si el nombre normalizado ya existe.
func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	defer r.c.lock()()
	s := r.c.store
	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("producto %s: %w", p.ID, domain.ErrConflict)
	}
	if _, ok := s.productByName[p.NameKey]; ok {
		return domain.ErrDuplicateName
	}
	s.products[p.ID] = cloneProduct(p)
	s.productByName[p.NameKey] = p.ID
	s.productOrder = append(s.productOrder, p.ID)
	r.c.undo(func() {
		delete(s.products, p.ID)
		delete(s.productByName, p.NameKey)
		s.productOrder = s.productOrder[:len(s.productOrder)-1]
	})
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.c.lock()()
	p, ok := r.c.store.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) GetByNameKey(ctx context.Context, nameKey string) (*entity.Product, error) {
	unlock := r.c.lock()
	id, ok := r.c.store.productByName[nameKey]
	unlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate en memoria equivale a GetByID: la tx ya tiene acceso exclusivo.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// List devuelve los productos en orden de alta.
func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.c.lock()()
	s := r.c.store
	ids := paginate(s.productOrder, limit, offset)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneProduct(s.products[id]))
	}
	return out, nil
}

func (r *ProductRepository) ApplyStockDelta(_ context.Context, id string, delta, unitCost decimal.Decimal) error {
	defer r.c.lock()()
	p, ok := r.c.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := *p
	p.CurrentStock = p.CurrentStock.Add(delta)
	p.UnitCost = unitCost
	p.UpdatedAt = time.Now().UTC()
	r.c.undo(func() { *p = prev })
	return nil
}

func (r *ProductRepository) Retire(_ context.Context, id string, at time.Time) error {
	defer r.c.lock()()
	p, ok := r.c.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := *p
	p.RetiredAt = &at
	p.UpdatedAt = at
	r.c.undo(func() { *p = prev })
	return nil
}
