package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepository)(nil)

// BOMRepository listas de materiales versionadas en memoria.
type BOMRepository struct {
	c *conn
}

func (r *BOMRepository) Create(_ context.Context, b *entity.BOM) error {
	defer r.c.lock()()
	s := r.c.store
	k := bomKey{b.ProductID, b.Version}
	if _, ok := s.boms[k]; ok {
		return domain.ErrConflict
	}
	s.boms[k] = cloneBOM(b)
	r.c.undo(func() { delete(s.boms, k) })
	return nil
}

func (r *BOMRepository) Get(_ context.Context, productID string, version int) (*entity.BOM, error) {
	defer r.c.lock()()
	b, ok := r.c.store.boms[bomKey{productID, version}]
	if !ok {
		return nil, nil
	}
	return cloneBOM(b), nil
}

func (r *BOMRepository) GetActive(_ context.Context, productID string) (*entity.BOM, error) {
	defer r.c.lock()()
	for k, b := range r.c.store.boms {
		if k.productID == productID && b.Active {
			return cloneBOM(b), nil
		}
	}
	return nil, nil
}

// LatestVersion devuelve 0 si el producto no tiene BOMs.
func (r *BOMRepository) LatestVersion(_ context.Context, productID string) (int, error) {
	defer r.c.lock()()
	latest := 0
	for k := range r.c.store.boms {
		if k.productID == productID && k.version > latest {
			latest = k.version
		}
	}
	return latest, nil
}

// ListByProduct ordena por versión ascendente.
func (r *BOMRepository) ListByProduct(_ context.Context, productID string) ([]*entity.BOM, error) {
	defer r.c.lock()()
	var out []*entity.BOM
	for k, b := range r.c.store.boms {
		if k.productID == productID {
			out = append(out, cloneBOM(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *BOMRepository) SetActive(_ context.Context, productID string, version int) error {
	defer r.c.lock()()
	s := r.c.store
	target, ok := s.boms[bomKey{productID, version}]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	for k, b := range s.boms {
		if k.productID != productID {
			continue
		}
		want := b == target
		if b.Active == want {
			continue
		}
		prev := *b
		b.Active = want
		b.UpdatedAt = now
		r.c.undo(func() { *b = prev })
	}
	return nil
}

func (r *BOMRepository) ReplaceComponents(_ context.Context, productID string, version int, components []entity.BOMComponent) error {
	defer r.c.lock()()
	b, ok := r.c.store.boms[bomKey{productID, version}]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Locked {
		return domain.ErrConflict
	}
	prev := *b
	b.Components = append([]entity.BOMComponent(nil), components...)
	b.UpdatedAt = time.Now().UTC()
	r.c.undo(func() { *b = prev })
	return nil
}

func (r *BOMRepository) MarkLocked(_ context.Context, productID string, version int) error {
	defer r.c.lock()()
	b, ok := r.c.store.boms[bomKey{productID, version}]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Locked {
		return nil
	}
	prev := *b
	b.Locked = true
	b.UpdatedAt = time.Now().UTC()
	r.c.undo(func() { *b = prev })
	return nil
}
