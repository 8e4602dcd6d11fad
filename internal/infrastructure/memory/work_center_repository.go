package memory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.WorkCenterRepository = (*WorkCenterRepository)(nil)

// WorkCenterRepository centros de trabajo en memoria.
type WorkCenterRepository struct {
	c *conn
}

func (r *WorkCenterRepository) Create(_ context.Context, wc *entity.WorkCenter) error {
	defer r.c.lock()()
	s := r.c.store
	if _, ok := s.workCenters[wc.ID]; ok {
		return domain.ErrConflict
	}
	if _, ok := s.wcByName[wc.NameKey]; ok {
		return domain.ErrDuplicateName
	}
	s.workCenters[wc.ID] = cloneWorkCenter(wc)
	s.wcByName[wc.NameKey] = wc.ID
	s.wcOrder = append(s.wcOrder, wc.ID)
	r.c.undo(func() {
		delete(s.workCenters, wc.ID)
		delete(s.wcByName, wc.NameKey)
		s.wcOrder = s.wcOrder[:len(s.wcOrder)-1]
	})
	return nil
}

func (r *WorkCenterRepository) GetByID(_ context.Context, id string) (*entity.WorkCenter, error) {
	defer r.c.lock()()
	wc, ok := r.c.store.workCenters[id]
	if !ok {
		return nil, nil
	}
	return cloneWorkCenter(wc), nil
}

func (r *WorkCenterRepository) GetByNameKey(ctx context.Context, nameKey string) (*entity.WorkCenter, error) {
	unlock := r.c.lock()
	id, ok := r.c.store.wcByName[nameKey]
	unlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *WorkCenterRepository) Update(_ context.Context, wc *entity.WorkCenter) error {
	defer r.c.lock()()
	s := r.c.store
	cur, ok := s.workCenters[wc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	s.workCenters[wc.ID] = cloneWorkCenter(wc)
	r.c.undo(func() { s.workCenters[wc.ID] = cur })
	return nil
}

func (r *WorkCenterRepository) List(_ context.Context, limit, offset int) ([]*entity.WorkCenter, error) {
	defer r.c.lock()()
	s := r.c.store
	ids := paginate(s.wcOrder, limit, offset)
	out := make([]*entity.WorkCenter, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneWorkCenter(s.workCenters[id]))
	}
	return out, nil
}
