package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.ManufacturingOrderRepository = (*ManufacturingOrderRepository)(nil)
	_ repository.WorkOrderRepository          = (*WorkOrderRepository)(nil)
)

// ManufacturingOrderRepository órdenes de fabricación en memoria.
type ManufacturingOrderRepository struct {
	c *conn
}

func (r *ManufacturingOrderRepository) Create(_ context.Context, mo *entity.ManufacturingOrder) error {
	defer r.c.lock()()
	s := r.c.store
	if _, ok := s.orders[mo.ID]; ok {
		return domain.ErrConflict
	}
	if _, ok := s.orderByRef[mo.Reference]; ok {
		return domain.ErrDuplicateName
	}
	s.orders[mo.ID] = cloneOrder(mo)
	s.orderByRef[mo.Reference] = mo.ID
	s.orderSeq = append(s.orderSeq, mo.ID)
	r.c.undo(func() {
		delete(s.orders, mo.ID)
		delete(s.orderByRef, mo.Reference)
		s.orderSeq = s.orderSeq[:len(s.orderSeq)-1]
	})
	return nil
}

func (r *ManufacturingOrderRepository) GetByID(_ context.Context, id string) (*entity.ManufacturingOrder, error) {
	defer r.c.lock()()
	mo, ok := r.c.store.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(mo), nil
}

func (r *ManufacturingOrderRepository) GetByReference(ctx context.Context, reference string) (*entity.ManufacturingOrder, error) {
	unlock := r.c.lock()
	id, ok := r.c.store.orderByRef[reference]
	unlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *ManufacturingOrderRepository) Update(_ context.Context, mo *entity.ManufacturingOrder) error {
	defer r.c.lock()()
	s := r.c.store
	cur, ok := s.orders[mo.ID]
	if !ok {
		return domain.ErrNotFound
	}
	s.orders[mo.ID] = cloneOrder(mo)
	r.c.undo(func() { s.orders[mo.ID] = cur })
	return nil
}

// List status vacío devuelve todas las órdenes, en orden de creación.
func (r *ManufacturingOrderRepository) List(_ context.Context, status entity.MOStatus, limit, offset int) ([]*entity.ManufacturingOrder, error) {
	defer r.c.lock()()
	s := r.c.store
	var matched []*entity.ManufacturingOrder
	for _, id := range s.orderSeq {
		mo := s.orders[id]
		if status == "" || mo.Status == status {
			matched = append(matched, mo)
		}
	}
	page := paginate(matched, limit, offset)
	out := make([]*entity.ManufacturingOrder, 0, len(page))
	for _, mo := range page {
		out = append(out, cloneOrder(mo))
	}
	return out, nil
}

// WorkOrderRepository órdenes de trabajo en memoria.
type WorkOrderRepository struct {
	c *conn
}

func (r *WorkOrderRepository) Create(_ context.Context, wo *entity.WorkOrder) error {
	defer r.c.lock()()
	s := r.c.store
	if _, ok := s.workOrders[wo.ID]; ok {
		return domain.ErrConflict
	}
	s.workOrders[wo.ID] = cloneWorkOrder(wo)
	s.woByOrder[wo.ManufacturingOrderID] = append(s.woByOrder[wo.ManufacturingOrderID], wo.ID)
	r.c.undo(func() {
		delete(s.workOrders, wo.ID)
		ids := s.woByOrder[wo.ManufacturingOrderID]
		s.woByOrder[wo.ManufacturingOrderID] = ids[:len(ids)-1]
	})
	return nil
}

func (r *WorkOrderRepository) GetByID(_ context.Context, id string) (*entity.WorkOrder, error) {
	defer r.c.lock()()
	wo, ok := r.c.store.workOrders[id]
	if !ok {
		return nil, nil
	}
	return cloneWorkOrder(wo), nil
}

// ListByOrder ordena por secuencia.
func (r *WorkOrderRepository) ListByOrder(_ context.Context, manufacturingOrderID string) ([]*entity.WorkOrder, error) {
	defer r.c.lock()()
	s := r.c.store
	ids := s.woByOrder[manufacturingOrderID]
	out := make([]*entity.WorkOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneWorkOrder(s.workOrders[id]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *WorkOrderRepository) Update(_ context.Context, wo *entity.WorkOrder) error {
	defer r.c.lock()()
	s := r.c.store
	cur, ok := s.workOrders[wo.ID]
	if !ok {
		return domain.ErrNotFound
	}
	s.workOrders[wo.ID] = cloneWorkOrder(wo)
	r.c.undo(func() { s.workOrders[wo.ID] = cur })
	return nil
}

func (r *WorkOrderRepository) CountRunning(_ context.Context, workCenterID string) (int, error) {
	defer r.c.lock()()
	n := 0
	for _, wo := range r.c.store.workOrders {
		if wo.WorkCenterID == workCenterID && wo.Status == entity.WOStatusRunning {
			n++
		}
	}
	return n, nil
}
