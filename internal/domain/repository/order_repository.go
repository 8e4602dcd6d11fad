package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ManufacturingOrderRepository puerto de persistencia para órdenes de fabricación.
type ManufacturingOrderRepository interface {
	Create(ctx context.Context, mo *entity.ManufacturingOrder) error
	GetByID(ctx context.Context, id string) (*entity.ManufacturingOrder, error)
	GetByReference(ctx context.Context, reference string) (*entity.ManufacturingOrder, error)
	Update(ctx context.Context, mo *entity.ManufacturingOrder) error
	List(ctx context.Context, status entity.MOStatus, limit, offset int) ([]*entity.ManufacturingOrder, error)
}

// WorkOrderRepository puerto de persistencia para órdenes de trabajo.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	ListByOrder(ctx context.Context, manufacturingOrderID string) ([]*entity.WorkOrder, error)
	Update(ctx context.Context, wo *entity.WorkOrder) error
	CountRunning(ctx context.Context, workCenterID string) (int, error)
}
