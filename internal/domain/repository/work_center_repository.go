package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// WorkCenterRepository puerto de persistencia para centros de trabajo.
type WorkCenterRepository interface {
	Create(ctx context.Context, wc *entity.WorkCenter) error
	GetByID(ctx context.Context, id string) (*entity.WorkCenter, error)
	GetByNameKey(ctx context.Context, nameKey string) (*entity.WorkCenter, error)
	Update(ctx context.Context, wc *entity.WorkCenter) error
	List(ctx context.Context, limit, offset int) ([]*entity.WorkCenter, error)
}
