package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// BOMRepository define el puerto de persistencia para listas de materiales versionadas.
type BOMRepository interface {
	Create(ctx context.Context, bom *entity.BOM) error
	Get(ctx context.Context, productID string, version int) (*entity.BOM, error)
	GetActive(ctx context.Context, productID string) (*entity.BOM, error)
	LatestVersion(ctx context.Context, productID string) (int, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.BOM, error)
	// SetActive activa la versión indicada y desactiva las demás del producto.
	SetActive(ctx context.Context, productID string, version int) error
	ReplaceComponents(ctx context.Context, productID string, version int, components []entity.BOMComponent) error
	MarkLocked(ctx context.Context, productID string, version int) error
}
