package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByNameKey(ctx context.Context, nameKey string) (*entity.Product, error)
	// GetForUpdate bloquea la fila dentro de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ApplyStockDelta suma delta al stock cacheado y fija el costo unitario.
	// Únicamente lo invoca el poster del libro de stock, en la misma transacción del asiento.
	ApplyStockDelta(ctx context.Context, id string, delta, unitCost decimal.Decimal) error
	Retire(ctx context.Context, id string, at time.Time) error
}
