package production

import (
	"context"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockPoster libro de stock visto desde el ciclo de vida de órdenes.
type StockPoster interface {
	Apply(ctx context.Context, in dto.PostEntryRequest) (*dto.PostEntryResult, error)
	ByReference(ctx context.Context, reference string) ([]entity.StockEntry, error)
}

// BOMService explosión y costeo de la versión de BOM fijada en la orden.
type BOMService interface {
	Get(ctx context.Context, productID string, version int) (*entity.BOM, error)
	ExplodeVersion(ctx context.Context, productID string, version int, quantity decimal.Decimal) ([]entity.MaterialRequirement, error)
	ResolveCost(ctx context.Context, productID string, version int) (decimal.Decimal, error)
}

// Capacity asignación de órdenes de trabajo a centros de trabajo.
type Capacity interface {
	Assign(ctx context.Context, workCenterID string, wo *entity.WorkOrder) error
	Release(ctx context.Context, wo *entity.WorkOrder) error
}

// Referencias de los asientos generados por una orden. Son la clave de idempotencia junto con
// producto y tipo, así que un reintento tras una caída no duplica movimientos.
func consumeRef(moID string, attempt int) string {
	return fmt.Sprintf("%s#consume-%d", moID, attempt)
}

func compensateRef(moID string, attempt int) string {
	return fmt.Sprintf("%s#compensate-%d", moID, attempt)
}

func produceRef(moID string) string { return moID + "#produce" }

func abortRef(moID string) string { return moID + "#abort" }
