package dto

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PostEntryRequest asiento a registrar en el libro de stock.
// UnitCost nil toma el costo promedio vigente del producto.
type PostEntryRequest struct {
	ProductID       string           `json:"product_id"`
	TransactionType string           `json:"transaction_type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference       string           `json:"reference"`
	CreatedBy       string           `json:"-"`
}

// Key clave de idempotencia del asiento solicitado.
func (r PostEntryRequest) Key() entity.PostingKey {
	return entity.PostingKey{Reference: r.Reference, ProductID: r.ProductID, TransactionType: r.TransactionType}
}

// PostEntryResult resultado de un posteo. Duplicate=true si la clave ya existía (no-op).
type PostEntryResult struct {
	Entry     entity.StockEntry `json:"entry"`
	Duplicate bool              `json:"duplicate"`
}

// HistoryRange rango de fechas inclusivo; nil = sin límite.
type HistoryRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ReconciliationReport compara el stock cacheado contra Σ IN − Σ OUT del libro.
type ReconciliationReport struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Cached      decimal.Decimal `json:"cached"`
	Ledger      decimal.Decimal `json:"ledger"`
	Difference  decimal.Decimal `json:"difference"`
	Consistent  bool            `json:"consistent"`
}
