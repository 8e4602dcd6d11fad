package inventory

import (
	"context"
	"iter"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// History devuelve una secuencia perezosa y finita de los asientos del producto, ordenados por
// timestamp y luego por orden de inserción. Se pagina por cursor; cada range vuelve a empezar desde
// el principio, así que la secuencia se puede recorrer más de una vez.
// Ruta de auditoría/reconciliación: no usar para leer stock en caliente.
func (uc *LedgerUseCase) History(ctx context.Context, productID string, rng dto.HistoryRange) iter.Seq2[entity.StockEntry, error] {
	return func(yield func(entity.StockEntry, error) bool) {
		product, err := uc.repos.Products.GetByID(ctx, productID)
		if err != nil {
			yield(entity.StockEntry{}, err)
			return
		}
		if product == nil {
			yield(entity.StockEntry{}, domain.ErrNotFound)
			return
		}

		var after *repository.EntryCursor
		for {
			if err := ctx.Err(); err != nil {
				yield(entity.StockEntry{}, err)
				return
			}
			page, err := uc.repos.Entries.ListByProduct(ctx, productID, repository.EntryQuery{
				From:  rng.From,
				To:    rng.To,
				After: after,
				Limit: uc.pageSize,
			})
			if err != nil {
				yield(entity.StockEntry{}, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if len(page) < uc.pageSize {
				return
			}
			last := page[len(page)-1]
			after = &repository.EntryCursor{Timestamp: last.Timestamp, ID: last.ID}
		}
	}
}

// StockAt reconstruye el stock del producto en el instante at recorriendo su historial.
func (uc *LedgerUseCase) StockAt(ctx context.Context, productID string, at time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for e, err := range uc.History(ctx, productID, dto.HistoryRange{To: &at}) {
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(e.SignedQuantity())
	}
	return total, nil
}
