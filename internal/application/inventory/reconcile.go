package inventory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Reconcile compara el stock cacheado del producto con Σ IN − Σ OUT de su libro.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationReport, error) {
	product, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.reconcileProduct(ctx, product)
}

// ReconcileAll recorre el catálogo completo y devuelve un reporte por producto.
// Registra un warning por cada diferencia encontrada.
func (uc *LedgerUseCase) ReconcileAll(ctx context.Context) ([]dto.ReconciliationReport, error) {
	var reports []dto.ReconciliationReport
	offset := 0
	for {
		list, err := uc.repos.Products.List(ctx, uc.pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			rep, err := uc.reconcileProduct(ctx, p)
			if err != nil {
				return nil, err
			}
			if !rep.Consistent {
				uc.log.Warn().
					Str("product_id", p.ID).
					Str("cached", rep.Cached.String()).
					Str("ledger", rep.Ledger.String()).
					Msg("stock cacheado no coincide con el libro")
			}
			reports = append(reports, *rep)
		}
		if len(list) < uc.pageSize {
			return reports, nil
		}
		offset += len(list)
	}
}

func (uc *LedgerUseCase) reconcileProduct(ctx context.Context, p *entity.Product) (*dto.ReconciliationReport, error) {
	sum, err := uc.repos.Entries.SumByProduct(ctx, p.ID, nil)
	if err != nil {
		return nil, err
	}
	diff := p.CurrentStock.Sub(sum)
	return &dto.ReconciliationReport{
		ProductID:   p.ID,
		ProductName: p.Name,
		Cached:      p.CurrentStock,
		Ledger:      sum,
		Difference:  diff,
		Consistent:  diff.IsZero(),
	}, nil
}
