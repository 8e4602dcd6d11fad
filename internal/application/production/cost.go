package production

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// CostSummary costo real de la orden: materiales netos de compensaciones y reversas, más mano de obra
// de las órdenes de trabajo completadas (minutos reales × costo por hora del centro).
func (uc *OrderUseCase) CostSummary(ctx context.Context, id string) (*dto.OrderCostSummary, error) {
	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	material := decimal.Zero
	refs := []string{abortRef(mo.ID)}
	for a := 0; a <= mo.ConsumptionAttempt; a++ {
		refs = append(refs, consumeRef(mo.ID, a), compensateRef(mo.ID, a))
	}
	for _, ref := range refs {
		entries, err := uc.poster.ByReference(ctx, ref)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.TransactionType == entity.TransactionTypeOUT {
				material = material.Add(e.TotalValue)
			} else {
				material = material.Sub(e.TotalValue)
			}
		}
	}

	labor := decimal.Zero
	wos, err := uc.repos.WorkOrders.ListByOrder(ctx, mo.ID)
	if err != nil {
		return nil, err
	}
	rates := make(map[string]decimal.Decimal)
	for _, wo := range wos {
		if wo.Status != entity.WOStatusCompleted {
			continue
		}
		rate, ok := rates[wo.WorkCenterID]
		if !ok {
			wc, err := uc.repos.WorkCenters.GetByID(ctx, wo.WorkCenterID)
			if err != nil {
				return nil, err
			}
			if wc != nil {
				rate = wc.CostPerHour
			}
			rates[wo.WorkCenterID] = rate
		}
		minutes := decimal.NewFromInt(int64(wo.ActualDurationMinutes))
		labor = labor.Add(minutes.Mul(rate).DivRound(minutesPerHour, 6))
	}

	total := material.Add(labor)
	summary := &dto.OrderCostSummary{
		OrderID:      mo.ID,
		MaterialCost: material,
		LaborCost:    labor,
		TotalCost:    total,
	}
	if mo.Quantity.GreaterThan(decimal.Zero) {
		summary.UnitCost = total.DivRound(mo.Quantity, 6)
	}
	return summary, nil
}
