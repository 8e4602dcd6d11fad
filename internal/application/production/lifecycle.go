package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/production"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// Confirm explota la BOM de la orden y verifica stock para cada materia prima.
// Falla con *domain.ShortfallError en el primer faltante. Si pasa, congela los requerimientos
// en la orden, bloquea la versión de BOM y deja la orden en CONFIRMED. No mueve stock.
func (uc *OrderUseCase) Confirm(ctx context.Context, actor auth.Actor, id string) (*entity.ManufacturingOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderConfirm); err != nil {
		return nil, err
	}
	unlock, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := production.NextMOStatus(mo.Status, production.MOEventConfirm)
	if err != nil {
		return nil, err
	}
	reqs, err := uc.boms.ExplodeVersion(ctx, mo.ProductID, mo.BOMVersion, mo.Quantity)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(reqs))
	for _, req := range reqs {
		keys = append(keys, ports.ProductKey(req.ProductID))
	}
	unlockProducts, err := uc.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlockProducts()

	if err := uc.checkStock(ctx, reqs); err != nil {
		return nil, err
	}

	now := uc.now()
	mo.Requirements = reqs
	mo.Status = next
	mo.ConfirmedAt = &now
	mo.UpdatedAt = now
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		if err := r.BOMs.MarkLocked(ctx, mo.ProductID, mo.BOMVersion); err != nil {
			return err
		}
		return r.Orders.Update(ctx, mo)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("mo_id", mo.ID).Int("requirements", len(reqs)).Msg("orden confirmada")
	return mo, nil
}

// Start consume los requerimientos congelados con un OUT por materia prima y pasa a IN_PROGRESS.
// Si un posteo falla, compensa con un IN cada OUT ya registrado y la orden sigue en CONFIRMED;
// el siguiente intento consume con referencias nuevas. Reintentar tras una caída retoma el mismo
// intento: los posteos ya hechos se reconocen por su clave.
func (uc *OrderUseCase) Start(ctx context.Context, actor auth.Actor, id string) (*entity.ManufacturingOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderStart); err != nil {
		return nil, err
	}
	unlock, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := production.NextMOStatus(mo.Status, production.MOEventStart)
	if err != nil {
		return nil, err
	}

	// Un intento anterior quedó a medio compensar: se termina antes de volver a consumir.
	compensated, err := uc.poster.ByReference(ctx, compensateRef(mo.ID, mo.ConsumptionAttempt))
	if err != nil {
		return nil, err
	}
	if len(compensated) > 0 {
		if err := uc.compensate(ctx, mo, actor); err != nil {
			return nil, err
		}
		if err := uc.nextAttempt(ctx, mo); err != nil {
			return nil, err
		}
	}

	consumed, err := uc.consumedEntries(ctx, mo)
	if err != nil {
		return nil, err
	}
	pending := make([]entity.MaterialRequirement, 0, len(mo.Requirements))
	for _, req := range mo.Requirements {
		if _, done := consumed[req.ProductID]; !done {
			pending = append(pending, req)
		}
	}
	// Prechequeo sin lock para no postear y compensar en el caso obvio; el posteo vuelve a validar.
	if len(consumed) == 0 {
		if err := uc.checkStock(ctx, pending); err != nil {
			return nil, err
		}
	}

	// Una vez que se empieza a postear, la transición termina o compensa aunque el caller cancele.
	work := context.WithoutCancel(ctx)
	ref := consumeRef(mo.ID, mo.ConsumptionAttempt)
	for _, req := range pending {
		_, err := uc.poster.Apply(work, dto.PostEntryRequest{
			ProductID:       req.ProductID,
			TransactionType: entity.TransactionTypeOUT,
			Quantity:        req.Quantity,
			Reference:       ref,
			CreatedBy:       actor.UserID,
		})
		if err == nil {
			continue
		}
		uc.log.Warn().Err(err).Str("mo_id", mo.ID).Str("product_id", req.ProductID).Msg("consumo fallido, compensando")
		if cerr := uc.compensate(work, mo, actor); cerr != nil {
			uc.log.Error().Err(cerr).Str("mo_id", mo.ID).Msg("compensación incompleta; se completa en el próximo start o cancel")
			return nil, errors.Join(err, fmt.Errorf("compensación incompleta: %w", cerr))
		}
		if aerr := uc.nextAttempt(work, mo); aerr != nil {
			return nil, errors.Join(err, aerr)
		}
		return nil, err
	}

	now := uc.now()
	mo.Status = next
	mo.StartedAt = &now
	mo.UpdatedAt = now
	if err := uc.repos.Orders.Update(work, mo); err != nil {
		return nil, err
	}
	uc.log.Info().Str("mo_id", mo.ID).Int("attempt", mo.ConsumptionAttempt).Msg("orden en producción")
	return mo, nil
}

// Complete registra la producción: un IN del producto terminado por la cantidad de la orden al costo
// resuelto de su versión de BOM. Requiere todas las órdenes de trabajo COMPLETED; una orden con
// alguna WO cancelada solo sale por Abort.
func (uc *OrderUseCase) Complete(ctx context.Context, actor auth.Actor, id string) (*entity.ManufacturingOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderComplete); err != nil {
		return nil, err
	}
	unlock, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := production.NextMOStatus(mo.Status, production.MOEventComplete)
	if err != nil {
		return nil, err
	}
	if err := uc.abortPending(ctx, mo); err != nil {
		return nil, err
	}
	wos, err := uc.repos.WorkOrders.ListByOrder(ctx, mo.ID)
	if err != nil {
		return nil, err
	}
	for _, wo := range wos {
		if wo.Status != entity.WOStatusCompleted {
			return nil, fmt.Errorf("%w: la orden de trabajo %d (%s) está en %s",
				domain.ErrInvalidTransition, wo.Sequence, wo.Name, wo.Status)
		}
	}

	unitCost, err := uc.boms.ResolveCost(ctx, mo.ProductID, mo.BOMVersion)
	if err != nil {
		return nil, err
	}
	work := context.WithoutCancel(ctx)
	if _, err := uc.poster.Apply(work, dto.PostEntryRequest{
		ProductID:       mo.ProductID,
		TransactionType: entity.TransactionTypeIN,
		Quantity:        mo.Quantity,
		UnitCost:        &unitCost,
		Reference:       produceRef(mo.ID),
		CreatedBy:       actor.UserID,
	}); err != nil {
		return nil, err
	}

	now := uc.now()
	mo.Status = next
	mo.CompletedAt = &now
	mo.UpdatedAt = now
	if err := uc.repos.Orders.Update(work, mo); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("mo_id", mo.ID).
		Str("quantity", mo.Quantity.String()).
		Str("unit_cost", unitCost.String()).
		Msg("orden terminada")
	return mo, nil
}

// Cancel anula una orden en DRAFT o CONFIRMED junto con sus órdenes de trabajo.
// Si un start previo quedó a medio compensar, termina la compensación antes de cancelar.
func (uc *OrderUseCase) Cancel(ctx context.Context, actor auth.Actor, id string) (*entity.ManufacturingOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderCancel); err != nil {
		return nil, err
	}
	unlock, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := production.NextMOStatus(mo.Status, production.MOEventCancel)
	if err != nil {
		return nil, err
	}
	if mo.Status == entity.MOStatusConfirmed {
		if err := uc.compensate(ctx, mo, actor); err != nil {
			return nil, err
		}
	}
	if err := uc.close(ctx, mo, next, false); err != nil {
		return nil, err
	}
	uc.log.Info().Str("mo_id", mo.ID).Msg("orden cancelada")
	return mo, nil
}

// Abort anula una orden IN_PROGRESS devolviendo al stock cada materia prima consumida, al costo
// con que salió. Requiere que ninguna orden de trabajo esté en ejecución; las pendientes se cancelan.
func (uc *OrderUseCase) Abort(ctx context.Context, actor auth.Actor, id string) (*entity.ManufacturingOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderAbort); err != nil {
		return nil, err
	}
	unlock, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := production.NextMOStatus(mo.Status, production.MOEventAbort)
	if err != nil {
		return nil, err
	}
	wos, err := uc.repos.WorkOrders.ListByOrder(ctx, mo.ID)
	if err != nil {
		return nil, err
	}
	for _, wo := range wos {
		if wo.Status == entity.WOStatusRunning {
			return nil, fmt.Errorf("%w: la orden de trabajo %d (%s) está en ejecución",
				domain.ErrInvalidTransition, wo.Sequence, wo.Name)
		}
	}

	work := context.WithoutCancel(ctx)
	entries, err := uc.poster.ByReference(work, consumeRef(mo.ID, mo.ConsumptionAttempt))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.TransactionType != entity.TransactionTypeOUT {
			continue
		}
		cost := e.UnitCost
		if _, err := uc.poster.Apply(work, dto.PostEntryRequest{
			ProductID:       e.ProductID,
			TransactionType: entity.TransactionTypeIN,
			Quantity:        e.Quantity,
			UnitCost:        &cost,
			Reference:       abortRef(mo.ID),
			CreatedBy:       actor.UserID,
		}); err != nil {
			return nil, fmt.Errorf("reversa de %s: %w", e.ProductID, err)
		}
	}

	if err := uc.close(work, mo, next, true); err != nil {
		return nil, err
	}
	uc.log.Warn().Str("mo_id", mo.ID).Int("reversed", len(entries)).Msg("orden abortada con reversa de consumos")
	return mo, nil
}

// abortPending falla si un Abort anterior registró reversas sin llegar a cerrar la orden: el
// material ya volvió al stock y la única salida es reintentar Abort.
func (uc *OrderUseCase) abortPending(ctx context.Context, mo *entity.ManufacturingOrder) error {
	reversed, err := uc.poster.ByReference(ctx, abortRef(mo.ID))
	if err != nil {
		return err
	}
	if len(reversed) > 0 {
		return fmt.Errorf("%w: la orden %s tiene un abort incompleto, reintente Abort",
			domain.ErrInvalidTransition, mo.Reference)
	}
	return nil
}

// close deja la orden en CANCELLED y cancela las órdenes de trabajo pendientes en la misma tx.
func (uc *OrderUseCase) close(ctx context.Context, mo *entity.ManufacturingOrder, status entity.MOStatus, aborted bool) error {
	now := uc.now()
	return uc.tx.Run(ctx, func(r repository.Repositories) error {
		wos, err := r.WorkOrders.ListByOrder(ctx, mo.ID)
		if err != nil {
			return err
		}
		for _, wo := range wos {
			if wo.Status != entity.WOStatusPending {
				continue
			}
			wo.Status = entity.WOStatusCancelled
			wo.CancelledAt = &now
			wo.UpdatedAt = now
			if err := r.WorkOrders.Update(ctx, wo); err != nil {
				return err
			}
		}
		mo.Status = status
		mo.Aborted = aborted
		mo.CancelledAt = &now
		mo.UpdatedAt = now
		return r.Orders.Update(ctx, mo)
	})
}

// compensate devuelve con un IN cada OUT del intento vigente. Idempotente por referencia.
func (uc *OrderUseCase) compensate(ctx context.Context, mo *entity.ManufacturingOrder, actor auth.Actor) error {
	entries, err := uc.poster.ByReference(ctx, consumeRef(mo.ID, mo.ConsumptionAttempt))
	if err != nil {
		return err
	}
	ref := compensateRef(mo.ID, mo.ConsumptionAttempt)
	var errs []error
	for _, e := range entries {
		if e.TransactionType != entity.TransactionTypeOUT {
			continue
		}
		cost := e.UnitCost
		if _, err := uc.poster.Apply(ctx, dto.PostEntryRequest{
			ProductID:       e.ProductID,
			TransactionType: entity.TransactionTypeIN,
			Quantity:        e.Quantity,
			UnitCost:        &cost,
			Reference:       ref,
			CreatedBy:       actor.UserID,
		}); err != nil {
			errs = append(errs, fmt.Errorf("compensar %s: %w", e.ProductID, err))
		}
	}
	return errors.Join(errs...)
}

// nextAttempt abre un intento de consumo nuevo tras compensar por completo el anterior.
func (uc *OrderUseCase) nextAttempt(ctx context.Context, mo *entity.ManufacturingOrder) error {
	mo.ConsumptionAttempt++
	mo.UpdatedAt = uc.now()
	if err := uc.repos.Orders.Update(ctx, mo); err != nil {
		mo.ConsumptionAttempt--
		return err
	}
	return nil
}

// consumedEntries OUT ya registrados en el intento vigente, por producto.
func (uc *OrderUseCase) consumedEntries(ctx context.Context, mo *entity.ManufacturingOrder) (map[string]entity.StockEntry, error) {
	entries, err := uc.poster.ByReference(ctx, consumeRef(mo.ID, mo.ConsumptionAttempt))
	if err != nil {
		return nil, err
	}
	out := make(map[string]entity.StockEntry, len(entries))
	for _, e := range entries {
		if e.TransactionType == entity.TransactionTypeOUT {
			out[e.ProductID] = e
		}
	}
	return out, nil
}

// checkStock reporta el primer requerimiento que el stock cacheado no cubre.
func (uc *OrderUseCase) checkStock(ctx context.Context, reqs []entity.MaterialRequirement) error {
	for _, req := range reqs {
		p, err := uc.repos.Products.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("materia prima %s: %w", req.ProductID, domain.ErrNotFound)
		}
		if p.CurrentStock.LessThan(req.Quantity) {
			return &domain.ShortfallError{ProductID: p.ID, Required: req.Quantity, Available: p.CurrentStock}
		}
	}
	return nil
}
