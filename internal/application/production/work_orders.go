package production

import (
	"context"
	"fmt"
	"math"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/production"
)

// StartWorkOrder pasa la orden de trabajo a RUNNING en su centro. Falla con ErrCapacityExceeded si
// el centro ya tiene tantas órdenes en ejecución como su capacidad. operator vacío = el actor.
func (uc *OrderUseCase) StartWorkOrder(ctx context.Context, actor auth.Actor, woID, operator string) (*entity.WorkOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpWorkOrderStart); err != nil {
		return nil, err
	}
	wo, unlock, err := uc.lockWorkOrder(ctx, woID, production.WOEventStart)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := production.NextWOStatus(wo.Status, production.WOEventStart); err != nil {
		return nil, err
	}
	if operator == "" {
		operator = actor.UserID
	}
	now := uc.now()
	wo.Operator = operator
	wo.StartedAt = &now
	wo.UpdatedAt = now
	if err := uc.centers.Assign(ctx, wo.WorkCenterID, wo); err != nil {
		return nil, err
	}
	uc.log.Info().Str("wo_id", wo.ID).Str("work_center_id", wo.WorkCenterID).Str("operator", operator).Msg("orden de trabajo iniciada")
	return wo, nil
}

// CompleteWorkOrder cierra una orden de trabajo en RUNNING y libera su lugar en el centro.
// Sin duración explícita se calcula desde StartedAt, redondeando hacia arriba a minutos.
func (uc *OrderUseCase) CompleteWorkOrder(ctx context.Context, actor auth.Actor, woID string, in dto.CompleteWorkOrderRequest) (*entity.WorkOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpWorkOrderFinish); err != nil {
		return nil, err
	}
	if in.ActualDurationMinutes < 0 {
		return nil, domain.NewValidationError("actual_duration_minutes", "no puede ser negativo")
	}
	wo, unlock, err := uc.lockWorkOrder(ctx, woID, production.WOEventComplete)
	if err != nil {
		return nil, err
	}
	defer unlock()

	next, err := production.NextWOStatus(wo.Status, production.WOEventComplete)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	actual := in.ActualDurationMinutes
	if actual == 0 && wo.StartedAt != nil {
		actual = int(math.Ceil(now.Sub(*wo.StartedAt).Minutes()))
	}
	wo.Status = next
	wo.ActualDurationMinutes = actual
	wo.CompletedAt = &now
	wo.UpdatedAt = now
	if err := uc.centers.Release(ctx, wo); err != nil {
		return nil, err
	}
	uc.log.Info().Str("wo_id", wo.ID).Int("actual_minutes", actual).Msg("orden de trabajo completada")
	return wo, nil
}

// CancelWorkOrder cancela una orden de trabajo que no llegó a iniciar.
func (uc *OrderUseCase) CancelWorkOrder(ctx context.Context, actor auth.Actor, woID string) (*entity.WorkOrder, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpWorkOrderCancel); err != nil {
		return nil, err
	}
	wo, unlock, err := uc.lockWorkOrder(ctx, woID, production.WOEventCancel)
	if err != nil {
		return nil, err
	}
	defer unlock()

	next, err := production.NextWOStatus(wo.Status, production.WOEventCancel)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	wo.Status = next
	wo.CancelledAt = &now
	wo.UpdatedAt = now
	if err := uc.centers.Release(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

// lockWorkOrder toma el lock de la orden de fabricación dueña y relee la orden de trabajo bajo el lock.
// Las órdenes de trabajo solo avanzan mientras la orden de fabricación está IN_PROGRESS.
func (uc *OrderUseCase) lockWorkOrder(ctx context.Context, woID string, ev production.WOEvent) (*entity.WorkOrder, func(), error) {
	wo, err := uc.repos.WorkOrders.GetByID(ctx, woID)
	if err != nil {
		return nil, nil, err
	}
	if wo == nil {
		return nil, nil, domain.ErrNotFound
	}
	unlock, err := uc.lockOrder(ctx, wo.ManufacturingOrderID)
	if err != nil {
		return nil, nil, err
	}
	fail := func(err error) (*entity.WorkOrder, func(), error) {
		unlock()
		return nil, nil, err
	}

	wo, err = uc.repos.WorkOrders.GetByID(ctx, woID)
	if err != nil {
		return fail(err)
	}
	mo, err := uc.loadOrder(ctx, wo.ManufacturingOrderID)
	if err != nil {
		return fail(err)
	}
	if mo.Status != entity.MOStatusInProgress {
		return fail(fmt.Errorf("%w: orden de trabajo %s con orden de fabricación en %s",
			&domain.TransitionError{Entity: "work_order", From: string(wo.Status), Event: string(ev)}, wo.ID, mo.Status))
	}
	if err := uc.abortPending(ctx, mo); err != nil {
		return fail(err)
	}
	return wo, unlock, nil
}
