package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.ManufacturingOrderRepository = (*ManufacturingOrderRepo)(nil)
	_ repository.WorkOrderRepository          = (*WorkOrderRepo)(nil)
)

const moColumns = `id, reference, product_id, quantity, bom_version, status, requirements, consumption_attempt, aborted,
	created_by, created_at, confirmed_at, started_at, completed_at, cancelled_at, updated_at`

// ManufacturingOrderRepo órdenes de fabricación. Los requerimientos congelados viven en una columna JSONB.
type ManufacturingOrderRepo struct {
	q Querier
}

// NewManufacturingOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewManufacturingOrderRepository(q Querier) *ManufacturingOrderRepo {
	return &ManufacturingOrderRepo{q: q}
}

// Create inserta la MO; ErrDuplicateName si la referencia ya existe.
func (r *ManufacturingOrderRepo) Create(ctx context.Context, mo *entity.ManufacturingOrder) error {
	reqs, err := marshalRequirements(mo.Requirements)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO manufacturing_orders (`+moColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		mo.ID, mo.Reference, mo.ProductID, mo.Quantity, mo.BOMVersion, string(mo.Status), reqs,
		mo.ConsumptionAttempt, mo.Aborted, mo.CreatedBy, mo.CreatedAt,
		mo.ConfirmedAt, mo.StartedAt, mo.CompletedAt, mo.CancelledAt, mo.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert manufacturing order: %w", err)
	}
	return nil
}

// GetByID obtiene la MO; nil si no existe.
func (r *ManufacturingOrderRepo) GetByID(ctx context.Context, id string) (*entity.ManufacturingOrder, error) {
	return r.getOne(ctx, `SELECT `+moColumns+` FROM manufacturing_orders WHERE id = $1`, id)
}

// GetByReference obtiene la MO por su referencia legible.
func (r *ManufacturingOrderRepo) GetByReference(ctx context.Context, reference string) (*entity.ManufacturingOrder, error) {
	return r.getOne(ctx, `SELECT `+moColumns+` FROM manufacturing_orders WHERE reference = $1`, reference)
}

func (r *ManufacturingOrderRepo) getOne(ctx context.Context, query string, arg any) (*entity.ManufacturingOrder, error) {
	mo, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manufacturing order: %w", err)
	}
	return mo, nil
}

// Update persiste estado, requerimientos, intento y fechas.
func (r *ManufacturingOrderRepo) Update(ctx context.Context, mo *entity.ManufacturingOrder) error {
	reqs, err := marshalRequirements(mo.Requirements)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE manufacturing_orders SET
			status = $2, requirements = $3, consumption_attempt = $4, aborted = $5,
			confirmed_at = $6, started_at = $7, completed_at = $8, cancelled_at = $9, updated_at = $10
		WHERE id = $1`,
		mo.ID, string(mo.Status), reqs, mo.ConsumptionAttempt, mo.Aborted,
		mo.ConfirmedAt, mo.StartedAt, mo.CompletedAt, mo.CancelledAt, mo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update manufacturing order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List MO por fecha de alta; status vacío = todas.
func (r *ManufacturingOrderRepo) List(ctx context.Context, status entity.MOStatus, limit, offset int) ([]*entity.ManufacturingOrder, error) {
	lim, off := limitOffset(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+moColumns+` FROM manufacturing_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, string(status), lim, off)
	if err != nil {
		return nil, fmt.Errorf("list manufacturing orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ManufacturingOrder
	for rows.Next() {
		mo, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manufacturing order: %w", err)
		}
		list = append(list, mo)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.ManufacturingOrder, error) {
	var (
		mo     entity.ManufacturingOrder
		status string
		reqs   []byte
	)
	err := row.Scan(
		&mo.ID, &mo.Reference, &mo.ProductID, &mo.Quantity, &mo.BOMVersion, &status, &reqs,
		&mo.ConsumptionAttempt, &mo.Aborted, &mo.CreatedBy, &mo.CreatedAt,
		&mo.ConfirmedAt, &mo.StartedAt, &mo.CompletedAt, &mo.CancelledAt, &mo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mo.Status = entity.MOStatus(status)
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &mo.Requirements); err != nil {
			return nil, fmt.Errorf("decode requirements: %w", err)
		}
	}
	return &mo, nil
}

func marshalRequirements(reqs []entity.MaterialRequirement) ([]byte, error) {
	if reqs == nil {
		reqs = []entity.MaterialRequirement{}
	}
	b, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("encode requirements: %w", err)
	}
	return b, nil
}

const woColumns = `id, manufacturing_order_id, sequence, name, work_center_id, status, operator,
	planned_duration_minutes, actual_duration_minutes, started_at, completed_at, cancelled_at, created_at, updated_at`

// WorkOrderRepo órdenes de trabajo de cada MO.
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

// Create inserta la WO.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *entity.WorkOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO work_orders (`+woColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		wo.ID, wo.ManufacturingOrderID, wo.Sequence, wo.Name, wo.WorkCenterID, string(wo.Status), wo.Operator,
		wo.PlannedDurationMinutes, wo.ActualDurationMinutes, wo.StartedAt, wo.CompletedAt, wo.CancelledAt,
		wo.CreatedAt, wo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

// GetByID obtiene la WO; nil si no existe.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	wo, err := scanWorkOrder(r.q.QueryRow(ctx, `SELECT `+woColumns+` FROM work_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

// ListByOrder WO de una MO ordenadas por secuencia.
func (r *WorkOrderRepo) ListByOrder(ctx context.Context, manufacturingOrderID string) ([]*entity.WorkOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+woColumns+` FROM work_orders
		WHERE manufacturing_order_id = $1
		ORDER BY sequence`, manufacturingOrderID)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}

// Update persiste estado, centro, operador, duraciones y fechas.
func (r *WorkOrderRepo) Update(ctx context.Context, wo *entity.WorkOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE work_orders SET
			work_center_id = $2, status = $3, operator = $4, actual_duration_minutes = $5,
			started_at = $6, completed_at = $7, cancelled_at = $8, updated_at = $9
		WHERE id = $1`,
		wo.ID, wo.WorkCenterID, string(wo.Status), wo.Operator, wo.ActualDurationMinutes,
		wo.StartedAt, wo.CompletedAt, wo.CancelledAt, wo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountRunning cantidad de WO en RUNNING del centro.
func (r *WorkOrderRepo) CountRunning(ctx context.Context, workCenterID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM work_orders WHERE work_center_id = $1 AND status = $2`,
		workCenterID, string(entity.WOStatusRunning)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count running work orders: %w", err)
	}
	return n, nil
}

func scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var (
		wo     entity.WorkOrder
		status string
	)
	err := row.Scan(
		&wo.ID, &wo.ManufacturingOrderID, &wo.Sequence, &wo.Name, &wo.WorkCenterID, &status, &wo.Operator,
		&wo.PlannedDurationMinutes, &wo.ActualDurationMinutes, &wo.StartedAt, &wo.CompletedAt, &wo.CancelledAt,
		&wo.CreatedAt, &wo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	wo.Status = entity.WOStatus(status)
	return &wo, nil
}
