package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// WorkCenterUseCase registro de centros de trabajo y asignación de órdenes de trabajo según capacidad.
// La ocupación se deriva de las WO en RUNNING, por lo que liberar es implícito al completar o cancelar.
type WorkCenterUseCase struct {
	repos  repository.Repositories
	tx     ports.TxRunner
	locker ports.Locker
	authz  auth.Authorizer
}

// NewWorkCenterUseCase construye el caso de uso.
func NewWorkCenterUseCase(repos repository.Repositories, tx ports.TxRunner, locker ports.Locker, authz auth.Authorizer) *WorkCenterUseCase {
	return &WorkCenterUseCase{repos: repos, tx: tx, locker: locker, authz: authz}
}

// Create registra un centro de trabajo ACTIVE.
func (uc *WorkCenterUseCase) Create(ctx context.Context, actor auth.Actor, in dto.CreateWorkCenterRequest) (*entity.WorkCenter, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpWorkCenterCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "obligatorio")
	}
	if in.Capacity < 1 {
		return nil, domain.NewValidationError("capacity", "debe ser al menos 1")
	}
	if in.CostPerHour.LessThan(decimal.Zero) {
		return nil, domain.NewValidationError("cost_per_hour", "no puede ser negativo")
	}
	key := domain.NameKey(name)
	existing, err := uc.repos.WorkCenters.GetByNameKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}
	now := time.Now().UTC()
	wc := &entity.WorkCenter{
		ID:          uuid.New().String(),
		Name:        name,
		NameKey:     key,
		Capacity:    in.Capacity,
		CostPerHour: in.CostPerHour,
		Status:      entity.WorkCenterActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repos.WorkCenters.Create(ctx, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

// GetByID obtiene un centro de trabajo; ErrNotFound si no existe.
func (uc *WorkCenterUseCase) GetByID(ctx context.Context, id string) (*entity.WorkCenter, error) {
	wc, err := uc.repos.WorkCenters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wc == nil {
		return nil, domain.ErrNotFound
	}
	return wc, nil
}

// GetByName busca por nombre normalizado.
func (uc *WorkCenterUseCase) GetByName(ctx context.Context, name string) (*entity.WorkCenter, error) {
	wc, err := uc.repos.WorkCenters.GetByNameKey(ctx, domain.NameKey(name))
	if err != nil {
		return nil, err
	}
	if wc == nil {
		return nil, domain.ErrNotFound
	}
	return wc, nil
}

// List lista centros de trabajo con paginación.
func (uc *WorkCenterUseCase) List(ctx context.Context, page dto.PageRequest) ([]*entity.WorkCenter, error) {
	page.DefaultPage()
	return uc.repos.WorkCenters.List(ctx, page.Limit, page.Offset)
}

// SetStatus activa o inactiva el centro. Las WO que ya corren no se interrumpen.
func (uc *WorkCenterUseCase) SetStatus(ctx context.Context, actor auth.Actor, id, status string) (*entity.WorkCenter, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpWorkCenterStatus); err != nil {
		return nil, err
	}
	if status != entity.WorkCenterActive && status != entity.WorkCenterInactive {
		return nil, domain.NewValidationError("status", "debe ser ACTIVE o INACTIVE")
	}
	unlock, err := uc.locker.Lock(ctx, ports.WorkCenterKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	wc, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wc.Status = status
	wc.UpdatedAt = time.Now().UTC()
	if err := uc.repos.WorkCenters.Update(ctx, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

// Utilization cantidad de WO en RUNNING frente a la capacidad.
func (uc *WorkCenterUseCase) Utilization(ctx context.Context, id string) (*dto.WorkCenterUtilization, error) {
	wc, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	running, err := uc.repos.WorkOrders.CountRunning(ctx, id)
	if err != nil {
		return nil, err
	}
	available := wc.Capacity - running
	if available < 0 {
		available = 0
	}
	return &dto.WorkCenterUtilization{
		WorkCenterID: id,
		Running:      running,
		Capacity:     wc.Capacity,
		Available:    available,
	}, nil
}

// Assign pone la WO en RUNNING en su centro de trabajo. Falla con ErrCapacityExceeded cuando las WO
// en RUNNING del centro igualan su capacidad. El conteo y la actualización van bajo el lock del centro
// y en la misma transacción.
func (uc *WorkCenterUseCase) Assign(ctx context.Context, workCenterID string, wo *entity.WorkOrder) error {
	unlock, err := uc.locker.Lock(ctx, ports.WorkCenterKey(workCenterID))
	if err != nil {
		return err
	}
	defer unlock()

	running := *wo
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		wc, err := r.WorkCenters.GetByID(ctx, workCenterID)
		if err != nil {
			return err
		}
		if wc == nil {
			return domain.ErrNotFound
		}
		if wc.Status != entity.WorkCenterActive {
			return domain.NewValidationError("work_center_id", fmt.Sprintf("centro %s inactivo", wc.Name))
		}
		busy, err := r.WorkOrders.CountRunning(ctx, workCenterID)
		if err != nil {
			return err
		}
		if busy >= wc.Capacity {
			return fmt.Errorf("%w: %s (%d/%d)", domain.ErrCapacityExceeded, wc.Name, busy, wc.Capacity)
		}
		running.WorkCenterID = workCenterID
		running.Status = entity.WOStatusRunning
		return r.WorkOrders.Update(ctx, &running)
	})
	if err != nil {
		return err
	}
	*wo = running
	return nil
}

// Release es implícito: la ocupación se calcula desde las WO en RUNNING. Persiste el estado final de la WO.
func (uc *WorkCenterUseCase) Release(ctx context.Context, wo *entity.WorkOrder) error {
	if wo.Status == entity.WOStatusRunning {
		return domain.NewValidationError("status", "la orden de trabajo sigue en ejecución")
	}
	return uc.repos.WorkOrders.Update(ctx, wo)
}
