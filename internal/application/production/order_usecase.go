// Package production implementa el ciclo de vida de órdenes de fabricación y sus órdenes de trabajo:
// confirmación contra stock, consumo de materias primas con compensación, producción y anulación.
package production

import (
	"context"
	"errors"
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
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderUseCase motor del ciclo de vida. Toda transición de una orden, y toda operación sobre
// sus órdenes de trabajo, corre bajo el lock de esa orden.
type OrderUseCase struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	locker  ports.Locker
	poster  StockPoster
	boms    BOMService
	centers Capacity
	authz   auth.Authorizer
	log     zerolog.Logger
	now     func() time.Time
}

// NewOrderUseCase construye el motor.
func NewOrderUseCase(
	repos repository.Repositories,
	tx ports.TxRunner,
	locker ports.Locker,
	poster StockPoster,
	boms BOMService,
	centers Capacity,
	authz auth.Authorizer,
	log zerolog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repos:   repos,
		tx:      tx,
		locker:  locker,
		poster:  poster,
		boms:    boms,
		centers: centers,
		authz:   authz,
		log:     log.With().Str("component", "production").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create registra la orden en DRAFT con sus órdenes de trabajo en PENDING.
// La versión de BOM es la activa del producto al momento de crear.
func (uc *OrderUseCase) Create(ctx context.Context, actor auth.Actor, in dto.CreateOrderRequest) (*dto.OrderDetail, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpOrderCreate); err != nil {
		return nil, err
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que 0")
	}
	if len(in.Operations) == 0 {
		return nil, domain.NewValidationError("operations", "la orden necesita al menos una orden de trabajo")
	}

	product, err := uc.repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Retired() {
		return nil, domain.NewValidationError("product_id", "producto dado de baja")
	}
	if !entity.Manufacturable(product.Type) {
		return nil, domain.NewValidationError("product_id", "el producto no es fabricable")
	}
	bom, err := uc.boms.Get(ctx, product.ID, 0)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("product_id", "el producto no tiene BOM activa")
	}
	if err != nil {
		return nil, err
	}

	for i, op := range in.Operations {
		if strings.TrimSpace(op.Name) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("operations[%d].name", i), "obligatorio")
		}
		if op.PlannedDurationMinutes < 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("operations[%d].planned_duration_minutes", i), "no puede ser negativo")
		}
		wc, err := uc.repos.WorkCenters.GetByID(ctx, op.WorkCenterID)
		if err != nil {
			return nil, err
		}
		if wc == nil {
			return nil, fmt.Errorf("centro de trabajo %s: %w", op.WorkCenterID, domain.ErrNotFound)
		}
	}

	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		reference = "MO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}

	now := uc.now()
	mo := &entity.ManufacturingOrder{
		ID:         uuid.New().String(),
		Reference:  reference,
		ProductID:  product.ID,
		Quantity:   in.Quantity,
		BOMVersion: bom.Version,
		Status:     entity.MOStatusDraft,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	wos := make([]entity.WorkOrder, 0, len(in.Operations))
	for i, op := range in.Operations {
		wos = append(wos, entity.WorkOrder{
			ID:                     uuid.New().String(),
			ManufacturingOrderID:   mo.ID,
			Sequence:               i + 1,
			Name:                   strings.TrimSpace(op.Name),
			WorkCenterID:           op.WorkCenterID,
			Status:                 entity.WOStatusPending,
			PlannedDurationMinutes: op.PlannedDurationMinutes,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	}

	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		existing, err := r.Orders.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateName
		}
		if err := r.Orders.Create(ctx, mo); err != nil {
			return err
		}
		for i := range wos {
			if err := r.WorkOrders.Create(ctx, &wos[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("mo_id", mo.ID).
		Str("reference", mo.Reference).
		Str("product_id", mo.ProductID).
		Int("bom_version", mo.BOMVersion).
		Msg("orden de fabricación creada")
	return &dto.OrderDetail{Order: *mo, WorkOrders: wos}, nil
}

// Get devuelve la orden con sus órdenes de trabajo.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderDetail, error) {
	mo, err := uc.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	wos, err := uc.repos.WorkOrders.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &dto.OrderDetail{Order: *mo, WorkOrders: make([]entity.WorkOrder, 0, len(wos))}
	for _, wo := range wos {
		detail.WorkOrders = append(detail.WorkOrders, *wo)
	}
	return detail, nil
}

// GetByReference busca por la referencia legible (MO-XXXXXXXX).
func (uc *OrderUseCase) GetByReference(ctx context.Context, reference string) (*dto.OrderDetail, error) {
	mo, err := uc.repos.Orders.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if mo == nil {
		return nil, domain.ErrNotFound
	}
	return uc.Get(ctx, mo.ID)
}

// List status vacío = todas.
func (uc *OrderUseCase) List(ctx context.Context, status entity.MOStatus, page dto.PageRequest) ([]*entity.ManufacturingOrder, error) {
	page.DefaultPage()
	return uc.repos.Orders.List(ctx, status, page.Limit, page.Offset)
}

func (uc *OrderUseCase) loadOrder(ctx context.Context, id string) (*entity.ManufacturingOrder, error) {
	mo, err := uc.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mo == nil {
		return nil, domain.ErrNotFound
	}
	return mo, nil
}

func (uc *OrderUseCase) lockOrder(ctx context.Context, id string) (func(), error) {
	return uc.locker.Lock(ctx, ports.OrderKey(id))
}
