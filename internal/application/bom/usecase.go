// Package bom administra las listas de materiales versionadas y expone costeo y explosión
// sobre el grafo de componentes.
package bom

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	graph "github.com/jhoicas/Produccion-api/internal/domain/bom"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UseCase casos de uso de BOM. Las escrituras toman el lock del grafo y validan ciclos dentro de la tx.
type UseCase struct {
	repos  repository.Repositories
	tx     ports.TxRunner
	locker ports.Locker
	authz  auth.Authorizer
	log    zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repos repository.Repositories, tx ports.TxRunner, locker ports.Locker, authz auth.Authorizer, log zerolog.Logger) *UseCase {
	return &UseCase{
		repos:  repos,
		tx:     tx,
		locker: locker,
		authz:  authz,
		log:    log.With().Str("component", "bom").Logger(),
	}
}

// Create registra una nueva versión (última + 1) y la deja activa.
// Falla con *domain.CycleError si el producto aparece, directa o transitivamente, entre sus componentes.
func (uc *UseCase) Create(ctx context.Context, actor auth.Actor, in dto.CreateBOMRequest) (*entity.BOM, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpBOMCreate); err != nil {
		return nil, err
	}
	if len(in.Components) == 0 {
		return nil, domain.NewValidationError("components", "la lista de materiales no puede estar vacía")
	}

	unlock, err := uc.locker.Lock(ctx, ports.BOMGraphKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created *entity.BOM
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !entity.Manufacturable(product.Type) {
			return domain.NewValidationError("product_id", "solo productos semielaborados o terminados tienen BOM")
		}
		if product.Retired() {
			return domain.NewValidationError("product_id", "producto dado de baja")
		}

		components, err := buildComponents(ctx, r, in.Components)
		if err != nil {
			return err
		}
		if err := graph.DetectCycle(ctx, repoSource{r}, product.ID, components); err != nil {
			return err
		}

		latest, err := r.BOMs.LatestVersion(ctx, product.ID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		b := &entity.BOM{
			ProductID:  product.ID,
			Version:    latest + 1,
			Components: components,
			CreatedBy:  actor.UserID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.BOMs.Create(ctx, b); err != nil {
			return err
		}
		if err := r.BOMs.SetActive(ctx, b.ProductID, b.Version); err != nil {
			return err
		}
		b.Active = true
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", created.ProductID).
		Int("version", created.Version).
		Int("components", len(created.Components)).
		Msg("BOM creada")
	return created, nil
}

// Activate cambia la versión activa del producto. Vuelve a validar ciclos contra el grafo actual.
func (uc *UseCase) Activate(ctx context.Context, actor auth.Actor, productID string, version int) (*entity.BOM, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpBOMActivate); err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.BOMGraphKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var activated *entity.BOM
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		b, err := r.BOMs.Get(ctx, productID, version)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if err := graph.DetectCycle(ctx, repoSource{r}, productID, b.Components); err != nil {
			return err
		}
		if err := r.BOMs.SetActive(ctx, productID, version); err != nil {
			return err
		}
		b.Active = true
		activated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Int("version", version).Msg("BOM activada")
	return activated, nil
}

// ReplaceComponents reescribe los componentes de una versión que ninguna orden confirmada referencia.
// Una versión bloqueada devuelve ErrConflict: los cambios van en una versión nueva.
func (uc *UseCase) ReplaceComponents(ctx context.Context, actor auth.Actor, productID string, version int, inputs []dto.BOMComponentInput) (*entity.BOM, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpBOMReplace); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("components", "la lista de materiales no puede estar vacía")
	}
	unlock, err := uc.locker.Lock(ctx, ports.BOMGraphKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *entity.BOM
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		b, err := r.BOMs.Get(ctx, productID, version)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if b.Locked {
			return fmt.Errorf("%w: BOM %s v%d referenciada por una orden confirmada", domain.ErrConflict, productID, version)
		}
		components, err := buildComponents(ctx, r, inputs)
		if err != nil {
			return err
		}
		if err := graph.DetectCycle(ctx, repoSource{r}, productID, components); err != nil {
			return err
		}
		if err := r.BOMs.ReplaceComponents(ctx, productID, version, components); err != nil {
			return err
		}
		b.Components = components
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get devuelve una versión; version 0 = la activa.
func (uc *UseCase) Get(ctx context.Context, productID string, version int) (*entity.BOM, error) {
	var (
		b   *entity.BOM
		err error
	)
	if version == 0 {
		b, err = uc.repos.BOMs.GetActive(ctx, productID)
	} else {
		b, err = uc.repos.BOMs.Get(ctx, productID, version)
	}
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// List devuelve todas las versiones del producto.
func (uc *UseCase) List(ctx context.Context, productID string) ([]*entity.BOM, error) {
	return uc.repos.BOMs.ListByProduct(ctx, productID)
}

// ResolveCost costo unitario multinivel de la versión indicada. Los subensambles usan su BOM activa
// y las hojas el costo vigente del catálogo.
func (uc *UseCase) ResolveCost(ctx context.Context, productID string, version int) (decimal.Decimal, error) {
	b, err := uc.Get(ctx, productID, version)
	if err != nil {
		return decimal.Zero, err
	}
	return graph.RollupCost(ctx, repoSource{uc.repos}, productID, b.Components)
}

// Explode requerimientos de hojas para producir quantity unidades con la BOM activa.
func (uc *UseCase) Explode(ctx context.Context, productID string, quantity decimal.Decimal) ([]entity.MaterialRequirement, error) {
	return uc.ExplodeVersion(ctx, productID, 0, quantity)
}

// ExplodeVersion igual que Explode pero con una versión fija del primer nivel (0 = activa).
func (uc *UseCase) ExplodeVersion(ctx context.Context, productID string, version int, quantity decimal.Decimal) ([]entity.MaterialRequirement, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que 0")
	}
	b, err := uc.Get(ctx, productID, version)
	if err != nil {
		return nil, err
	}
	return graph.Explode(ctx, repoSource{uc.repos}, productID, b.Components, quantity)
}

// CostBreakdown costo total estimado y requerimientos de hojas para quantity unidades.
func (uc *UseCase) CostBreakdown(ctx context.Context, productID string, version int, quantity decimal.Decimal) (decimal.Decimal, []entity.MaterialRequirement, error) {
	reqs, err := uc.ExplodeVersion(ctx, productID, version, quantity)
	if err != nil {
		return decimal.Zero, nil, err
	}
	unit, err := uc.ResolveCost(ctx, productID, version)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return inventory.LineValue(quantity, unit), reqs, nil
}

func buildComponents(ctx context.Context, r repository.Repositories, inputs []dto.BOMComponentInput) ([]entity.BOMComponent, error) {
	seen := make(map[string]bool, len(inputs))
	out := make([]entity.BOMComponent, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("components[%d]", i)
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que 0")
		}
		if seen[in.ProductID] {
			return nil, domain.NewValidationError(field+".product_id", "componente repetido")
		}
		seen[in.ProductID] = true

		p, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("componente %s: %w", in.ProductID, domain.ErrNotFound)
		}
		if p.Retired() {
			return nil, domain.NewValidationError(field+".product_id", "producto dado de baja")
		}
		unit := in.Unit
		if unit == "" {
			unit = p.UnitOfMeasure
		}
		out = append(out, entity.BOMComponent{
			Line:               i + 1,
			ComponentProductID: p.ID,
			Quantity:           in.Quantity,
			Unit:               unit,
			Cost:               p.UnitCost,
			Total:              inventory.LineValue(in.Quantity, p.UnitCost),
		})
	}
	return out, nil
}
