// Package setup carga un documento de seed: catálogo, stock de apertura, centros de trabajo y BOMs.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/bom"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Report conteo de lo que el seed creó en esta corrida.
type Report struct {
	ProductsCreated    int
	WorkCentersCreated int
	BOMsCreated        int
	OpeningPosted      int
}

// Seeder aplica un seed contra los casos de uso. Es idempotente: los productos y centros se buscan
// por nombre, el stock de apertura usa la referencia OPENING:<nombre> y una BOM solo se crea si
// difiere de la versión activa.
type Seeder struct {
	products *usecase.ProductUseCase
	centers  *usecase.WorkCenterUseCase
	boms     *bom.UseCase
	ledger   *inventory.LedgerUseCase
	log      zerolog.Logger
}

// NewSeeder construye el seeder.
func NewSeeder(products *usecase.ProductUseCase, centers *usecase.WorkCenterUseCase, boms *bom.UseCase, ledger *inventory.LedgerUseCase, log zerolog.Logger) *Seeder {
	return &Seeder{
		products: products,
		centers:  centers,
		boms:     boms,
		ledger:   ledger,
		log:      log,
	}
}

// OpeningReference referencia del asiento de apertura de un producto.
func OpeningReference(name string) string {
	return "OPENING:" + domain.NameKey(name)
}

// Apply carga el seed completo con el actor indicado (normalmente auth.System).
func (s *Seeder) Apply(ctx context.Context, actor auth.Actor, seed *config.Seed) (*Report, error) {
	rep := &Report{}
	ids := make(map[string]string, len(seed.Products))

	for _, sp := range seed.Products {
		id, created, err := s.ensureProduct(ctx, actor, sp)
		if err != nil {
			return rep, fmt.Errorf("producto %q: %w", sp.Name, err)
		}
		ids[domain.NameKey(sp.Name)] = id
		if created {
			rep.ProductsCreated++
		}
		posted, err := s.opening(ctx, actor, id, sp)
		if err != nil {
			return rep, fmt.Errorf("apertura %q: %w", sp.Name, err)
		}
		if posted {
			rep.OpeningPosted++
		}
	}

	for _, sw := range seed.WorkCenters {
		created, err := s.ensureWorkCenter(ctx, actor, sw)
		if err != nil {
			return rep, fmt.Errorf("centro de trabajo %q: %w", sw.Name, err)
		}
		if created {
			rep.WorkCentersCreated++
		}
	}

	for _, sb := range seed.BOMs {
		created, err := s.ensureBOM(ctx, actor, ids, sb)
		if err != nil {
			return rep, fmt.Errorf("BOM de %q: %w", sb.Product, err)
		}
		if created {
			rep.BOMsCreated++
		}
	}

	s.log.Info().
		Int("products", rep.ProductsCreated).
		Int("work_centers", rep.WorkCentersCreated).
		Int("boms", rep.BOMsCreated).
		Int("opening", rep.OpeningPosted).
		Msg("seed aplicado")
	return rep, nil
}

func (s *Seeder) ensureProduct(ctx context.Context, actor auth.Actor, sp config.SeedProduct) (string, bool, error) {
	existing, err := s.products.GetByName(ctx, sp.Name)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, err
	}
	cost, err := parseDecimal("unit_cost", sp.UnitCost)
	if err != nil {
		return "", false, err
	}
	p, err := s.products.Create(ctx, actor, dto.CreateProductRequest{
		Name:          sp.Name,
		Type:          strings.ToUpper(sp.Type),
		UnitOfMeasure: sp.UnitOfMeasure,
		UnitCost:      cost,
	})
	if err != nil {
		return "", false, err
	}
	return p.ID, true, nil
}

func (s *Seeder) opening(ctx context.Context, actor auth.Actor, productID string, sp config.SeedProduct) (bool, error) {
	qty, err := parseDecimal("opening_stock", sp.OpeningStock)
	if err != nil {
		return false, err
	}
	if qty.IsZero() {
		return false, nil
	}
	res, err := s.ledger.Post(ctx, actor, dto.PostEntryRequest{
		ProductID:       productID,
		TransactionType: entity.TransactionTypeIN,
		Quantity:        qty,
		Reference:       OpeningReference(sp.Name),
	})
	if err != nil {
		return false, err
	}
	return !res.Duplicate, nil
}

func (s *Seeder) ensureWorkCenter(ctx context.Context, actor auth.Actor, sw config.SeedWorkCenter) (bool, error) {
	_, err := s.centers.GetByName(ctx, sw.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	rate, err := parseDecimal("cost_per_hour", sw.CostPerHour)
	if err != nil {
		return false, err
	}
	capacity := sw.Capacity
	if capacity == 0 {
		capacity = 1
	}
	_, err = s.centers.Create(ctx, actor, dto.CreateWorkCenterRequest{Name: sw.Name, Capacity: capacity, CostPerHour: rate})
	return err == nil, err
}

func (s *Seeder) ensureBOM(ctx context.Context, actor auth.Actor, ids map[string]string, sb config.SeedBOM) (bool, error) {
	productID, err := s.resolve(ctx, ids, sb.Product)
	if err != nil {
		return false, err
	}
	inputs := make([]dto.BOMComponentInput, 0, len(sb.Components))
	for _, c := range sb.Components {
		id, err := s.resolve(ctx, ids, c.Product)
		if err != nil {
			return false, err
		}
		qty, err := parseDecimal("quantity", c.Quantity)
		if err != nil {
			return false, err
		}
		inputs = append(inputs, dto.BOMComponentInput{ProductID: id, Quantity: qty, Unit: c.Unit})
	}

	active, err := s.boms.Get(ctx, productID, 0)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if active != nil && sameComponents(active.Components, inputs) {
		return false, nil
	}
	_, err = s.boms.Create(ctx, actor, dto.CreateBOMRequest{ProductID: productID, Components: inputs})
	return err == nil, err
}

func (s *Seeder) resolve(ctx context.Context, ids map[string]string, name string) (string, error) {
	if id, ok := ids[domain.NameKey(name)]; ok {
		return id, nil
	}
	p, err := s.products.GetByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("producto %q: %w", name, err)
	}
	ids[domain.NameKey(name)] = p.ID
	return p.ID, nil
}

func sameComponents(current []entity.BOMComponent, inputs []dto.BOMComponentInput) bool {
	if len(current) != len(inputs) {
		return false
	}
	for i, c := range current {
		if c.ComponentProductID != inputs[i].ProductID || !c.Quantity.Equal(inputs[i].Quantity) {
			return false
		}
	}
	return true
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, fmt.Sprintf("decimal inválido %q", raw))
	}
	return v, nil
}
