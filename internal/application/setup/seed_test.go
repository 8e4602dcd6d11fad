package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/bom"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/setup"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetSeed() *config.Seed {
	return &config.Seed{
		Products: []config.SeedProduct{
			{Name: "Steel Rod", Type: "raw_material", UnitCost: "5.50", OpeningStock: "1000"},
			{Name: "Industrial Widget", Type: "FINISHED_GOOD"},
		},
		WorkCenters: []config.SeedWorkCenter{{Name: "Assembly", Capacity: 2, CostPerHour: "40"}},
		BOMs: []config.SeedBOM{{
			Product:    "Industrial Widget",
			Components: []config.SeedBOMComponent{{Product: "steel rod", Quantity: "2"}},
		}},
	}
}

type deps struct {
	seeder   *setup.Seeder
	products *usecase.ProductUseCase
	boms     *bom.UseCase
	ledger   *inventory.LedgerUseCase
}

func newDeps() deps {
	store := memory.NewStore()
	repos := store.Repositories()
	tx := memory.NewTxRunner(store)
	locker := lock.NewKeyedMutex(time.Second)
	authz := auth.AllowAll{}
	log := zerolog.Nop()

	products := usecase.NewProductUseCase(repos.Products, authz)
	centers := usecase.NewWorkCenterUseCase(repos, tx, locker, authz)
	boms := bom.NewUseCase(repos, tx, locker, authz, log)
	ledger := inventory.NewLedgerUseCase(repos, tx, locker, authz, log, 0)
	return deps{
		seeder:   setup.NewSeeder(products, centers, boms, ledger, log),
		products: products,
		boms:     boms,
		ledger:   ledger,
	}
}

func TestSeeder_CargaCatalogoYApertura(t *testing.T) {
	ctx := context.Background()
	d := newDeps()

	rep, err := d.seeder.Apply(ctx, auth.System, widgetSeed())
	require.NoError(t, err)
	assert.Equal(t, setup.Report{ProductsCreated: 2, WorkCentersCreated: 1, BOMsCreated: 1, OpeningPosted: 1}, *rep)

	rod, err := d.products.GetByName(ctx, "STEEL ROD")
	require.NoError(t, err)
	assert.True(t, rod.CurrentStock.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "RAW_MATERIAL", rod.Type)

	widget, _ := d.products.GetByName(ctx, "Industrial Widget")
	cost, err := d.boms.ResolveCost(ctx, widget.ID, 0)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(11)))

	found, err := d.ledger.ByReference(ctx, setup.OpeningReference("Steel Rod"))
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSeeder_Idempotente(t *testing.T) {
	ctx := context.Background()
	d := newDeps()
	_, err := d.seeder.Apply(ctx, auth.System, widgetSeed())
	require.NoError(t, err)

	rep, err := d.seeder.Apply(ctx, auth.System, widgetSeed())
	require.NoError(t, err)
	assert.Equal(t, setup.Report{}, *rep)

	rod, _ := d.products.GetByName(ctx, "Steel Rod")
	assert.True(t, rod.CurrentStock.Equal(decimal.NewFromInt(1000)))

	// una BOM distinta crea una versión nueva
	seed := widgetSeed()
	seed.BOMs[0].Components[0].Quantity = "3"
	rep, err = d.seeder.Apply(ctx, auth.System, seed)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.BOMsCreated)
	widget, _ := d.products.GetByName(ctx, "Industrial Widget")
	active, err := d.boms.Get(ctx, widget.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, active.Version)
}

func TestSeeder_ErroresDeEntrada(t *testing.T) {
	ctx := context.Background()
	d := newDeps()

	seed := widgetSeed()
	seed.Products[0].UnitCost = "cinco"
	_, err := d.seeder.Apply(ctx, auth.System, seed)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	seed = widgetSeed()
	seed.BOMs[0].Components[0].Product = "Unobtainium"
	_, err = d.seeder.Apply(ctx, auth.System, seed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
