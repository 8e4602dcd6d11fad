package bom_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/bom"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var actor = auth.Actor{UserID: "ing-1", Role: auth.RoleAdmin}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx      context.Context
	boms     *bom.UseCase
	products *usecase.ProductUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	return &fixture{
		ctx:      context.Background(),
		boms:     bom.NewUseCase(repos, memory.NewTxRunner(store), lock.NewKeyedMutex(time.Second), auth.AllowAll{}, zerolog.Nop()),
		products: usecase.NewProductUseCase(repos.Products, auth.AllowAll{}),
	}
}

func (f *fixture) product(t *testing.T, name, typ, cost string) string {
	t.Helper()
	p, err := f.products.Create(f.ctx, actor, dto.CreateProductRequest{Name: name, Type: typ, UnitCost: d(cost)})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) create(productID string, comps ...dto.BOMComponentInput) (*entity.BOM, error) {
	return f.boms.Create(f.ctx, actor, dto.CreateBOMRequest{ProductID: productID, Components: comps})
}

func line(id, qty string) dto.BOMComponentInput {
	return dto.BOMComponentInput{ProductID: id, Quantity: d(qty)}
}

// ── Creación y versiones ────────────────────────────────────────────────────

func TestCreate_SnapshotDeCostoYVersionActiva(t *testing.T) {
	f := newFixture(t)
	rod := f.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "5.50")
	widget := f.product(t, "Industrial Widget", entity.ProductTypeFinishedGood, "0")

	v1, err := f.create(widget, line(rod, "2"))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.True(t, v1.Active)
	require.Len(t, v1.Components, 1)
	assert.True(t, v1.Components[0].Cost.Equal(d("5.50")))
	assert.True(t, v1.Components[0].Total.Equal(d("11")))
	assert.Equal(t, actor.UserID, v1.CreatedBy)

	v2, err := f.create(widget, line(rod, "3"))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	active, err := f.boms.Get(f.ctx, widget, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, active.Version)

	_, err = f.boms.Activate(f.ctx, actor, widget, 1)
	require.NoError(t, err)
	active, _ = f.boms.Get(f.ctx, widget, 0)
	assert.Equal(t, 1, active.Version)

	versions, err := f.boms.List(f.ctx, widget)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[1].Active)

	_, err = f.boms.Activate(f.ctx, actor, widget, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	rod := f.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "5.50")
	widget := f.product(t, "Industrial Widget", entity.ProductTypeFinishedGood, "0")

	_, err := f.create(widget)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.create(widget, line(rod, "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.create(widget, line(rod, "1"), line(rod, "2"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.create(widget, line("fantasma", "1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.create(rod, line(widget, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una materia prima no lleva BOM")

	_, err = f.products.Retire(f.ctx, actor, rod)
	require.NoError(t, err)
	_, err = f.create(widget, line(rod, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Ciclos ──────────────────────────────────────────────────────────────────

func TestCreate_RechazaCiclos(t *testing.T) {
	f := newFixture(t)
	rod := f.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "1")
	frame := f.product(t, "Frame", entity.ProductTypeSemiFinished, "0")
	arm := f.product(t, "Arm", entity.ProductTypeSemiFinished, "0")
	widget := f.product(t, "Widget", entity.ProductTypeFinishedGood, "0")

	// directo
	_, err := f.create(frame, line(frame, "1"))
	require.ErrorIs(t, err, domain.ErrCyclicBOM)

	_, err = f.create(frame, line(rod, "2"))
	require.NoError(t, err)
	_, err = f.create(arm, line(frame, "1"))
	require.NoError(t, err)
	_, err = f.create(widget, line(arm, "2"))
	require.NoError(t, err)

	// transitivo: frame -> widget -> arm -> frame
	_, err = f.create(frame, line(widget, "1"))
	require.ErrorIs(t, err, domain.ErrCyclicBOM)
	var ce *domain.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{frame, widget, arm, frame}, ce.Path)

	// nada quedó persistido del intento fallido
	versions, _ := f.boms.List(f.ctx, frame)
	assert.Len(t, versions, 1)

	_, err = f.boms.ReplaceComponents(f.ctx, actor, frame, 1, []dto.BOMComponentInput{line(arm, "1")})
	assert.ErrorIs(t, err, domain.ErrCyclicBOM)
}

// ── Costeo y explosión ──────────────────────────────────────────────────────

func TestResolveCostYExplode_Multinivel(t *testing.T) {
	f := newFixture(t)
	rod := f.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "5.50")
	bolt := f.product(t, "Bolt", entity.ProductTypeRawMaterial, "0.25")
	frame := f.product(t, "Frame", entity.ProductTypeSemiFinished, "999")
	widget := f.product(t, "Widget", entity.ProductTypeFinishedGood, "0")

	_, err := f.create(frame, line(rod, "2"), line(bolt, "4"))
	require.NoError(t, err)
	_, err = f.create(widget, line(frame, "2"), line(bolt, "2"))
	require.NoError(t, err)

	// frame = 2×5.50 + 4×0.25 = 12; widget = 2×12 + 2×0.25 = 24.5
	cost, err := f.boms.ResolveCost(f.ctx, widget, 0)
	require.NoError(t, err)
	assert.True(t, cost.Equal(d("24.5")), cost.String())

	reqs, err := f.boms.Explode(f.ctx, widget, d("10"))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, rod, reqs[0].ProductID)
	assert.True(t, reqs[0].Quantity.Equal(d("40")))
	assert.Equal(t, bolt, reqs[1].ProductID)
	assert.True(t, reqs[1].Quantity.Equal(d("100")), "80 vía frame + 20 directos")

	total, breakdown, err := f.boms.CostBreakdown(f.ctx, widget, 0, d("10"))
	require.NoError(t, err)
	assert.True(t, total.Equal(d("245")))
	assert.Len(t, breakdown, 2)

	_, err = f.boms.Explode(f.ctx, widget, d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.boms.Explode(f.ctx, rod, d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplaceComponents_SoloSinBloquear(t *testing.T) {
	f := newFixture(t)
	rod := f.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "5.50")
	widget := f.product(t, "Widget", entity.ProductTypeFinishedGood, "0")
	_, err := f.create(widget, line(rod, "2"))
	require.NoError(t, err)

	updated, err := f.boms.ReplaceComponents(f.ctx, actor, widget, 1, []dto.BOMComponentInput{line(rod, "5")})
	require.NoError(t, err)
	assert.True(t, updated.Components[0].Quantity.Equal(d("5")))

	_, err = f.boms.ReplaceComponents(f.ctx, actor, widget, 7, []dto.BOMComponentInput{line(rod, "5")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
