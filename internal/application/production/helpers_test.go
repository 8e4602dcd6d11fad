package production_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/bom"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/lock"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	actor       = auth.Actor{UserID: "planta-1", Role: auth.RoleAdmin}
	errInjected = errors.New("fallo inyectado")
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// flakyPoster falla una cantidad fija de veces por clave de posteo.
type flakyPoster struct {
	production.StockPoster
	mu   sync.Mutex
	fail map[entity.PostingKey]int
}

func (f *flakyPoster) failOn(key entity.PostingKey, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key] = times
}

func (f *flakyPoster) Apply(ctx context.Context, in dto.PostEntryRequest) (*dto.PostEntryResult, error) {
	f.mu.Lock()
	if n := f.fail[in.Key()]; n > 0 {
		f.fail[in.Key()] = n - 1
		f.mu.Unlock()
		return nil, errInjected
	}
	f.mu.Unlock()
	return f.StockPoster.Apply(ctx, in)
}

type env struct {
	ctx      context.Context
	store    *memory.Store
	products *usecase.ProductUseCase
	centers  *usecase.WorkCenterUseCase
	ledger   *inventory.LedgerUseCase
	boms     *bom.UseCase
	orders   *production.OrderUseCase
	poster   *flakyPoster

	rod, bolt, widget string
	assembly          string
}

// newEnv arma el motor completo sobre el store en memoria: Steel Rod a 5.50 con rodStock de apertura,
// Bolt a 0.25 con 1000, un Industrial Widget con BOM de 2 rods y un centro Assembly de capacidad 1.
func newEnv(t *testing.T, rodStock string) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	tx := memory.NewTxRunner(store)
	locker := lock.NewKeyedMutex(2 * time.Second)
	authz := auth.AllowAll{}
	log := zerolog.Nop()

	e := &env{ctx: ctx, store: store}
	e.products = usecase.NewProductUseCase(repos.Products, authz)
	e.centers = usecase.NewWorkCenterUseCase(repos, tx, locker, authz)
	e.ledger = inventory.NewLedgerUseCase(repos, tx, locker, authz, log, 0)
	e.boms = bom.NewUseCase(repos, tx, locker, authz, log)
	e.poster = &flakyPoster{StockPoster: e.ledger, fail: make(map[entity.PostingKey]int)}
	e.orders = production.NewOrderUseCase(repos, tx, locker, e.poster, e.boms, e.centers, authz, log)

	e.rod = e.product(t, "Steel Rod", entity.ProductTypeRawMaterial, "5.50")
	e.bolt = e.product(t, "Bolt", entity.ProductTypeRawMaterial, "0.25")
	e.widget = e.product(t, "Industrial Widget", entity.ProductTypeFinishedGood, "0")
	e.receive(t, e.rod, rodStock)
	e.receive(t, e.bolt, "1000")
	e.bom(t, e.widget, map[string]string{e.rod: "2"})

	wc, err := e.centers.Create(ctx, actor, dto.CreateWorkCenterRequest{Name: "Assembly", Capacity: 1, CostPerHour: d("60")})
	require.NoError(t, err)
	e.assembly = wc.ID
	return e
}

func (e *env) product(t *testing.T, name, typ, cost string) string {
	t.Helper()
	p, err := e.products.Create(e.ctx, actor, dto.CreateProductRequest{Name: name, Type: typ, UnitCost: d(cost)})
	require.NoError(t, err)
	return p.ID
}

func (e *env) receive(t *testing.T, productID, qty string) {
	t.Helper()
	if d(qty).IsZero() {
		return
	}
	_, err := e.ledger.Post(e.ctx, actor, dto.PostEntryRequest{
		ProductID:       productID,
		TransactionType: entity.TransactionTypeIN,
		Quantity:        d(qty),
		Reference:       "OPENING:" + productID,
	})
	require.NoError(t, err)
}

// bom crea una versión nueva (queda activa); los componentes van en orden rod, bolt.
func (e *env) bom(t *testing.T, productID string, comps map[string]string) *entity.BOM {
	t.Helper()
	in := dto.CreateBOMRequest{ProductID: productID}
	for _, id := range []string{e.rod, e.bolt} {
		if q, ok := comps[id]; ok {
			in.Components = append(in.Components, dto.BOMComponentInput{ProductID: id, Quantity: d(q)})
		}
	}
	b, err := e.boms.Create(e.ctx, actor, in)
	require.NoError(t, err)
	return b
}

func (e *env) order(t *testing.T, qty string) *dto.OrderDetail {
	t.Helper()
	mo, err := e.orders.Create(e.ctx, actor, dto.CreateOrderRequest{
		ProductID: e.widget,
		Quantity:  d(qty),
		Operations: []dto.OperationInput{
			{Name: "Ensamble", WorkCenterID: e.assembly, PlannedDurationMinutes: 45},
		},
	})
	require.NoError(t, err)
	return mo
}

// startedOrder crea, confirma e inicia una orden.
func (e *env) startedOrder(t *testing.T, qty string) *dto.OrderDetail {
	t.Helper()
	mo := e.order(t, qty)
	_, err := e.orders.Confirm(e.ctx, actor, mo.Order.ID)
	require.NoError(t, err)
	_, err = e.orders.Start(e.ctx, actor, mo.Order.ID)
	require.NoError(t, err)
	return mo
}

func (e *env) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := e.products.GetByID(e.ctx, productID)
	require.NoError(t, err)
	return p.CurrentStock
}

func (e *env) history(t *testing.T, productID string) []entity.StockEntry {
	t.Helper()
	var out []entity.StockEntry
	for entry, err := range e.ledger.History(e.ctx, productID, dto.HistoryRange{}) {
		require.NoError(t, err)
		out = append(out, entry)
	}
	return out
}

func (e *env) assertConsistent(t *testing.T) {
	t.Helper()
	reports, err := e.ledger.ReconcileAll(e.ctx)
	require.NoError(t, err)
	for _, r := range reports {
		require.True(t, r.Consistent, "producto %s: cacheado %s, libro %s", r.ProductName, r.Cached, r.Ledger)
	}
}
