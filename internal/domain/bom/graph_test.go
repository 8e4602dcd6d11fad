package bom_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/bom"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fuente en memoria para los algoritmos del grafo
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	boms  map[string][]entity.BOMComponent
	costs map[string]decimal.Decimal
	calls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		boms:  map[string][]entity.BOMComponent{},
		costs: map[string]decimal.Decimal{},
		calls: map[string]int{},
	}
}

func (f *fakeSource) add(parent string, lines ...entity.BOMComponent) {
	f.boms[parent] = lines
}

func (f *fakeSource) ActiveComponents(_ context.Context, id string) ([]entity.BOMComponent, bool, error) {
	f.calls[id]++
	c, ok := f.boms[id]
	return c, ok, nil
}

func (f *fakeSource) UnitCost(_ context.Context, id string) (decimal.Decimal, error) {
	return f.costs[id], nil
}

func line(id, qty string) entity.BOMComponent {
	return entity.BOMComponent{ComponentProductID: id, Quantity: decimal.RequireFromString(qty)}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// DetectCycle
// ──────────────────────────────────────────────────────────────────────────────

func TestDetectCycle_Directo(t *testing.T) {
	src := newFakeSource()
	err := bom.DetectCycle(context.Background(), src, "widget", []entity.BOMComponent{line("widget", "1")})
	require.ErrorIs(t, err, domain.ErrCyclicBOM)
}

func TestDetectCycle_DosNiveles(t *testing.T) {
	// widget -> frame -> bracket -> widget
	src := newFakeSource()
	src.add("frame", line("bracket", "2"))
	src.add("bracket", line("widget", "1"))

	err := bom.DetectCycle(context.Background(), src, "widget", []entity.BOMComponent{line("frame", "1")})
	require.ErrorIs(t, err, domain.ErrCyclicBOM)

	var ce *domain.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"widget", "frame", "bracket", "widget"}, ce.Path)
}

func TestDetectCycle_DiamanteSinCiclo(t *testing.T) {
	// widget -> {a, b}; a -> rod; b -> rod (subensamble compartido, sin ciclo)
	src := newFakeSource()
	src.add("a", line("rod", "1"))
	src.add("b", line("rod", "3"))

	err := bom.DetectCycle(context.Background(), src, "widget", []entity.BOMComponent{line("a", "1"), line("b", "1")})
	assert.NoError(t, err)
	assert.Equal(t, 1, src.calls["rod"], "cada nodo se visita una sola vez")
}

// ──────────────────────────────────────────────────────────────────────────────
// Explode
// ──────────────────────────────────────────────────────────────────────────────

func TestExplode_MultiplicaPorNivel(t *testing.T) {
	src := newFakeSource()
	src.add("frame", line("rod", "4"), line("bolt", "8"))

	reqs, err := bom.Explode(context.Background(), src, "widget",
		[]entity.BOMComponent{line("rod", "2"), line("frame", "1.5")}, dec("10"))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "rod", reqs[0].ProductID)
	assert.True(t, dec("80").Equal(reqs[0].Quantity), "20 directos + 10*1.5*4 vía frame, obtenido %s", reqs[0].Quantity)
	assert.Equal(t, "bolt", reqs[1].ProductID)
	assert.True(t, dec("120").Equal(reqs[1].Quantity))
}

func TestExplode_SoloMateriaPrima(t *testing.T) {
	src := newFakeSource()
	reqs, err := bom.Explode(context.Background(), src, "widget", []entity.BOMComponent{line("rod", "2")}, dec("10"))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, dec("20").Equal(reqs[0].Quantity))
}

// ──────────────────────────────────────────────────────────────────────────────
// RollupCost
// ──────────────────────────────────────────────────────────────────────────────

func TestRollupCost_Recursivo(t *testing.T) {
	src := newFakeSource()
	src.costs["rod"] = dec("5.50")
	src.costs["bolt"] = dec("0.25")
	src.costs["frame"] = dec("999") // ignorado: frame tiene BOM activa
	src.add("frame", line("rod", "4"), line("bolt", "8"))

	cost, err := bom.RollupCost(context.Background(), src, "widget",
		[]entity.BOMComponent{line("rod", "2"), line("frame", "1")})
	require.NoError(t, err)
	// 2*5.50 + (4*5.50 + 8*0.25) = 11 + 24 = 35
	assert.True(t, dec("35").Equal(cost), "obtenido %s", cost)
}

func TestRollupCost_MemoizaSubensamblesCompartidos(t *testing.T) {
	src := newFakeSource()
	src.costs["rod"] = dec("1")
	src.add("sub", line("rod", "2"))
	src.add("a", line("sub", "1"))
	src.add("b", line("sub", "1"))

	cost, err := bom.RollupCost(context.Background(), src, "widget",
		[]entity.BOMComponent{line("a", "1"), line("b", "1"), line("sub", "1")})
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(cost))
	assert.Equal(t, 1, src.calls["sub"], "sub se resuelve una sola vez por llamada")
}
