package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/app"
	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Name: "produccion-test"},
		Lock:    config.LockConfig{Timeout: time.Second, RetryInterval: 10 * time.Millisecond, TTL: 5 * time.Second},
		History: config.HistoryConfig{PageSize: 50},
	}
}

// ─── Motor en memoria de punta a punta ───────────────────────────────────────

func TestEngine_EnMemoria(t *testing.T) {
	ctx := context.Background()
	e, closeFn, err := app.New(ctx, testConfig(), logger.Nop(), app.Options{InMemory: true})
	require.NoError(t, err)
	defer closeFn()

	_, err = e.Seeder.Apply(ctx, auth.System, &config.Seed{
		Products: []config.SeedProduct{
			{Name: "Steel Rod", Type: entity.ProductTypeRawMaterial, UnitCost: "5.50", OpeningStock: "1000"},
			{Name: "Industrial Widget", Type: entity.ProductTypeFinishedGood},
		},
		WorkCenters: []config.SeedWorkCenter{{Name: "Assembly", Capacity: 1, CostPerHour: "60"}},
		BOMs: []config.SeedBOM{{
			Product:    "Industrial Widget",
			Components: []config.SeedBOMComponent{{Product: "Steel Rod", Quantity: "2"}},
		}},
	})
	require.NoError(t, err)

	widget, err := e.Products.GetByName(ctx, "Industrial Widget")
	require.NoError(t, err)
	center, err := e.WorkCenters.GetByName(ctx, "Assembly")
	require.NoError(t, err)

	mo, err := e.Orders.Create(ctx, auth.System, dto.CreateOrderRequest{
		ProductID:  widget.ID,
		Quantity:   decimal.NewFromInt(10),
		Operations: []dto.OperationInput{{Name: "Ensamble", WorkCenterID: center.ID, PlannedDurationMinutes: 30}},
	})
	require.NoError(t, err)
	_, err = e.Orders.Confirm(ctx, auth.System, mo.Order.ID)
	require.NoError(t, err)
	_, err = e.Orders.Start(ctx, auth.System, mo.Order.ID)
	require.NoError(t, err)

	rod, _ := e.Products.GetByName(ctx, "Steel Rod")
	assert.True(t, rod.CurrentStock.Equal(decimal.NewFromInt(980)))

	reports, err := e.Ledger.ReconcileAll(ctx)
	require.NoError(t, err)
	for _, r := range reports {
		assert.True(t, r.Consistent, r.ProductID)
	}
}

func TestEngine_PoliticaPorDefecto(t *testing.T) {
	ctx := context.Background()
	e, closeFn, err := app.New(ctx, testConfig(), logger.Nop(), app.Options{InMemory: true})
	require.NoError(t, err)
	defer closeFn()

	_, err = e.Products.Create(ctx, auth.Actor{UserID: "op-1", Role: auth.RoleOperator}, dto.CreateProductRequest{
		Name: "Bolt", Type: entity.ProductTypeRawMaterial,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEngine_SeederLogueaComoComponenteSeed(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})
	e, closeFn, err := app.New(ctx, testConfig(), log, app.Options{InMemory: true})
	require.NoError(t, err)
	defer closeFn()

	_, err = e.Seeder.Apply(ctx, auth.System, &config.Seed{
		Products: []config.SeedProduct{{Name: "Bolt", Type: entity.ProductTypeRawMaterial, UnitCost: "0.25"}},
	})
	require.NoError(t, err)

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(line, &ev))
		if ev["message"] == "seed aplicado" {
			found = true
			assert.Equal(t, "seed", ev["component"])
		}
	}
	assert.True(t, found)
}
