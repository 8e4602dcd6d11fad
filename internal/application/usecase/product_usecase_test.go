package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = auth.Actor{UserID: "u-1", Role: auth.RoleAdmin}

func newProducts() *usecase.ProductUseCase {
	store := memory.NewStore()
	return usecase.NewProductUseCase(store.Repositories().Products, auth.AllowAll{})
}

func TestProductCreate_StockInicialCero(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()

	p, err := uc.Create(ctx, admin, dto.CreateProductRequest{
		Name:     "  Steel Rod ",
		Type:     entity.ProductTypeRawMaterial,
		UnitCost: decimal.RequireFromString("5.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Steel Rod", p.Name)
	assert.Equal(t, "unit", p.UnitOfMeasure)
	assert.True(t, p.CurrentStock.IsZero())

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductCreate_NombreDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()
	_, err := uc.Create(ctx, admin, dto.CreateProductRequest{Name: "Bolt", Type: entity.ProductTypeRawMaterial})
	require.NoError(t, err)

	_, err = uc.Create(ctx, admin, dto.CreateProductRequest{Name: "BOLT", Type: entity.ProductTypeRawMaterial})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestProductCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()

	cases := map[string]dto.CreateProductRequest{
		"name":      {Name: " ", Type: entity.ProductTypeRawMaterial},
		"type":      {Name: "Bolt", Type: "TOOL"},
		"unit_cost": {Name: "Bolt", Type: entity.ProductTypeRawMaterial, UnitCost: decimal.NewFromInt(-1)},
	}
	for field, in := range cases {
		_, err := uc.Create(ctx, admin, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}

	_, err := uc.Create(ctx, auth.Actor{}, dto.CreateProductRequest{Name: "Bolt", Type: entity.ProductTypeRawMaterial})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProductGet_NoEncontrado(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()
	_, err := uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetByName(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRetire_Idempotente(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()
	p, err := uc.Create(ctx, admin, dto.CreateProductRequest{Name: "Bolt", Type: entity.ProductTypeRawMaterial})
	require.NoError(t, err)

	first, err := uc.Retire(ctx, admin, p.ID)
	require.NoError(t, err)
	require.True(t, first.Retired)

	second, err := uc.Retire(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RetiredAt, second.RetiredAt)

	_, err = uc.Retire(ctx, admin, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_Paginado(t *testing.T) {
	ctx := context.Background()
	uc := newProducts()
	for _, name := range []string{"A", "B", "C"} {
		_, err := uc.Create(ctx, admin, dto.CreateProductRequest{Name: name, Type: entity.ProductTypeRawMaterial})
		require.NoError(t, err)
	}
	list, err := uc.List(ctx, dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "B", list.Items[0].Name)
	assert.Equal(t, "C", list.Items[1].Name)
}
