package bom

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain"
	graph "github.com/jhoicas/Produccion-api/internal/domain/bom"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ graph.Source = repoSource{}

// repoSource adapta los repositorios al grafo: aristas desde la BOM activa y costo desde el catálogo.
type repoSource struct {
	repos repository.Repositories
}

func (s repoSource) ActiveComponents(ctx context.Context, productID string) ([]entity.BOMComponent, bool, error) {
	b, err := s.repos.BOMs.GetActive(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	return b.Components, true, nil
}

func (s repoSource) UnitCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.UnitCost, nil
}
