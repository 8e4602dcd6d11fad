package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase catálogo de productos. El stock se maneja exclusivamente vía asientos del libro de stock.
type ProductUseCase struct {
	repo  repository.ProductRepository
	authz auth.Authorizer
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, authz auth.Authorizer) *ProductUseCase {
	return &ProductUseCase{repo: repo, authz: authz}
}

// Create da de alta un producto con stock 0. Falla con ErrDuplicateName si el nombre ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, actor auth.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpProductCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "obligatorio")
	}
	if !entity.ValidProductType(in.Type) {
		return nil, domain.NewValidationError("type", "tipo de producto desconocido: "+in.Type)
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = "unit"
	}
	key := domain.NameKey(name)
	existing, err := uc.repo.GetByNameKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		NameKey:       key,
		Type:          in.Type,
		UnitOfMeasure: in.UnitOfMeasure,
		UnitCost:      in.UnitCost,
		CurrentStock:  decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// El índice único del repositorio cubre la carrera entre la consulta y el insert.
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID; ErrNotFound si no existe. Sirve el stock cacheado.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// GetByName busca por nombre normalizado.
func (uc *ProductUseCase) GetByName(ctx context.Context, name string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByNameKey(ctx, domain.NameKey(name))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Retire da de baja el producto sin borrarlo: sigue referenciado por BOMs y asientos.
// Repetir la baja es un no-op.
func (uc *ProductUseCase) Retire(ctx context.Context, actor auth.Actor, id string) (*dto.ProductResponse, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpProductRetire); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.Retired() {
		now := time.Now().UTC()
		if err := uc.repo.Retire(ctx, id, now); err != nil {
			return nil, err
		}
		product.RetiredAt = &now
		product.UpdatedAt = now
	}
	return toProductResponse(product), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Type:          p.Type,
		UnitOfMeasure: p.UnitOfMeasure,
		UnitCost:      p.UnitCost,
		CurrentStock:  p.CurrentStock,
		Retired:       p.Retired(),
		RetiredAt:     p.RetiredAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
