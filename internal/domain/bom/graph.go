// Package bom contiene los algoritmos sobre el grafo de listas de materiales: detección de ciclos,
// explosión de requerimientos y costeo multinivel. El grafo se recorre sobre una lista de adyacencia
// explícita (Source) y no sobre punteros entre padres e hijos.
package bom

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Source entrega las aristas del grafo y el costo de catálogo de las hojas.
type Source interface {
	// ActiveComponents devuelve los componentes de la BOM activa; ok=false si el producto no tiene BOM activa.
	ActiveComponents(ctx context.Context, productID string) (components []entity.BOMComponent, ok bool, err error)
	UnitCost(ctx context.Context, productID string) (decimal.Decimal, error)
}

// DetectCycle recorre en profundidad los componentes propuestos para root (y sus BOM activas)
// y devuelve un *domain.CycleError si root aparece como componente directo o transitivo de sí mismo.
func DetectCycle(ctx context.Context, src Source, root string, components []entity.BOMComponent) error {
	visited := make(map[string]bool)

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		current := appendPath(path, id)
		if id == root {
			return &domain.CycleError{Path: current}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		children, ok, err := src.ActiveComponents(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for _, c := range children {
			if err := visit(c.ComponentProductID, current); err != nil {
				return err
			}
		}
		return nil
	}

	for _, c := range components {
		if err := visit(c.ComponentProductID, []string{root}); err != nil {
			return err
		}
	}
	return nil
}

// Explode multiplica cantidades nivel por nivel y devuelve las hojas (productos sin BOM activa)
// agregadas por producto, en orden de primera aparición.
func Explode(ctx context.Context, src Source, root string, components []entity.BOMComponent, qty decimal.Decimal) ([]entity.MaterialRequirement, error) {
	totals := make(map[string]decimal.Decimal)
	var order []string
	stack := map[string]bool{root: true}

	var walk func(path []string, comps []entity.BOMComponent, factor decimal.Decimal) error
	walk = func(path []string, comps []entity.BOMComponent, factor decimal.Decimal) error {
		for _, c := range comps {
			id := c.ComponentProductID
			need := c.Quantity.Mul(factor)
			if stack[id] {
				return &domain.CycleError{Path: appendPath(path, id)}
			}
			children, ok, err := src.ActiveComponents(ctx, id)
			if err != nil {
				return err
			}
			if ok && len(children) > 0 {
				stack[id] = true
				if err := walk(appendPath(path, id), children, need); err != nil {
					return err
				}
				delete(stack, id)
				continue
			}
			if _, seen := totals[id]; !seen {
				order = append(order, id)
				totals[id] = decimal.Zero
			}
			totals[id] = totals[id].Add(need)
		}
		return nil
	}

	if err := walk([]string{root}, components, qty); err != nil {
		return nil, err
	}
	out := make([]entity.MaterialRequirement, 0, len(order))
	for _, id := range order {
		out = append(out, entity.MaterialRequirement{ProductID: id, Quantity: totals[id]})
	}
	return out, nil
}

// RollupCost costo unitario de una BOM: Σ cantidad × costo del componente, donde el costo de un
// componente con BOM activa se resuelve recursivamente. Memoiza por producto dentro de la llamada
// para no recalcular subensambles compartidos.
func RollupCost(ctx context.Context, src Source, root string, components []entity.BOMComponent) (decimal.Decimal, error) {
	r := &costResolver{
		src:   src,
		memo:  make(map[string]decimal.Decimal),
		stack: map[string]bool{root: true},
	}
	return r.sum(ctx, []string{root}, components)
}

type costResolver struct {
	src   Source
	memo  map[string]decimal.Decimal
	stack map[string]bool
}

func (r *costResolver) sum(ctx context.Context, path []string, comps []entity.BOMComponent) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range comps {
		unit, err := r.cost(ctx, path, c.ComponentProductID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(c.Quantity.Mul(unit))
	}
	return total, nil
}

func (r *costResolver) cost(ctx context.Context, path []string, id string) (decimal.Decimal, error) {
	if v, ok := r.memo[id]; ok {
		return v, nil
	}
	if r.stack[id] {
		return decimal.Zero, &domain.CycleError{Path: appendPath(path, id)}
	}
	children, ok, err := r.src.ActiveComponents(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	var v decimal.Decimal
	if ok && len(children) > 0 {
		r.stack[id] = true
		v, err = r.sum(ctx, appendPath(path, id), children)
		delete(r.stack, id)
	} else {
		v, err = r.src.UnitCost(ctx, id)
	}
	if err != nil {
		return decimal.Zero, err
	}
	r.memo[id] = v
	return v, nil
}

func appendPath(path []string, id string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, id)
}
