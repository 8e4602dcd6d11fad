// Package memory implementa los puertos de persistencia en memoria, con transacciones serializables.
// Se usa en tests y en despliegues embebidos de una sola instancia.
package memory

import (
	"sync"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

type bomKey struct {
	productID string
	version   int
}

// Store estado compartido de todos los repositorios en memoria.
// Un único mutex cubre tanto las llamadas sueltas como una transacción completa de TxRunner.
type Store struct {
	mu sync.Mutex

	products      map[string]*entity.Product
	productByName map[string]string
	productOrder  []string

	boms map[bomKey]*entity.BOM

	entries    []entity.StockEntry
	entryByKey map[entity.PostingKey]int
	entrySeq   int64

	orders      map[string]*entity.ManufacturingOrder
	orderByRef  map[string]string
	orderSeq    []string
	workOrders  map[string]*entity.WorkOrder
	woByOrder   map[string][]string
	workCenters map[string]*entity.WorkCenter
	wcByName    map[string]string
	wcOrder     []string

	// journal acumula las operaciones de deshacer de la transacción en curso; nil fuera de tx.
	journal []func()
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]*entity.Product),
		productByName: make(map[string]string),
		boms:          make(map[bomKey]*entity.BOM),
		entryByKey:    make(map[entity.PostingKey]int),
		orders:        make(map[string]*entity.ManufacturingOrder),
		orderByRef:    make(map[string]string),
		workOrders:    make(map[string]*entity.WorkOrder),
		woByOrder:     make(map[string][]string),
		workCenters:   make(map[string]*entity.WorkCenter),
		wcByName:      make(map[string]string),
	}
}

// Repositories devuelve repositorios en modo autocommit: cada llamada toma el mutex del store.
// No usarlos dentro de TxRunner.Run; ahí se reciben los repos de la tx.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(false)
}

func (s *Store) bind(inTx bool) repository.Repositories {
	c := &conn{store: s, inTx: inTx}
	return repository.Repositories{
		Products:    &ProductRepository{c},
		BOMs:        &BOMRepository{c},
		Entries:     &StockEntryRepository{c},
		Orders:      &ManufacturingOrderRepository{c},
		WorkOrders:  &WorkOrderRepository{c},
		WorkCenters: &WorkCenterRepository{c},
	}
}

// conn distingue repos en autocommit de repos atados a una transacción que ya tiene el mutex.
type conn struct {
	store *Store
	inTx  bool
}

func (c *conn) lock() func() {
	if c.inTx {
		return func() {}
	}
	c.store.mu.Lock()
	return c.store.mu.Unlock
}

// undo registra cómo revertir una escritura si la transacción falla.
func (c *conn) undo(fn func()) {
	if c.inTx {
		c.store.journal = append(c.store.journal, fn)
	}
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.RetiredAt != nil {
		t := *p.RetiredAt
		cp.RetiredAt = &t
	}
	return &cp
}

func cloneBOM(b *entity.BOM) *entity.BOM {
	cp := *b
	cp.Components = append([]entity.BOMComponent(nil), b.Components...)
	return &cp
}

func cloneOrder(mo *entity.ManufacturingOrder) *entity.ManufacturingOrder {
	cp := *mo
	cp.Requirements = append([]entity.MaterialRequirement(nil), mo.Requirements...)
	return &cp
}

func cloneWorkOrder(wo *entity.WorkOrder) *entity.WorkOrder {
	cp := *wo
	return &cp
}

func cloneWorkCenter(wc *entity.WorkCenter) *entity.WorkCenter {
	cp := *wc
	return &cp
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
