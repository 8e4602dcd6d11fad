package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockEntryRepository = (*StockEntryRepository)(nil)

// StockEntryRepository libro de stock en memoria. Los asientos se guardan en orden de inserción.
type StockEntryRepository struct {
	c *conn
}

func (r *StockEntryRepository) Append(_ context.Context, e *entity.StockEntry) (bool, error) {
	defer r.c.lock()()
	s := r.c.store
	key := e.Key()
	if _, ok := s.entryByKey[key]; ok {
		return false, nil
	}
	s.entrySeq++
	e.ID = s.entrySeq
	s.entries = append(s.entries, *e)
	s.entryByKey[key] = len(s.entries) - 1
	r.c.undo(func() {
		s.entries = s.entries[:len(s.entries)-1]
		delete(s.entryByKey, key)
		s.entrySeq--
	})
	return true, nil
}

func (r *StockEntryRepository) FindByKey(_ context.Context, key entity.PostingKey) (*entity.StockEntry, error) {
	defer r.c.lock()()
	s := r.c.store
	i, ok := s.entryByKey[key]
	if !ok {
		return nil, nil
	}
	e := s.entries[i]
	return &e, nil
}

func (r *StockEntryRepository) ListByReference(_ context.Context, reference string) ([]entity.StockEntry, error) {
	defer r.c.lock()()
	var out []entity.StockEntry
	for _, e := range r.c.store.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByProduct filtra por rango y cursor. Los timestamps se asignan con reloj creciente,
// por lo que el orden de inserción coincide con (Timestamp, ID) salvo empates de reloj.
func (r *StockEntryRepository) ListByProduct(_ context.Context, productID string, q repository.EntryQuery) ([]entity.StockEntry, error) {
	defer r.c.lock()()
	var matched []entity.StockEntry
	for _, e := range r.c.store.entries {
		if e.ProductID != productID || !inRange(e.Timestamp, q.From, q.To) {
			continue
		}
		if q.After != nil && !after(e, *q.After) {
			continue
		}
		matched = append(matched, e)
	}
	sortEntries(matched)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *StockEntryRepository) SumByProduct(_ context.Context, productID string, upTo *time.Time) (decimal.Decimal, error) {
	defer r.c.lock()()
	total := decimal.Zero
	for _, e := range r.c.store.entries {
		if e.ProductID == productID && inRange(e.Timestamp, nil, upTo) {
			total = total.Add(e.SignedQuantity())
		}
	}
	return total, nil
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

func after(e entity.StockEntry, c repository.EntryCursor) bool {
	if e.Timestamp.Equal(c.Timestamp) {
		return e.ID > c.ID
	}
	return e.Timestamp.After(c.Timestamp)
}

func sortEntries(es []entity.StockEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].Timestamp.Equal(es[j].Timestamp) {
			return es[i].ID < es[j].ID
		}
		return es[i].Timestamp.Before(es[j].Timestamp)
	})
}
