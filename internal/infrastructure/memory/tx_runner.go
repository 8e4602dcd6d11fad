package memory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con acceso exclusivo al store y revierte las escrituras si fn falla.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run toma el mutex del store durante toda la transacción. Un panic en fn también revierte.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = make([]func(), 0, 8)
	committed := false
	defer func() {
		if !committed {
			for i := len(s.journal) - 1; i >= 0; i-- {
				s.journal[i]()
			}
		}
		s.journal = nil
	}()

	if err := fn(s.bind(true)); err != nil {
		return err
	}
	committed = true
	return nil
}
