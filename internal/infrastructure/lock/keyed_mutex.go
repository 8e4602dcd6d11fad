// Package lock implementa ports.Locker: un mutex por clave en proceso y un lock distribuido sobre Redis.
package lock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

var _ ports.Locker = (*KeyedMutex)(nil)

type slot struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex serializa por clave dentro del proceso. Cada clave es un canal de capacidad 1,
// lo que permite esperar con timeout y cancelación.
type KeyedMutex struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

// NewKeyedMutex timeout es la espera máxima total por Lock.
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot), timeout: timeout}
}

// Lock adquiere las claves en orden lexicográfico. Devuelve domain.ErrBusy si no lo logra dentro
// del plazo o si ctx se cancela; en ese caso libera lo que ya había tomado.
func (m *KeyedMutex) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	held := make([]*slot, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].ch
			m.unref(keys[i])
		}
	}

	for _, key := range keys {
		s := m.ref(key)
		select {
		case s.ch <- struct{}{}:
			held = append(held, s)
		case <-ctx.Done():
			m.unref(key)
			release()
			return nil, fmt.Errorf("%w: %s", domain.ErrBusy, key)
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (m *KeyedMutex) ref(key string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	return s
}

func (m *KeyedMutex) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

// normalize ordena y elimina duplicados para evitar deadlocks por orden de adquisición.
func normalize(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}
