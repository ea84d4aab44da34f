// Package lock implementa inventory.Locker: un mutex por llave dentro del proceso o un
// bloqueo distribuido en Redis cuando hay varias réplicas.
package lock

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

var _ inventory.Locker = (*Local)(nil)

type entry struct {
	ch   chan struct{}
	refs int
}

// Local serializa por llave dentro del proceso. Las entradas se liberan al quedar sin uso.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal crea el locker en memoria.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

// Lock adquiere las llaves en el orden recibido; si ctx se cancela libera las ya tomadas.
func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	held := make([]string, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}
	for _, k := range keys {
		e := l.acquireEntry(k)
		select {
		case e.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			l.dropEntry(k)
			release()
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *Local) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) release(key string) {
	l.mu.Lock()
	e := l.entries[key]
	l.mu.Unlock()
	<-e.ch
	l.dropEntry(key)
}

func (l *Local) dropEntry(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
