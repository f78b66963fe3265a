package stock

import (
	"context"
	"sync"
)

// materialLocks serializa las operaciones por material: cada agregado es la
// unidad de exclusión mutua; materiales distintos avanzan en paralelo sin
// lock global. Implementado con semáforos de capacidad 1 por clave para que
// la espera respete la cancelación del contexto: un caller que agota su
// timeout abandona sin efectos secundarios.
type materialLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newMaterialLocks() *materialLocks {
	return &materialLocks{slots: make(map[string]chan struct{})}
}

func (l *materialLocks) slot(materialID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[materialID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[materialID] = s
	}
	return s
}

// Acquire toma la exclusión del material o devuelve ctx.Err() si el caller
// cancela mientras espera.
func (l *materialLocks) Acquire(ctx context.Context, materialID string) error {
	s := l.slot(materialID)
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release libera la exclusión del material.
func (l *materialLocks) Release(materialID string) {
	<-l.slot(materialID)
}
