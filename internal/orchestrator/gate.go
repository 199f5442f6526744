package orchestrator

import "sync/atomic"

// Gate admits at most one active task at a time.
type Gate struct {
	active atomic.Bool
}

// TryAcquire marks the gate active. It returns false, and changes nothing,
// when the gate is already held.
func (g *Gate) TryAcquire() bool {
	return g.active.CompareAndSwap(false, true)
}

func (g *Gate) Release() {
	g.active.Store(false)
}

func (g *Gate) IsActive() bool {
	return g.active.Load()
}
