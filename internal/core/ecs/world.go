package ecs

// World owns the entity pool, the set of registered component stores, and a
// deferred destruction queue flushed by the cleanup system at tick end.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 8),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

// Register adds a component store so destroyed entities are removed from it.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

// OnDestroy registers a hook invoked for every entity actually destroyed.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

func (w *World) Live() int {
	return w.pool.Live()
}

// Destroy releases id immediately: its handle goes stale and its components
// are removed. Returns false if id was already dead.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Destroy(id) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(id)
	}
	for _, fn := range w.onDestroy {
		fn(id)
	}
	return true
}

// MarkForDestruction queues id for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction returns the number of queued destroys.
func (w *World) PendingDestruction() int {
	return len(w.destroyQueue)
}

// FlushDestroyQueue destroys all queued entities. Duplicates and stale
// handles are ignored.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
