package entity

import (
	"maps"
	"slices"

	df_cube "github.com/df-mc/dragonfly/server/block/cube"
	"github.com/sasha-s/go-deadlock"
)

// Tracker keeps the live entities of a world by their runtime ID.
type Tracker struct {
	entities map[uint64]*Entity
	mu       deadlock.RWMutex
}

// NewTracker ...
func NewTracker() *Tracker {
	return &Tracker{entities: make(map[uint64]*Entity)}
}

// Add starts tracking e under the ID passed, replacing any entity already tracked with it.
func (t *Tracker) Add(id uint64, e *Entity) {
	t.mu.Lock()
	t.entities[id] = e
	t.mu.Unlock()
}

// Remove stops tracking the entity with the ID passed.
func (t *Tracker) Remove(id uint64) {
	t.mu.Lock()
	delete(t.entities, id)
	t.mu.Unlock()
}

// Entity returns the entity with the ID passed.
func (t *Tracker) Entity(id uint64) (*Entity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entities[id]
	return e, ok
}

// EntityBoxes returns the current bounding boxes of every tracked entity, ordered by ID.
func (t *Tracker) EntityBoxes() []df_cube.BBox {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(t.entities))
	boxes := make([]df_cube.BBox, 0, len(ids))
	for _, id := range ids {
		boxes = append(boxes, t.entities[id].Box())
	}
	return boxes
}
