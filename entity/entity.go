package entity

import (
	"sync"

	df_cube "github.com/df-mc/dragonfly/server/block/cube"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/sightline/game"
)

// historySize is the number of past positions kept per entity to estimate its velocity.
const historySize = 6

// Entity is a moving target in the world.
type Entity struct {
	// mu protects all the following fields.
	mu sync.Mutex
	// position is the current position of the entity in the world, at its feet.
	position mgl32.Vec3
	// lastPosition is the previous position of the entity in the world.
	lastPosition mgl32.Vec3
	// history holds the recent positions of the entity.
	history *RingBuffer
	// aabb represents the bounding box of the entity relative to its position.
	aabb cube.BBox
}

// defaultAABB is the default AABB for newly created entities.
var defaultAABB = game.AABBFromDimensions(0.6, 1.8)

// NewEntity creates a new entity at the position passed. A zero aabb uses the size of a player.
func NewEntity(position mgl32.Vec3, aabb cube.BBox) *Entity {
	if aabb == (cube.BBox{}) {
		aabb = defaultAABB
	}
	return &Entity{
		position:     position,
		lastPosition: position,
		history:      NewRingBuffer(historySize),
		aabb:         aabb,
	}
}

// Move moves the entity to the provided position at the tick passed.
func (e *Entity) Move(pos mgl32.Vec3, tick int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastPosition = e.position
	e.position = pos
	e.history.Add(HistoricalPosition{Position: pos, Tick: tick})
}

// Position returns the position of the entity.
func (e *Entity) Position() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Rewind returns the recorded position closest to the tick passed.
func (e *Entity) Rewind(tick int64) (HistoricalPosition, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.GetClosest(tick)
}

// Velocity returns the average movement of the entity per tick over its recorded history.
func (e *Entity) Velocity() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.velocity()
}

func (e *Entity) velocity() mgl32.Vec3 {
	newest, ok := e.history.Latest()
	oldest, _ := e.history.Oldest()
	if !ok || newest.Tick <= oldest.Tick {
		return e.position.Sub(e.lastPosition)
	}
	return newest.Position.Sub(oldest.Position).Mul(1 / float32(newest.Tick-oldest.Tick))
}

// AABB returns the AABB of the entity relative to its position.
func (e *Entity) AABB() cube.BBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aabb
}

// SetAABB updates the AABB of the entity.
func (e *Entity) SetAABB(aabb cube.BBox) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aabb = aabb
}

// Box returns the bounding box of the entity in world coordinates.
func (e *Entity) Box() df_cube.BBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return game.CubeBoxToDFBox(e.aabb.Translate(e.position))
}

// PredictedBox extrapolates the entity's movement linearly and returns where its bounding box
// will be after the given number of ticks.
func (e *Entity) PredictedBox(ticks int) df_cube.BBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	future := e.position.Add(e.velocity().Mul(float32(ticks)))
	return game.CubeBoxToDFBox(e.aabb.Translate(future))
}
