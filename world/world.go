package world

import (
	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// MemorySource is a Source that keeps every non-air block it has been given in memory, bucketed
// per chunk. It is safe to mutate from the action layer while queries are running.
type MemorySource struct {
	chunks   map[protocol.ChunkPos]map[cube.Pos]world.Block
	entities []cube.BBox

	log logrus.FieldLogger

	deadlock.RWMutex
}

// NewMemorySource ...
func NewMemorySource(log logrus.FieldLogger) *MemorySource {
	return &MemorySource{
		chunks: make(map[protocol.ChunkPos]map[cube.Pos]world.Block),
		log:    log,
	}
}

// ChunkPosOf returns the position of the chunk that holds pos.
func ChunkPosOf(pos cube.Pos) protocol.ChunkPos {
	return protocol.ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
}

// Block returns the block at the position passed, or air if nothing was set there.
func (m *MemorySource) Block(pos cube.Pos) world.Block {
	if pos.OutOfBounds(world.Overworld.Range()) {
		return block.Air{}
	}

	m.RLock()
	defer m.RUnlock()
	if b, ok := m.chunks[ChunkPosOf(pos)][pos]; ok {
		return b
	}
	return block.Air{}
}

// SetBlock sets the block at the position passed. Setting air removes the entry.
func (m *MemorySource) SetBlock(pos cube.Pos, b world.Block) {
	if pos.OutOfBounds(world.Overworld.Range()) {
		return
	}
	chunkPos := ChunkPosOf(pos)

	m.Lock()
	defer m.Unlock()

	if _, isAir := b.(block.Air); isAir || b == nil {
		delete(m.chunks[chunkPos], pos)
		return
	}
	if m.chunks[chunkPos] == nil {
		m.chunks[chunkPos] = make(map[cube.Pos]world.Block)
	}
	m.chunks[chunkPos][pos] = b
}

// SetEntityBoxes replaces the bounding boxes of the live entities in the world.
func (m *MemorySource) SetEntityBoxes(boxes []cube.BBox) {
	m.Lock()
	m.entities = append(m.entities[:0], boxes...)
	m.Unlock()
}

// EntityBoxes ...
func (m *MemorySource) EntityBoxes() []cube.BBox {
	m.RLock()
	defer m.RUnlock()
	out := make([]cube.BBox, len(m.entities))
	copy(out, m.entities)
	return out
}

// CleanChunks drops every chunk outside the given radius around pos.
func (m *MemorySource) CleanChunks(radius int32, pos protocol.ChunkPos) {
	m.Lock()
	defer m.Unlock()

	for chunkPos := range m.chunks {
		if chunkInRange(radius, chunkPos, pos) {
			continue
		}
		delete(m.chunks, chunkPos)
		if m.log != nil {
			m.log.WithField("chunkPos", chunkPos).Debug("dropped chunk out of range")
		}
	}
}

// chunkInRange returns true if the chunk position is within the given radius of the chunk position.
func chunkInRange(radius int32, chunkPos, pos protocol.ChunkPos) bool {
	diffX, diffZ := pos[0]-chunkPos[0], pos[1]-chunkPos[1]
	dist := math32.Sqrt(float32(diffX*diffX) + float32(diffZ*diffZ))

	return int32(dist) <= radius
}
