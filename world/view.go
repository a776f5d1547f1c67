package world

import (
	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
)

// Source is the read side of a world: the block at any position.
type Source interface {
	Block(pos cube.Pos) world.Block
}

// EntitySource provides the bounding boxes of the live entities in a world.
type EntitySource interface {
	EntityBoxes() []cube.BBox
}

// View answers the block-level questions targeting needs about a Source.
type View struct {
	src      Source
	entities EntitySource
}

// NewView creates a View over the sources passed. entities may be nil.
func NewView(src Source, entities EntitySource) *View {
	return &View{src: src, entities: entities}
}

// Block ...
func (v *View) Block(pos cube.Pos) world.Block {
	return v.src.Block(pos)
}

// RelativeBoxes returns the shape of the block at pos, relative to the block's origin.
func (v *View) RelativeBoxes(pos cube.Pos) []cube.BBox {
	return BlockBoxes(v.src.Block(pos), pos, v.src)
}

// Boxes returns the shape of the block at pos in world coordinates.
func (v *View) Boxes(pos cube.Pos) []cube.BBox {
	boxes := v.RelativeBoxes(pos)
	out := make([]cube.BBox, len(boxes))
	for i, bb := range boxes {
		out[i] = bb.Translate(pos.Vec3())
	}
	return out
}

// SolidTop returns true if the upper face of the block at pos is solid.
func (v *View) SolidTop(pos cube.Pos) bool {
	return v.src.Block(pos).Model().FaceSolid(pos, cube.FaceUp, v.src)
}

// AirOrLiquid returns true if the block at pos is air or a liquid.
func (v *View) AirOrLiquid(pos cube.Pos) bool {
	switch v.src.Block(pos).(type) {
	case block.Air, world.Liquid:
		return true
	}
	return false
}

// Replaceable returns true if the block at pos may be replaced by placing with.
func (v *View) Replaceable(pos cube.Pos, with world.Block) bool {
	r, ok := v.src.Block(pos).(block.Replaceable)
	return ok && r.ReplaceableBy(with)
}

// ReplaceableAny returns true if the block at pos gives way to placements in general.
func (v *View) ReplaceableAny(pos cube.Pos) bool {
	_, ok := v.src.Block(pos).(block.Replaceable)
	return ok
}

// BlockedByEntities returns true if a live entity overlaps the cell at pos.
func (v *View) BlockedByEntities(pos cube.Pos) bool {
	if v.entities == nil {
		return false
	}
	cell := game.FullBlock.Translate(pos.Vec3())
	for _, bb := range v.entities.EntityBoxes() {
		if bb.IntersectsWith(cell) {
			return true
		}
	}
	return false
}

// RaycastResult is the first block hit by a ray.
type RaycastResult struct {
	Pos   cube.Pos
	Face  cube.Face
	Point mgl64.Vec3
}

// Raycast returns the first block shape hit by the segment from start to end.
func (v *View) Raycast(start, end mgl64.Vec3) (RaycastResult, bool) {
	for pos := range game.BlocksBetween(start, end) {
		var (
			best     RaycastResult
			bestDist = -1.0
		)
		for _, bb := range v.Boxes(pos) {
			res, ok := traceBox(bb, start, end)
			if !ok {
				continue
			}
			if d := res.Point.Sub(start).LenSqr(); bestDist < 0 || d < bestDist {
				best, bestDist = res, d
				best.Pos = pos
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return RaycastResult{}, false
}
