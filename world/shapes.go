package world

import (
	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
)

// shapeOverrides holds the shapes of blocks whose dragonfly model disagrees with what the client
// targets.
var shapeOverrides = map[string][]cube.BBox{
	"minecraft:portal":            {},
	"minecraft:end_portal":        {},
	"minecraft:web":               {cube.Box(0, 0, 0, 1, 1, 1)},
	"minecraft:bed":               {cube.Box(0, 0, 0, 1, 9.0/16.0, 1)},
	"minecraft:waterlily":         {cube.Box(0, 0, 0, 1, 1.0/64.0, 1)},
	"minecraft:soul_sand":         {cube.Box(0, 0, 0, 1, 7.0/8.0, 1)},
	"minecraft:repeater":          {cube.Box(0, 0, 0, 1, 1.0/8.0, 1)},
	"minecraft:comparator":        {cube.Box(0, 0, 0, 1, 1.0/8.0, 1)},
	"minecraft:daylight_detector": {cube.Box(0, 0, 0, 1, 3.0/8.0, 1)},
	"minecraft:flower_pot":        {cube.Box(5/16.0, 0, 5/16.0, 11/16.0, 3/8.0, 11/16.0)},
	"minecraft:end_portal_frame":  {cube.Box(0, 0, 0, 1, 13.0/16.0, 1)},
}

// BlockName returns the name of the block.
func BlockName(b world.Block) string {
	n, _ := b.EncodeBlock()
	return n
}

// BlockBoxes returns the shape of the block at pos relative to its origin.
func BlockBoxes(b world.Block, pos cube.Pos, src Source) []cube.BBox {
	if boxes, ok := shapeOverrides[BlockName(b)]; ok {
		return boxes
	}
	if _, ok := b.(block.IronBars); ok {
		return ironBarsBoxes(pos, src)
	}
	return b.Model().BBox(pos, src)
}

func ironBarsBoxes(pos cube.Pos, src Source) (boxes []cube.BBox) {
	const insetDefault = 7.0 / 16.0
	const insetConnecting = 8.0 / 16.0

	pane := func(axis cube.Axis, a, b cube.Face) {
		connectA, connectB := barsConnect(pos, a, src), barsConnect(pos, b, src)
		if !connectA && !connectB {
			return
		}
		bb := cube.Box(0, 0, 0, 1, 1, 1).Stretch(axis, -insetDefault)
		if !connectA {
			bb = bb.ExtendTowards(a, -insetConnecting)
		} else if !connectB {
			bb = bb.ExtendTowards(b, -insetConnecting)
		}
		boxes = append(boxes, bb)
	}
	pane(cube.Z, cube.FaceWest, cube.FaceEast)
	pane(cube.X, cube.FaceNorth, cube.FaceSouth)

	if len(boxes) == 0 {
		boxes = append(boxes, cube.Box(0, 0, 0, 1, 1, 1).Stretch(cube.X, -insetDefault).Stretch(cube.Z, -insetDefault))
	}
	return
}

func barsConnect(pos cube.Pos, f cube.Face, src Source) bool {
	sidePos := pos.Side(f)
	switch b := src.Block(sidePos).(type) {
	case block.IronBars, block.Wall:
		return true
	default:
		return b.Model().FaceSolid(sidePos, f.Opposite(), src)
	}
}
