package world

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/cube/trace"
	"github.com/go-gl/mathgl/mgl64"
)

func traceBox(bb cube.BBox, start, end mgl64.Vec3) (RaycastResult, bool) {
	res, ok := trace.BBoxIntercept(bb, start, end)
	if !ok {
		return RaycastResult{}, false
	}
	return RaycastResult{Face: res.Face(), Point: res.Position()}, true
}
