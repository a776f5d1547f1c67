package game

import (
	"math"

	df_cube "github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/cube/trace"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// CubeBoxToDFBox converts a float32-cube bounding box to a dragonfly bounding box.
func CubeBoxToDFBox(b cube.BBox) df_cube.BBox {
	return df_cube.Box(
		float64(b.Min().X()), float64(b.Min().Y()), float64(b.Min().Z()),
		float64(b.Max().X()), float64(b.Max().Y()), float64(b.Max().Z()),
	)
}

// AABBFromDimensions returns a bounding box from the given dimensions.
func AABBFromDimensions(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, 0, -h,
		h, height, h,
	)
}

// FullBlock is the box of a full, solid block at the origin.
var FullBlock = df_cube.Box(0, 0, 0, 1, 1, 1)

// BoxCenter returns the centre point of the box.
func BoxCenter(b df_cube.BBox) mgl64.Vec3 {
	return b.Min().Add(b.Max()).Mul(0.5)
}

// BoxLengths returns the length of the box on each axis.
func BoxLengths(b df_cube.BBox) mgl64.Vec3 {
	return b.Max().Sub(b.Min())
}

// BoxVolume ...
func BoxVolume(b df_cube.BBox) float64 {
	l := BoxLengths(b)
	return l.X() * l.Y() * l.Z()
}

// BoxCorners returns the eight corners of the box.
func BoxCorners(b df_cube.BBox) [8]mgl64.Vec3 {
	mi, ma := b.Min(), b.Max()
	return [8]mgl64.Vec3{
		{mi.X(), mi.Y(), mi.Z()},
		{mi.X(), mi.Y(), ma.Z()},
		{mi.X(), ma.Y(), mi.Z()},
		{mi.X(), ma.Y(), ma.Z()},
		{ma.X(), mi.Y(), mi.Z()},
		{ma.X(), mi.Y(), ma.Z()},
		{ma.X(), ma.Y(), mi.Z()},
		{ma.X(), ma.Y(), ma.Z()},
	}
}

// BoxContains returns true if the point lies inside the box. The minimum bounds are inclusive
// and the maximum bounds are exclusive, so adjacent boxes never both contain a point.
func BoxContains(b df_cube.BBox, p mgl64.Vec3) bool {
	mi, ma := b.Min(), b.Max()
	return p.X() >= mi.X() && p.X() < ma.X() &&
		p.Y() >= mi.Y() && p.Y() < ma.Y() &&
		p.Z() >= mi.Z() && p.Z() < ma.Z()
}

// ClosestPointOnBox returns the point on or in the box that is closest to p.
func ClosestPointOnBox(p mgl64.Vec3, b df_cube.BBox) mgl64.Vec3 {
	mi, ma := b.Min(), b.Max()
	return mgl64.Vec3{
		math.Max(mi.X(), math.Min(p.X(), ma.X())),
		math.Max(mi.Y(), math.Min(p.Y(), ma.Y())),
		math.Max(mi.Z(), math.Min(p.Z(), ma.Z())),
	}
}

// BoxRaycast returns the point where the segment from start to end enters the box.
func BoxRaycast(b df_cube.BBox, start, end mgl64.Vec3) (mgl64.Vec3, bool) {
	res, ok := trace.BBoxIntercept(b, start, end)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return res.Position(), true
}

// BoxHitByRay returns true if the infinite ray from start through through hits the box.
func BoxHitByRay(b df_cube.BBox, start, through mgl64.Vec3) bool {
	if BoxContains(b, start) {
		return true
	}
	dir := through.Sub(start)
	if dir.LenSqr() <= Epsilon {
		return false
	}
	reach := start.Sub(BoxCenter(b)).Len() + BoxLengths(b).Len() + 1
	_, ok := BoxRaycast(b, start, start.Add(dir.Normalize().Mul(reach)))
	return ok
}

// BoxFace returns the side of the box that faces in the given direction.
func BoxFace(b df_cube.BBox, face df_cube.Face) AlignedFace {
	from, to := b.Min(), b.Max()
	switch face {
	case df_cube.FaceDown:
		to[1] = from[1]
	case df_cube.FaceUp:
		from[1] = to[1]
	case df_cube.FaceNorth:
		to[2] = from[2]
	case df_cube.FaceSouth:
		from[2] = to[2]
	case df_cube.FaceWest:
		to[0] = from[0]
	case df_cube.FaceEast:
		from[0] = to[0]
	}
	return AlignedFace{From: from, To: to}
}

// FaceNormal returns the unit vector pointing out of the given face.
func FaceNormal(face df_cube.Face) mgl64.Vec3 {
	return df_cube.Pos{}.Side(face).Vec3()
}
