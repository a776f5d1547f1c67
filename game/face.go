package game

import (
	"math"
	"math/rand/v2"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// AlignedFace is an axis-aligned rectangle in space. At least one of its dimensions is zero for
// faces taken from a box, but the type itself does not enforce it.
type AlignedFace struct {
	From, To mgl64.Vec3
}

// NewAlignedFace returns the face spanning a and b, ordering the corners so that From <= To.
func NewAlignedFace(a, b mgl64.Vec3) AlignedFace {
	return AlignedFace{
		From: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		To:   mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// Dimensions returns the extent of the face on each axis.
func (f AlignedFace) Dimensions() mgl64.Vec3 {
	return f.To.Sub(f.From)
}

// Center ...
func (f AlignedFace) Center() mgl64.Vec3 {
	return f.From.Add(f.To).Mul(0.5)
}

// Empty returns true if the face is inverted on any axis.
func (f AlignedFace) Empty() bool {
	return f.To[0] < f.From[0] || f.To[1] < f.From[1] || f.To[2] < f.From[2]
}

// flatAxis returns the axis with the smallest extent.
func (f AlignedFace) flatAxis() int {
	d := f.Dimensions()
	axis := 0
	for i := 1; i < 3; i++ {
		if d[i] < d[axis] {
			axis = i
		}
	}
	return axis
}

// Area returns the area of the face, measured on the two axes it spans.
func (f AlignedFace) Area() float64 {
	if f.Empty() {
		return 0
	}
	d := f.Dimensions()
	switch f.flatAxis() {
	case 0:
		return d[1] * d[2]
	case 1:
		return d[0] * d[2]
	default:
		return d[0] * d[1]
	}
}

// Offset translates the face by v.
func (f AlignedFace) Offset(v mgl64.Vec3) AlignedFace {
	return AlignedFace{From: f.From.Add(v), To: f.To.Add(v)}
}

// Box returns the face as a (flat) bounding box.
func (f AlignedFace) Box() cube.BBox {
	return cube.Box(f.From[0], f.From[1], f.From[2], f.To[0], f.To[1], f.To[2])
}

// Clamp limits the face to the bounds of the box passed.
func (f AlignedFace) Clamp(b cube.BBox) AlignedFace {
	mi, ma := b.Min(), b.Max()
	var out AlignedFace
	for i := 0; i < 3; i++ {
		out.From[i] = math.Max(mi[i], math.Min(f.From[i], ma[i]))
		out.To[i] = math.Max(mi[i], math.Min(f.To[i], ma[i]))
	}
	return out
}

// TruncateY raises the bottom of the face to minY. ok is false if nothing of the face remains.
func (f AlignedFace) TruncateY(minY float64) (AlignedFace, bool) {
	f.From[1] = math.Max(f.From[1], minY)
	return f, !f.Empty()
}

// RandomPoint returns a uniformly random point on the face.
func (f AlignedFace) RandomPoint(r *rand.Rand) mgl64.Vec3 {
	d := f.Dimensions()
	return f.From.Add(mgl64.Vec3{d[0] * r.Float64(), d[1] * r.Float64(), d[2] * r.Float64()})
}

// Clip clamps p into the face.
func (f AlignedFace) Clip(p mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		p[i] = math.Max(f.From[i], math.Min(p[i], f.To[i]))
	}
	return p
}

// ToPlane returns the plane the face lies on.
func (f AlignedFace) ToPlane() NormalizedPlane {
	var normal mgl64.Vec3
	normal[f.flatAxis()] = 1
	return NormalizedPlane{Pos: f.From, Normal: normal}
}

// Edges returns the four edges of the face.
func (f AlignedFace) Edges() [4]LineSegment {
	axis := f.flatAxis()
	u, v := (axis+1)%3, (axis+2)%3

	c0 := f.From
	c1, c2 := f.From, f.From
	c1[u] = f.To[u]
	c2[v] = f.To[v]
	c3 := c1
	c3[v] = f.To[v]
	return [4]LineSegment{{c0, c1}, {c1, c3}, {c3, c2}, {c2, c0}}
}

// NearestPointTo returns the point on the face closest to the line.
func (f AlignedFace) NearestPointTo(l Line) mgl64.Vec3 {
	if p, ok := f.ToPlane().Intersection(l); ok {
		clipped := f.Clip(p)
		if clipped.Sub(p).LenSqr() <= Epsilon {
			return clipped
		}
	}

	best, bestDist := f.Center(), math.MaxFloat64
	for _, edge := range f.Edges() {
		p := edge.NearestPointToLine(l)
		if d := l.DistanceTo(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// CoerceInFace clips a line lying on the face's plane to the part that is within the face. ok is
// false if the line misses the face.
func (f AlignedFace) CoerceInFace(l Line) (LineSegment, bool) {
	const tolerance = 1e-6
	tMin, tMax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		lo, hi := f.From[i]-tolerance, f.To[i]+tolerance
		if math.Abs(l.Dir[i]) <= Epsilon {
			if l.Pos[i] < lo || l.Pos[i] > hi {
				return LineSegment{}, false
			}
			continue
		}
		t0, t1 := (lo-l.Pos[i])/l.Dir[i], (hi-l.Pos[i])/l.Dir[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin, tMax = math.Max(tMin, t0), math.Min(tMax, t1)
		if tMin > tMax {
			return LineSegment{}, false
		}
	}
	if math.IsInf(tMin, 0) || math.IsInf(tMax, 0) {
		return LineSegment{}, false
	}
	return LineSegment{Start: f.Clip(l.PointAt(tMin)), End: f.Clip(l.PointAt(tMax))}, true
}
