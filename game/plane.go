package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizedPlane is a plane through Pos with the unit normal Normal.
type NormalizedPlane struct {
	Pos, Normal mgl64.Vec3
}

// NewPlane creates a plane through pos with the normal given, which is normalized.
func NewPlane(pos, normal mgl64.Vec3) NormalizedPlane {
	return NormalizedPlane{Pos: pos, Normal: normal.Normalize()}
}

// PlaneFromParams creates the plane through base that contains both directions.
func PlaneFromParams(base, dirA, dirB mgl64.Vec3) NormalizedPlane {
	return NewPlane(base, dirA.Cross(dirB))
}

// SignedDistance returns the distance of p from the plane, positive on the side the normal
// points to.
func (p NormalizedPlane) SignedDistance(v mgl64.Vec3) float64 {
	return v.Sub(p.Pos).Dot(p.Normal)
}

// Intersection returns the point where the line crosses the plane. ok is false if the line runs
// parallel to the plane.
func (p NormalizedPlane) Intersection(l Line) (mgl64.Vec3, bool) {
	denom := p.Normal.Dot(l.Dir)
	if math.Abs(denom) <= Epsilon {
		return mgl64.Vec3{}, false
	}
	t := p.Normal.Dot(p.Pos.Sub(l.Pos)) / denom
	return l.PointAt(t), true
}

// IntersectPlane returns the line along which both planes meet. ok is false if the planes are
// parallel.
func (p NormalizedPlane) IntersectPlane(other NormalizedPlane) (Line, bool) {
	dir := p.Normal.Cross(other.Normal)
	if dir.LenSqr() <= Epsilon {
		return Line{}, false
	}
	h1, h2 := p.Normal.Dot(p.Pos), other.Normal.Dot(other.Pos)
	dot := p.Normal.Dot(other.Normal)
	det := 1 - dot*dot

	c1 := (h1 - h2*dot) / det
	c2 := (h2 - h1*dot) / det
	return Line{Pos: p.Normal.Mul(c1).Add(other.Normal.Mul(c2)), Dir: dir}, true
}

// RotationMatricesFor returns a pair of rotations between world space and a frame whose X axis
// points along vec. to maps frame coordinates to world coordinates and back is its inverse.
func RotationMatricesFor(vec mgl64.Vec3) (to, back mgl64.Mat3) {
	yaw := math.Atan2(vec.Z(), vec.X())
	pitch := math.Atan2(vec.Y(), math.Hypot(vec.X(), vec.Z()))
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)

	to = mgl64.Mat3FromCols(
		mgl64.Vec3{cy * cp, sp, sy * cp},
		mgl64.Vec3{-cy * sp, cp, -sy * sp},
		mgl64.Vec3{-sy, 0, cy},
	)
	return to, to.Transpose()
}

// PlaneSection is the parallelogram spanned by DirA and DirB from Origin.
type PlaneSection struct {
	Origin     mgl64.Vec3
	DirA, DirB mgl64.Vec3
}

// CastPointsUniformly calls fn with at most maxPoints points spread evenly over the section. The
// number of samples along each direction is proportional to its length.
func (s PlaneSection) CastPointsUniformly(maxPoints int, fn func(mgl64.Vec3)) {
	if maxPoints <= 0 {
		return
	}
	lenA, lenB := s.DirA.Len(), s.DirB.Len()

	stepsA, stepsB := 1, 1
	switch {
	case lenA <= Epsilon && lenB <= Epsilon:
	case lenB <= Epsilon:
		stepsA = maxPoints
	case lenA <= Epsilon:
		stepsB = maxPoints
	default:
		stepsA = int(math.Round(math.Sqrt(float64(maxPoints) * lenA / lenB)))
		stepsA = max(1, min(stepsA, maxPoints))
		stepsB = max(1, maxPoints/stepsA)
	}

	for i := 0; i < stepsA; i++ {
		a := s.DirA.Mul((float64(i) + 0.5) / float64(stepsA))
		for j := 0; j < stepsB; j++ {
			fn(s.Origin.Add(a).Add(s.DirB.Mul((float64(j) + 0.5) / float64(stepsB))))
		}
	}
}
