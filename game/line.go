package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Line is an infinite line through Pos running along Dir. Dir does not need to be normalized.
type Line struct {
	Pos, Dir mgl64.Vec3
}

// LineFromPoints returns the line running through a and b.
func LineFromPoints(a, b mgl64.Vec3) Line {
	return Line{Pos: a, Dir: b.Sub(a)}
}

// PointAt returns Pos + Dir*t.
func (l Line) PointAt(t float64) mgl64.Vec3 {
	return l.Pos.Add(l.Dir.Mul(t))
}

// NearestParam returns the parameter of the point on the line closest to p.
func (l Line) NearestParam(p mgl64.Vec3) float64 {
	lenSqr := l.Dir.LenSqr()
	if lenSqr <= Epsilon {
		return 0
	}
	return p.Sub(l.Pos).Dot(l.Dir) / lenSqr
}

// NearestPointTo returns the point on the line closest to p.
func (l Line) NearestPointTo(p mgl64.Vec3) mgl64.Vec3 {
	return l.PointAt(l.NearestParam(p))
}

// DistanceTo returns the distance between p and the line.
func (l Line) DistanceTo(p mgl64.Vec3) float64 {
	return l.NearestPointTo(p).Sub(p).Len()
}

// NearestParams returns the parameters t and s such that l.PointAt(t) and other.PointAt(s) are
// the closest pair of points between both lines. ok is false if the lines are parallel.
func (l Line) NearestParams(other Line) (t, s float64, ok bool) {
	w0 := l.Pos.Sub(other.Pos)
	a, b, c := l.Dir.Dot(l.Dir), l.Dir.Dot(other.Dir), other.Dir.Dot(other.Dir)
	d, e := l.Dir.Dot(w0), other.Dir.Dot(w0)

	denom := a*c - b*b
	if math.Abs(denom) <= Epsilon {
		return 0, 0, false
	}
	return (b*e - c*d) / denom, (a*e - b*d) / denom, true
}

// LineSegment is the part of a line between Start and End.
type LineSegment struct {
	Start, End mgl64.Vec3
}

// Line returns the infinite line the segment lies on.
func (s LineSegment) Line() Line {
	return LineFromPoints(s.Start, s.End)
}

// Length ...
func (s LineSegment) Length() float64 {
	return s.End.Sub(s.Start).Len()
}

// PointAt returns the point at t along the segment, where 0 is Start and 1 is End.
func (s LineSegment) PointAt(t float64) mgl64.Vec3 {
	return s.Start.Add(s.End.Sub(s.Start).Mul(t))
}

// NearestPointTo returns the point on the segment closest to p.
func (s LineSegment) NearestPointTo(p mgl64.Vec3) mgl64.Vec3 {
	return s.PointAt(clamp01(s.Line().NearestParam(p)))
}

// NearestPointToLine returns the point on the segment closest to the infinite line l.
func (s LineSegment) NearestPointToLine(l Line) mgl64.Vec3 {
	sl := s.Line()
	t, _, ok := sl.NearestParams(l)
	if !ok {
		// Parallel: every point is equally close, the start is as good as any.
		return s.Start
	}
	return s.PointAt(clamp01(t))
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
