package rotation

import (
	"cmp"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Preference ranks rotations against each other and proposes the spot an actor would prefer to
// aim at before any searching is done.
type Preference interface {
	// Compare returns a negative number if a is preferred over b, a positive number if b is preferred
	// over a and zero if neither is.
	Compare(a, b Rotation) int
	// PreferredSpot returns the point the actor would aim at if nothing were in the way.
	PreferredSpot(box cube.BBox, eye mgl64.Vec3, rng float64) mgl64.Vec3
}

// LeastDifference prefers rotations closer to a base rotation.
type LeastDifference struct {
	Base Rotation
}

// LeastDifferenceTo prefers rotations close to the current rotation of the actor.
func LeastDifferenceTo(current Rotation) LeastDifference {
	return LeastDifference{Base: current}
}

// LeastDifferenceToPoint prefers rotations close to the straight line from eye to point.
func LeastDifferenceToPoint(point, eye mgl64.Vec3) LeastDifference {
	return LeastDifference{Base: LookingAt(point, eye)}
}

func (p LeastDifference) Compare(a, b Rotation) int {
	return cmp.Compare(a.AngleTo(p.Base), b.AngleTo(p.Base))
}

func (p LeastDifference) PreferredSpot(_ cube.BBox, eye mgl64.Vec3, rng float64) mgl64.Vec3 {
	return eye.Add(p.Base.DirectionVector().Mul(rng))
}
