package rotation

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
)

// Rotation is a yaw/pitch pair in degrees. Positive pitch looks down and a yaw of 0 looks
// towards positive Z.
type Rotation struct {
	Yaw, Pitch float32
}

// Delta is the difference between two rotations.
type Delta struct {
	Yaw, Pitch float32
}

// Len returns the length of the delta.
func (d Delta) Len() float32 {
	return math32.Hypot(d.Yaw, d.Pitch)
}

// LookingAt returns the rotation needed for an actor at eye to be looking at point.
func LookingAt(point, eye mgl64.Vec3) Rotation {
	return FromVec(point.Sub(eye))
}

// FromVec returns the rotation that looks along the vector passed.
func FromVec(v mgl64.Vec3) Rotation {
	yaw := mgl64.RadToDeg(math.Atan2(v.Z(), v.X())) - 90
	pitch := -mgl64.RadToDeg(math.Atan2(v.Y(), math.Hypot(v.X(), v.Z())))
	return Rotation{
		Yaw:   float32(game.WrapDegrees64(yaw)),
		Pitch: float32(game.WrapDegrees64(pitch)),
	}
}

// DirectionVector returns the unit vector the rotation looks along.
func (r Rotation) DirectionVector() mgl64.Vec3 {
	return game.DirectionVector(r.Yaw, r.Pitch)
}

// DeltaTo returns the shortest delta from r to other.
func (r Rotation) DeltaTo(other Rotation) Delta {
	return Delta{
		Yaw:   game.WrapDegrees32(other.Yaw - r.Yaw),
		Pitch: game.WrapDegrees32(other.Pitch - r.Pitch),
	}
}

// AngleTo returns the angular distance to other, capped at 180 degrees.
func (r Rotation) AngleTo(other Rotation) float32 {
	return math32.Min(r.DeltaTo(other).Len(), 180)
}

// Normalize wraps the yaw into [-180, 180) and clamps the pitch into [-90, 90].
func (r Rotation) Normalize() Rotation {
	return Rotation{
		Yaw:   game.WrapDegrees32(r.Yaw),
		Pitch: game.ClampFloat(r.Pitch, -90, 90),
	}
}

// Towards steps from r to target, moving at most maxYaw and maxPitch degrees on each axis.
func (r Rotation) Towards(target Rotation, maxYaw, maxPitch float32) Rotation {
	d := r.DeltaTo(target)
	return Rotation{
		Yaw:   r.Yaw + game.ClampFloat(d.Yaw, -maxYaw, maxYaw),
		Pitch: r.Pitch + game.ClampFloat(d.Pitch, -maxPitch, maxPitch),
	}.Normalize()
}

// ApproxEq returns true if both axes of the rotations are within tolerance degrees of each other.
func (r Rotation) ApproxEq(other Rotation, tolerance float32) bool {
	d := r.DeltaTo(other)
	return math32.Abs(d.Yaw) <= tolerance && math32.Abs(d.Pitch) <= tolerance
}
