package aim

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/world"
)

// rayNudge is how far visibility rays are shortened or lengthened around the spot they test, so
// a spot lying exactly on a surface is not counted as hitting or missing it.
const rayNudge = 1e-3

// VisibilityPredicate decides whether spot can be seen from eye.
type VisibilityPredicate interface {
	IsVisible(eye, spot mgl64.Vec3) bool
}

// VisibilityFunc is a function implementing VisibilityPredicate.
type VisibilityFunc func(eye, spot mgl64.Vec3) bool

func (f VisibilityFunc) IsVisible(eye, spot mgl64.Vec3) bool {
	return f(eye, spot)
}

// BoxVisibility sees a spot if nothing in the world lies between the eye and the spot.
type BoxVisibility struct {
	World *world.View
}

func (v BoxVisibility) IsVisible(eye, spot mgl64.Vec3) bool {
	_, hit := v.World.Raycast(eye, nudge(eye, spot, -rayNudge))
	return !hit
}

// BlockVisibility sees a spot if the first block a ray towards it hits is Expected. If Side is
// set, the ray also has to hit that side of the block, and if MaxRange is positive, the hit has to
// be within that distance of the eye.
type BlockVisibility struct {
	World    *world.View
	Expected cube.Pos
	Side     *cube.Face
	MaxRange float64
}

func (v BlockVisibility) IsVisible(eye, spot mgl64.Vec3) bool {
	res, ok := v.World.Raycast(eye, nudge(eye, spot, rayNudge))
	if !ok || res.Pos != v.Expected {
		return false
	}
	if v.Side != nil && res.Face != *v.Side {
		return false
	}
	return v.MaxRange <= 0 || res.Point.Sub(eye).LenSqr() <= v.MaxRange*v.MaxRange
}

// ProjectileVisibility sees a spot if a projectile launched from the eye towards it reaches it
// without hitting the world. The flight is simulated one tick at a time with drag and gravity.
// A zero Speed tests a straight line instead.
type ProjectileVisibility struct {
	World   *world.View
	Speed   float64
	Drag    float64
	Gravity float64
	// MaxTicks bounds the simulation. Zero means 200.
	MaxTicks int
}

func (v ProjectileVisibility) IsVisible(eye, spot mgl64.Vec3) bool {
	if v.Speed <= 0 {
		return BoxVisibility{World: v.World}.IsVisible(eye, spot)
	}
	delta := spot.Sub(eye)
	target := delta.Len()
	if target <= game.Epsilon {
		return true
	}
	maxTicks := v.MaxTicks
	if maxTicks <= 0 {
		maxTicks = 200
	}

	pos, vel := eye, delta.Mul(v.Speed/target)
	for range maxTicks {
		next := pos.Add(vel)
		if next.Sub(eye).Len() >= target {
			// The final segment only needs to reach the spot itself.
			next = nudge(pos, spot, -rayNudge)
			_, hit := v.World.Raycast(pos, next)
			return !hit
		}
		if _, hit := v.World.Raycast(pos, next); hit {
			return false
		}
		pos = next
		vel = vel.Mul(v.Drag).Sub(mgl64.Vec3{0, v.Gravity, 0})
	}
	return false
}

// nudge moves end along the line from start by the distance passed.
func nudge(start, end mgl64.Vec3, dist float64) mgl64.Vec3 {
	dir := end.Sub(start)
	l := dir.Len()
	if l <= game.Epsilon {
		return end
	}
	return end.Add(dir.Mul(dist / l))
}

// ArrowVisibility returns a ProjectileVisibility using the flight of a fully drawn arrow.
func ArrowVisibility(w *world.View) ProjectileVisibility {
	return ProjectileVisibility{World: w, Speed: 3, Drag: 0.99, Gravity: 0.05}
}
