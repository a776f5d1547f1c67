package aim

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/assert"
	"github.com/oomph-ac/sightline/game"
)

const (
	// DefaultProjectionPoints is the sample budget used when resolving rotations to a box.
	DefaultProjectionPoints = 256
	// virtualEyeProjectionPoints is the sample budget used by the virtual eye search.
	virtualEyeProjectionPoints = 128
)

// ProjectPointsOnBox casts up to maxPoints rays from eye through a rectangle that covers the
// silhouette of box as seen from eye, and calls fn with every point where such a ray enters the
// box. It returns false without calling fn if eye is inside the box.
func ProjectPointsOnBox(eye mgl64.Vec3, box cube.BBox, maxPoints int, fn func(mgl64.Vec3)) bool {
	assert.IsTrue(maxPoints > 0, "projection sample budget must be positive (got %d)", maxPoints)
	if game.BoxContains(box, eye) {
		return false
	}
	center := game.BoxCenter(box)
	line := game.LineFromPoints(eye, center)
	if line.Dir.LenSqr() <= game.Epsilon {
		return false
	}
	corners := game.BoxCorners(box)

	var (
		origin  mgl64.Vec3
		minDist = math.MaxFloat64
	)
	for _, c := range corners {
		p := line.NearestPointTo(c)
		if d := p.Sub(eye).LenSqr(); d < minDist {
			origin, minDist = p, d
		}
	}
	// Pull the frame towards the eye so every corner projects in front of it.
	origin = game.MoveTowards(origin, eye, 0.1)

	plane := game.NewPlane(origin, line.Dir)
	to, back := game.RotationMatricesFor(plane.Normal)

	var minY, maxY, minZ, maxZ float64
	for _, c := range corners {
		p, ok := plane.Intersection(game.LineFromPoints(eye, c))
		if !ok {
			continue
		}
		local := back.Mul3x1(p.Sub(origin))
		minY, maxY = math.Min(minY, local.Y()), math.Max(maxY, local.Y())
		minZ, maxZ = math.Min(minZ, local.Z()), math.Max(maxZ, local.Z())
	}

	section := game.PlaneSection{
		Origin: to.Mul3x1(mgl64.Vec3{0, minY, minZ}).Add(origin),
		DirA:   to.Mul3x1(mgl64.Vec3{0, maxY - minY, 0}),
		DirB:   to.Mul3x1(mgl64.Vec3{0, 0, maxZ - minZ}),
	}
	section.CastPointsUniformly(maxPoints, func(p mgl64.Vec3) {
		far := game.MoveTowards(p, eye, -100)
		if hit, ok := game.BoxRaycast(box, eye, far); ok {
			fn(hit)
		}
	})
	return true
}

// ProjectPoints collects the points of ProjectPointsOnBox. ok is false if eye is inside the box.
func ProjectPoints(eye mgl64.Vec3, box cube.BBox, maxPoints int) (points []mgl64.Vec3, ok bool) {
	ok = ProjectPointsOnBox(eye, box, maxPoints, func(p mgl64.Vec3) {
		points = append(points, p)
	})
	return points, ok
}

// gridPoints calls fn with points at the given relative steps inside box on every axis.
func gridPoints(box cube.BBox, from, to, step float64, fn func(mgl64.Vec3)) {
	steps := game.Steps(from, to, step)
	mi, lengths := box.Min(), game.BoxLengths(box)
	for _, x := range steps {
		for _, y := range steps {
			for _, z := range steps {
				fn(mi.Add(game.MulVec(lengths, mgl64.Vec3{x, y, z})))
			}
		}
	}
}
