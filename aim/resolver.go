package aim

import (
	"cmp"
	"io"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/assert"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/world"
	"github.com/sirupsen/logrus"
)

// Resolver finds rotations that let an actor look at boxes and blocks in a world.
type Resolver struct {
	world  *world.View
	log    logrus.FieldLogger
	points int
}

// NewResolver creates a Resolver over the world passed. points is the projection sample budget,
// DefaultProjectionPoints is used if it is not positive. log may be nil.
func NewResolver(w *world.View, log logrus.FieldLogger, points int) *Resolver {
	if points <= 0 {
		points = DefaultProjectionPoints
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Resolver{world: w, log: log, points: points}
}

// World returns the world the resolver queries.
func (r *Resolver) World() *world.View {
	return r.world
}

// BoxQuery holds the parameters of RaytraceBox.
type BoxQuery struct {
	// Range is the distance within which a visible spot may be aimed at.
	Range float64
	// WallsRange is the distance within which any spot may be aimed at, visible or not.
	WallsRange float64
	// Visibility decides whether spots are visible. BoxVisibility is used if nil.
	Visibility VisibilityPredicate
	// Preference ranks rotations. A straight line to the box centre is preferred if nil.
	Preference rotation.Preference
	// FutureTarget, if set, is the box the target is predicted to occupy later. Spots whose line of
	// sight also passes through it are favoured.
	FutureTarget *cube.BBox
	// IgnoreVisibility lets invisible candidates compete with visible ones on preference alone.
	IgnoreVisibility bool
}

func (r *Resolver) newTracker(eye mgl64.Vec3, q BoxQuery) Tracker {
	if q.FutureTarget != nil {
		return NewPredictionTracker(q.Preference, eye, *q.FutureTarget, q.IgnoreVisibility)
	}
	return NewTracker(q.Preference, q.IgnoreVisibility)
}

// RaytraceBox finds the best rotation from eye to a spot on box. A spot qualifies if it is
// visible and within Range, or within WallsRange regardless of visibility. Visible spots are
// preferred over invisible ones.
func (r *Resolver) RaytraceBox(eye mgl64.Vec3, box cube.BBox, q BoxQuery) (Candidate, bool) {
	assert.IsTrue(q.Range >= 0 && q.WallsRange >= 0, "ranges must not be negative (range=%v walls=%v)", q.Range, q.WallsRange)
	if q.Visibility == nil {
		q.Visibility = BoxVisibility{World: r.world}
	}
	if q.Preference == nil {
		q.Preference = rotation.LeastDifferenceToPoint(game.BoxCenter(box), eye)
	}
	rangeSq, wallsSq := q.Range*q.Range, q.WallsRange*q.WallsRange

	preferred := q.Preference.PreferredSpot(box, eye, q.Range)
	var (
		onBox mgl64.Vec3
		ok    bool
	)
	if game.BoxContains(box, eye) && game.BoxContains(box, preferred) {
		onBox, ok = preferred, true
	} else {
		onBox, ok = game.BoxRaycast(box, eye, preferred)
	}
	if ok {
		dist := onBox.Sub(eye).LenSqr()
		visible := q.Visibility.IsVisible(eye, onBox)
		if dist < wallsSq || (visible && dist < rangeSq) {
			return Candidate{Rotation: rotation.LookingAt(preferred, eye), Point: onBox, Visible: visible}, true
		}
	}

	tracker := r.newTracker(eye, q)
	consider := func(spot mgl64.Vec3) {
		r.considerSpot(spot, box, eye, q.Visibility, rangeSq, wallsSq, tracker)
	}
	consider(preferred)
	consider(game.ClosestPointOnBox(eye, box))
	r.scanBox(eye, box, consider)

	return tracker.Result()
}

// considerSpot offers the point where the line from eye through spot meets box to the tracker,
// if that point is within range.
func (r *Resolver) considerSpot(spot mgl64.Vec3, box cube.BBox, eye mgl64.Vec3, vis VisibilityPredicate, rangeSq, wallsSq float64, tracker Tracker) {
	// Doubling the line keeps the raycast from stopping short of the box due to rounding.
	target := spot.Sub(eye).Mul(2).Add(eye)

	var onBox mgl64.Vec3
	if game.BoxContains(box, eye) && game.BoxContains(box, target) {
		onBox = target
	} else {
		hit, ok := game.BoxRaycast(box, eye, target)
		if !ok {
			return
		}
		onBox = hit
	}

	dist := onBox.Sub(eye).LenSqr()
	if dist >= rangeSq && dist >= wallsSq {
		return
	}
	visible := vis.IsVisible(eye, onBox)
	if !visible && dist >= wallsSq {
		return
	}
	tracker.Consider(Candidate{Rotation: rotation.LookingAt(onBox, eye), Point: onBox, Visible: visible})
}

// scanBox calls fn with sample points on box. If eye is inside the box, a grid through the
// inside of the box is used instead.
func (r *Resolver) scanBox(eye mgl64.Vec3, box cube.BBox, fn func(mgl64.Vec3)) {
	if ProjectPointsOnBox(eye, box, r.points, fn) {
		return
	}
	r.log.WithField("box", box).Debug("eye inside box, scanning grid")
	gridPoints(box, 0.1, 0.9, 0.1, fn)
}

// sortedBoxes returns the world shape of the block at pos, largest box first.
func (r *Resolver) sortedBoxes(pos cube.Pos) []cube.BBox {
	boxes := r.world.Boxes(pos)
	slices.SortStableFunc(boxes, func(a, b cube.BBox) int {
		return cmp.Compare(game.BoxVolume(b), game.BoxVolume(a))
	})
	return boxes
}

// RaytraceBlock finds the best rotation from eye to a spot on the block at pos, trying the
// boxes of its shape from largest to smallest. The first hit of any ray must be the block itself.
func (r *Resolver) RaytraceBlock(eye mgl64.Vec3, pos cube.Pos, rng, wallsRange float64) (Candidate, bool) {
	for _, box := range r.sortedBoxes(pos) {
		c, ok := r.RaytraceBox(eye, box, BoxQuery{
			Range:      rng,
			WallsRange: wallsRange,
			Visibility: BlockVisibility{World: r.world, Expected: pos},
			Preference: rotation.LeastDifferenceToPoint(pos.Vec3Centre(), eye),
		})
		if ok {
			return c, true
		}
	}
	return Candidate{}, false
}

// CanSeeBox returns true if any spot of box can be aimed at from eye. If expected is set, the
// spot must be on that block.
func (r *Resolver) CanSeeBox(eye mgl64.Vec3, box cube.BBox, rng, wallsRange float64, expected *cube.Pos) bool {
	if game.BoxContains(box, eye) {
		return true
	}
	var vis VisibilityPredicate = BoxVisibility{World: r.world}
	if expected != nil {
		vis = BlockVisibility{World: r.world, Expected: *expected}
	}
	rangeSq, wallsSq := rng*rng, wallsRange*wallsRange

	found := false
	r.scanBox(eye, box, func(spot mgl64.Vec3) {
		if found {
			return
		}
		dist := spot.Sub(eye).LenSqr()
		if dist > rangeSq {
			return
		}
		if dist > wallsSq && !vis.IsVisible(eye, spot) {
			return
		}
		found = true
	})
	return found
}

// CanSeeUpperBlockSide returns true if the top of the block at pos can be seen from eye.
func (r *Resolver) CanSeeUpperBlockSide(eye mgl64.Vec3, pos cube.Pos, rng, wallsRange float64) bool {
	rangeSq, wallsSq := rng*rng, wallsRange*wallsRange
	up := cube.FaceUp
	vis := BlockVisibility{World: r.world, Expected: pos, Side: &up}

	for _, x := range []float64{0.1, 0.5, 0.9} {
		for _, z := range []float64{0.1, 0.5, 0.9} {
			spot := pos.Vec3().Add(mgl64.Vec3{x, 0.99, z})
			dist := spot.Sub(eye).LenSqr()
			if dist > rangeSq {
				continue
			}
			if dist <= wallsSq || vis.IsVisible(eye, spot) {
				return true
			}
		}
	}
	return false
}

// RaytraceUpperBlockSide finds the best rotation looking at the top of the block at pos. Rotations
// in exclude are skipped, and the grid is sampled more finely when any are given.
func (r *Resolver) RaytraceUpperBlockSide(eye mgl64.Vec3, pos cube.Pos, rng, wallsRange float64, pref rotation.Preference, exclude []rotation.Rotation) (Candidate, bool) {
	rangeSq, wallsSq := rng*rng, wallsRange*wallsRange
	up := cube.FaceUp
	vis := BlockVisibility{World: r.world, Expected: pos, Side: &up}
	if pref == nil {
		pref = rotation.LeastDifferenceToPoint(pos.Vec3Centre().Add(mgl64.Vec3{0, 0.5, 0}), eye)
	}
	tracker := NewTracker(pref, false)

	step := 0.1
	if len(exclude) > 0 {
		step = 0.05
	}
	base := pos.Vec3().Add(mgl64.Vec3{0, 0.9, 0})
	for _, x := range game.Steps(0.1, 0.9, step) {
		for _, z := range game.Steps(0.1, 0.9, step) {
			spot := base.Add(mgl64.Vec3{x, 0, z})
			dist := spot.Sub(eye).LenSqr()
			if dist > rangeSq {
				continue
			}
			visible := vis.IsVisible(eye, spot)
			if !visible && dist > wallsSq {
				continue
			}
			rot := rotation.LookingAt(spot, eye)
			if slices.Contains(exclude, rot) {
				continue
			}
			tracker.Consider(Candidate{Rotation: rot, Point: spot, Visible: visible})
		}
	}
	return tracker.Result()
}

// RaytraceBlockSide finds the best rotation looking at the given side of the block at pos.
func (r *Resolver) RaytraceBlockSide(side cube.Face, pos cube.Pos, eye mgl64.Vec3, rangeSq, wallsSq float64) (Candidate, bool) {
	vis := BlockVisibility{World: r.world, Expected: pos, Side: &side}
	pref := rotation.LeastDifferenceToPoint(pos.Vec3Centre(), eye)
	steps := game.Steps(0.05, 0.95, 0.1)

	for _, box := range r.sortedBoxes(pos) {
		tracker := NewTracker(pref, false)
		face := game.BoxFace(box, side)
		dims := face.Dimensions()
		for _, a := range steps {
			for _, b := range steps {
				r.considerSpot(face.From.Add(sidePoint(side, dims, a, b)), box, eye, vis, rangeSq, wallsSq, tracker)
			}
		}
		if c, ok := tracker.Result(); ok {
			return c, true
		}
	}
	return Candidate{}, false
}

// sidePoint maps the relative coordinates a and b onto the two axes the face of side spans.
func sidePoint(side cube.Face, dims mgl64.Vec3, a, b float64) mgl64.Vec3 {
	switch side.Axis() {
	case cube.X:
		return mgl64.Vec3{0, dims.Y() * a, dims.Z() * b}
	case cube.Y:
		return mgl64.Vec3{dims.X() * a, 0, dims.Z() * b}
	default:
		return mgl64.Vec3{dims.X() * a, dims.Y() * b, 0}
	}
}

// FindVisiblePointFromVirtualEye looks for a spot on box that pred considers visible from a point
// rangeToTest behind the spot, on the line from eye. Spots closest to the centre of the box are
// tried first.
func (r *Resolver) FindVisiblePointFromVirtualEye(eye mgl64.Vec3, box cube.BBox, rangeToTest float64, pred VisibilityPredicate) (mgl64.Vec3, bool) {
	points, ok := ProjectPoints(eye, box, virtualEyeProjectionPoints)
	if !ok {
		return mgl64.Vec3{}, false
	}
	center := game.BoxCenter(box)
	slices.SortStableFunc(points, func(a, b mgl64.Vec3) int {
		return cmp.Compare(a.Sub(center).LenSqr(), b.Sub(center).LenSqr())
	})

	for _, spot := range points {
		vec := spot.Sub(eye)
		onBox, ok := game.BoxRaycast(box, eye, vec.Mul(2).Add(eye))
		if !ok || vec.LenSqr() <= game.Epsilon {
			continue
		}
		rayStart := onBox.Sub(vec.Normalize().Mul(rangeToTest))
		if pred.IsVisible(rayStart, onBox) {
			return onBox, true
		}
	}
	return mgl64.Vec3{}, false
}
