package aim

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/world"
	"github.com/stretchr/testify/require"
)

// targetBox is a unit box centred on (0, 0, 5).
var targetBox = cube.Box(-0.5, -0.5, 4.5, 0.5, 0.5, 5.5)

func newView(stone ...cube.Pos) *world.View {
	src := world.NewMemorySource(nil)
	for _, pos := range stone {
		src.SetBlock(pos, block.Stone{})
	}
	return world.NewView(src, src)
}

// wallAt returns a 6x6 wall of positions at the given z, centred around the z axis.
func wallAt(z int) []cube.Pos {
	var out []cube.Pos
	for x := -3; x <= 2; x++ {
		for y := -3; y <= 2; y++ {
			out = append(out, cube.Pos{x, y, z})
		}
	}
	return out
}

func TestProjectPointsRoundTrip(t *testing.T) {
	eye := mgl64.Vec3{0.3, 1.2, -0.4}
	points, ok := ProjectPoints(eye, targetBox, 64)
	require.True(t, ok)
	require.NotEmpty(t, points)
	require.LessOrEqual(t, len(points), 64)

	grown := targetBox.Grow(1e-6)
	for _, p := range points {
		require.True(t, game.BoxContains(grown, p), "%v not on box", p)

		again, ok := game.BoxRaycast(targetBox, eye, p.Sub(eye).Mul(2).Add(eye))
		require.True(t, ok)
		require.True(t, p.ApproxEqualThreshold(again, 1e-6), "%v != %v", p, again)
	}
}

func TestProjectPointsEyeInside(t *testing.T) {
	called := false
	ok := ProjectPointsOnBox(mgl64.Vec3{0, 0, 5}, targetBox, 16, func(mgl64.Vec3) { called = true })
	require.False(t, ok)
	require.False(t, called)
}

func TestProjectPointsRejectsZeroBudget(t *testing.T) {
	require.Panics(t, func() {
		ProjectPointsOnBox(mgl64.Vec3{}, targetBox, 0, func(mgl64.Vec3) {})
	})
}

func TestTrackerVisibilityDominance(t *testing.T) {
	pref := rotation.LeastDifferenceTo(rotation.Rotation{})
	worse := Candidate{Rotation: rotation.Rotation{Yaw: 30}, Visible: true}
	better := Candidate{Rotation: rotation.Rotation{Yaw: 1}, Visible: false}

	tr := NewTracker(pref, false)
	tr.Consider(better)
	tr.Consider(worse)
	res, ok := tr.Result()
	require.True(t, ok)
	require.Equal(t, worse, res)

	tr = NewTracker(pref, true)
	tr.Consider(worse)
	tr.Consider(better)
	res, _ = tr.Result()
	require.Equal(t, better, res)

	_, ok = NewTracker(pref, false).Result()
	require.False(t, ok)
}

func TestTrackerKeepsHolderOnTie(t *testing.T) {
	tr := NewTracker(rotation.LeastDifferenceTo(rotation.Rotation{}), false)
	first := Candidate{Rotation: rotation.Rotation{Yaw: 5}, Point: mgl64.Vec3{1}, Visible: true}
	tr.Consider(first)
	tr.Consider(Candidate{Rotation: rotation.Rotation{Yaw: -5}, Point: mgl64.Vec3{2}, Visible: true})
	res, _ := tr.Result()
	require.Equal(t, first, res)
}

func TestPredictionTracker(t *testing.T) {
	pref := rotation.LeastDifferenceTo(rotation.Rotation{})
	future := cube.Box(2, -0.5, 4.5, 3, 0.5, 5.5)

	straight := Candidate{Rotation: rotation.Rotation{}, Point: mgl64.Vec3{0, 0, 4.5}, Visible: true}
	towardsFuture := Candidate{Rotation: rotation.Rotation{Yaw: -25}, Point: mgl64.Vec3{2.5, 0, 5}, Visible: true}

	tr := NewPredictionTracker(pref, mgl64.Vec3{}, future, false)
	tr.Consider(straight)
	tr.Consider(towardsFuture)
	res, _ := tr.Result()
	require.Equal(t, towardsFuture, res)

	// A better, non-intersecting candidate never replaces an intersecting holder.
	tr.Consider(straight)
	res, _ = tr.Result()
	require.Equal(t, towardsFuture, res)
}

func TestRaytraceBoxDirectHit(t *testing.T) {
	r := NewResolver(newView(), nil, 0)
	c, ok := r.RaytraceBox(mgl64.Vec3{}, targetBox, BoxQuery{
		Range:      10,
		Preference: rotation.LeastDifferenceTo(rotation.Rotation{}),
	})
	require.True(t, ok)
	require.True(t, c.Visible)
	require.InDelta(t, 0, c.Rotation.Yaw, 1e-3)
	require.InDelta(t, 0, c.Rotation.Pitch, 1e-3)

	// Looking along the rotation for 5 units ends inside the box.
	require.True(t, game.BoxContains(targetBox, c.Rotation.DirectionVector().Mul(5)))
}

func TestRaytraceBoxFindsOffAxisSpot(t *testing.T) {
	r := NewResolver(newView(), nil, 0)
	c, ok := r.RaytraceBox(mgl64.Vec3{}, targetBox, BoxQuery{
		Range:      10,
		Preference: rotation.LeastDifferenceTo(rotation.Rotation{Yaw: 90}),
	})
	require.True(t, ok)
	require.True(t, c.Visible)
	require.True(t, game.BoxHitByRay(targetBox, mgl64.Vec3{}, c.Point))
	require.Less(t, c.Rotation.AngleTo(rotation.Rotation{Yaw: 90}), float32(90))
}

func TestRaytraceBoxWallFallback(t *testing.T) {
	r := NewResolver(newView(wallAt(2)...), nil, 0)
	q := BoxQuery{Range: 10, WallsRange: 6, Preference: rotation.LeastDifferenceTo(rotation.Rotation{})}

	c, ok := r.RaytraceBox(mgl64.Vec3{}, targetBox, q)
	require.True(t, ok)
	require.False(t, c.Visible)

	q.WallsRange = 0
	_, ok = r.RaytraceBox(mgl64.Vec3{}, targetBox, q)
	require.False(t, ok)
}

func TestRaytraceBoxUnreachable(t *testing.T) {
	r := NewResolver(newView(), nil, 64)
	_, ok := r.RaytraceBox(mgl64.Vec3{}, cube.Box(-0.5, -0.5, 49.5, 0.5, 0.5, 50.5), BoxQuery{
		Range:      10,
		WallsRange: 6,
		Preference: rotation.LeastDifferenceTo(rotation.Rotation{}),
	})
	require.False(t, ok)
}

func TestRaytraceBoxEyeInside(t *testing.T) {
	r := NewResolver(newView(), nil, 0)
	c, ok := r.RaytraceBox(mgl64.Vec3{}, cube.Box(-1, -1, -1, 1, 1, 1), BoxQuery{
		Range:      3,
		Preference: rotation.LeastDifferenceTo(rotation.Rotation{}),
	})
	require.True(t, ok)
	require.InDelta(t, 0, c.Rotation.Yaw, 1e-3)
}

func TestRaytraceBoxWithFutureTarget(t *testing.T) {
	r := NewResolver(newView(), nil, 64)
	future := cube.Box(0.4, -0.5, 9.5, 1.4, 0.5, 10.5)
	c, ok := r.RaytraceBox(mgl64.Vec3{}, targetBox, BoxQuery{
		Range:        3,
		WallsRange:   0,
		Preference:   rotation.LeastDifferenceTo(rotation.Rotation{Yaw: 45}),
		FutureTarget: &future,
	})
	// The target is out of reach: the prediction only changes which reachable spot wins.
	require.False(t, ok)

	c, ok = r.RaytraceBox(mgl64.Vec3{}, targetBox, BoxQuery{
		Range:        10,
		Preference:   rotation.LeastDifferenceTo(rotation.Rotation{Yaw: 45}),
		FutureTarget: &future,
	})
	require.True(t, ok)
	require.True(t, game.BoxHitByRay(future, mgl64.Vec3{}, c.Point))
}

func TestRaytraceBlock(t *testing.T) {
	eye := mgl64.Vec3{0.5, 0.5, 0.5}
	r := NewResolver(newView(cube.Pos{0, 0, 3}), nil, 0)
	c, ok := r.RaytraceBlock(eye, cube.Pos{0, 0, 3}, 10, 0)
	require.True(t, ok)
	require.True(t, c.Visible)
	require.InDelta(t, 3, c.Point.Z(), 1e-6)

	hidden := NewResolver(newView(cube.Pos{0, 0, 3}, cube.Pos{0, 0, 2}), nil, 0)
	_, ok = hidden.RaytraceBlock(eye, cube.Pos{0, 0, 3}, 10, 0)
	require.False(t, ok)

	c, ok = hidden.RaytraceBlock(eye, cube.Pos{0, 0, 3}, 10, 4)
	require.True(t, ok)
	require.False(t, c.Visible)

	_, ok = r.RaytraceBlock(eye, cube.Pos{0, 5, 3}, 10, 10)
	require.False(t, ok, "air has no shape to aim at")
}

func TestCanSeeBox(t *testing.T) {
	r := NewResolver(newView(), nil, 64)
	require.True(t, r.CanSeeBox(mgl64.Vec3{}, targetBox, 10, 0, nil))
	require.False(t, r.CanSeeBox(mgl64.Vec3{}, targetBox, 4, 0, nil))
	require.True(t, r.CanSeeBox(mgl64.Vec3{0, 0, 5}, targetBox, 0, 0, nil))

	walled := NewResolver(newView(wallAt(2)...), nil, 64)
	require.False(t, walled.CanSeeBox(mgl64.Vec3{}, targetBox, 10, 0, nil))
	require.True(t, walled.CanSeeBox(mgl64.Vec3{}, targetBox, 10, 6, nil))
}

func TestUpperBlockSide(t *testing.T) {
	pos := cube.Pos{0, 0, 3}
	r := NewResolver(newView(pos), nil, 0)
	above := mgl64.Vec3{0.5, 2.5, 1.5}

	require.True(t, r.CanSeeUpperBlockSide(above, pos, 6, 0))
	require.False(t, r.CanSeeUpperBlockSide(mgl64.Vec3{0.5, -1.5, 1.5}, pos, 6, 0))

	c, ok := r.RaytraceUpperBlockSide(above, pos, 6, 0, nil, nil)
	require.True(t, ok)
	require.True(t, c.Visible)
	require.Positive(t, c.Rotation.Pitch)
	require.InDelta(t, 0.9, c.Point.Y(), 1e-9)

	other, ok := r.RaytraceUpperBlockSide(above, pos, 6, 0, nil, []rotation.Rotation{c.Rotation})
	require.True(t, ok)
	require.NotEqual(t, c.Rotation, other.Rotation)
}

func TestRaytraceBlockSide(t *testing.T) {
	pos := cube.Pos{0, 0, 3}
	r := NewResolver(newView(pos), nil, 0)

	c, ok := r.RaytraceBlockSide(cube.FaceNorth, pos, mgl64.Vec3{0.5, 0.5, 0.5}, 100, 0)
	require.True(t, ok)
	require.True(t, c.Visible)
	require.InDelta(t, 3, c.Point.Z(), 1e-6)

	_, ok = r.RaytraceBlockSide(cube.FaceSouth, pos, mgl64.Vec3{0.5, 0.5, 0.5}, 100, 0)
	require.False(t, ok)
}

func TestFindVisiblePointFromVirtualEye(t *testing.T) {
	r := NewResolver(newView(), nil, 0)
	p, ok := r.FindVisiblePointFromVirtualEye(mgl64.Vec3{}, targetBox, 2, VisibilityFunc(func(eye, spot mgl64.Vec3) bool {
		require.InDelta(t, 2, spot.Sub(eye).Len(), 1e-6)
		return true
	}))
	require.True(t, ok)
	require.True(t, game.BoxContains(targetBox.Grow(1e-6), p))

	_, ok = r.FindVisiblePointFromVirtualEye(mgl64.Vec3{}, targetBox, 2, VisibilityFunc(func(_, _ mgl64.Vec3) bool { return false }))
	require.False(t, ok)
}

func TestVisibilityPredicates(t *testing.T) {
	pos := cube.Pos{0, 0, 3}
	v := newView(pos)
	eye := mgl64.Vec3{0.5, 0.5, 0.5}
	spot := mgl64.Vec3{0.5, 0.5, 3}

	require.False(t, BoxVisibility{World: v}.IsVisible(eye, mgl64.Vec3{0.5, 0.5, 3.5}))
	require.True(t, BoxVisibility{World: v}.IsVisible(eye, spot))

	north, up := cube.FaceNorth, cube.FaceUp
	require.True(t, BlockVisibility{World: v, Expected: pos, Side: &north}.IsVisible(eye, spot))
	require.False(t, BlockVisibility{World: v, Expected: pos, Side: &up}.IsVisible(eye, spot))
	require.False(t, BlockVisibility{World: v, Expected: pos, MaxRange: 1}.IsVisible(eye, spot))
	require.False(t, BlockVisibility{World: v, Expected: cube.Pos{0, 0, 4}}.IsVisible(eye, spot))

	open := newView()
	require.True(t, ArrowVisibility(open).IsVisible(mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}))
	walled := newView(wallAt(5)...)
	require.False(t, ArrowVisibility(walled).IsVisible(mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}))
	require.True(t, ArrowVisibility(walled).IsVisible(mgl64.Vec3{}, mgl64.Vec3{0, 0, 4}))
}
