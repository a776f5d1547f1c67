package rotation

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestLookingAtRoundTrip(t *testing.T) {
	eye := mgl64.Vec3{1, 2, 3}
	for _, target := range []mgl64.Vec3{{1, 2, 10}, {-4, 0, 3}, {7, 9, -2}, {1.5, -3, 3.5}} {
		r := LookingAt(target, eye)
		want := target.Sub(eye).Normalize()
		require.True(t, want.ApproxEqualThreshold(r.DirectionVector(), 1e-5), "%v: want %v got %v", target, want, r.DirectionVector())
	}

	r := LookingAt(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{})
	require.InDelta(t, 0, r.Yaw, 1e-4)
	require.InDelta(t, 0, r.Pitch, 1e-4)

	r = LookingAt(mgl64.Vec3{0, -5, 0.0001}, mgl64.Vec3{})
	require.InDelta(t, 90, r.Pitch, 0.01)
}

func TestAngleTo(t *testing.T) {
	a := Rotation{Yaw: 170}
	b := Rotation{Yaw: -170}
	require.InDelta(t, 20, a.AngleTo(b), 1e-4)
	require.InDelta(t, 180, Rotation{Yaw: 0, Pitch: -90}.AngleTo(Rotation{Yaw: 180, Pitch: 90}), 1e-4)
	require.True(t, a.ApproxEq(Rotation{Yaw: 171.5, Pitch: 1}, 2))
	require.False(t, a.ApproxEq(b, 2))
}

func TestNormalizeAndTowards(t *testing.T) {
	n := Rotation{Yaw: 540, Pitch: 120}.Normalize()
	require.InDelta(t, -180, n.Yaw, 1e-4)
	require.InDelta(t, 90, n.Pitch, 1e-4)

	step := Rotation{Yaw: 170}.Towards(Rotation{Yaw: -170, Pitch: 30}, 5, 10)
	require.InDelta(t, 175, step.Yaw, 1e-4)
	require.InDelta(t, 10, step.Pitch, 1e-4)

	done := Rotation{}.Towards(Rotation{Yaw: 3, Pitch: -3}, 5, 5)
	require.Equal(t, Rotation{Yaw: 3, Pitch: -3}, done)
}

func TestLeastDifference(t *testing.T) {
	p := LeastDifferenceTo(Rotation{Yaw: 10})
	require.Negative(t, p.Compare(Rotation{Yaw: 12}, Rotation{Yaw: 0}))
	require.Positive(t, p.Compare(Rotation{Yaw: 40}, Rotation{Yaw: -5}))
	require.Zero(t, p.Compare(Rotation{Yaw: 12}, Rotation{Yaw: 8}))

	spot := LeastDifferenceToPoint(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{}).PreferredSpot(cube.BBox{}, mgl64.Vec3{}, 10)
	require.True(t, mgl64.Vec3{0, 0, 10}.ApproxEqualThreshold(spot, 1e-6))
}
