package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// WrapDegrees32 wraps the given angle into the range [-180, 180).
func WrapDegrees32(deg float32) float32 {
	deg = math32.Mod(deg, 360)
	if deg >= 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}

// WrapDegrees64 wraps the given angle into the range [-180, 180).
func WrapDegrees64(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg >= 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float32) float32 {
	if num < min {
		return min
	}
	return math32.Min(num, max)
}

// Vec64To32 converts a 64-bit vector to a 32-bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// DirectionVector returns a direction vector from the given yaw and pitch values.
func DirectionVector(yaw, pitch float32) mgl64.Vec3 {
	yawRad, pitchRad := mgl64.DegToRad(float64(yaw)), mgl64.DegToRad(float64(pitch))
	m := math.Cos(pitchRad)

	return mgl64.Vec3{
		-m * math.Sin(yawRad),
		-math.Sin(pitchRad),
		m * math.Cos(yawRad),
	}
}

// MoveTowards moves from towards to by the given fraction of the distance between them. Negative
// fractions move away from to.
func MoveTowards(from, to mgl64.Vec3, fraction float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(fraction))
}

// MulVec multiplies two vectors component-wise.
func MulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Steps returns every value from start to end (inclusive) spaced by step. The values are computed
// from an integer counter so they do not accumulate rounding error.
func Steps(start, end, step float64) []float64 {
	if step <= 0 || end < start {
		return nil
	}
	n := int(math.Round((end - start) / step))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, start+step*float64(i))
	}
	return out
}

// Returns -1 if x < y, 0 if x == y, or 1 if x > y
func PHPSpaceshipOp(x, y float64) float64 {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}

	return 1
}
