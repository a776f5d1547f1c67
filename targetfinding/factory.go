package targetfinding

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/samber/lo"
	"github.com/zeebo/xxh3"
)

// FacePositionFactory picks the point on a face of a block an actor should aim at. Both the face
// and the returned point are relative to the origin of the block at target.
type FacePositionFactory interface {
	PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool)
}

// FactoryConfig is the state of the actor a factory aims for.
type FactoryConfig struct {
	// Eye is the position of the actor's eyes.
	Eye mgl64.Vec3
	// Rotation is the current rotation of the actor.
	Rotation rotation.Rotation
	// PlayerPos is the position of the actor's feet.
	PlayerPos mgl64.Vec3
	// Moving is true if the actor has movement input.
	Moving bool
	// MoveYaw is the yaw the actor is moving towards.
	MoveYaw float32
	// Rand is used by factories that pick points randomly.
	Rand *rand.Rand
}

// trimFraction is the fraction of each side of a face cut away by TrimFace.
const trimFraction = 0.15

// TrimFace shrinks the face by 15% of its size on every side. Axes too small to shrink collapse
// to the centre of the face.
func TrimFace(face game.AlignedFace) game.AlignedFace {
	dims, center := face.Dimensions(), face.Center()
	out := face
	for i := 0; i < 3; i++ {
		from, to := face.From[i]+dims[i]*trimFraction, face.To[i]-dims[i]*trimFraction
		if from > to {
			from, to = center[i], center[i]
		}
		out.From[i], out.To[i] = from, to
	}
	return out
}

// nearestToRotationLine returns the point on the face closest to the line the actor is looking
// along.
func (c FactoryConfig) nearestToRotationLine(target cube.Pos, face game.AlignedFace) mgl64.Vec3 {
	if face.Area() <= game.Epsilon {
		return face.From
	}
	line := game.Line{Pos: c.Eye.Sub(target.Vec3()), Dir: c.Rotation.DirectionVector()}
	return face.NearestPointTo(line)
}

// CenterFactory aims at the centre of the face.
type CenterFactory struct{}

func (CenterFactory) PositionOnFace(face game.AlignedFace, _ cube.Pos) (mgl64.Vec3, bool) {
	return face.Center(), true
}

// RandomFactory aims at a random point on the trimmed face.
type RandomFactory struct {
	FactoryConfig
}

func (f RandomFactory) PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool) {
	r := f.Rand
	if r == nil {
		r = NewRand(target, 0)
	}
	return TrimFace(face).RandomPoint(r), true
}

// NearestRotationFactory aims at the point of the trimmed face closest to where the actor is
// already looking.
type NearestRotationFactory struct {
	FactoryConfig
}

func (f NearestRotationFactory) PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool) {
	return f.nearestToRotationLine(target, TrimFace(face)), true
}

// StabilizedFactory keeps the actor's aim close to OptimalLine, the line the actor is walking
// along while placing blocks, so consecutive placements need little rotation.
type StabilizedFactory struct {
	FactoryConfig
	OptimalLine *game.Line
}

func (f StabilizedFactory) PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool) {
	trimmed := TrimFace(face)
	if cropped, ok := f.targetFace(trimmed.Offset(target.Vec3())); ok {
		trimmed = cropped.Offset(target.Vec3().Mul(-1))
	}
	return f.nearestToRotationLine(target, trimmed), true
}

// targetFace crops the face (in world coordinates) to the part between the actor and the
// optimal line.
func (f StabilizedFactory) targetFace(face game.AlignedFace) (game.AlignedFace, bool) {
	if f.OptimalLine == nil {
		return game.AlignedFace{}, false
	}
	nearest := f.OptimalLine.NearestPointTo(f.PlayerPos)
	toLine := f.PlayerPos.Sub(nearest)
	if toLine.LenSqr() <= game.Epsilon {
		return game.AlignedFace{}, false
	}
	toLine = toLine.Normalize()

	collision, ok := face.ToPlane().Intersection(game.Line{Pos: f.Eye, Dir: f.OptimalLine.Dir})
	if !ok {
		return game.AlignedFace{}, false
	}
	far := f.PlayerPos.Add(toLine.Mul(2))
	crop := cube.Box(
		collision.X(), f.PlayerPos.Y()-2, collision.Z(),
		far.X(), f.PlayerPos.Y()+1, far.Z(),
	)
	cropped := face.Clamp(crop)
	if cropped.Area() < 0.0001 {
		return game.AlignedFace{}, false
	}
	return cropped, true
}

const (
	// ReverseYaw aims behind the actor's movement direction.
	ReverseYaw float32 = 180
	// DiagonalYaw aims diagonally behind the actor's movement direction.
	DiagonalYaw float32 = 75
	// AngleYaw aims at a sharp angle to the actor's movement direction.
	AngleYaw float32 = 45

	yawTolerance float32 = 5
)

// YawFactory aims at the point of the face whose yaw from the eye is Angle degrees away from the
// yaw the actor is moving towards, on either side. It falls back to the nearest rotation when the
// actor is not moving or no such point exists.
type YawFactory struct {
	FactoryConfig
	Angle float32
}

func (f YawFactory) PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool) {
	trimmed := TrimFace(face)
	if trimmed.Area() <= game.Epsilon {
		return trimmed.From, true
	}
	if !f.Moving {
		return f.nearestToRotationLine(target, trimmed), true
	}
	eye := f.Eye.Sub(target.Vec3())
	yaw := game.WrapDegrees32(f.MoveYaw)

	var candidates []mgl64.Vec3
	for _, targetYaw := range []float32{game.WrapDegrees32(yaw + f.Angle), game.WrapDegrees32(yaw - f.Angle)} {
		if p, ok := f.pointAtYaw(trimmed, eye, targetYaw); ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return f.nearestToRotationLine(target, trimmed), true
	}
	return lo.MinBy(candidates, func(a, b mgl64.Vec3) bool {
		return f.yawError(eye, a) < f.yawError(eye, b)
	}), true
}

// yawError is how far the yaw towards p is from the closest of the two target yaws.
func (f YawFactory) yawError(eye, p mgl64.Vec3) float32 {
	yaw := rotation.LookingAt(p, eye).Yaw
	moveYaw := game.WrapDegrees32(f.MoveYaw)
	return min(
		math32.Abs(game.WrapDegrees32(yaw-(moveYaw+f.Angle))),
		math32.Abs(game.WrapDegrees32(yaw-(moveYaw-f.Angle))),
	)
}

// pointAtYaw intersects the face with the vertical plane through the eye at targetYaw.
func (f YawFactory) pointAtYaw(face game.AlignedFace, eye mgl64.Vec3, targetYaw float32) (mgl64.Vec3, bool) {
	dir := rotation.Rotation{Yaw: targetYaw}.DirectionVector()
	plane := game.PlaneFromParams(eye, dir, mgl64.Vec3{0, 1, 0})

	line, ok := face.ToPlane().IntersectPlane(plane)
	if !ok {
		return mgl64.Vec3{}, false
	}
	segment, ok := face.CoerceInFace(line)
	if !ok {
		return mgl64.Vec3{}, false
	}
	p := closestPointToYaw(segment, eye, targetYaw)
	if math32.Abs(game.WrapDegrees32(rotation.LookingAt(p, eye).Yaw-targetYaw)) > yawTolerance {
		return mgl64.Vec3{}, false
	}
	return p, true
}

// closestPointToYaw interpolates along the segment to the point whose yaw from eye is closest to
// targetYaw.
func closestPointToYaw(segment game.LineSegment, eye mgl64.Vec3, targetYaw float32) mgl64.Vec3 {
	startYaw := rotation.LookingAt(segment.Start, eye).Yaw
	endYaw := rotation.LookingAt(segment.End, eye).Yaw
	span := game.WrapDegrees32(endYaw - startYaw)
	if math32.Abs(span) <= 1e-4 {
		return segment.Start
	}
	t := float64(game.WrapDegrees32(targetYaw-startYaw) / span)
	return segment.PointAt(math.Max(0, math.Min(1, t)))
}

// EdgePointFactory aims at the corner of the trimmed face farthest from where the actor stands
// within its block. It falls back to the nearest rotation when the actor is not moving.
type EdgePointFactory struct {
	FactoryConfig
}

func (f EdgePointFactory) PositionOnFace(face game.AlignedFace, target cube.Pos) (mgl64.Vec3, bool) {
	trimmed := TrimFace(face)
	if !f.Moving {
		return f.nearestToRotationLine(target, trimmed), true
	}
	inBlock := f.PlayerPos.Sub(mgl64.Vec3{
		math.Floor(f.PlayerPos.X()), math.Floor(f.PlayerPos.Y()), math.Floor(f.PlayerPos.Z()),
	})
	corners := game.BoxCorners(trimmed.Box())
	return lo.MaxBy(corners[:], func(a, b mgl64.Vec3) bool {
		return a.Sub(inBlock).LenSqr() > b.Sub(inBlock).LenSqr()
	}), true
}

// AimMode names a FacePositionFactory in configuration.
type AimMode string

const (
	AimCenter          AimMode = "center"
	AimRandom          AimMode = "random"
	AimNearestRotation AimMode = "nearest_rotation"
	AimStabilized      AimMode = "stabilized"
	AimReverseYaw      AimMode = "reverse_yaw"
	AimDiagonalYaw     AimMode = "diagonal_yaw"
	AimAngleYaw        AimMode = "angle_yaw"
	AimEdgePoint       AimMode = "edge_point"
)

// AimModes lists every supported AimMode.
var AimModes = []AimMode{
	AimCenter, AimRandom, AimNearestRotation, AimStabilized,
	AimReverseYaw, AimDiagonalYaw, AimAngleYaw, AimEdgePoint,
}

// NewFactory returns the factory for the mode passed. optimalLine is only used by AimStabilized and
// may be nil.
func NewFactory(mode AimMode, cfg FactoryConfig, optimalLine *game.Line) (FacePositionFactory, error) {
	switch mode {
	case AimCenter:
		return CenterFactory{}, nil
	case AimRandom:
		return RandomFactory{cfg}, nil
	case AimNearestRotation:
		return NearestRotationFactory{cfg}, nil
	case AimStabilized:
		return StabilizedFactory{FactoryConfig: cfg, OptimalLine: optimalLine}, nil
	case AimReverseYaw:
		return YawFactory{FactoryConfig: cfg, Angle: ReverseYaw}, nil
	case AimDiagonalYaw:
		return YawFactory{FactoryConfig: cfg, Angle: DiagonalYaw}, nil
	case AimAngleYaw:
		return YawFactory{FactoryConfig: cfg, Angle: AngleYaw}, nil
	case AimEdgePoint:
		return EdgePointFactory{cfg}, nil
	}
	return nil, fmt.Errorf("unknown aim mode %q", mode)
}

// NewRand returns a random source seeded from the position and tick passed, so the same
// placement in the same tick always picks the same point.
func NewRand(pos cube.Pos, tick uint64) *rand.Rand {
	var buf [32]byte
	for i, v := range pos {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(v)))
	}
	binary.LittleEndian.PutUint64(buf[24:], tick)
	seed := xxh3.Hash(buf[:])
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
