package targetfinding

import (
	"cmp"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	df_world "github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/world"
	"github.com/samber/lo"
)

// Interaction is how a block ends up at the position it is placed at.
type Interaction int

const (
	// PlaceAtNeighbour places the block by clicking the side of a neighbouring block.
	PlaceAtNeighbour Interaction = iota
	// ReplaceExisting places the block by clicking the block that is replaced.
	ReplaceExisting
)

// PlacementOptions holds the parameters of FindBestBlockPlacementTarget.
type PlacementOptions struct {
	// Offsets are tried relative to the position passed. Only the position itself is tried if empty.
	Offsets []cube.Pos
	// Priority orders candidate positions, a negative result meaning a is tried before b. Positions
	// closest to the actor are tried first if nil.
	Priority func(a, b cube.Pos) int
	// Factory picks the point on the clicked face. The centre is used if nil.
	Factory FacePositionFactory
	// ConsiderFacingAwayFaces allows clicking faces that point away from the actor.
	ConsiderFacingAwayFaces bool
	// Stack is the block that is going to be placed.
	Stack df_world.Block
	// PlayerPos is the position of the actor's feet.
	PlayerPos mgl64.Vec3
	// EyeHeight is the height of the actor's eyes above PlayerPos.
	EyeHeight float64
	// Rotation is the current rotation of the actor.
	Rotation rotation.Rotation
}

// Eye returns the position of the actor's eyes.
func (o PlacementOptions) Eye() mgl64.Vec3 {
	return o.PlayerPos.Add(mgl64.Vec3{0, o.EyeHeight, 0})
}

// PlacementTarget is a way of placing a block: which block to click, on which side and where.
type PlacementTarget struct {
	// Interacted is the block that is clicked.
	Interacted cube.Pos
	// Placed is where the new block ends up.
	Placed cube.Pos
	// Face is the side of Interacted that is clicked.
	Face cube.Face
	// Interaction is how the block is placed.
	Interaction Interaction
	// Point is the clicked point relative to Interacted.
	Point mgl64.Vec3
	// MinPlacementY is the lowest world Y a click may hit for the placement to be as planned.
	MinPlacementY float64
	// Rotation looks from the actor's eyes at Point.
	Rotation rotation.Rotation
}

// WorldPoint returns the clicked point in world coordinates.
func (t PlacementTarget) WorldPoint() mgl64.Vec3 {
	return t.Point.Add(t.Interacted.Vec3())
}

// Satisfies returns true if a crosshair hit results in the placement planned.
func (t PlacementTarget) Satisfies(hit world.RaycastResult) bool {
	return hit.Pos == t.Interacted && hit.Face == t.Face && hit.Point.Y() >= t.MinPlacementY
}

type plan struct {
	interacted cube.Pos
	face       cube.Face
}

// targetPos is the centre of the clicked face.
func (p plan) targetPos() mgl64.Vec3 {
	return p.interacted.Vec3Centre().Add(game.FaceNormal(p.face).Mul(0.5))
}

// angleCos is the cosine of the angle between the face normal and the direction to the eye.
func (p plan) angleCos(eye mgl64.Vec3) float64 {
	delta := eye.Sub(p.targetPos())
	if l := delta.Len(); l > game.Epsilon {
		return delta.Dot(game.FaceNormal(p.face)) / l
	}
	return 0
}

// FindBestBlockPlacementTarget finds how the actor can place a block at pos or at one of the
// offsets around it.
func FindBestBlockPlacementTarget(v *world.View, pos cube.Pos, opts PlacementOptions) (PlacementTarget, bool) {
	if v.SolidTop(pos) {
		return PlacementTarget{}, false
	}
	offsets := opts.Offsets
	if len(offsets) == 0 {
		offsets = []cube.Pos{{}}
	}
	positions := make([]cube.Pos, len(offsets))
	for i, off := range offsets {
		positions[i] = pos.Add(off)
	}
	priority := opts.Priority
	if priority == nil {
		priority = leastDistance(opts.PlayerPos)
	}
	slices.SortStableFunc(positions, priority)

	for _, p := range positions {
		if v.SolidTop(p) {
			continue
		}
		interaction := ReplaceExisting
		if v.AirOrLiquid(p) {
			interaction = PlaceAtNeighbour
		} else if !v.Replaceable(p, opts.Stack) {
			continue
		}
		best, ok := bestPlan(v, p, interaction, opts)
		if !ok {
			continue
		}
		point, face, ok := targetPointOnFace(v, best, opts)
		if !ok {
			continue
		}
		t := PlacementTarget{
			Interacted:    best.interacted,
			Placed:        p,
			Face:          best.face,
			Interaction:   interaction,
			Point:         point,
			MinPlacementY: face.From.Y() + float64(best.interacted.Y()),
		}
		t.Rotation = rotation.LookingAt(t.WorldPoint(), opts.Eye())
		return t, true
	}
	return PlacementTarget{}, false
}

func leastDistance(player mgl64.Vec3) func(a, b cube.Pos) int {
	return func(a, b cube.Pos) int {
		return cmp.Compare(a.Vec3Centre().Sub(player).LenSqr(), b.Vec3Centre().Sub(player).LenSqr())
	}
}

// bestPlan picks the face to click to put a block at pos, preferring the one the actor needs to
// rotate the least for.
func bestPlan(v *world.View, pos cube.Pos, interaction Interaction, opts PlacementOptions) (plan, bool) {
	eye := opts.Eye()
	var plans []plan
	for _, dir := range cube.Faces() {
		p := plan{interacted: pos, face: dir}
		if interaction == PlaceAtNeighbour {
			p.interacted = pos.Side(dir.Opposite())
			if v.ReplaceableAny(p.interacted) {
				continue
			}
		}
		if !opts.ConsiderFacingAwayFaces && p.angleCos(eye) < 0 {
			continue
		}
		plans = append(plans, p)
	}
	if len(plans) == 0 {
		return plan{}, false
	}
	return lo.MinBy(plans, func(a, b plan) bool {
		return opts.Rotation.AngleTo(rotation.LookingAt(a.targetPos(), eye)) <
			opts.Rotation.AngleTo(rotation.LookingAt(b.targetPos(), eye))
	}), true
}

// targetPointOnFace picks the point to click on the face of the plan, over every box of the
// clicked block's shape. It returns the point relative to the block and the face it lies on.
func targetPointOnFace(v *world.View, p plan, opts PlacementOptions) (mgl64.Vec3, game.AlignedFace, bool) {
	factory := opts.Factory
	if factory == nil {
		factory = CenterFactory{}
	}
	boxes := v.RelativeBoxes(p.interacted)
	if len(boxes) == 0 {
		boxes = []cube.BBox{game.FullBlock}
	}
	normal := game.FaceNormal(p.face)

	type candidate struct {
		point mgl64.Vec3
		face  game.AlignedFace
	}
	var candidates []candidate
	for _, bb := range boxes {
		face := game.BoxFace(bb, p.face)
		search := face
		if search.To.Y() >= 0.9 {
			if truncated, ok := search.TruncateY(0.6); ok {
				search = truncated
			}
		}
		if point, ok := factory.PositionOnFace(search, p.interacted); ok {
			candidates = append(candidates, candidate{point: point, face: face})
		}
	}
	if len(candidates) == 0 {
		return mgl64.Vec3{}, game.AlignedFace{}, false
	}

	outwards := func(c candidate) float64 {
		return game.MulVec(c.point.Sub(mgl64.Vec3{0.5, 0.5, 0.5}), normal).LenSqr()
	}
	best := lo.MaxBy(candidates, func(a, b candidate) bool {
		if oa, ob := outwards(a), outwards(b); oa != ob {
			return oa > ob
		}
		return a.point.Y() > b.point.Y()
	})
	return best.point, best.face, true
}
