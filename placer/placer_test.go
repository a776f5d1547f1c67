package placer

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/targetfinding"
	"github.com/oomph-ac/sightline/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/stretchr/testify/require"
)

var (
	anchor = cube.Pos{3, 10, 0}
	target = cube.Pos{0, 10, 0}
	eye    = mgl64.Vec3{0.5, 11.62, -3}
	reach  = ReachConfig{Range: 8}
)

func newSource(stone ...cube.Pos) *world.MemorySource {
	src := world.NewMemorySource(nil)
	for _, pos := range stone {
		src.SetBlock(pos, block.Stone{})
	}
	return src
}

func TestFindSupportShortestPath(t *testing.T) {
	src := newSource(anchor)
	s := SupportSearch{View: world.NewView(src, src), Depth: 4, Range: 8}

	path, ok := s.FindSupport(eye, target)
	require.True(t, ok)
	require.Equal(t, Path{{2, 10, 0}, {1, 10, 0}, {0, 10, 0}}, path)
	require.Len(t, path.Set(), 3)
}

func TestFindSupportTargetAlreadySupported(t *testing.T) {
	src := newSource(cube.Pos{0, 9, 0})
	s := SupportSearch{View: world.NewView(src, src)}

	path, ok := s.FindSupport(eye, target)
	require.True(t, ok)
	require.Equal(t, Path{target}, path)
}

func TestFindSupportDepthLimit(t *testing.T) {
	src := newSource(anchor)
	s := SupportSearch{View: world.NewView(src, src), Depth: 1, Range: 8}

	_, ok := s.FindSupport(eye, target)
	require.False(t, ok)
}

func TestFindSupportRangeLimit(t *testing.T) {
	src := newSource(anchor)
	s := SupportSearch{View: world.NewView(src, src), Depth: 4, Range: 3}

	_, ok := s.FindSupport(eye, target)
	require.False(t, ok)
}

func TestFindSupportAvoidsEntitiesAndQueued(t *testing.T) {
	src := newSource(anchor)
	src.SetEntityBoxes([]cube.BBox{cube.Box(1.2, 10.2, 0.2, 1.8, 10.8, 0.8)})
	s := SupportSearch{View: world.NewView(src, src), Depth: 4, Range: 8}

	path, ok := s.FindSupport(eye, target)
	require.True(t, ok)
	require.Len(t, path, 5)
	require.NotContains(t, path, cube.Pos{1, 10, 0})
	require.Equal(t, target, path[len(path)-1])
	require.True(t, s.touchesSurface(path[0]))

	s.Blocked = map[cube.Pos]struct{}{{0, 11, 0}: {}, {0, 9, 0}: {}, {0, 10, 1}: {}, {-1, 10, 0}: {}}
	s.Queued = func(pos cube.Pos) bool { return pos == cube.Pos{0, 10, -1} }
	_, ok = s.FindSupport(eye, target)
	require.False(t, ok)
}

func placementOptions() targetfinding.PlacementOptions {
	return targetfinding.PlacementOptions{
		PlayerPos: mgl64.Vec3{0.5, 10, -3},
		EyeHeight: game.DefaultPlayerHeightOffset,
	}
}

func TestPlacerPlacesSupportFirst(t *testing.T) {
	src := newSource(anchor)
	p := New(world.NewView(src, src), reach, SupportConfig{Enabled: true, Depth: 4, Range: 8, DelayTicks: 10}, nil)
	require.True(t, p.Enqueue(target, block.Dirt{}))
	require.False(t, p.Enqueue(target, block.Dirt{}))

	placement, ok := p.Tick(1, placementOptions())
	require.True(t, ok)
	require.Equal(t, cube.Pos{2, 10, 0}, placement.Target.Placed)
	require.Equal(t, anchor, placement.Target.Interacted)
	require.Equal(t, cube.FaceWest, placement.Target.Face)
	require.Equal(t, block.Dirt{}, placement.Block)
	require.True(t, placement.Support)
	require.Equal(t, []cube.Pos{{1, 10, 0}, target}, p.Pending())

	src.SetBlock(cube.Pos{2, 10, 0}, block.Dirt{})
	placement, ok = p.Tick(2, placementOptions())
	require.True(t, ok)
	require.Equal(t, cube.Pos{1, 10, 0}, placement.Target.Placed)

	src.SetBlock(cube.Pos{1, 10, 0}, block.Dirt{})
	placement, ok = p.Tick(3, placementOptions())
	require.True(t, ok)
	require.Equal(t, target, placement.Target.Placed)
	require.False(t, placement.Support)
	require.Zero(t, p.Len())
}

func TestPlacerPicksShortestSupportPath(t *testing.T) {
	src := newSource(anchor)
	p := New(world.NewView(src, src), reach, SupportConfig{Enabled: true, Depth: 4, Range: 8}, nil)
	p.Enqueue(target, block.Dirt{})

	placement, ok := p.Tick(1, placementOptions())
	require.True(t, ok)
	require.Equal(t, cube.Pos{2, 10, 0}, placement.Target.Placed)
	require.Equal(t, []cube.Pos{{1, 10, 0}, target}, p.Pending())

	// The placement above is never carried out, so (1, 10, 0) stays unplaceable. A target next to
	// the anchor needs a single support block and replaces the stale support path.
	near := cube.Pos{3, 10, -2}
	p.Enqueue(near, block.Stone{})
	placement, ok = p.Tick(2, placementOptions())
	require.True(t, ok)
	require.Equal(t, cube.Pos{3, 10, -1}, placement.Target.Placed)
	require.Equal(t, anchor, placement.Target.Interacted)
	require.Equal(t, cube.FaceNorth, placement.Target.Face)
	require.Equal(t, block.Stone{}, placement.Block)
	require.True(t, placement.Support)
	require.Equal(t, []cube.Pos{target, near}, p.Pending())
}

func TestPlacerReach(t *testing.T) {
	far := cube.Pos{0, 10, 40}
	src := newSource(cube.Pos{0, 9, 40})
	p := New(world.NewView(src, src), ReachConfig{Range: 4.5}, SupportConfig{Enabled: true, Depth: 4, Range: 4.5}, nil)
	p.Enqueue(far, block.Stone{})

	_, ok := p.Tick(1, placementOptions())
	require.False(t, ok)
	require.Contains(t, p.inaccessible, far)
	require.Equal(t, []cube.Pos{far}, p.Pending())

	// A wall between the eye and the top of (0, 9, 0) only lets the block be placed within the
	// walls range.
	src = newSource(cube.Pos{0, 9, 0}, cube.Pos{0, 10, -1})
	p = New(world.NewView(src, src), ReachConfig{Range: 4.5}, SupportConfig{}, nil)
	p.Enqueue(target, block.Dirt{})
	_, ok = p.Tick(1, placementOptions())
	require.False(t, ok)

	p.reach.WallsRange = 5
	placement, ok := p.Tick(2, placementOptions())
	require.True(t, ok)
	require.Equal(t, cube.Pos{0, 9, 0}, placement.Target.Interacted)
	require.Equal(t, cube.FaceUp, placement.Target.Face)
}

func TestPlacerSkipsEntities(t *testing.T) {
	src := newSource(cube.Pos{0, 9, 0})
	src.SetEntityBoxes([]cube.BBox{cube.Box(0.2, 10, 0.2, 0.8, 11.8, 0.8)})
	p := New(world.NewView(src, src), reach, SupportConfig{}, nil)
	p.Enqueue(target, block.Dirt{})

	_, ok := p.Tick(1, placementOptions())
	require.False(t, ok)
	require.Contains(t, p.inaccessible, target)

	src.SetEntityBoxes(nil)
	_, ok = p.Tick(2, placementOptions())
	require.True(t, ok)
}

func TestPlacerSupportDelay(t *testing.T) {
	src := newSource()
	p := New(world.NewView(src, src), reach, SupportConfig{Enabled: true, Depth: 4, Range: 8, DelayTicks: 10}, nil)
	p.Enqueue(target, block.Dirt{})

	_, ok := p.Tick(1, placementOptions())
	require.False(t, ok)
	require.Equal(t, uint64(1), p.lastSupport)

	_, ok = p.Tick(5, placementOptions())
	require.False(t, ok)
	require.Equal(t, uint64(1), p.lastSupport)

	_, ok = p.Tick(11, placementOptions())
	require.False(t, ok)
	require.Equal(t, uint64(11), p.lastSupport)
}

func TestPlacerPrunesOccupied(t *testing.T) {
	src := newSource(cube.Pos{0, 9, 0})
	p := New(world.NewView(src, src), reach, SupportConfig{}, nil)
	p.Enqueue(cube.Pos{0, 9, 0}, block.Dirt{})
	p.Enqueue(target, block.Dirt{})
	require.True(t, p.Queued(cube.Pos{0, 9, 0}))

	placement, ok := p.Tick(1, placementOptions())
	require.True(t, ok)
	require.Equal(t, target, placement.Target.Placed)
	require.Equal(t, cube.Pos{0, 9, 0}, placement.Target.Interacted)
	require.False(t, p.Queued(cube.Pos{0, 9, 0}))
	require.Zero(t, p.Len())
}

func TestUseItemData(t *testing.T) {
	placement := Placement{
		Target: targetfinding.PlacementTarget{
			Interacted: cube.Pos{0, 9, 0},
			Placed:     target,
			Face:       cube.FaceUp,
			Point:      mgl64.Vec3{0.5, 1, 0.5},
		},
		Block:     block.Dirt{},
		PlayerPos: mgl64.Vec3{0.5, 10, -3},
	}
	data := placement.UseItemData(4)
	require.Equal(t, uint32(protocol.UseItemActionClickBlock), data.ActionType)
	require.Equal(t, uint32(protocol.TriggerTypePlayerInput), data.TriggerType)
	require.Equal(t, protocol.BlockPos{0, 9, 0}, data.BlockPosition)
	require.Equal(t, int32(cube.FaceUp), data.BlockFace)
	require.Equal(t, int32(4), data.HotBarSlot)
	require.Equal(t, mgl32.Vec3{0.5, 10, -3}, data.Position)
	require.Equal(t, mgl32.Vec3{0.5, 1, 0.5}, data.ClickedPosition)
	require.Equal(t, uint32(protocol.ClientPredictionSuccess), data.ClientPrediction)
}
