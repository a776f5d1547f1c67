package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/entity"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/placer"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/settings"
	"github.com/oomph-ac/sightline/targetfinding"
	"github.com/oomph-ac/sightline/world"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testScene = `
ticks = 10
predict_ticks = 2

[actor]
position = [0.5, 0.0, -3.0]
yaw = 0.0
pitch = 0.0

[[blocks]]
block = "stone"
from = [-2, -1, -4]
to = [2, -1, 4]

[[targets]]
name = "zombie"
position = [0.5, 0.0, 0.5]
velocity = [0.0, 0.0, 0.1]

[[placements]]
block = "dirt"
pos = [1, 0, 0]
`

func writeScene(t *testing.T, data string) scene {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	sc, err := loadScene(path)
	require.NoError(t, err)
	return sc
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadScene(t *testing.T) {
	sc := writeScene(t, testScene)
	require.Equal(t, 10, sc.Ticks)
	require.Equal(t, 2, sc.PredictTicks)
	require.Len(t, sc.Blocks, 1)
	require.Len(t, sc.Targets, 1)
	require.Len(t, sc.Placements, 1)

	pos, err := sc.actorPos()
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{0.5, 0, -3}, pos)

	src := world.NewMemorySource(nil)
	require.NoError(t, sc.build(src))
	require.Equal(t, block.Stone{}, src.Block(cube.Pos{2, -1, 4}))
	require.Equal(t, block.Stone{}, src.Block(cube.Pos{-2, -1, -4}))
	require.Equal(t, block.Air{}, src.Block(cube.Pos{0, 0, 0}))

	tracker := entity.NewTracker()
	targets, err := sc.entities(tracker)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.True(t, mgl32.Vec3{0, 0, 0.1}.ApproxEqualThreshold(targets[0].Velocity(), 1e-6))
	require.Len(t, tracker.EntityBoxes(), 1)
}

func TestSceneErrors(t *testing.T) {
	sc := writeScene(t, "[[blocks]]\nblock = \"obsidian\"\nfrom = [0, 0, 0]\nto = [0, 0, 0]\n")
	require.ErrorContains(t, sc.build(world.NewMemorySource(nil)), "unknown block")
	require.Equal(t, 20, sc.Ticks)

	sc = writeScene(t, "[[blocks]]\nblock = \"stone\"\nfrom = [0, 0]\nto = [0, 0, 0]\n")
	require.Error(t, sc.build(world.NewMemorySource(nil)))

	_, err := sc.actorPos()
	require.Error(t, err)

	sc = writeScene(t, "[actor]\nposition = [0.0, 0.0, 0.0]\nvelocity = [1.0]\n")
	_, _, err = sc.movement(mgl64.Vec3{})
	require.ErrorContains(t, err, "actor velocity")
}

func TestPlaceBlocks(t *testing.T) {
	sc := writeScene(t, testScene)
	src := world.NewMemorySource(nil)
	require.NoError(t, sc.build(src))
	view := world.NewView(src, nil)

	pos, _ := sc.actorPos()
	placed, err := placeBlocks(sc, settings.DefaultSettings(), quietLogger(), src, view, pos, game.DefaultPlayerHeightOffset, rotation.Rotation{})
	require.NoError(t, err)
	require.Len(t, placed, 1)
	require.False(t, placed[0].Support)
	require.Equal(t, block.Dirt{}, src.Block(cube.Pos{1, 0, 0}))
}

const movingScene = `
[actor]
position = [0.3, 0.0, -2.0]
velocity = [0.0, 0.0, 0.2]

[[blocks]]
block = "stone"
from = [-2, -1, -4]
to = [2, -1, 4]

[[placements]]
block = "dirt"
pos = [1, 0, 0]
`

func TestSceneMovement(t *testing.T) {
	sc := writeScene(t, movingScene)
	pos, err := sc.actorPos()
	require.NoError(t, err)

	yaw, line, err := sc.movement(pos)
	require.NoError(t, err)
	require.InDelta(t, 0, yaw, 1e-4)
	require.NotNil(t, line)
	require.Equal(t, mgl64.Vec3{0.5, 0, -1.5}, line.Pos)
	require.True(t, mgl64.Vec3{0, 0, 1}.ApproxEqualThreshold(line.Dir, 1e-9))

	_, line, err = writeScene(t, testScene).movement(pos)
	require.NoError(t, err)
	require.Nil(t, line)
}

func TestPlaceBlocksAimMode(t *testing.T) {
	place := func(mode targetfinding.AimMode) placer.Placement {
		sc := writeScene(t, movingScene)
		src := world.NewMemorySource(nil)
		require.NoError(t, sc.build(src))
		pos, _ := sc.actorPos()

		conf := settings.DefaultSettings()
		conf.Placement.AimMode = mode
		placed, err := placeBlocks(sc, conf, quietLogger(), src, world.NewView(src, nil), pos, game.DefaultPlayerHeightOffset, rotation.Rotation{})
		require.NoError(t, err)
		require.Len(t, placed, 1)
		return placed[0]
	}

	center := place(targetfinding.AimCenter)
	require.Equal(t, cube.Pos{1, -1, 0}, center.Target.Interacted)
	require.Equal(t, mgl64.Vec3{0.5, 1, 0.5}, center.Target.Point)

	// The actor stands at (0.3, 0) within its block and moves, so the far corner of the trimmed
	// top face is clicked.
	edge := place(targetfinding.AimEdgePoint)
	require.Equal(t, cube.Pos{1, -1, 0}, edge.Target.Interacted)
	require.True(t, mgl64.Vec3{0.85, 1, 0.85}.ApproxEqualThreshold(edge.Target.Point, 1e-9), "got %v", edge.Target.Point)
}

func TestRun(t *testing.T) {
	require.NoError(t, run(writeScene(t, testScene), settings.DefaultSettings(), quietLogger()))
}
