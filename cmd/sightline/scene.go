package main

import (
	"fmt"
	"os"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	df_world "github.com/df-mc/dragonfly/server/world"
	f32cube "github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/entity"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/world"
	"github.com/pelletier/go-toml"
)

// blocksByName holds the blocks a scene may be built from.
var blocksByName = map[string]df_world.Block{
	"stone":     block.Stone{},
	"dirt":      block.Dirt{},
	"glass":     block.Glass{},
	"iron_bars": block.IronBars{},
	"water":     block.Water{Still: true, Depth: 8},
}

// scene is a world snapshot with an actor, the entities it may aim at and the blocks it should place.
type scene struct {
	Actor struct {
		Position []float64 `toml:"position"`
		Yaw      float32   `toml:"yaw"`
		Pitch    float32   `toml:"pitch"`
		Sneaking bool      `toml:"sneaking"`
		// Velocity is the movement of the actor per tick. Only its horizontal part is used.
		Velocity []float64 `toml:"velocity"`
	} `toml:"actor"`
	// Ticks is the maximum amount of ticks spent placing blocks.
	Ticks int `toml:"ticks"`
	// PredictTicks is how far ahead the movement of targets is extrapolated.
	PredictTicks int              `toml:"predict_ticks"`
	Blocks       []sceneBlock     `toml:"blocks"`
	Targets      []sceneTarget    `toml:"targets"`
	Placements   []scenePlacement `toml:"placements"`
}

// sceneBlock fills the cuboid between From and To, inclusive.
type sceneBlock struct {
	Block string `toml:"block"`
	From  []int  `toml:"from"`
	To    []int  `toml:"to"`
}

type sceneTarget struct {
	Name     string    `toml:"name"`
	Position []float64 `toml:"position"`
	Velocity []float64 `toml:"velocity"`
	Width    float32   `toml:"width"`
	Height   float32   `toml:"height"`
}

type scenePlacement struct {
	Block string `toml:"block"`
	Pos   []int  `toml:"pos"`
}

func loadScene(path string) (scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scene{}, fmt.Errorf("error reading scene: %w", err)
	}
	var s scene
	if err := toml.Unmarshal(data, &s); err != nil {
		return scene{}, fmt.Errorf("error decoding scene: %w", err)
	}
	if s.Ticks <= 0 {
		s.Ticks = 20
	}
	return s, nil
}

// build fills the source with the blocks of the scene.
func (s scene) build(src *world.MemorySource) error {
	for _, b := range s.Blocks {
		bl, err := blockByName(b.Block)
		if err != nil {
			return err
		}
		from, err := toPos(b.From)
		if err != nil {
			return fmt.Errorf("block %s: %w", b.Block, err)
		}
		to, err := toPos(b.To)
		if err != nil {
			return fmt.Errorf("block %s: %w", b.Block, err)
		}
		for x := min(from.X(), to.X()); x <= max(from.X(), to.X()); x++ {
			for y := min(from.Y(), to.Y()); y <= max(from.Y(), to.Y()); y++ {
				for z := min(from.Z(), to.Z()); z <= max(from.Z(), to.Z()); z++ {
					src.SetBlock(cube.Pos{x, y, z}, bl)
				}
			}
		}
	}
	return nil
}

// entities adds the targets of the scene to the tracker. Each target is given one tick of history so
// that its velocity can be extrapolated.
func (s scene) entities(tracker *entity.Tracker) ([]*entity.Entity, error) {
	out := make([]*entity.Entity, 0, len(s.Targets))
	for i, t := range s.Targets {
		pos, err := toVec(t.Position)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", t.Name, err)
		}
		vel := mgl64.Vec3{}
		if len(t.Velocity) != 0 {
			if vel, err = toVec(t.Velocity); err != nil {
				return nil, fmt.Errorf("target %s: %w", t.Name, err)
			}
		}
		// A zero box makes the entity the size of a player.
		var bb f32cube.BBox
		if t.Width > 0 && t.Height > 0 {
			bb = game.AABBFromDimensions(t.Width, t.Height)
		}
		e := entity.NewEntity(game.Vec64To32(pos.Sub(vel)), bb)
		e.Move(game.Vec64To32(pos), 1)
		tracker.Add(uint64(i+1), e)
		out = append(out, e)
	}
	return out, nil
}

func (s scene) actorPos() (mgl64.Vec3, error) {
	return toVec(s.Actor.Position)
}

// movement returns the yaw the actor walks towards and the line it walks along, running through
// the centre of the block it stands in. The line is nil if the actor stands still.
func (s scene) movement(playerPos mgl64.Vec3) (float32, *game.Line, error) {
	if len(s.Actor.Velocity) == 0 {
		return 0, nil, nil
	}
	vel, err := toVec(s.Actor.Velocity)
	if err != nil {
		return 0, nil, fmt.Errorf("actor velocity: %w", err)
	}
	horizontal := mgl64.Vec3{vel.X(), 0, vel.Z()}
	if horizontal.LenSqr() <= game.Epsilon {
		return 0, nil, nil
	}
	centre := cube.PosFromVec3(playerPos).Vec3Centre()
	return rotation.FromVec(horizontal).Yaw, &game.Line{
		Pos: mgl64.Vec3{centre.X(), playerPos.Y(), centre.Z()},
		Dir: horizontal.Normalize(),
	}, nil
}

func blockByName(name string) (df_world.Block, error) {
	b, ok := blocksByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown block %q", name)
	}
	return b, nil
}

func toVec(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func toPos(v []int) (cube.Pos, error) {
	if len(v) != 3 {
		return cube.Pos{}, fmt.Errorf("expected 3 coordinates, got %d", len(v))
	}
	return cube.Pos{v[0], v[1], v[2]}, nil
}
