package main

import (
	"flag"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/aim"
	"github.com/oomph-ac/sightline/entity"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/placer"
	"github.com/oomph-ac/sightline/rotation"
	"github.com/oomph-ac/sightline/settings"
	"github.com/oomph-ac/sightline/targetfinding"
	"github.com/oomph-ac/sightline/worker"
	"github.com/oomph-ac/sightline/world"
	"github.com/sirupsen/logrus"
)

// The following program loads a scene and prints the rotations an actor in it would use to aim at
// every target and to place every requested block.
func main() {
	var (
		settingsPath = flag.String("settings", "settings.toml", "settings file (created with defaults if missing)")
		scenePath    = flag.String("scene", "scene.toml", "scene to resolve")
		debug        = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	if *debug {
		log.Level = logrus.DebugLevel
	}

	if _, err := os.Stat(*settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(*settingsPath); err != nil {
			log.Fatalf("unable to save default settings: %v", err)
		}
		log.Infof("created default settings at %s", *settingsPath)
	}
	conf, err := settings.Load(*settingsPath)
	if err != nil {
		log.Fatalf("unable to load settings: %v", err)
	}

	if conf.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: conf.Sentry.DSN}); err != nil {
			log.Fatalf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(time.Second * 5)
		defer sentry.Recover()
	}

	sc, err := loadScene(*scenePath)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(sc, conf, log); err != nil {
		log.Fatal(err)
	}
}

func run(sc scene, conf settings.Settings, log *logrus.Logger) error {
	src := world.NewMemorySource(log)
	if err := sc.build(src); err != nil {
		return err
	}
	tracker := entity.NewTracker()
	targets, err := sc.entities(tracker)
	if err != nil {
		return err
	}
	view := world.NewView(src, tracker)

	playerPos, err := sc.actorPos()
	if err != nil {
		return err
	}
	src.CleanChunks(conf.World.ChunkRadius, world.ChunkPosOf(cube.PosFromVec3(playerPos)))

	eyeHeight := conf.Placement.EyeHeight
	if sc.Actor.Sneaking {
		eyeHeight = game.SneakingPlayerHeightOffset
	}
	eye := playerPos.Add(mgl64.Vec3{0, eyeHeight, 0})
	current := rotation.Rotation{Yaw: sc.Actor.Yaw, Pitch: sc.Actor.Pitch}

	resolveTargets(sc, conf, log, aim.NewResolver(view, log, conf.Aim.ProjectionPoints), targets, eye, current)
	_, err = placeBlocks(sc, conf, log, src, view, playerPos, eyeHeight, current)
	return err
}

// resolveTargets finds a rotation for every target of the scene, each on its own worker.
func resolveTargets(sc scene, conf settings.Settings, log *logrus.Logger, r *aim.Resolver, targets []*entity.Entity, eye mgl64.Vec3, current rotation.Rotation) {
	type result struct {
		candidate aim.Candidate
		ok        bool
	}
	results := worker.Map(targets, func(e *entity.Entity) result {
		q := aim.BoxQuery{
			Range:            conf.Aim.Range,
			WallsRange:       conf.Aim.WallsRange,
			Preference:       rotation.LeastDifferenceTo(current),
			IgnoreVisibility: !conf.Aim.PrioritizeVisible,
		}
		if sc.PredictTicks > 0 {
			future := e.PredictedBox(sc.PredictTicks)
			q.FutureTarget = &future
		}
		c, ok := r.RaytraceBox(eye, e.Box(), q)
		return result{candidate: c, ok: ok}
	})

	for i, res := range results {
		fields := logrus.Fields{"target": sc.Targets[i].Name}
		if !res.ok {
			log.WithFields(fields).Info("no rotation within range")
			continue
		}
		fields["yaw"], fields["pitch"] = res.candidate.Rotation.Yaw, res.candidate.Rotation.Pitch
		fields["point"], fields["visible"] = res.candidate.Point, res.candidate.Visible
		fields["turn"] = current.AngleTo(res.candidate.Rotation)
		log.WithFields(fields).Info("resolved target")
	}
}

// placeBlocks runs the placement queue of the scene until it is empty or runs out of ticks. Every
// placement is applied to the world straight away.
func placeBlocks(sc scene, conf settings.Settings, log *logrus.Logger, src *world.MemorySource, view *world.View, playerPos mgl64.Vec3, eyeHeight float64, current rotation.Rotation) ([]placer.Placement, error) {
	if len(sc.Placements) == 0 {
		return nil, nil
	}
	moveYaw, optimalLine, err := sc.movement(playerPos)
	if err != nil {
		return nil, err
	}
	p := placer.New(view, placer.ReachConfig{
		Range:      conf.Placement.Range,
		WallsRange: conf.Placement.WallsRange,
	}, placer.SupportConfig{
		Enabled:    conf.Support.Enabled,
		Depth:      conf.Support.Depth,
		DelayTicks: conf.Support.DelayTicks,
		Range:      conf.Aim.Range,
	}, log)
	for _, pl := range sc.Placements {
		b, err := blockByName(pl.Block)
		if err != nil {
			return nil, err
		}
		pos, err := toPos(pl.Pos)
		if err != nil {
			return nil, err
		}
		p.Enqueue(pos, b)
	}

	var placed []placer.Placement
	eye := playerPos.Add(mgl64.Vec3{0, eyeHeight, 0})
	for tick := 1; tick <= sc.Ticks && p.Len() > 0; tick++ {
		factory, err := targetfinding.NewFactory(conf.Placement.AimMode, targetfinding.FactoryConfig{
			Eye:       eye,
			Rotation:  current,
			PlayerPos: playerPos,
			Moving:    optimalLine != nil,
			MoveYaw:   moveYaw,
			Rand:      targetfinding.NewRand(cube.PosFromVec3(playerPos), uint64(tick)),
		}, optimalLine)
		if err != nil {
			return nil, err
		}
		placement, ok := p.Tick(uint64(tick), targetfinding.PlacementOptions{
			Factory:                 factory,
			ConsiderFacingAwayFaces: conf.Placement.ConsiderFacingAwayFaces,
			PlayerPos:               playerPos,
			EyeHeight:               eyeHeight,
			Rotation:                current,
		})
		if !ok {
			log.Debugf("tick %d: nothing placeable, %d pending", tick, p.Len())
			continue
		}
		t := placement.Target
		src.SetBlock(t.Placed, placement.Block)
		placed = append(placed, placement)
		data := placement.UseItemData(0)
		log.WithFields(logrus.Fields{
			"tick":    tick,
			"placed":  t.Placed,
			"clicked": data.BlockPosition,
			"face":    t.Face,
			"point":   data.ClickedPosition,
			"yaw":     t.Rotation.Yaw,
			"pitch":   t.Rotation.Pitch,
			"support": placement.Support,
		}).Info("placed block")
		current = t.Rotation
	}
	if p.Len() > 0 {
		log.Warnf("%d placements left unplaced: %v", p.Len(), p.Pending())
	}
	return placed, nil
}
