package placer

import (
	"io"

	"github.com/df-mc/dragonfly/server/block/cube"
	df_world "github.com/df-mc/dragonfly/server/world"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/targetfinding"
	"github.com/oomph-ac/sightline/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sirupsen/logrus"
)

// ReachConfig limits how far away the actor may click blocks.
type ReachConfig struct {
	// Range is the maximum distance along the crosshair to the clicked block.
	Range float64
	// WallsRange is the distance from the eye to the centre of a block within which it may be
	// clicked without a clear line of sight.
	WallsRange float64
}

// SupportConfig controls when the Placer falls back to placing support blocks.
type SupportConfig struct {
	Enabled bool
	Depth   int
	// DelayTicks is the minimum amount of ticks between two support searches.
	DelayTicks uint64
	// Range is the maximum distance from the eye to a support block.
	Range float64
}

// Placement is a block placement that the action layer should carry out.
type Placement struct {
	Target    targetfinding.PlacementTarget
	Block     df_world.Block
	PlayerPos mgl64.Vec3
	// Support is true if the block was queued by the Placer to support another placement.
	Support bool
}

// UseItemData converts the placement into the transaction data a client sends when clicking a block.
func (p Placement) UseItemData(hotBarSlot int32) *protocol.UseItemTransactionData {
	pos := p.Target.Interacted
	return &protocol.UseItemTransactionData{
		ActionType:       protocol.UseItemActionClickBlock,
		TriggerType:      protocol.TriggerTypePlayerInput,
		BlockPosition:    protocol.BlockPos{int32(pos.X()), int32(pos.Y()), int32(pos.Z())},
		BlockFace:        int32(p.Target.Face),
		HotBarSlot:       hotBarSlot,
		Position:         game.Vec64To32(p.PlayerPos),
		ClickedPosition:  game.Vec64To32(p.Target.Point),
		ClientPrediction: protocol.ClientPredictionSuccess,
	}
}

type queued struct {
	block   df_world.Block
	support bool
}

// Placer holds the blocks that are waiting to be placed, in the order they were requested.
type Placer struct {
	view    *world.View
	log     logrus.FieldLogger
	reach   ReachConfig
	support SupportConfig

	queue *orderedmap.OrderedMap[cube.Pos, queued]
	// inaccessible holds the positions found unreachable or blocked during the current tick.
	inaccessible map[cube.Pos]struct{}

	searched    bool
	lastSupport uint64
}

// New creates a Placer that places blocks in the world passed.
func New(v *world.View, reach ReachConfig, support SupportConfig, log logrus.FieldLogger) *Placer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Placer{
		view:         v,
		log:          log,
		reach:        reach,
		support:      support,
		queue:        orderedmap.NewOrderedMap[cube.Pos, queued](),
		inaccessible: make(map[cube.Pos]struct{}),
	}
}

// Enqueue requests b to be placed at pos. It returns false if pos was already queued.
func (p *Placer) Enqueue(pos cube.Pos, b df_world.Block) bool {
	return p.queue.Set(pos, queued{block: b})
}

// Queued returns true if a block is waiting to be placed at pos.
func (p *Placer) Queued(pos cube.Pos) bool {
	_, ok := p.queue.Get(pos)
	return ok
}

// Len returns the amount of pending placements.
func (p *Placer) Len() int {
	return p.queue.Len()
}

// Pending returns the pending positions in the order they will be attempted.
func (p *Placer) Pending() []cube.Pos {
	return p.queue.Keys()
}

// Tick returns the next placement the actor can carry out this tick. opts.Stack is overwritten with the
// block of each pending position.
func (p *Placer) Tick(tick uint64, opts targetfinding.PlacementOptions) (Placement, bool) {
	clear(p.inaccessible)
	p.prune()
	if placement, ok := p.next(opts); ok {
		return placement, true
	}
	if !p.requestSupport(tick, opts) {
		return Placement{}, false
	}
	return p.next(opts)
}

// CanReach returns true if the actor with its eyes at eye can click the block t interacts with.
// Blocks within the walls range are always reachable, others must be the first block hit when
// looking along t.Rotation.
func (p *Placer) CanReach(eye mgl64.Vec3, t targetfinding.PlacementTarget) bool {
	if t.Interacted.Vec3Centre().Sub(eye).LenSqr() <= p.reach.WallsRange*p.reach.WallsRange {
		return true
	}
	end := eye.Add(t.Rotation.DirectionVector().Mul(p.reach.Range))
	hit, ok := p.view.Raycast(eye, end)
	return ok && hit.Pos == t.Interacted
}

// prune removes the positions that are no longer free to place at.
func (p *Placer) prune() {
	for _, pos := range p.queue.Keys() {
		if !p.view.ReplaceableAny(pos) {
			p.queue.Delete(pos)
			p.log.Debugf("dropped %v from placement queue: already occupied", pos)
		}
	}
}

func (p *Placer) next(opts targetfinding.PlacementOptions) (Placement, bool) {
	for el := p.queue.Front(); el != nil; el = el.Next() {
		pos := el.Key
		if _, ok := p.inaccessible[pos]; ok {
			continue
		}
		if p.view.BlockedByEntities(pos) {
			p.inaccessible[pos] = struct{}{}
			continue
		}
		opts.Stack = el.Value.block
		target, ok := targetfinding.FindBestBlockPlacementTarget(p.view, pos, opts)
		if !ok {
			continue
		}
		if !p.CanReach(opts.Eye(), target) {
			p.inaccessible[pos] = struct{}{}
			p.log.Debugf("cannot reach %v to place at %v", target.Interacted, pos)
			continue
		}
		p.queue.Delete(pos)
		return Placement{Target: target, Block: el.Value.block, PlayerPos: opts.PlayerPos, Support: el.Value.support}, true
	}
	return Placement{}, false
}

// requestSupport drops the support blocks queued earlier, searches a support path for every
// accessible pending position and queues the shortest one in front of the queue. It returns true
// if anything was queued.
func (p *Placer) requestSupport(tick uint64, opts targetfinding.PlacementOptions) bool {
	if !p.support.Enabled || p.queue.Len() == 0 {
		return false
	}
	if p.searched && tick-p.lastSupport < p.support.DelayTicks {
		return false
	}
	p.searched, p.lastSupport = true, tick

	for _, pos := range p.queue.Keys() {
		if v, _ := p.queue.Get(pos); v.support {
			p.queue.Delete(pos)
		}
	}

	search := SupportSearch{
		View:   p.view,
		Depth:  p.support.Depth,
		Range:  p.support.Range,
		Queued: p.Queued,
		Log:    p.log,
	}
	var (
		best  Path
		block df_world.Block
	)
	for el := p.queue.Front(); el != nil; el = el.Next() {
		if _, ok := p.inaccessible[el.Key]; ok {
			continue
		}
		path, ok := search.FindSupport(opts.Eye(), el.Key)
		if !ok {
			continue
		}
		if best == nil || len(path) < len(best) {
			best, block = path, el.Value.block
		}
		if len(path) <= 1 {
			break
		}
	}
	if len(best) < 2 {
		return false
	}

	queue := orderedmap.NewOrderedMap[cube.Pos, queued]()
	for _, pos := range best[:len(best)-1] {
		queue.Set(pos, queued{block: block, support: true})
	}
	for el := p.queue.Front(); el != nil; el = el.Next() {
		queue.Set(el.Key, el.Value)
	}
	p.queue = queue
	p.log.WithFields(logrus.Fields{"target": best[len(best)-1], "support": len(best) - 1}).Debug("queued support blocks")
	return true
}
