package aim

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/sightline/game"
	"github.com/oomph-ac/sightline/rotation"
)

// Candidate is a rotation that looks at Point, and whether Point was visible from the eye.
type Candidate struct {
	Rotation rotation.Rotation
	Point    mgl64.Vec3
	Visible  bool
}

// Tracker keeps the best candidates offered to it during a single query.
type Tracker interface {
	// Consider offers a candidate to the tracker.
	Consider(c Candidate)
	// Result returns the best visible candidate, or the best invisible one if there is none.
	Result() (Candidate, bool)
}

type slot struct {
	c          Candidate
	ok         bool
	intersects bool
}

// BestTracker keeps the candidate the preference ranks best, separately for visible and
// invisible candidates.
type BestTracker struct {
	pref             rotation.Preference
	ignoreVisibility bool

	visible, invisible slot
}

// NewTracker returns a BestTracker. If ignoreVisibility is true, invisible candidates compete
// with visible ones on preference alone.
func NewTracker(pref rotation.Preference, ignoreVisibility bool) *BestTracker {
	return &BestTracker{pref: pref, ignoreVisibility: ignoreVisibility}
}

func (t *BestTracker) slotFor(c Candidate) *slot {
	if c.Visible || t.ignoreVisibility {
		return &t.visible
	}
	return &t.invisible
}

// better returns true if c should replace the holder of s.
func (t *BestTracker) better(s *slot, c Candidate) bool {
	return !s.ok || t.pref.Compare(c.Rotation, s.c.Rotation) < 0
}

func (t *BestTracker) Consider(c Candidate) {
	if s := t.slotFor(c); t.better(s, c) {
		*s = slot{c: c, ok: true}
	}
}

func (t *BestTracker) Result() (Candidate, bool) {
	if t.visible.ok {
		return t.visible.c, true
	}
	return t.invisible.c, t.invisible.ok
}

// PredictionTracker is a BestTracker that favours candidates whose line of sight also passes
// through the box a target is predicted to occupy in the future.
type PredictionTracker struct {
	BestTracker
	eye    mgl64.Vec3
	future cube.BBox
}

// NewPredictionTracker ...
func NewPredictionTracker(pref rotation.Preference, eye mgl64.Vec3, future cube.BBox, ignoreVisibility bool) *PredictionTracker {
	return &PredictionTracker{
		BestTracker: BestTracker{pref: pref, ignoreVisibility: ignoreVisibility},
		eye:         eye,
		future:      future,
	}
}

func (t *PredictionTracker) Consider(c Candidate) {
	s := t.slotFor(c)
	intersects := game.BoxHitByRay(t.future, t.eye, c.Point)

	replace := false
	switch {
	case !s.ok:
		replace = true
	case intersects != s.intersects:
		replace = intersects
	default:
		replace = t.better(s, c)
	}
	if replace {
		*s = slot{c: c, ok: true, intersects: intersects}
	}
}
