package accretion

import (
	"time"

	"github.com/l1jgo/accretion/internal/core/event"
	"go.uber.org/zap"
)

// The attachment lifecycle runs in four stages:
//
//	record → detach ──detach_delay──▶ grow ──grow_delay──▶ reattach
//
// record and detach run inside HandleContact. grow queues a request that
// Tick applies after the due tasks, and the reattach stage is scheduled from
// there. Every stage re-checks that the candidate is still alive and ends
// the lifecycle quietly if it is not.

func (e *Engine) begin(c Contact) {
	r := e.recordCandidate(c)
	e.flight++
	if !e.detach(r) {
		return
	}
	e.sched.After(e.cfg.DetachDelay, func(time.Duration) { e.growStage(r) })
}

// recordCandidate stores the original scale the first time id is seen.
func (e *Engine) recordCandidate(c Contact) *record {
	if r, ok := e.records[c.Candidate]; ok {
		return r
	}
	r := &record{
		id:            c.Candidate,
		originalScale: c.Scale,
		approach:      c.Position,
		state:         StateFree,
	}
	e.records[c.Candidate] = r
	return r
}

func (e *Engine) detach(r *record) bool {
	if !e.live(r, "detach") {
		return false
	}
	if err := e.world.Unfollow(r.id); err != nil {
		return e.fail(r, "detach", err)
	}
	if err := e.world.SetScale(r.id, r.originalScale); err != nil {
		return e.fail(r, "detach", err)
	}
	if err := e.world.SetCollision(r.id, false); err != nil {
		return e.fail(r, "detach", err)
	}
	r.state = StatePendingAttachment
	return true
}

func (e *Engine) growStage(r *record) {
	if !e.live(r, "grow") {
		return
	}
	e.growQ = append(e.growQ, growRequest{rec: r})
}

// drainGrowth applies queued growth one request at a time, so lifecycles
// reaching the grow stage together each grow exactly once.
func (e *Engine) drainGrowth() {
	if len(e.growQ) == 0 {
		return
	}
	q := e.growQ
	e.growQ = nil
	for _, req := range q {
		if req.rec != nil && !e.live(req.rec, "grow") {
			continue
		}
		size := e.growth.Grow()
		e.stats.Grown++
		if e.bus != nil {
			event.Emit(e.bus, event.SizeChanged{Size: size, CollectionRadius: e.growth.CollectionRadius()})
		}
		if req.rec == nil {
			e.log.Debug("manual growth", zap.Float64("size", size))
			continue
		}
		r := req.rec
		e.sched.After(e.cfg.GrowDelay, func(time.Duration) { e.reattach(r) })
	}
}

func (e *Engine) reattach(r *record) {
	if !e.live(r, "reattach") {
		return
	}
	center, err := e.world.Position(e.aggregate)
	if err != nil {
		e.fail(r, "reattach", err)
		return
	}
	at := Place(r.approach, center, e.growth.Size(), e.cfg.Offset)
	if err := e.world.Follow(r.id, e.aggregate, at); err != nil {
		e.fail(r, "reattach", err)
		return
	}
	if err := e.world.SetScale(r.id, r.originalScale); err != nil {
		e.fail(r, "reattach", err)
		return
	}
	if err := e.world.SetCollision(r.id, false); err != nil {
		e.fail(r, "reattach", err)
		return
	}

	r.order = e.ledger.Push(r.id)
	r.state = StateAttached
	e.flight--
	e.stats.Attached++
	e.log.Info("collectible attached",
		zap.Uint64("id", uint64(r.id)),
		zap.Float64("size", e.growth.Size()),
		zap.Int("attached", e.ledger.Len()),
	)
	if e.bus != nil {
		event.Emit(e.bus, event.Collected{Collectible: r.id, Size: e.growth.Size(), Attached: e.ledger.Len()})
	}

	if e.ledger.Len() > e.cfg.MaxAttachedObjects {
		e.evictOldest()
	}
	if e.cfg.Reorganize {
		e.Reorganize()
	}
}

// live reports whether r's body still exists, ending the lifecycle if not.
func (e *Engine) live(r *record, stage string) bool {
	if e.world.Alive(r.id) {
		return true
	}
	e.abort(r, stage)
	return false
}

func (e *Engine) fail(r *record, stage string, err error) bool {
	e.log.Debug("lifecycle stage failed", zap.String("stage", stage), zap.Uint64("id", uint64(r.id)), zap.Error(err))
	e.abort(r, "")
	return false
}

func (e *Engine) abort(r *record, stage string) {
	if r.state == StateLost {
		return
	}
	r.state = StateLost
	e.flight--
	e.stats.Aborted++
	if stage != "" {
		e.log.Debug("collectible gone, lifecycle aborted",
			zap.String("stage", stage),
			zap.Uint64("id", uint64(r.id)),
		)
	}
}
