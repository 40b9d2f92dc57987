// Package accretion implements the collection engine of the rolling
// aggregate: it gates contacts by relative size, moves accepted bodies onto
// the aggregate's surface over a staged lifecycle, grows the aggregate, and
// evicts the oldest attachment once a capacity bound is passed.
//
// An Engine is owned by the game loop goroutine. Nothing in it locks.
package accretion

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/core/event"
	"github.com/l1jgo/accretion/internal/core/sched"
	"go.uber.org/zap"
)

type Engine struct {
	cfg       config.AccretionConfig
	world     World
	aggregate ecs.EntityID
	bus       *event.Bus // optional
	log       *zap.Logger

	sched   *sched.Scheduler
	growth  *Growth
	growQ   []growRequest
	ledger  *Ledger
	members map[ecs.EntityID]struct{}
	records map[ecs.EntityID]*record
	flight  int
	stats   Stats
}

// NewEngine builds an engine for aggregate. cfg is expected to be clamped
// already (see config.Config.Clamp). bus may be nil.
func NewEngine(cfg config.AccretionConfig, world World, aggregate ecs.EntityID, bus *event.Bus, log *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		world:     world,
		aggregate: aggregate,
		bus:       bus,
		log:       log,
		sched:     sched.New(),
		growth:    NewGrowth(cfg.InitialSize, cfg.GrowthRate),
		ledger:    NewLedger(cfg.MaxAttachedObjects),
		members:   make(map[ecs.EntityID]struct{}, 128),
		records:   make(map[ecs.EntityID]*record, 128),
	}
}

// Tick advances the engine clock by dt, runs every lifecycle stage that came
// due, then applies queued growth in request order.
func (e *Engine) Tick(dt time.Duration) {
	e.sched.Advance(dt)
	e.drainGrowth()
}

// GetCurrentSize returns the aggregate's current uniform size.
func (e *Engine) GetCurrentSize() float64 { return e.growth.Size() }

// CollectionRadius is the radius of the aggregate's collection volume.
func (e *Engine) CollectionRadius() float64 { return e.growth.CollectionRadius() }

// ColliderScale is the factor the collider scaler applies to the aggregate.
func (e *Engine) ColliderScale() float64 { return e.growth.ColliderScale() }

// Aggregate returns the handle of the growing body.
func (e *Engine) Aggregate() ecs.EntityID { return e.aggregate }

// IsMember reports whether id was ever accepted.
func (e *Engine) IsMember(id ecs.EntityID) bool {
	_, ok := e.members[id]
	return ok
}

// State returns id's lifecycle state. Unknown ids are Free.
func (e *Engine) State(id ecs.EntityID) State {
	if r, ok := e.records[id]; ok {
		return r.state
	}
	return StateFree
}

// OriginalScale returns the scale recorded at id's first accepted contact.
func (e *Engine) OriginalScale(id ecs.EntityID) (mgl64.Vec3, bool) {
	r, ok := e.records[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return r.originalScale, true
}

// Ledger returns the attached collectibles, oldest first.
func (e *Engine) Ledger() []ecs.EntityID { return e.ledger.IDs() }

// Attached returns the number of ledger entries.
func (e *Engine) Attached() int { return e.ledger.Len() }

// InFlight returns the number of lifecycles between acceptance and reattach.
func (e *Engine) InFlight() int { return e.flight }

func (e *Engine) Stats() Stats { return e.stats }

// ManualGrow queues one growth step outside any lifecycle.
func (e *Engine) ManualGrow() {
	e.growQ = append(e.growQ, growRequest{})
}

// HandleDestroyed is the world's notice that id was released by something
// other than the engine. Attached bodies leave the ledger; in-flight
// lifecycles notice on their next stage.
func (e *Engine) HandleDestroyed(id ecs.EntityID) {
	r, ok := e.records[id]
	if !ok || r.state != StateAttached {
		return
	}
	r.state = StateLost
	e.ledger.Remove(id)
	e.log.Debug("attached collectible destroyed by world",
		zap.Uint64("id", uint64(id)),
		zap.Int("attached", e.ledger.Len()),
	)
	if e.cfg.Reorganize {
		e.Reorganize()
	}
}
