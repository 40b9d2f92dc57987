package system

import (
	"time"

	"github.com/l1jgo/accretion/internal/accretion"
	"github.com/l1jgo/accretion/internal/core/event"
	coresys "github.com/l1jgo/accretion/internal/core/system"
)

// AccretionSystem feeds contact events to the engine and advances its staged
// lifecycles. Contacts arrive in PreUpdate through the bus; Update runs the
// engine clock. Phase 3 (Update).
type AccretionSystem struct {
	engine *accretion.Engine
}

func NewAccretionSystem(engine *accretion.Engine, bus *event.Bus) *AccretionSystem {
	s := &AccretionSystem{engine: engine}
	event.Subscribe(bus, s.onContact)
	return s
}

func (s *AccretionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AccretionSystem) Update(dt time.Duration) {
	s.engine.Tick(dt)
}

func (s *AccretionSystem) onContact(ev event.ContactBegan) {
	if ev.Aggregate != s.engine.Aggregate() {
		return
	}
	s.engine.HandleContact(accretion.Contact{
		Candidate: ev.Other,
		Tag:       ev.Tag,
		Position:  ev.Position,
		Scale:     ev.Scale,
	})
}
