package system

import (
	"time"

	"github.com/l1jgo/accretion/internal/accretion"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/core/event"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scene"
)

// ContactSystem tests the aggregate's collection sphere against every
// colliding body and emits ContactBegan on first overlap. With retry on,
// bodies that stay inside and were never accepted are re-reported every
// tick. Phase 4 (PostUpdate), after followers have moved.
type ContactSystem struct {
	scene    *scene.Scene
	engine   *accretion.Engine
	bus      *event.Bus
	retry    bool
	touching map[ecs.EntityID]struct{}
	current  map[ecs.EntityID]struct{}
}

func NewContactSystem(sc *scene.Scene, engine *accretion.Engine, bus *event.Bus, retryWhileTouching bool) *ContactSystem {
	return &ContactSystem{
		scene:    sc,
		engine:   engine,
		bus:      bus,
		retry:    retryWhileTouching,
		touching: make(map[ecs.EntityID]struct{}),
		current:  make(map[ecs.EntityID]struct{}),
	}
}

func (s *ContactSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ContactSystem) Update(_ time.Duration) {
	agg := s.engine.Aggregate()
	center, err := s.scene.Position(agg)
	if err != nil {
		return
	}
	for id := range s.current {
		delete(s.current, id)
	}
	s.scene.Overlapping(center, s.engine.CollectionRadius(), agg, func(id ecs.EntityID, t *scene.Transform) {
		s.current[id] = struct{}{}
		tag := s.scene.Tag(id)
		if _, was := s.touching[id]; was && !s.retryable(id, tag) {
			return
		}
		event.Emit(s.bus, event.ContactBegan{
			Aggregate: agg,
			Other:     id,
			Tag:       tag,
			Position:  t.Position,
			Scale:     t.Scale,
		})
	})
	s.touching, s.current = s.current, s.touching
}

func (s *ContactSystem) retryable(id ecs.EntityID, tag string) bool {
	return s.retry && tag == accretion.TagCollectible && !s.engine.IsMember(id)
}

// Touching returns the number of bodies inside the collection sphere.
func (s *ContactSystem) Touching() int { return len(s.touching) }
