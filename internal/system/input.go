package system

import (
	"time"

	"github.com/l1jgo/accretion/internal/accretion"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/data"
	"github.com/l1jgo/accretion/internal/scene"
	"go.uber.org/zap"
)

// Input is the per-tick input state shared by the controller and camera.
type Input struct {
	Vertical   float64 // forward/back, [-1,1]
	Horizontal float64 // camera pivot, [-1,1]
}

// InputSystem plays a scripted input track: it sets the axes and fires
// one-shot grow and despawn entries as their time comes. Phase 0 (Input).
type InputSystem struct {
	input      *Input
	track      []data.TrackEntry
	next       int
	elapsed    time.Duration
	scene      *scene.Scene
	engine     *accretion.Engine
	manualGrow bool
	log        *zap.Logger
}

func NewInputSystem(input *Input, track []data.TrackEntry, sc *scene.Scene, engine *accretion.Engine, manualGrow bool, log *zap.Logger) *InputSystem {
	return &InputSystem{
		input:      input,
		track:      track,
		scene:      sc,
		engine:     engine,
		manualGrow: manualGrow,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	s.input.Vertical, s.input.Horizontal = data.Axes(s.track, s.elapsed)

	var due []data.TrackEntry
	due, s.next = data.Due(s.track, s.next, s.elapsed)
	for _, e := range due {
		if e.Grow {
			if s.manualGrow {
				s.engine.ManualGrow()
			} else {
				s.log.Debug("manual grow ignored, debug.manual_grow is off")
			}
		}
		for _, name := range e.Despawn {
			id, ok := s.scene.Lookup(name)
			if !ok {
				s.log.Debug("despawn target not found", zap.String("name", name))
				continue
			}
			s.scene.MarkForDestruction(id)
		}
	}
	s.elapsed += dt
}
