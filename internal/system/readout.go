package system

import (
	"fmt"
	"time"

	"github.com/l1jgo/accretion/internal/accretion"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/event"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scripting"
	"go.uber.org/zap"
)

// ReadoutSystem renders the on-screen size text from the engine's current
// size. It recomputes only after size or attachment events. Phase 5 (Output).
type ReadoutSystem struct {
	engine *accretion.Engine
	lua    *scripting.Engine // optional
	cfg    config.ReadoutConfig
	log    *zap.Logger

	text     string
	dirty    bool
	reported bool
}

func NewReadoutSystem(engine *accretion.Engine, lua *scripting.Engine, bus *event.Bus, cfg config.ReadoutConfig, log *zap.Logger) *ReadoutSystem {
	s := &ReadoutSystem{engine: engine, lua: lua, cfg: cfg, log: log, dirty: true}
	if bus != nil {
		event.Subscribe(bus, func(event.SizeChanged) { s.dirty = true })
		event.Subscribe(bus, func(event.Collected) { s.dirty = true })
		event.Subscribe(bus, func(event.Evicted) { s.dirty = true })
	}
	return s
}

func (s *ReadoutSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReadoutSystem) Update(_ time.Duration) {
	if s.engine == nil {
		if !s.reported {
			s.log.Error("readout has no accretion engine")
			s.reported = true
		}
		return
	}
	if !s.dirty {
		return
	}
	s.dirty = false

	text := s.render()
	if text != s.text {
		s.text = text
		stats := s.engine.Stats()
		s.log.Info("size",
			zap.String("readout", text),
			zap.Int("attached", s.engine.Attached()),
			zap.Int("evicted", stats.Evicted),
		)
	}
}

// Text returns the last rendered readout.
func (s *ReadoutSystem) Text() string { return s.text }

func (s *ReadoutSystem) render() string {
	size := s.engine.GetCurrentSize()
	value := FormatValue(size, s.cfg)
	if s.lua == nil {
		return FormatReadout(value)
	}
	value = s.lua.DisplayValue(size, value)
	if text, ok := s.lua.SizeReadout(scripting.ReadoutContext{
		Size:     size,
		Value:    value,
		Attached: s.engine.Attached(),
		Evicted:  s.engine.Stats().Evicted,
	}); ok {
		return text
	}
	return FormatReadout(value)
}

// FormatValue maps a size to the displayed number.
func FormatValue(size float64, cfg config.ReadoutConfig) float64 {
	return size*cfg.SizeMultiplier + cfg.StartingDisplayValue
}

// FormatReadout renders the built-in "<value> cm" text.
func FormatReadout(value float64) string {
	return fmt.Sprintf("%.1f cm", value)
}
