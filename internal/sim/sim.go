// Package sim assembles a runnable simulation: scene, accretion engine,
// event bus and the phase-ordered systems, from a config and a scene file.
package sim

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/accretion"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/core/event"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/data"
	"github.com/l1jgo/accretion/internal/scene"
	"github.com/l1jgo/accretion/internal/scripting"
	"github.com/l1jgo/accretion/internal/system"
	"github.com/l1jgo/accretion/internal/vmath"
	"go.uber.org/zap"
)

type Sim struct {
	Scene   *scene.Scene
	Engine  *accretion.Engine
	Bus     *event.Bus
	Runner  *coresys.Runner
	Input   *system.Input
	Camera  *system.Camera
	Readout *system.ReadoutSystem
	Contact *system.ContactSystem

	Aggregate ecs.EntityID
	Spawned   int
}

// Build spawns the scene and registers every system. lua may be nil.
func Build(cfg *config.Config, sf *data.SceneFile, lua *scripting.Engine, log *zap.Logger) (*Sim, error) {
	sc := scene.New(log)
	bus := event.NewBus()

	aggCol, err := collider(sf.Aggregate.Collider)
	if err != nil {
		return nil, fmt.Errorf("aggregate collider: %w", err)
	}
	size := cfg.Accretion.InitialSize
	agg := sc.Spawn(scene.Spec{
		Name:     "aggregate",
		Tag:      "Aggregate",
		Position: vec(sf.Aggregate.Position),
		Scale:    vmath.Uniform(size),
		Collider: aggCol,
		Body:     scene.Body{Mass: nonZero(sf.Aggregate.Mass, cfg.Controller.Mass), Damping: cfg.Controller.LinearDamping},
	})

	spawned := 0
	for _, p := range sf.Placements() {
		col, err := collider(p.Collider)
		if err != nil {
			return nil, fmt.Errorf("collectible %q: %w", p.Name, err)
		}
		sc.Spawn(scene.Spec{
			Name:     p.Name,
			Tag:      p.Tag,
			Position: vec(p.Position),
			Scale:    vmath.Uniform(p.Scale),
			Collider: col,
			Body:     scene.Body{Static: true},
		})
		spawned++
	}

	engine := accretion.NewEngine(cfg.Accretion, sc, agg, bus, log)
	sc.World().OnDestroy(engine.HandleDestroyed)

	s := &Sim{
		Scene:     sc,
		Engine:    engine,
		Bus:       bus,
		Runner:    coresys.NewRunner(),
		Input:     &system.Input{},
		Camera:    &system.Camera{},
		Aggregate: agg,
		Spawned:   spawned,
	}
	s.Readout = system.NewReadoutSystem(engine, lua, bus, cfg.Readout, log)
	s.Contact = system.NewContactSystem(sc, engine, bus, cfg.Accretion.RetryWhileTouching)

	// Registration order matters within a phase.
	r := s.Runner
	r.Register(system.NewInputSystem(s.Input, sf.Track, sc, engine, cfg.Debug.ManualGrow, log))
	r.Register(system.NewEventDispatchSystem(bus))
	r.Register(system.NewAccretionSystem(engine, bus))
	r.Register(system.NewControllerSystem(cfg.Controller, s.Input, s.Camera, sc, agg))
	r.Register(system.NewPhysicsSystem(sc))
	r.Register(system.NewGroundSystem(sc, engine))
	r.Register(system.NewFollowSystem(sc, engine))
	r.Register(system.NewColliderScaleSystem(sc, engine))
	r.Register(s.Contact)
	r.Register(system.NewCameraSystem(s.Camera, s.Input, sc, agg, cfg.Camera))
	r.Register(s.Readout)
	r.Register(system.NewCleanupSystem(sc))
	return s, nil
}

// Step runs one tick of dt.
func (s *Sim) Step(dt time.Duration) {
	s.Runner.Tick(dt)
}

// Run steps the simulation for total simulated time in fixed dt ticks.
func (s *Sim) Run(total, dt time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += dt {
		s.Step(dt)
	}
}

func collider(def data.ColliderDef) (scene.Collider, error) {
	shape, ok := scene.ParseShape(def.Shape)
	if !ok {
		return scene.Collider{}, fmt.Errorf("unknown collider shape %q", def.Shape)
	}
	c := scene.Collider{
		Shape:     shape,
		Radius:    def.Radius,
		Height:    def.Height,
		Size:      vec(def.Size),
		Convex:    def.Convex,
		MeshBound: def.MeshBound,
	}
	if shape == scene.ShapeSphere && c.Radius == 0 {
		c.Radius = 0.5
	}
	if shape == scene.ShapeBox && c.Size == vmath.Zero {
		c.Size = vmath.One
	}
	return c, nil
}

func vec(a [3]float64) mgl64.Vec3 { return mgl64.Vec3(a) }

func nonZero(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
