package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/accretion"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/ecs"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scene"
	"github.com/l1jgo/accretion/internal/vmath"
)

// ControllerSystem turns the vertical axis into a push and a rolling torque
// along the camera's ground-plane forward, each yawed by its configured
// angle, and caps the aggregate's spin. Phase 2 (Physics).
type ControllerSystem struct {
	cfg       config.ControllerConfig
	input     *Input
	camera    *Camera
	scene     *scene.Scene
	aggregate ecs.EntityID
	moveYaw   mgl64.Quat
	rollYaw   mgl64.Quat
}

func NewControllerSystem(cfg config.ControllerConfig, input *Input, camera *Camera, sc *scene.Scene, aggregate ecs.EntityID) *ControllerSystem {
	return &ControllerSystem{
		cfg:       cfg,
		input:     input,
		camera:    camera,
		scene:     sc,
		aggregate: aggregate,
		moveYaw:   vmath.Yaw(cfg.MovementRotationAngle),
		rollYaw:   vmath.Yaw(cfg.RollingRotationAngle),
	}
}

func (s *ControllerSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *ControllerSystem) Update(dt time.Duration) {
	v := s.input.Vertical
	if v != 0 {
		forward := s.camera.Forward()
		if s.cfg.EnableMovementForce {
			dir := s.moveYaw.Rotate(forward)
			s.scene.AddForce(s.aggregate, dir.Mul(v*s.cfg.ForwardForce), dt)
		}
		if s.cfg.EnableRolling {
			axis := s.rollYaw.Rotate(forward)
			s.scene.AddTorque(s.aggregate, axis.Mul(v*s.cfg.TorqueForce), dt)
		}
	}
	if b, ok := s.scene.Bodies.Get(s.aggregate); ok {
		b.AngularVelocity = vmath.ClampMag(b.AngularVelocity, s.cfg.RollSensitivity)
	}
}

// PhysicsSystem integrates free bodies. Phase 2 (Physics), after the
// controller.
type PhysicsSystem struct {
	scene *scene.Scene
}

func NewPhysicsSystem(sc *scene.Scene) *PhysicsSystem {
	return &PhysicsSystem{scene: sc}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(dt time.Duration) {
	s.scene.Integrate(dt)
}

// GroundSystem rests the aggregate on the ground plane at its current radius.
// It runs in Phase 4 (PostUpdate), after this tick's growth and before
// followers and contacts read the aggregate's position.
type GroundSystem struct {
	scene  *scene.Scene
	engine *accretion.Engine
}

func NewGroundSystem(sc *scene.Scene, engine *accretion.Engine) *GroundSystem {
	return &GroundSystem{scene: sc, engine: engine}
}

func (s *GroundSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *GroundSystem) Update(_ time.Duration) {
	if t, err := s.scene.Transform(s.engine.Aggregate()); err == nil {
		t.Position[1] = s.engine.GetCurrentSize() / 2
	}
}
