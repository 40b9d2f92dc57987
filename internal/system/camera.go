package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/ecs"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scene"
	"github.com/l1jgo/accretion/internal/vmath"
)

// Camera is the orbit camera state read by the controller.
type Camera struct {
	Position mgl64.Vec3
	Offset   mgl64.Vec3 // from the aggregate
	Look     mgl64.Vec3 // unit view direction
}

// Forward returns the view direction flattened onto the ground plane.
func (c *Camera) Forward() mgl64.Vec3 {
	f := vmath.Normalize(mgl64.Vec3{c.Look[0], 0, c.Look[2]})
	if f == vmath.Zero {
		return mgl64.Vec3{0, 0, 1}
	}
	return f
}

// CameraSystem pivots the camera around the aggregate on horizontal input
// and keeps it looking at the aggregate. Phase 5 (Output).
type CameraSystem struct {
	camera     *Camera
	input      *Input
	scene      *scene.Scene
	aggregate  ecs.EntityID
	pivotSpeed float64 // degrees per second
}

func NewCameraSystem(camera *Camera, input *Input, sc *scene.Scene, aggregate ecs.EntityID, cfg config.CameraConfig) *CameraSystem {
	camera.Offset = mgl64.Vec3{cfg.Offset[0], cfg.Offset[1], cfg.Offset[2]}
	s := &CameraSystem{
		camera:     camera,
		input:      input,
		scene:      sc,
		aggregate:  aggregate,
		pivotSpeed: cfg.PivotSpeed,
	}
	s.follow()
	return s
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *CameraSystem) Update(dt time.Duration) {
	if h := s.input.Horizontal; h != 0 {
		s.camera.Offset = vmath.Yaw(h * s.pivotSpeed * dt.Seconds()).Rotate(s.camera.Offset)
	}
	s.follow()
}

func (s *CameraSystem) follow() {
	target, err := s.scene.Position(s.aggregate)
	if err != nil {
		return
	}
	s.camera.Position = target.Add(s.camera.Offset)
	s.camera.Look = vmath.Normalize(target.Sub(s.camera.Position))
}
