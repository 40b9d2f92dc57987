package system

import (
	"time"

	"github.com/l1jgo/accretion/internal/accretion"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scene"
	"github.com/l1jgo/accretion/internal/vmath"
)

// ColliderScaleSystem sizes the aggregate's transform and collider from the
// engine. The collider factor is size/2 applied to the authored dimensions,
// per shape; convex meshes keep their bounds. Phase 4 (PostUpdate).
type ColliderScaleSystem struct {
	scene  *scene.Scene
	engine *accretion.Engine
	last   float64
}

func NewColliderScaleSystem(sc *scene.Scene, engine *accretion.Engine) *ColliderScaleSystem {
	return &ColliderScaleSystem{scene: sc, engine: engine, last: -1}
}

func (s *ColliderScaleSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ColliderScaleSystem) Update(_ time.Duration) {
	size := s.engine.GetCurrentSize()
	if size == s.last {
		return
	}
	s.last = size
	id := s.engine.Aggregate()
	if t, err := s.scene.Transform(id); err == nil {
		t.Scale = vmath.Uniform(size)
	}
	if c, ok := s.scene.Colliders.Get(id); ok {
		ScaleCollider(c, s.engine.ColliderScale())
	}
}

// ScaleCollider applies factor to c's authored dimensions.
func ScaleCollider(c *scene.Collider, factor float64) {
	switch c.Shape {
	case scene.ShapeBox:
		c.Size = c.BaseSize.Mul(factor)
	case scene.ShapeSphere:
		c.Radius = c.BaseRadius * factor
	case scene.ShapeCapsule:
		c.Height = c.BaseHeight * factor
		c.Radius = c.BaseRadius * factor
	case scene.ShapeMesh:
		// convex mesh bounds come from the asset
	}
}
