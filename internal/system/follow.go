package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
	coresys "github.com/l1jgo/accretion/internal/core/system"
	"github.com/l1jgo/accretion/internal/scene"
)

// ScaleSource knows the scale each collected body must keep.
type ScaleSource interface {
	OriginalScale(id ecs.EntityID) (mgl64.Vec3, bool)
}

// FollowSystem moves followers with the aggregate frame and re-asserts their
// recorded scale every tick. Phase 4 (PostUpdate).
type FollowSystem struct {
	scene  *scene.Scene
	scales ScaleSource
}

func NewFollowSystem(sc *scene.Scene, scales ScaleSource) *FollowSystem {
	return &FollowSystem{scene: sc, scales: scales}
}

func (s *FollowSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *FollowSystem) Update(_ time.Duration) {
	s.scene.ResolveFollows()
	ecs.Each2(s.scene.Follows, s.scene.Transforms, func(id ecs.EntityID, _ *scene.Follow, t *scene.Transform) {
		if orig, ok := s.scales.OriginalScale(id); ok {
			t.Scale = orig
		}
	})
}
