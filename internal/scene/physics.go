package scene

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/vmath"
)

// AddForce accelerates id by f/mass over dt.
func (s *Scene) AddForce(id ecs.EntityID, f mgl64.Vec3, dt time.Duration) {
	b, ok := s.Bodies.Get(id)
	if !ok || b.Static {
		return
	}
	b.Velocity = b.Velocity.Add(f.Mul(dt.Seconds() / b.Mass))
}

// AddTorque spins id up by torque/mass over dt. Bodies are treated as unit
// spheres for inertia.
func (s *Scene) AddTorque(id ecs.EntityID, torque mgl64.Vec3, dt time.Duration) {
	b, ok := s.Bodies.Get(id)
	if !ok || b.Static {
		return
	}
	b.AngularVelocity = b.AngularVelocity.Add(torque.Mul(dt.Seconds() / b.Mass))
}

// Integrate advances every free, non-static, colliding body by dt. Followers
// and bodies with collision disabled are kinematic and do not move on their own.
func (s *Scene) Integrate(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each2(s.Bodies, s.Transforms, func(id ecs.EntityID, b *Body, t *Transform) {
		if b.Static || s.Follows.Has(id) {
			return
		}
		if c, ok := s.Colliders.Get(id); ok && !c.Enabled {
			return
		}
		if b.Damping > 0 {
			b.Velocity = b.Velocity.Mul(math.Max(0, 1-b.Damping*sec))
		}
		t.Position = t.Position.Add(b.Velocity.Mul(sec))
		t.Rotation = vmath.Integrate(t.Rotation, b.AngularVelocity, sec)
	})
}
