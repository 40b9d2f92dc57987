package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/vmath"
	"go.uber.org/zap"
)

// ErrInvalidHandle is returned for destroyed or unknown entities.
var ErrInvalidHandle = errors.New("invalid entity handle")

// Scene is the world/physics collaborator: it owns every body, its transform,
// collider and follow relation. Access is single-goroutine (the game loop).
type Scene struct {
	world *ecs.World
	log   *zap.Logger

	Transforms *ecs.Store[Transform]
	Bodies     *ecs.Store[Body]
	Colliders  *ecs.Store[Collider]
	Follows    *ecs.Store[Follow]
	Infos      *ecs.Store[Info]

	byName map[string]ecs.EntityID
}

func New(log *zap.Logger) *Scene {
	s := &Scene{
		world:      ecs.NewWorld(),
		log:        log,
		Transforms: ecs.NewStore[Transform](),
		Bodies:     ecs.NewStore[Body](),
		Colliders:  ecs.NewStore[Collider](),
		Follows:    ecs.NewStore[Follow](),
		Infos:      ecs.NewStore[Info](),
		byName:     make(map[string]ecs.EntityID),
	}
	s.world.Register(s.Transforms)
	s.world.Register(s.Bodies)
	s.world.Register(s.Colliders)
	s.world.Register(s.Follows)
	s.world.Register(s.Infos)
	s.world.OnDestroy(s.forget)
	return s
}

// World exposes the ECS world for cleanup and destroy hooks.
func (s *Scene) World() *ecs.World { return s.world }

// Spec describes a body to spawn.
type Spec struct {
	Name     string
	Tag      string
	Position mgl64.Vec3
	Scale    mgl64.Vec3
	Collider Collider
	Body     Body
}

// Spawn creates a body from def. The collider starts enabled.
func (s *Scene) Spawn(def Spec) ecs.EntityID {
	id := s.world.CreateEntity()
	scale := def.Scale
	if scale == vmath.Zero {
		scale = vmath.One
	}
	s.Transforms.Set(id, &Transform{Position: def.Position, Rotation: mgl64.QuatIdent(), Scale: scale})
	body := def.Body
	if body.Mass <= 0 {
		body.Mass = 1
	}
	s.Bodies.Set(id, &body)
	col := def.Collider
	col.Enabled = true
	col.BaseSize, col.BaseRadius, col.BaseHeight = col.Size, col.Radius, col.Height
	s.Colliders.Set(id, &col)
	s.Infos.Set(id, &Info{Name: def.Name, Tag: def.Tag})
	if def.Name != "" {
		s.byName[def.Name] = id
	}
	return id
}

// Lookup finds a live body by scene name.
func (s *Scene) Lookup(name string) (ecs.EntityID, bool) {
	id, ok := s.byName[name]
	if !ok || !s.world.Alive(id) {
		return 0, false
	}
	return id, true
}

func (s *Scene) forget(id ecs.EntityID) {
	for name, v := range s.byName {
		if v == id {
			delete(s.byName, name)
		}
	}
}

func (s *Scene) Alive(id ecs.EntityID) bool { return s.world.Alive(id) }

func (s *Scene) transform(id ecs.EntityID) (*Transform, error) {
	if !s.world.Alive(id) {
		return nil, fmt.Errorf("entity %d: %w", id, ErrInvalidHandle)
	}
	t, ok := s.Transforms.Get(id)
	if !ok {
		return nil, fmt.Errorf("entity %d has no transform: %w", id, ErrInvalidHandle)
	}
	return t, nil
}

func (s *Scene) Transform(id ecs.EntityID) (*Transform, error) { return s.transform(id) }

func (s *Scene) Position(id ecs.EntityID) (mgl64.Vec3, error) {
	t, err := s.transform(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return t.Position, nil
}

func (s *Scene) Scale(id ecs.EntityID) (mgl64.Vec3, error) {
	t, err := s.transform(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return t.Scale, nil
}

func (s *Scene) SetScale(id ecs.EntityID, scale mgl64.Vec3) error {
	t, err := s.transform(id)
	if err != nil {
		return err
	}
	t.Scale = scale
	return nil
}

func (s *Scene) SetCollision(id ecs.EntityID, enabled bool) error {
	if !s.world.Alive(id) {
		return fmt.Errorf("set collision %d: %w", id, ErrInvalidHandle)
	}
	c, ok := s.Colliders.Get(id)
	if !ok {
		return nil // nothing to toggle
	}
	c.Enabled = enabled
	if b, ok := s.Bodies.Get(id); ok && !enabled {
		b.Velocity, b.AngularVelocity = vmath.Zero, vmath.Zero
	}
	return nil
}

// Follow attaches id to parent at world position at, keeping id's current
// world rotation. Re-following replaces the previous relation.
func (s *Scene) Follow(id, parent ecs.EntityID, at mgl64.Vec3) error {
	t, err := s.transform(id)
	if err != nil {
		return err
	}
	pt, err := s.transform(parent)
	if err != nil {
		return fmt.Errorf("follow parent: %w", err)
	}
	inv := pt.Rotation.Conjugate()
	s.Follows.Set(id, &Follow{
		Parent:        parent,
		LocalOffset:   inv.Rotate(at.Sub(pt.Position)),
		LocalRotation: inv.Mul(t.Rotation),
	})
	t.Position = at
	return nil
}

// FollowOffset returns id's offset from its parent in world orientation, from
// the parent's current frame. Unlike Position it does not wait for the next
// ResolveFollows.
func (s *Scene) FollowOffset(id ecs.EntityID) (mgl64.Vec3, error) {
	if !s.world.Alive(id) {
		return mgl64.Vec3{}, fmt.Errorf("follow offset %d: %w", id, ErrInvalidHandle)
	}
	f, ok := s.Follows.Get(id)
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("entity %d is not following", id)
	}
	pt, err := s.transform(f.Parent)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("follow parent: %w", err)
	}
	return pt.Rotation.Rotate(f.LocalOffset), nil
}

func (s *Scene) Unfollow(id ecs.EntityID) error {
	if !s.world.Alive(id) {
		return fmt.Errorf("unfollow %d: %w", id, ErrInvalidHandle)
	}
	s.Follows.Remove(id)
	return nil
}

// Destroy releases id immediately.
func (s *Scene) Destroy(id ecs.EntityID) error {
	if !s.world.Destroy(id) {
		return fmt.Errorf("destroy %d: %w", id, ErrInvalidHandle)
	}
	return nil
}

// MarkForDestruction queues id for the end-of-tick cleanup.
func (s *Scene) MarkForDestruction(id ecs.EntityID) {
	s.world.MarkForDestruction(id)
}

// Tag returns the scene tag of id.
func (s *Scene) Tag(id ecs.EntityID) string {
	if i, ok := s.Infos.Get(id); ok {
		return i.Tag
	}
	return ""
}

// ResolveFollows drives every follower from its parent's current frame.
// Followers whose parent is gone are released back to the world in place.
func (s *Scene) ResolveFollows() {
	var orphans []ecs.EntityID
	ecs.Each2(s.Follows, s.Transforms, func(id ecs.EntityID, f *Follow, t *Transform) {
		pt, ok := s.Transforms.Get(f.Parent)
		if !ok || !s.world.Alive(f.Parent) {
			orphans = append(orphans, id)
			return
		}
		t.Position = pt.Position.Add(pt.Rotation.Rotate(f.LocalOffset))
		t.Rotation = pt.Rotation.Mul(f.LocalRotation)
	})
	for _, id := range orphans {
		s.Follows.Remove(id)
		s.log.Debug("follower released, parent gone", zap.Uint64("id", uint64(id)))
	}
}

// Overlapping calls fn for every body with an enabled collider whose bounding
// sphere intersects the sphere (center, radius). exclude is skipped.
func (s *Scene) Overlapping(center mgl64.Vec3, radius float64, exclude ecs.EntityID, fn func(ecs.EntityID, *Transform)) {
	ecs.Each2(s.Colliders, s.Transforms, func(id ecs.EntityID, c *Collider, t *Transform) {
		if id == exclude || !c.Enabled {
			return
		}
		r := c.BoundingRadius() * vmath.MaxComponent(t.Scale)
		reach := radius + r
		if vmath.DistSq(center, t.Position) <= reach*reach {
			fn(id, t)
		}
	})
}
