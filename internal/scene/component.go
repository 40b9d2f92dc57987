package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
)

// Transform is a body's world placement. Scale is local and never inherited.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Body carries the free-body motion state integrated by the scene.
type Body struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3 // rad/s, world axes
	Mass            float64
	Damping         float64 // fraction of linear velocity lost per second
	Static          bool
}

// Shape selects which collider dimensions apply.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
	ShapeCapsule
	ShapeMesh
)

var shapeNames = map[string]Shape{
	"sphere":  ShapeSphere,
	"box":     ShapeBox,
	"capsule": ShapeCapsule,
	"mesh":    ShapeMesh,
}

// ParseShape maps a scene-file shape name to a Shape.
func ParseShape(name string) (Shape, bool) {
	s, ok := shapeNames[name]
	return s, ok
}

// Collider is a body's collision primitive in local units. Base* hold the
// authored dimensions so rescaling never compounds.
type Collider struct {
	Shape   Shape
	Enabled bool
	Convex  bool // mesh only

	Size   mgl64.Vec3 // box
	Radius float64    // sphere, capsule
	Height float64    // capsule

	BaseSize   mgl64.Vec3
	BaseRadius float64
	BaseHeight float64
	MeshBound  float64 // mesh bounding radius
}

// BoundingRadius is the local-space radius of a sphere enclosing the collider.
func (c *Collider) BoundingRadius() float64 {
	switch c.Shape {
	case ShapeBox:
		return c.Size.Len() / 2
	case ShapeCapsule:
		h := c.Height / 2
		if h < c.Radius {
			h = c.Radius
		}
		return h
	case ShapeMesh:
		return c.MeshBound
	default:
		return c.Radius
	}
}

// Follow links a body to a parent frame. The follower's world position and
// rotation are derived from the parent each tick; its scale is left alone.
type Follow struct {
	Parent        ecs.EntityID
	LocalOffset   mgl64.Vec3
	LocalRotation mgl64.Quat
}

// Info is descriptive data from the scene file.
type Info struct {
	Name string
	Tag  string
}
