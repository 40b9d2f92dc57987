package accretion

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/vmath"
)

// Place returns the point on the aggregate's bounding sphere, lifted by
// offset, along the ray from the aggregate centre towards from. A point at
// the centre has no direction and is placed straight up.
func Place(from, center mgl64.Vec3, size, offset float64) mgl64.Vec3 {
	dir := vmath.Normalize(from.Sub(center))
	if dir == vmath.Zero {
		dir = vmath.Up
	}
	return center.Add(dir.Mul(size/2 + offset))
}
