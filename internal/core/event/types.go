package event

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
)

// ContactBegan fires on the first overlap between the aggregate's collection
// volume and a world body.
type ContactBegan struct {
	Aggregate ecs.EntityID
	Other     ecs.EntityID
	Tag       string
	Position  mgl64.Vec3
	Scale     mgl64.Vec3
}

// Collected fires when a collectible finishes attaching to the aggregate.
type Collected struct {
	Collectible ecs.EntityID
	Size        float64
	Attached    int
}

// Evicted fires when the oldest attachment is removed over capacity.
type Evicted struct {
	Collectible ecs.EntityID
}

// SizeChanged fires after every growth step.
type SizeChanged struct {
	Size             float64
	CollectionRadius float64
}
