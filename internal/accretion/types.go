package accretion

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/core/ecs"
)

// TagCollectible marks world bodies the aggregate may pick up.
const TagCollectible = "Collectible"

// State is a collectible's position in the attachment lifecycle.
type State int

const (
	StateFree State = iota
	StatePendingAttachment
	StateAttached
	StateEvicted // terminal: removed over capacity, body destroyed
	StateLost    // terminal: the world destroyed the body mid-lifecycle or while attached
)

var stateNames = [...]string{"free", "pending", "attached", "evicted", "lost"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Contact is one overlap report between the aggregate's collection volume and
// a world body.
type Contact struct {
	Candidate ecs.EntityID
	Tag       string
	Position  mgl64.Vec3 // world position at contact
	Scale     mgl64.Vec3 // current local scale at contact
}

// World is the physics/scene collaborator the engine drives. Every method
// except Alive returns an error for dead handles.
type World interface {
	Alive(id ecs.EntityID) bool
	Position(id ecs.EntityID) (mgl64.Vec3, error)
	SetScale(id ecs.EntityID, scale mgl64.Vec3) error
	SetCollision(id ecs.EntityID, enabled bool) error
	// Follow makes id track parent's frame, placed at the world position at.
	// Calling it again on a follower replaces the placement. Scale is never inherited.
	Follow(id, parent ecs.EntityID, at mgl64.Vec3) error
	// FollowOffset is a follower's offset from its parent in world
	// orientation, taken from the parent's current frame.
	FollowOffset(id ecs.EntityID) (mgl64.Vec3, error)
	Unfollow(id ecs.EntityID) error
	Destroy(id ecs.EntityID) error
}

// Stats are running counters for diagnostics and the readout.
type Stats struct {
	Accepted int
	Rejected int
	Attached int
	Evicted  int
	Aborted  int
	Grown    int
}

// record is the engine's per-candidate lifecycle state.
type record struct {
	id            ecs.EntityID
	originalScale mgl64.Vec3
	approach      mgl64.Vec3
	state         State
	order         uint64
}
