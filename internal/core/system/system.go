package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: scripted/device input
	PhasePreUpdate               // 1: deliver last tick's events
	PhasePhysics                 // 2: controller forces, integration
	PhaseUpdate                  // 3: accretion tasks, growth queue
	PhasePostUpdate              // 4: follow relations, collider scaling, contacts
	PhaseOutput                  // 5: camera, readout
	PhaseCleanup                 // 6: destroy queued entities
)

var phaseNames = [...]string{"input", "pre_update", "physics", "update", "post_update", "output", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
