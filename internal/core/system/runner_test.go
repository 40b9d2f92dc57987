package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase            { return r.phase }
func (r recorder) Update(_ time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"update-a", PhaseUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"update-b", PhaseUpdate, &log})

	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"input", "update-a", "update-b", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
	assert.Equal(t, 50*time.Millisecond, r.Elapsed())

	// Late registration is sorted in before the next tick.
	log = log[:0]
	r.Register(recorder{"physics", PhasePhysics, &log})
	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"input", "physics", "update-a", "update-b", "cleanup"}, log)
	assert.Equal(t, uint64(2), r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "physics", PhasePhysics.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
