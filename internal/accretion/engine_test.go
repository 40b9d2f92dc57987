package accretion

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/core/ecs"
	"github.com/l1jgo/accretion/internal/core/event"
	"github.com/l1jgo/accretion/internal/vmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errGone = errors.New("gone")

type fakeBody struct {
	pos       mgl64.Vec3
	scale     mgl64.Vec3
	collision bool
	parent    ecs.EntityID
	offset    mgl64.Vec3 // from parent, set by Follow
}

// fakeWorld is a minimal in-memory World without rotation. Like the scene,
// follower positions only catch up with the parent on resolve.
type fakeWorld struct {
	pool   *ecs.EntityPool
	bodies map[ecs.EntityID]*fakeBody
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{pool: ecs.NewEntityPool(), bodies: make(map[ecs.EntityID]*fakeBody)}
}

func (w *fakeWorld) spawn(pos mgl64.Vec3, scale float64) ecs.EntityID {
	id := w.pool.Create()
	w.bodies[id] = &fakeBody{pos: pos, scale: vmath.Uniform(scale), collision: true}
	return id
}

func (w *fakeWorld) body(id ecs.EntityID) (*fakeBody, error) {
	if !w.pool.Alive(id) {
		return nil, errGone
	}
	return w.bodies[id], nil
}

func (w *fakeWorld) Alive(id ecs.EntityID) bool { return w.pool.Alive(id) }

func (w *fakeWorld) Position(id ecs.EntityID) (mgl64.Vec3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return b.pos, nil
}

func (w *fakeWorld) SetScale(id ecs.EntityID, s mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.scale = s
	return nil
}

func (w *fakeWorld) SetCollision(id ecs.EntityID, on bool) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.collision = on
	return nil
}

func (w *fakeWorld) Follow(id, parent ecs.EntityID, at mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	p, err := w.body(parent)
	if err != nil {
		return err
	}
	b.parent = parent
	b.offset = at.Sub(p.pos)
	b.pos = at
	return nil
}

func (w *fakeWorld) FollowOffset(id ecs.EntityID) (mgl64.Vec3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	if b.parent == 0 {
		return mgl64.Vec3{}, errors.New("not following")
	}
	return b.offset, nil
}

func (w *fakeWorld) resolve() {
	for _, b := range w.bodies {
		if p, ok := w.bodies[b.parent]; ok && b.parent != 0 {
			b.pos = p.pos.Add(b.offset)
		}
	}
}

func (w *fakeWorld) Unfollow(id ecs.EntityID) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.parent = 0
	return nil
}

func (w *fakeWorld) Destroy(id ecs.EntityID) error {
	if !w.pool.Destroy(id) {
		return errGone
	}
	delete(w.bodies, id)
	return nil
}

const step = 20 * time.Millisecond

type harness struct {
	t      *testing.T
	world  *fakeWorld
	ball   ecs.EntityID
	engine *Engine
	logs   *observer.ObservedLogs
}

func testConfig() config.AccretionConfig {
	return config.Defaults().Accretion
}

func newHarness(t *testing.T, cfg config.AccretionConfig, bus *event.Bus) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	w := newFakeWorld()
	ball := w.spawn(vmath.Zero, cfg.InitialSize)
	return &harness{
		t:      t,
		world:  w,
		ball:   ball,
		engine: NewEngine(cfg, w, ball, bus, zap.New(core)),
		logs:   logs,
	}
}

func (h *harness) contact(id ecs.EntityID) bool {
	b := h.world.bodies[id]
	h.t.Helper()
	require.NotNil(h.t, b)
	return h.engine.HandleContact(Contact{Candidate: id, Tag: TagCollectible, Position: b.pos, Scale: b.scale})
}

func (h *harness) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		h.engine.Tick(step)
	}
}

// settle runs long enough for every in-flight lifecycle to finish.
func (h *harness) settle() {
	h.run(h.engine.cfg.DetachDelay + h.engine.cfg.GrowDelay + 2*step)
}

func TestAcceptAndAttachScenario(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)

	require.True(t, h.contact(cube))
	assert.Equal(t, StatePendingAttachment, h.engine.State(cube))
	assert.False(t, h.world.bodies[cube].collision, "detach disables collision")
	assert.Equal(t, 1.0, h.engine.GetCurrentSize(), "acceptance does not grow")

	h.settle()

	assert.Equal(t, StateAttached, h.engine.State(cube))
	assert.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9)
	assert.InDelta(t, 0.525, h.engine.CollectionRadius(), 1e-9)
	assert.InDelta(t, 0.525, h.engine.ColliderScale(), 1e-9)
	assert.Equal(t, []ecs.EntityID{cube}, h.engine.Ledger())
	assert.Equal(t, 0, h.engine.InFlight())

	b := h.world.bodies[cube]
	assert.Equal(t, h.ball, b.parent)
	assert.False(t, b.collision)
	assert.Equal(t, vmath.Uniform(0.3), b.scale)
	assert.True(t, mgl64.Vec3{1.05/2 + 0.1, 0, 0}.ApproxEqualThreshold(b.pos, 1e-9), "placed on the surface towards the approach point: %+v", b.pos)
}

func TestStagesAreSpreadAcrossTicks(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	h.contact(cube)

	h.run(80 * time.Millisecond)
	assert.Equal(t, 1.0, h.engine.GetCurrentSize(), "no growth before the first delay")

	h.run(40 * time.Millisecond)
	assert.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9)
	assert.Equal(t, StatePendingAttachment, h.engine.State(cube), "reattach waits for the second delay")

	h.run(100 * time.Millisecond)
	assert.Equal(t, StateAttached, h.engine.State(cube))
}

func TestThresholdGating(t *testing.T) {
	cases := []struct {
		name   string
		scale  float64
		accept bool
	}{
		{"well under", 0.1, true},
		{"exactly at the limit", 0.4, true},
		{"just over", 0.41, false},
		{"huge", 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, testConfig(), nil)
			id := h.world.spawn(mgl64.Vec3{0, 0, 1}, tc.scale)
			assert.Equal(t, tc.accept, h.contact(id))
			assert.Equal(t, tc.accept, h.engine.IsMember(id))
		})
	}
}

func TestRejectedCandidateBecomesEligibleAfterGrowth(t *testing.T) {
	cfg := testConfig()
	cfg.GrowthRate = 0.5
	h := newHarness(t, cfg, nil)
	big := h.world.spawn(mgl64.Vec3{3, 0, 0}, 0.5)

	assert.False(t, h.contact(big), "0.5 > 1.0 × 40%")
	assert.Equal(t, StateFree, h.engine.State(big))
	assert.True(t, h.world.bodies[big].collision, "rejection leaves the body alone")

	small := h.world.spawn(mgl64.Vec3{-3, 0, 0}, 0.2)
	require.True(t, h.contact(small))
	h.settle()
	require.InDelta(t, 1.5, h.engine.GetCurrentSize(), 1e-9)

	assert.True(t, h.contact(big), "re-contact after growth: 0.5 ≤ 1.5 × 40%")
}

func TestNonCollectibleTagIgnored(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	rock := h.world.spawn(mgl64.Vec3{1, 0, 0}, 0.1)
	ok := h.engine.HandleContact(Contact{Candidate: rock, Tag: "Other", Scale: vmath.Uniform(0.1)})
	assert.False(t, ok)
	assert.False(t, h.engine.IsMember(rock))
	assert.Equal(t, Stats{}, h.engine.Stats())
}

func TestMembershipIsIdempotent(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	require.True(t, h.contact(cube))
	for i := 0; i < 5; i++ {
		assert.False(t, h.contact(cube))
	}
	h.settle()
	assert.False(t, h.contact(cube))
	assert.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9, "one lifecycle, one growth")
	assert.Equal(t, 1, h.engine.Stats().Accepted)
}

func TestMonotonicGrowth(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttachedObjects = 4
	h := newHarness(t, cfg, nil)
	prev := h.engine.GetCurrentSize()
	const n = 12
	for i := 0; i < n; i++ {
		id := h.world.spawn(mgl64.Vec3{float64(i) + 1, 1, 0}, 0.2)
		require.True(t, h.contact(id))
		for j := 0; j < 15; j++ {
			h.engine.Tick(step)
			assert.GreaterOrEqual(t, h.engine.GetCurrentSize(), prev)
			prev = h.engine.GetCurrentSize()
		}
	}
	h.settle()
	assert.InDelta(t, 1.0+n*0.05, h.engine.GetCurrentSize(), 1e-9)
	assert.Equal(t, n-cfg.MaxAttachedObjects, h.engine.Stats().Evicted, "eviction never shrinks the aggregate")
}

func TestConcurrentLifecyclesEachGrowOnce(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	ids := make([]ecs.EntityID, 5)
	for i := range ids {
		ids[i] = h.world.spawn(mgl64.Vec3{1, 0, float64(i)}, 0.3)
		require.True(t, h.contact(ids[i]))
	}
	assert.Equal(t, 5, h.engine.InFlight())

	// All five reach the grow stage on the same tick.
	h.run(100 * time.Millisecond)
	assert.InDelta(t, 1.25, h.engine.GetCurrentSize(), 1e-9)

	h.settle()
	assert.Equal(t, ids, h.engine.Ledger(), "ledger keeps acceptance order")
	assert.Equal(t, 0, h.engine.InFlight())
}

func TestEvictsOldestOverCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttachedObjects = 2
	bus := event.NewBus()
	var evicted []ecs.EntityID
	event.Subscribe(bus, func(ev event.Evicted) { evicted = append(evicted, ev.Collectible) })

	h := newHarness(t, cfg, bus)
	a := h.world.spawn(mgl64.Vec3{1, 0, 0}, 0.1)
	b := h.world.spawn(mgl64.Vec3{0, 1, 0}, 0.1)
	c := h.world.spawn(mgl64.Vec3{0, 0, 1}, 0.1)
	for _, id := range []ecs.EntityID{a, b, c} {
		require.True(t, h.contact(id))
		h.settle()
	}

	assert.Equal(t, []ecs.EntityID{b, c}, h.engine.Ledger())
	assert.Equal(t, StateEvicted, h.engine.State(a))
	assert.False(t, h.world.Alive(a), "evicted body is destroyed")
	assert.True(t, h.engine.IsMember(a))
	assert.Equal(t, 1, h.engine.Stats().Evicted)
	assert.InDelta(t, 1.15, h.engine.GetCurrentSize(), 1e-9)

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []ecs.EntityID{a}, evicted)
}

func TestLedgerNeverExceedsCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttachedObjects = 3
	h := newHarness(t, cfg, nil)
	for i := 0; i < 20; i++ {
		id := h.world.spawn(mgl64.Vec3{1, float64(i), 0}, 0.1)
		h.contact(id)
		for j := 0; j < 4; j++ {
			h.engine.Tick(step)
			assert.LessOrEqual(t, h.engine.Attached(), cfg.MaxAttachedObjects)
		}
	}
	h.settle()
	assert.Equal(t, cfg.MaxAttachedObjects, h.engine.Attached())
	assert.Equal(t, 20-cfg.MaxAttachedObjects, h.engine.Stats().Evicted)
}

func TestAttachedScaleSurvivesGrowth(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	first := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	h.contact(first)
	h.settle()

	for i := 0; i < 10; i++ {
		id := h.world.spawn(mgl64.Vec3{0, float64(i), 2}, 0.2)
		h.contact(id)
		h.settle()
		h.engine.ManualGrow()
		h.engine.Tick(step)
	}
	orig, ok := h.engine.OriginalScale(first)
	require.True(t, ok)
	assert.Equal(t, vmath.Uniform(0.3), orig)
	assert.Equal(t, orig, h.world.bodies[first].scale)
}

func TestDestroyedBetweenDetachAndGrow(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	require.True(t, h.contact(cube))

	h.run(40 * time.Millisecond)
	require.NoError(t, h.world.Destroy(cube))

	assert.NotPanics(t, h.settle)
	assert.Equal(t, StateLost, h.engine.State(cube))
	assert.True(t, h.engine.IsMember(cube))
	assert.Empty(t, h.engine.Ledger())
	assert.Equal(t, 1.0, h.engine.GetCurrentSize())
	assert.Equal(t, 0, h.engine.InFlight())
	assert.Equal(t, 1, h.engine.Stats().Aborted)
	assert.Equal(t, 1, h.logs.FilterMessage("collectible gone, lifecycle aborted").Len())

	assert.False(t, h.contact2(cube), "no re-processing")
}

func (h *harness) contact2(id ecs.EntityID) bool {
	return h.engine.HandleContact(Contact{Candidate: id, Tag: TagCollectible, Scale: vmath.Uniform(0.1)})
}

func TestDestroyedBetweenGrowAndReattach(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	h.contact(cube)
	h.run(120 * time.Millisecond)
	require.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9)

	require.NoError(t, h.world.Destroy(cube))
	h.settle()
	assert.Equal(t, StateLost, h.engine.State(cube))
	assert.Empty(t, h.engine.Ledger())
	assert.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9, "growth already applied is kept")
}

func TestHandleDestroyedDropsLedgerEntry(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	a := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.1)
	b := h.world.spawn(mgl64.Vec3{0, 2, 0}, 0.1)
	h.contact(a)
	h.contact(b)
	h.settle()

	require.NoError(t, h.world.Destroy(a))
	h.engine.HandleDestroyed(a)
	assert.Equal(t, []ecs.EntityID{b}, h.engine.Ledger())
	assert.Equal(t, StateLost, h.engine.State(a))
}

func TestReorganizeIsIdempotent(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	ids := []ecs.EntityID{
		h.world.spawn(mgl64.Vec3{3, 0, 0}, 0.1),
		h.world.spawn(mgl64.Vec3{0, -2, 2}, 0.1),
	}
	for _, id := range ids {
		h.contact(id)
	}
	h.settle()
	h.engine.ManualGrow()
	h.engine.Tick(step)

	h.engine.Reorganize()
	first := []mgl64.Vec3{h.world.bodies[ids[0]].pos, h.world.bodies[ids[1]].pos}
	h.engine.Reorganize()
	for i, id := range ids {
		assert.True(t, first[i].ApproxEqualThreshold(h.world.bodies[id].pos, 1e-12))
		r := h.world.bodies[id].pos.Len()
		assert.InDelta(t, h.engine.GetCurrentSize()/2+0.1, r, 1e-9)
	}
}

func TestZeroDelaysStillOrderStages(t *testing.T) {
	cfg := testConfig()
	cfg.DetachDelay = 0
	cfg.GrowDelay = 0
	h := newHarness(t, cfg, nil)
	cube := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.3)
	h.contact(cube)

	h.engine.Tick(step)
	assert.InDelta(t, 1.05, h.engine.GetCurrentSize(), 1e-9)
	assert.Equal(t, StatePendingAttachment, h.engine.State(cube))
	h.engine.Tick(step)
	assert.Equal(t, StateAttached, h.engine.State(cube))
}

func TestAttachReorganizesEarlierMembers(t *testing.T) {
	for _, reorganize := range []bool{true, false} {
		cfg := testConfig()
		cfg.Reorganize = reorganize
		h := newHarness(t, cfg, nil)
		first := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.1)
		h.contact(first)
		h.settle()
		second := h.world.spawn(mgl64.Vec3{0, 0, 2}, 0.1)
		h.contact(second)
		h.settle()

		want := 1.05/2 + 0.1
		if reorganize {
			want = 1.10/2 + 0.1
		}
		assert.InDelta(t, want, h.world.bodies[first].pos[0], 1e-9, "reorganize=%t", reorganize)
		assert.InDelta(t, 1.10/2+0.1, h.world.bodies[second].pos[2], 1e-9)
	}
}

func TestReorganizeKeepsDirectionWhileMoving(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	first := h.world.spawn(mgl64.Vec3{2, 0, 0}, 0.1)
	h.contact(first)
	h.settle()

	// The ball moves on; first's resolved position has not caught up yet.
	h.world.bodies[h.ball].pos = mgl64.Vec3{0, 0, 5}
	second := h.world.spawn(mgl64.Vec3{0, 0, 7}, 0.1)
	h.contact(second)
	h.settle()

	b := h.world.bodies[first]
	assert.True(t, b.offset.ApproxEqualThreshold(mgl64.Vec3{1.10/2 + 0.1, 0, 0}, 1e-9), "offset %v", b.offset)
	h.world.resolve()
	assert.True(t, b.pos.ApproxEqualThreshold(mgl64.Vec3{1.10/2 + 0.1, 0, 5}, 1e-9), "pos %v", b.pos)
}
