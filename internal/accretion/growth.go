package accretion

// Growth owns the aggregate's scalar size and the values derived from it.
// The derived fields are rewritten in the same call that mutates size, so no
// reader observes a radius that lags the size.
type Growth struct {
	size             float64
	rate             float64
	collectionRadius float64
	colliderScale    float64
}

func NewGrowth(initial, rate float64) *Growth {
	g := &Growth{size: initial, rate: rate}
	g.derive()
	return g
}

// Grow adds one growth step and returns the new size.
func (g *Growth) Grow() float64 {
	g.size += g.rate
	g.derive()
	return g.size
}

func (g *Growth) derive() {
	g.collectionRadius = g.size / 2
	g.colliderScale = g.size / 2
}

func (g *Growth) Size() float64             { return g.size }
func (g *Growth) Rate() float64             { return g.rate }
func (g *Growth) CollectionRadius() float64 { return g.collectionRadius }
func (g *Growth) ColliderScale() float64    { return g.colliderScale }

// growRequest is one queued Grow call. rec is nil for debug growth.
type growRequest struct {
	rec *record
}
