package accretion

import "go.uber.org/zap"

// HandleContact runs the contact filter and, on acceptance, starts an
// attachment lifecycle. Returns true when the candidate was accepted.
//
// A candidate is accepted when it is tagged collectible, has never been
// accepted before, and its scale fits within the threshold percentage of the
// aggregate's size at this moment. Rejection changes nothing, so a too-large
// body becomes eligible on a later contact once the aggregate has grown.
func (e *Engine) HandleContact(c Contact) bool {
	if c.Tag != TagCollectible || c.Candidate == e.aggregate {
		return false
	}
	if e.IsMember(c.Candidate) {
		return false
	}
	limit := e.growth.Size() * (e.cfg.SizeThresholdPercent / 100)
	if c.Scale[0] > limit {
		e.stats.Rejected++
		e.log.Debug("collectible too large",
			zap.Uint64("id", uint64(c.Candidate)),
			zap.Float64("scale", c.Scale[0]),
			zap.Float64("limit", limit),
		)
		return false
	}

	e.members[c.Candidate] = struct{}{}
	e.stats.Accepted++
	e.log.Debug("collectible accepted",
		zap.Uint64("id", uint64(c.Candidate)),
		zap.Float64("scale", c.Scale[0]),
		zap.Float64("size", e.growth.Size()),
	)
	e.begin(c)
	return true
}
