package accretion

import (
	"github.com/l1jgo/accretion/internal/core/event"
	"go.uber.org/zap"
)

// evictOldest removes the oldest attachment. The aggregate keeps its size.
// Callers reorganize afterwards.
func (e *Engine) evictOldest() {
	entry, ok := e.ledger.Pop()
	if !ok {
		return
	}
	r := e.records[entry.ID]
	r.state = StateEvicted
	e.stats.Evicted++

	if e.world.Alive(entry.ID) {
		// Return the body to the world in its original shape before releasing it.
		if err := e.world.SetCollision(entry.ID, true); err != nil {
			e.log.Debug("evict: enable collision", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
		}
		if err := e.world.SetScale(entry.ID, r.originalScale); err != nil {
			e.log.Debug("evict: restore scale", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
		}
		if err := e.world.Unfollow(entry.ID); err != nil {
			e.log.Debug("evict: unfollow", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
		}
		if err := e.world.Destroy(entry.ID); err != nil {
			e.log.Debug("evict: destroy", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
		}
	} else {
		e.log.Debug("evicted collectible was already gone", zap.Uint64("id", uint64(entry.ID)))
	}

	e.log.Info("collectible evicted",
		zap.Uint64("id", uint64(entry.ID)),
		zap.Uint64("order", entry.Order),
		zap.Int("attached", e.ledger.Len()),
	)
	if e.bus != nil {
		event.Emit(e.bus, event.Evicted{Collectible: entry.ID})
	}
}

// Reorganize re-places every attached collectible on the aggregate surface
// for the current size, keeping each one's direction from the centre. The
// direction comes from the follow relation, not the follower's last resolved
// position, which lags a moving aggregate. Running it twice in a row moves
// nothing the second time.
func (e *Engine) Reorganize() {
	center, err := e.world.Position(e.aggregate)
	if err != nil {
		e.log.Debug("reorganize: aggregate position", zap.Error(err))
		return
	}
	size := e.growth.Size()
	e.ledger.Each(func(entry LedgerEntry) {
		if !e.world.Alive(entry.ID) {
			return
		}
		off, err := e.world.FollowOffset(entry.ID)
		if err != nil {
			e.log.Debug("reorganize: follow offset", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
			return
		}
		at := Place(center.Add(off), center, size, e.cfg.Offset)
		if err := e.world.Follow(entry.ID, e.aggregate, at); err != nil {
			e.log.Debug("reorganize: follow", zap.Uint64("id", uint64(entry.ID)), zap.Error(err))
		}
	})
}
