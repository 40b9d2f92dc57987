package data

import (
	"fmt"
	"sort"
	"time"
)

// TrackEntry is one scripted input segment. From At for Duration the
// vertical/horizontal axes hold the given values. Grow and Despawn fire once
// at At.
type TrackEntry struct {
	At         time.Duration `yaml:"at"`
	Duration   time.Duration `yaml:"duration"`
	Vertical   float64       `yaml:"vertical"`
	Horizontal float64       `yaml:"horizontal"`
	Grow       bool          `yaml:"grow"`
	Despawn    []string      `yaml:"despawn"`
}

func sortTrack(track []TrackEntry) error {
	for i, e := range track {
		if e.At < 0 || e.Duration < 0 {
			return fmt.Errorf("track entry %d: negative time", i)
		}
		if e.Vertical < -1 || e.Vertical > 1 || e.Horizontal < -1 || e.Horizontal > 1 {
			return fmt.Errorf("track entry %d: axis outside [-1,1]", i)
		}
	}
	sort.SliceStable(track, func(i, j int) bool { return track[i].At < track[j].At })
	return nil
}

// Axes returns the summed input axes active at t, each clamped to [-1,1].
func Axes(track []TrackEntry, t time.Duration) (vertical, horizontal float64) {
	for _, e := range track {
		if e.At > t {
			break
		}
		if t < e.At+e.Duration {
			vertical += e.Vertical
			horizontal += e.Horizontal
		}
	}
	return clampAxis(vertical), clampAxis(horizontal)
}

// Due returns the entries from cursor next onwards with At ≤ t, and the
// advanced cursor. Each entry is returned by exactly one call.
func Due(track []TrackEntry, next int, t time.Duration) ([]TrackEntry, int) {
	start := next
	for next < len(track) && track[next].At <= t {
		next++
	}
	return track[start:next], next
}

func clampAxis(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
