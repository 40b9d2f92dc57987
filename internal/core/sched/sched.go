// Package sched runs deferred tasks on a simulation clock. It is the
// suspension mechanism for multi-tick work: a task that needs to wait schedules
// its continuation with After and returns.
//
// A Scheduler is driven from the game loop goroutine only.
package sched

import (
	"container/heap"
	"time"
)

// Task is a deferred unit of work. now is the simulation time it runs at.
type Task func(now time.Duration)

type entry struct {
	due  time.Duration
	seq  uint64
	task Task
}

type taskHeap []entry

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}

// Scheduler orders tasks by due time, then by scheduling order.
type Scheduler struct {
	now time.Duration
	seq uint64
	q   taskHeap
}

func New() *Scheduler {
	return &Scheduler{q: make(taskHeap, 0, 64)}
}

// Now returns the current simulation time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Pending returns the number of tasks not yet run.
func (s *Scheduler) Pending() int { return len(s.q) }

// After schedules fn to run once d of simulation time has passed. A
// non-positive d runs fn on the next Advance.
func (s *Scheduler) After(d time.Duration, fn Task) {
	if d < 0 {
		d = 0
	}
	s.seq++
	heap.Push(&s.q, entry{due: s.now + d, seq: s.seq, task: fn})
}

// Advance moves the clock forward by dt and runs every task that has come
// due, in (due, scheduling) order. Tasks scheduled while advancing wait for
// the next call even if already due, so one Advance always terminates.
// Returns the number of tasks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}
	limit := s.seq
	ran := 0
	for len(s.q) > 0 {
		top := s.q[0]
		if top.due > s.now || top.seq > limit {
			break
		}
		heap.Pop(&s.q)
		top.task(s.now)
		ran++
	}
	return ran
}
