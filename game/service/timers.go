package service

import (
	"sync"
	"time"
)

// graceTimers holds one pending surrender per disconnected player
type graceTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newGraceTimers() *graceTimers {
	return &graceTimers{timers: make(map[string]*time.Timer)}
}

// arm schedules fn after d, replacing any timer already set for playerID
func (g *graceTimers) arm(playerID string, d time.Duration, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.timers[playerID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		g.mu.Lock()
		current := g.timers[playerID] == t
		if current {
			delete(g.timers, playerID)
		}
		g.mu.Unlock()
		if current {
			fn()
		}
	})
	g.timers[playerID] = t
}

// cancel stops the timer of playerID; it reports whether one was pending
func (g *graceTimers) cancel(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.timers[playerID]
	if !ok {
		return false
	}
	delete(g.timers, playerID)
	return t.Stop()
}

func (g *graceTimers) pending(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.timers[playerID]
	return ok
}
