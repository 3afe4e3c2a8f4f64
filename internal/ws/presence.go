package ws

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Mirror receives write-through copies of presence flips. It is purely
// observational; routing never consults it.
type Mirror interface {
	SetPresence(ctx context.Context, userID string, online bool) error
}

// Tracker holds the set of users currently viewing an active chat. It is
// distinct from connection liveness: a connected user who has not joined a
// chat view is not in the set.
type Tracker struct {
	mu     sync.RWMutex
	online map[string]struct{}

	mirror Mirror
	log    *zap.SugaredLogger
}

func NewTracker(mirror Mirror, log *zap.SugaredLogger) *Tracker {
	return &Tracker{online: make(map[string]struct{}), mirror: mirror, log: log}
}

func (t *Tracker) MarkOnline(userID string) {
	t.mu.Lock()
	t.online[userID] = struct{}{}
	t.mu.Unlock()
	t.mirrorSet(userID, true)
}

func (t *Tracker) MarkOffline(userID string) {
	t.mu.Lock()
	delete(t.online, userID)
	t.mu.Unlock()
	t.mirrorSet(userID, false)
}

// Snapshot returns the current online set, sorted for stable payloads.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.online))
	for u := range t.online {
		out = append(out, u)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (t *Tracker) mirrorSet(userID string, online bool) {
	if t.mirror == nil {
		return
	}
	if err := t.mirror.SetPresence(context.Background(), userID, online); err != nil {
		t.log.Warnw("presence mirror write failed", "user", userID, "err", err)
	}
}
