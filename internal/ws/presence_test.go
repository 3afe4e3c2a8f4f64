package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aryan192003/Chatify-backend/internal/logger"
)

type recordingMirror struct {
	calls []string
}

func (m *recordingMirror) SetPresence(_ context.Context, userID string, online bool) error {
	state := "off"
	if online {
		state = "on"
	}
	m.calls = append(m.calls, userID+":"+state)
	return nil
}

func TestTracker_MarkOnlineIdempotent(t *testing.T) {
	tr := NewTracker(nil, logger.Nop())
	tr.MarkOnline("u1")
	tr.MarkOnline("u1")
	tr.MarkOnline("u2")

	assert.Equal(t, []string{"u1", "u2"}, tr.Snapshot())
}

func TestTracker_MarkOfflineIdempotent(t *testing.T) {
	tr := NewTracker(nil, logger.Nop())
	tr.MarkOnline("u1")
	tr.MarkOffline("u1")
	tr.MarkOffline("u1")
	tr.MarkOffline("never-joined")

	assert.Empty(t, tr.Snapshot())
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := NewTracker(nil, logger.Nop())
	tr.MarkOnline("u1")

	snap := tr.Snapshot()
	snap[0] = "mutated"

	assert.Equal(t, []string{"u1"}, tr.Snapshot())
}

func TestTracker_MirrorWriteThrough(t *testing.T) {
	m := &recordingMirror{}
	tr := NewTracker(m, logger.Nop())

	tr.MarkOnline("u1")
	tr.MarkOffline("u1")

	assert.Equal(t, []string{"u1:on", "u1:off"}, m.calls)
}
