package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Ballot/internal/core"
	"github.com/dkeye/Ballot/internal/domain"
)

// stubConn satisfies core.SignalConnection and drops everything.
type stubConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *stubConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *stubConn) Close() {}

func newTestRegistry() *Registry {
	return NewRegistry(6, time.Minute, 3)
}

func TestRegistry_CreateNeverCollides(t *testing.T) {
	reg := newTestRegistry()

	seen := make(map[domain.RoomCode]struct{})
	for i := range 500 {
		room := reg.Create(core.SessionID("host"), &stubConn{})
		_, dup := seen[room.Code()]
		require.False(t, dup, "collision after %d rooms", i)
		seen[room.Code()] = struct{}{}
	}
	assert.Equal(t, 500, reg.Len())
}

func TestRegistry_LookupIsCaseInsensitiveViaNormalize(t *testing.T) {
	reg := newTestRegistry()
	room := reg.Create("host", &stubConn{})

	lower := strings.ToLower(string(room.Code()))
	got, ok := reg.Get(domain.NormalizeCode(lower))
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	room := reg.Create("host", &stubConn{})

	reg.Remove(room)
	reg.Remove(room)

	_, ok := reg.Get(room.Code())
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestRegistry_RemoveUnbindsAllMembers(t *testing.T) {
	reg := newTestRegistry()
	room := reg.Create("host", &stubConn{})
	require.NoError(t, room.Join("sid-alice", &stubConn{}, "alice"))
	reg.Bind("sid-alice", room.Code())

	reg.Remove(room)

	assert.Empty(t, reg.RoomsOf("host"))
	assert.Empty(t, reg.RoomsOf("sid-alice"))
}

func TestRegistry_RoomsOfTracksBindings(t *testing.T) {
	reg := newTestRegistry()
	room := reg.Create("host", &stubConn{})

	reg.Bind("sid-alice", room.Code())
	require.Len(t, reg.RoomsOf("sid-alice"), 1)

	reg.Unbind("sid-alice", room.Code())
	assert.Empty(t, reg.RoomsOf("sid-alice"))
}
