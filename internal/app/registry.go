package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/core"
	"github.com/dkeye/Ballot/internal/domain"
)

// Registry is the process-wide room store, constructed once at startup
// and owned by the dispatcher. Besides the code → room mapping it keeps
// a secondary session → room-codes index so a transport disconnect does
// not have to scan every room.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomCode]*core.Room
	sessions map[core.SessionID]map[domain.RoomCode]struct{}

	codeLength    int
	roundDuration time.Duration
	minVoters     int
}

func NewRegistry(codeLength int, roundDuration time.Duration, minVoters int) *Registry {
	return &Registry{
		rooms:         make(map[domain.RoomCode]*core.Room),
		sessions:      make(map[core.SessionID]map[domain.RoomCode]struct{}),
		codeLength:    codeLength,
		roundDuration: roundDuration,
		minVoters:     minVoters,
	}
}

// Create generates a code not currently registered, inserts an empty
// room with the calling session as host and returns it. Never fails;
// collisions are retried under the lock, so the returned code is unique
// against the live set at return time.
func (g *Registry) Create(host core.SessionID, conn core.SignalConnection) *core.Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	var code domain.RoomCode
	for {
		code = core.NewRoomCode(g.codeLength)
		if _, taken := g.rooms[code]; !taken {
			break
		}
	}
	room := core.NewRoom(code, host, conn, g.roundDuration, g.minVoters)
	g.rooms[code] = room
	g.bindLocked(host, code)
	log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("room created")
	return room
}

func (g *Registry) Get(code domain.RoomCode) (*core.Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// Remove drops the room and every index entry pointing at it.
// Idempotent: removing an unregistered room is a no-op.
func (g *Registry) Remove(room *core.Room) {
	sids := room.SessionIDs()
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[room.Code()]; !ok {
		return
	}
	delete(g.rooms, room.Code())
	for _, sid := range sids {
		g.unbindLocked(sid, room.Code())
	}
	log.Info().Str("module", "app.registry").Str("room", string(room.Code())).Msg("room removed")
}

func (g *Registry) Bind(sid core.SessionID, code domain.RoomCode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bindLocked(sid, code)
}

func (g *Registry) Unbind(sid core.SessionID, code domain.RoomCode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unbindLocked(sid, code)
}

// RoomsOf resolves the rooms a session is currently bound to.
func (g *Registry) RoomsOf(sid core.SessionID) []*core.Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*core.Room, 0, len(g.sessions[sid]))
	for code := range g.sessions[sid] {
		if room, ok := g.rooms[code]; ok {
			out = append(out, room)
		}
	}
	return out
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func (g *Registry) bindLocked(sid core.SessionID, code domain.RoomCode) {
	set, ok := g.sessions[sid]
	if !ok {
		set = make(map[domain.RoomCode]struct{})
		g.sessions[sid] = set
	}
	set[code] = struct{}{}
}

func (g *Registry) unbindLocked(sid core.SessionID, code domain.RoomCode) {
	set, ok := g.sessions[sid]
	if !ok {
		return
	}
	delete(set, code)
	if len(set) == 0 {
		delete(g.sessions, sid)
	}
}
