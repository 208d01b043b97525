package core

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/domain"
)

// participant pairs a member's stable session identity, its current
// transport endpoint and its display name. The session id and the
// connection are both mutable: reconnection replaces them in place.
type participant struct {
	sid  SessionID
	conn SignalConnection
	name string
}

// Room is a threadsafe in-memory voting session. One host, an ordered
// list of non-host participants, at most one active round. All mutation
// is serialized by mu; room mutations are not commutative, so there is
// no finer-grained locking. The room never closes adapter-owned
// connections.
type Room struct {
	mu sync.Mutex

	code     domain.RoomCode
	host     SessionID
	hostConn SignalConnection

	participants []*participant
	round        *Round

	roundDuration time.Duration
	minVoters     int
	closed        bool
}

func NewRoom(code domain.RoomCode, host SessionID, conn SignalConnection, roundDuration time.Duration, minVoters int) *Room {
	return &Room{
		code:          code,
		host:          host,
		hostConn:      conn,
		roundDuration: roundDuration,
		minVoters:     minVoters,
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }
func (r *Room) HostID() SessionID     { return r.host }

// Join appends a new participant and announces the updated roster.
// Duplicate display names are permitted.
func (r *Room) Join(sid SessionID, conn SignalConnection, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	r.participants = append(r.participants, &participant{sid: sid, conn: conn, name: name})
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("name", name).Msg("participant joined")
	r.broadcastLocked(domain.RosterEvent{Type: domain.EventUserJoined, Users: r.rosterLocked()})
	return nil
}

// ReconnectHost rebinds the host's transport after a reconnect. Only the
// session that created the room may resume as host.
func (r *Room) ReconnectHost(sid SessionID, conn SignalConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if sid != r.host {
		return ErrReconnectMismatch
	}
	r.hostConn = conn
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("host reconnected")
	return nil
}

// ReconnectParticipant re-associates an existing entry, found by display
// name, with a new session and transport. The entry keeps its roster
// position, so the member does not reappear as a duplicate.
func (r *Room) ReconnectParticipant(name string, sid SessionID, conn SignalConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	for _, p := range r.participants {
		if p.name == name {
			p.sid = sid
			p.conn = conn
			log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("name", name).Msg("participant reconnected")
			return nil
		}
	}
	return ErrReconnectMismatch
}

// Leave handles an explicit leave-room intent. A leaving host destroys
// the room; the caller must then drop it from the registry. A leaving
// participant is removed and the roster re-broadcast.
func (r *Room) Leave(sid SessionID) (hostLeft, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, false
	}
	if sid == r.host {
		r.closeLocked()
		return true, false
	}
	return false, r.removeParticipantLocked(sid, nil)
}

// Close destroys the room: broadcasts room-closed, cancels any pending
// round timer and rejects all further operations. Idempotent.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// DropConnection reconciles a transport-level disconnect. The connection
// is compared by identity: a disconnect from a transport that has since
// been superseded by a reconnect must not evict the member.
func (r *Room) DropConnection(sid SessionID, conn SignalConnection) (removed, hostGone bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, false
	}
	if sid == r.host {
		if r.hostConn != conn {
			return false, false
		}
		r.closeLocked()
		return false, true
	}
	return r.removeParticipantLocked(sid, conn), false
}

// StartRound opens a new question. Host only. Any previous round is
// cancelled first, timer included, so the old deadline can never fire
// against the new round.
func (r *Room) StartRound(sid SessionID, question string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if sid != r.host {
		return ErrUnauthorized
	}
	if len(r.participants) < r.minVoters {
		return ErrNotEnoughVoters
	}
	if r.round != nil {
		r.round.cancel()
	}

	rd := newRound(question, time.Now(), r.roundDuration)
	r.round = rd
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("round started")
	r.broadcastLocked(domain.NewQuestionEvent{
		Type:      domain.EventNewQuestion,
		Question:  rd.question,
		Users:     r.rosterLocked(),
		StartTime: rd.startedAt.UnixMilli(),
	})
	rd.timer = time.AfterFunc(r.roundDuration, func() { r.expire(rd) })
	return nil
}

// CastVote records one vote. At most one vote per voter per round; both
// voter and target must be current non-host participants. When every
// eligible voter has voted the round closes early.
func (r *Room) CastVote(voter, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	rd := r.round
	if rd == nil || rd.closed {
		return ErrNoActiveRound
	}
	if !r.hasParticipantLocked(voter) || !r.hasParticipantLocked(target) {
		return ErrNotParticipant
	}
	if _, dup := rd.voted[voter]; dup {
		return ErrDuplicateVote
	}

	rd.votes[voter] = target
	rd.voted[voter] = struct{}{}
	rd.order = append(rd.order, voter)
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("voter", voter).Msg("vote accepted")
	r.broadcastLocked(domain.VoteUpdateEvent{Type: domain.EventVoteUpdate, Votes: rd.votes})

	if r.allVotedLocked(rd) {
		r.closeRoundLocked(rd)
	}
	return nil
}

// Roster returns the current non-host participant list.
func (r *Room) Roster() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// SessionIDs lists every session bound to the room, host included.
// The registry uses it to clean its secondary index on room teardown.
func (r *Room) SessionIDs() []SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionID, 0, len(r.participants)+1)
	out = append(out, r.host)
	for _, p := range r.participants {
		out = append(out, p.sid)
	}
	return out
}

// HasActiveRound reports whether a question is currently open.
func (r *Room) HasActiveRound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round != nil && !r.round.closed
}

// Votes returns a snapshot of the current round's vote map, or nil when
// the room is idle.
func (r *Room) Votes() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.round == nil {
		return nil
	}
	out := make(map[string]string, len(r.round.votes))
	for k, v := range r.round.votes {
		out[k] = v
	}
	return out
}

// expire is the deadline callback. It re-checks under the lock that the
// round it was armed for is still the live one; any transition out of
// the active state has already marked it closed, making this a no-op.
// That check is what makes question-end exactly-once.
func (r *Room) expire(rd *Round) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.round != rd || rd.closed {
		return
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("round deadline reached")
	r.closeRoundLocked(rd)
}

func (r *Room) closeRoundLocked(rd *Round) {
	rd.cancel()
	results := Tally(rd.targets())
	r.broadcastLocked(domain.QuestionEndEvent{Type: domain.EventQuestionEnd, Results: results})
	r.round = nil
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("results", len(results)).Msg("round closed")
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	if r.round != nil {
		r.round.cancel()
		r.round = nil
	}
	r.broadcastLocked(domain.RoomClosedEvent{Type: domain.EventRoomClosed})
	r.closed = true
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("room closed")
}

// removeParticipantLocked drops the first entry matching the session,
// and the exact connection when one is given. Stale votes already cast
// by the departing member stay in the round for tallying.
func (r *Room) removeParticipantLocked(sid SessionID, conn SignalConnection) bool {
	for i, p := range r.participants {
		if p.sid != sid {
			continue
		}
		if conn != nil && p.conn != conn {
			continue
		}
		r.participants = append(r.participants[:i], r.participants[i+1:]...)
		log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("name", p.name).Msg("participant removed")
		r.broadcastLocked(domain.RosterEvent{Type: domain.EventUserLeft, Users: r.rosterLocked()})
		return true
	}
	return false
}

func (r *Room) hasParticipantLocked(name string) bool {
	for _, p := range r.participants {
		if p.name == name {
			return true
		}
	}
	return false
}

// allVotedLocked: completion requires at least one eligible voter and
// every current participant's name in the voted set.
func (r *Room) allVotedLocked(rd *Round) bool {
	if len(r.participants) == 0 {
		return false
	}
	for _, p := range r.participants {
		if _, ok := rd.voted[p.name]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) rosterLocked() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, domain.Participant{Name: p.name})
	}
	return out
}

// broadcastLocked fans an event out to the host and every participant.
// Sends are non-blocking; slow consumers drop frames rather than stall
// the room.
func (r *Room) broadcastLocked(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Msg("broadcast marshal")
		return
	}
	dropped := 0
	if r.hostConn != nil {
		if err := r.hostConn.TrySend(Frame(b)); err != nil {
			dropped++
		}
	}
	for _, p := range r.participants {
		if err := p.conn.TrySend(Frame(b)); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Int("dropped", dropped).Msg("broadcast drops")
	}
}
