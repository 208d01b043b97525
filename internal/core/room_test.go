package core

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Ballot/internal/domain"
)

// testConn records every frame it is asked to send.
type testConn struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *testConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *testConn) Close() {}

// typed decodes received frames and keeps those with the given type.
func (c *testConn) typed(t *testing.T, typ string) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (c *testConn) count(t *testing.T, typ string) int {
	t.Helper()
	return len(c.typed(t, typ))
}

func setupRoom(t *testing.T, roundDuration time.Duration) (*Room, *testConn, map[string]*testConn) {
	t.Helper()
	hostConn := &testConn{}
	room := NewRoom("AB12CD", "host-sid", hostConn, roundDuration, 3)

	conns := make(map[string]*testConn)
	for _, name := range []string{"alice", "bob", "carol"} {
		conn := &testConn{}
		conns[name] = conn
		require.NoError(t, room.Join(SessionID("sid-"+name), conn, name))
	}
	return room, hostConn, conns
}

func TestRoom_JoinBroadcastsRoster(t *testing.T) {
	room, hostConn, _ := setupRoom(t, time.Minute)

	joins := hostConn.typed(t, domain.EventUserJoined)
	require.Len(t, joins, 3)
	assert.Equal(t, []domain.Participant{{Name: "alice"}, {Name: "bob"}, {Name: "carol"}}, room.Roster())
}

func TestRoom_StartRoundRequiresHost(t *testing.T) {
	room, _, _ := setupRoom(t, time.Minute)

	err := room.StartRound("sid-alice", "who is tallest?")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, room.HasActiveRound())
}

func TestRoom_StartRoundRequiresMinVoters(t *testing.T) {
	hostConn := &testConn{}
	room := NewRoom("AB12CD", "host-sid", hostConn, time.Minute, 3)
	require.NoError(t, room.Join("sid-alice", &testConn{}, "alice"))
	require.NoError(t, room.Join("sid-bob", &testConn{}, "bob"))

	err := room.StartRound("host-sid", "who is tallest?")
	assert.ErrorIs(t, err, ErrNotEnoughVoters)
}

func TestRoom_StartRoundBroadcastsQuestion(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)

	require.NoError(t, room.StartRound("host-sid", "who is tallest?"))

	events := conns["alice"].typed(t, domain.EventNewQuestion)
	require.Len(t, events, 1)
	assert.Equal(t, "who is tallest?", events[0]["question"])
	assert.NotZero(t, events[0]["startTime"])
	users, ok := events[0]["users"].([]any)
	require.True(t, ok)
	assert.Len(t, users, 3)
	assert.True(t, room.HasActiveRound())
}

func TestRoom_VoteWithoutRoundRejected(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)

	err := room.CastVote("alice", "bob")
	assert.ErrorIs(t, err, ErrNoActiveRound)
	assert.Zero(t, conns["bob"].count(t, domain.EventVoteUpdate))
}

func TestRoom_DuplicateVoteIsNoOp(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)
	require.NoError(t, room.StartRound("host-sid", "q"))

	require.NoError(t, room.CastVote("alice", "bob"))
	err := room.CastVote("alice", "carol")
	assert.ErrorIs(t, err, ErrDuplicateVote)

	// the second vote neither altered the map nor re-broadcast
	assert.Equal(t, map[string]string{"alice": "bob"}, room.Votes())
	assert.Equal(t, 1, conns["bob"].count(t, domain.EventVoteUpdate))
}

func TestRoom_VoteRequiresCurrentParticipants(t *testing.T) {
	room, _, _ := setupRoom(t, time.Minute)
	require.NoError(t, room.StartRound("host-sid", "q"))

	assert.ErrorIs(t, room.CastVote("mallory", "bob"), ErrNotParticipant)
	assert.ErrorIs(t, room.CastVote("alice", "host-sid"), ErrNotParticipant)
}

func TestRoom_AllVotedClosesRoundOnce(t *testing.T) {
	room, hostConn, _ := setupRoom(t, 50*time.Millisecond)
	require.NoError(t, room.StartRound("host-sid", "q"))

	require.NoError(t, room.CastVote("alice", "bob"))
	require.NoError(t, room.CastVote("bob", "carol"))
	require.NoError(t, room.CastVote("carol", "bob"))

	ends := hostConn.typed(t, domain.EventQuestionEnd)
	require.Len(t, ends, 1)
	results, ok := ends[0]["results"].([]any)
	require.True(t, ok)
	top := results[0].(map[string]any)
	assert.Equal(t, "bob", top["name"])
	assert.Equal(t, float64(2), top["count"])
	assert.False(t, room.HasActiveRound())

	// the deadline timer was cancelled; it must not fire a second end
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, hostConn.count(t, domain.EventQuestionEnd))
}

func TestRoom_DeadlineClosesRound(t *testing.T) {
	room, hostConn, _ := setupRoom(t, 40*time.Millisecond)
	require.NoError(t, room.StartRound("host-sid", "q"))
	require.NoError(t, room.CastVote("alice", "bob"))

	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, 1, hostConn.count(t, domain.EventQuestionEnd))
	assert.False(t, room.HasActiveRound())
}

func TestRoom_RestartCancelsPriorTimer(t *testing.T) {
	room, hostConn, _ := setupRoom(t, 50*time.Millisecond)

	require.NoError(t, room.StartRound("host-sid", "first"))
	require.NoError(t, room.StartRound("host-sid", "second"))

	// only the second round's deadline may produce a question-end
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, hostConn.count(t, domain.EventQuestionEnd))
}

func TestRoom_HostDisconnectCancelsTimer(t *testing.T) {
	room, hostConn, conns := setupRoom(t, 40*time.Millisecond)
	require.NoError(t, room.StartRound("host-sid", "q"))

	_, hostGone := room.DropConnection("host-sid", hostConn)
	assert.True(t, hostGone)
	assert.Equal(t, 1, conns["alice"].count(t, domain.EventRoomClosed))

	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, conns["alice"].count(t, domain.EventQuestionEnd))
}

func TestRoom_HostLeaveClosesRoom(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)

	hostLeft, _ := room.Leave("host-sid")
	assert.True(t, hostLeft)
	assert.Equal(t, 1, conns["bob"].count(t, domain.EventRoomClosed))

	// everything after closure is rejected
	assert.ErrorIs(t, room.Join("sid-dave", &testConn{}, "dave"), ErrRoomClosed)
	assert.ErrorIs(t, room.CastVote("alice", "bob"), ErrRoomClosed)
}

func TestRoom_ParticipantLeaveBroadcastsRoster(t *testing.T) {
	room, hostConn, _ := setupRoom(t, time.Minute)

	hostLeft, removed := room.Leave("sid-bob")
	assert.False(t, hostLeft)
	assert.True(t, removed)

	lefts := hostConn.typed(t, domain.EventUserLeft)
	require.Len(t, lefts, 1)
	assert.Equal(t, []domain.Participant{{Name: "alice"}, {Name: "carol"}}, room.Roster())
}

func TestRoom_DepartedVotesStayInTally(t *testing.T) {
	room, hostConn, _ := setupRoom(t, time.Minute)
	require.NoError(t, room.StartRound("host-sid", "q"))

	require.NoError(t, room.CastVote("alice", "bob"))
	room.Leave("sid-alice")

	// the two remaining voters complete the round; alice's vote counts
	require.NoError(t, room.CastVote("bob", "carol"))
	require.NoError(t, room.CastVote("carol", "bob"))

	ends := hostConn.typed(t, domain.EventQuestionEnd)
	require.Len(t, ends, 1)
	results := ends[0]["results"].([]any)
	top := results[0].(map[string]any)
	assert.Equal(t, "bob", top["name"])
	assert.Equal(t, float64(2), top["count"])
}

func TestRoom_ReconnectParticipantKeepsRosterSlot(t *testing.T) {
	room, _, _ := setupRoom(t, time.Minute)

	fresh := &testConn{}
	require.NoError(t, room.ReconnectParticipant("bob", "sid-bob", fresh))

	// no duplicate entry, and the new transport receives broadcasts
	assert.Equal(t, []domain.Participant{{Name: "alice"}, {Name: "bob"}, {Name: "carol"}}, room.Roster())
	require.NoError(t, room.StartRound("host-sid", "q"))
	assert.Equal(t, 1, fresh.count(t, domain.EventNewQuestion))
}

func TestRoom_ReconnectUnknownNameFails(t *testing.T) {
	room, _, _ := setupRoom(t, time.Minute)
	err := room.ReconnectParticipant("mallory", "sid-x", &testConn{})
	assert.ErrorIs(t, err, ErrReconnectMismatch)
}

func TestRoom_ReconnectHostChecksIdentity(t *testing.T) {
	room, _, _ := setupRoom(t, time.Minute)

	assert.ErrorIs(t, room.ReconnectHost("sid-alice", &testConn{}), ErrReconnectMismatch)

	fresh := &testConn{}
	require.NoError(t, room.ReconnectHost("host-sid", fresh))
	require.NoError(t, room.StartRound("host-sid", "q"))
	assert.Equal(t, 1, fresh.count(t, domain.EventNewQuestion))
}

func TestRoom_StaleDisconnectDoesNotEvictReconnected(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)

	fresh := &testConn{}
	require.NoError(t, room.ReconnectParticipant("bob", "sid-bob", fresh))

	// the old transport's disconnect arrives after the reconnect
	removed, hostGone := room.DropConnection("sid-bob", conns["bob"])
	assert.False(t, removed)
	assert.False(t, hostGone)
	assert.Len(t, room.Roster(), 3)
}

func TestRoom_DisconnectRemovesParticipant(t *testing.T) {
	room, hostConn, conns := setupRoom(t, time.Minute)

	removed, hostGone := room.DropConnection("sid-carol", conns["carol"])
	assert.True(t, removed)
	assert.False(t, hostGone)
	assert.Len(t, room.Roster(), 2)
	assert.Equal(t, 1, hostConn.count(t, domain.EventUserLeft))
}

func TestRoom_VoteUpdateCarriesFullMap(t *testing.T) {
	room, _, conns := setupRoom(t, time.Minute)
	require.NoError(t, room.StartRound("host-sid", "q"))

	require.NoError(t, room.CastVote("alice", "bob"))
	require.NoError(t, room.CastVote("bob", "bob"))

	updates := conns["carol"].typed(t, domain.EventVoteUpdate)
	require.Len(t, updates, 2)
	assert.Equal(t, map[string]any{"alice": "bob", "bob": "bob"}, updates[1]["votes"])
}
