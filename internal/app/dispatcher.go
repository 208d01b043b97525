package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/core"
	"github.com/dkeye/Ballot/internal/domain"
)

// Dispatcher is the session event dispatcher: it resolves the target
// room, checks authorization and round state, delegates to the room and
// keeps the registry's session index in step with membership changes.
// Transport adapters call it and translate its errors into replies;
// fire-and-forget intents absorb errors after logging.
type Dispatcher struct {
	Registry *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{Registry: reg}
}

// CreateRoom makes the calling session host of a fresh room.
func (d *Dispatcher) CreateRoom(sid core.SessionID, conn core.SignalConnection) domain.RoomCode {
	room := d.Registry.Create(sid, conn)
	return room.Code()
}

func (d *Dispatcher) JoinRoom(code, name string, sid core.SessionID, conn core.SignalConnection) error {
	if err := domain.ValidateDisplayName(name); err != nil {
		return err
	}
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	if err := room.Join(sid, conn, name); err != nil {
		return err
	}
	d.Registry.Bind(sid, room.Code())
	return nil
}

func (d *Dispatcher) ReconnectHost(code string, sid core.SessionID, conn core.SignalConnection) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	if err := room.ReconnectHost(sid, conn); err != nil {
		return err
	}
	d.Registry.Bind(sid, room.Code())
	return nil
}

func (d *Dispatcher) ReconnectUser(code, name string, sid core.SessionID, conn core.SignalConnection) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	if err := room.ReconnectParticipant(name, sid, conn); err != nil {
		return err
	}
	d.Registry.Bind(sid, room.Code())
	return nil
}

// LeaveRoom handles an explicit leave. A leaving host tears the whole
// room down; a leaving participant is just unbound.
func (d *Dispatcher) LeaveRoom(code string, sid core.SessionID) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	hostLeft, removed := room.Leave(sid)
	switch {
	case hostLeft:
		d.Registry.Remove(room)
	case removed:
		d.Registry.Unbind(sid, room.Code())
	}
	return nil
}

// EndGame is authorized only for the stored host identity and behaves
// identically to a host-initiated leave.
func (d *Dispatcher) EndGame(code string, sid core.SessionID) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	if sid != room.HostID() {
		return core.ErrUnauthorized
	}
	room.Close()
	d.Registry.Remove(room)
	return nil
}

func (d *Dispatcher) SendQuestion(code string, sid core.SessionID, question string) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	return room.StartRound(sid, question)
}

func (d *Dispatcher) Vote(code, voter, target string) error {
	room, ok := d.Registry.Get(domain.NormalizeCode(code))
	if !ok {
		return core.ErrRoomNotFound
	}
	return room.CastVote(voter, target)
}

// Disconnect reconciles a transport-level drop. Rooms are resolved via
// the session index rather than a full registry scan. The connection is
// passed through so a stale disconnect from a superseded transport
// cannot evict a member that already reconnected.
func (d *Dispatcher) Disconnect(sid core.SessionID, conn core.SignalConnection) {
	for _, room := range d.Registry.RoomsOf(sid) {
		removed, hostGone := room.DropConnection(sid, conn)
		switch {
		case hostGone:
			log.Info().Str("module", "app.dispatcher").Str("room", string(room.Code())).Msg("room closed on host disconnect")
			d.Registry.Remove(room)
		case removed:
			d.Registry.Unbind(sid, room.Code())
		}
	}
}
