package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/core"
)

func (ctl *SignalWSController) handleCreateRoom(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type createPayload struct {
		Type string `json:"type"`
		Name string `json:"name,omitempty"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("create-room rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}

	code := ctl.Disp.CreateRoom(sid, conn)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(code)).Msg("room created")
	resp := struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}{
		"room-created",
		string(code),
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleJoinRoom(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	type joinResult struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	if err := ctl.Disp.JoinRoom(p.Room, p.Name, sid, conn); err != nil {
		msg := err.Error()
		if errors.Is(err, core.ErrRoomNotFound) {
			msg = "Room not found"
		}
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("reason", msg).Msg("join rejected")
		ctl.sendJSON(conn, joinResult{Type: "room-joined", Success: false, Error: msg})
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	ctl.sendJSON(conn, joinResult{Type: "room-joined", Success: true})
}

// handleLeaveRoom is fire-and-forget: failures are absorbed after logging.
func (ctl *SignalWSController) handleLeaveRoom(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type leavePayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	if err := ctl.Disp.LeaveRoom(p.Room, sid); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("leave ignored")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("leave")
}

func (ctl *SignalWSController) handleEndGame(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type endPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p endPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end-game payload")
		return
	}
	if err := ctl.Disp.EndGame(p.Room, sid); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("end-game ignored")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("game ended by host")
}
