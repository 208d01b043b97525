package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/core"
)

// Reconnection reconciles a returning client with its room. The session
// token survives transport reconnects, so the host check compares
// against the identity captured at room creation; participants are
// matched by display name and keep their roster slot.

func (ctl *SignalWSController) handleReconnectHost(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type reconnectPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p reconnectPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reconnect-host payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	resp := struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
	}{Type: "host-reconnected"}

	if err := ctl.Disp.ReconnectHost(p.Room, sid, conn); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("host reconnection failed")
		ctl.sendJSON(conn, resp)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("host reconnected")
	resp.Success = true
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleReconnectUser(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type reconnectPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p reconnectPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reconnect-user payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	resp := struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
	}{Type: "user-reconnected"}

	if err := ctl.Disp.ReconnectUser(p.Room, p.Name, sid, conn); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("user reconnection failed")
		ctl.sendJSON(conn, resp)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("name", p.Name).Msg("user reconnected")
	resp.Success = true
	ctl.sendJSON(conn, resp)
}
