package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ballot/internal/core"
)

// Round intents are fire-and-forget: the voting client learns about an
// accepted vote from the vote-update broadcast, and about a rejected one
// from its absence. Failures are absorbed here after logging.

func (ctl *SignalWSController) handleSendQuestion(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type questionPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Question string `json:"question"`
	}
	var p questionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-question payload")
		return
	}
	if err := ctl.Disp.SendQuestion(p.Room, sid, p.Question); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("send-question rejected")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("question sent")
}

func (ctl *SignalWSController) handleVote(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type votePayload struct {
		Type   string `json:"type"`
		Room   string `json:"room"`
		Voter  string `json:"voter"`
		Target string `json:"target"`
	}
	var p votePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad vote payload")
		return
	}
	if err := ctl.Disp.Vote(p.Room, p.Voter, p.Target); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("room", p.Room).Str("voter", p.Voter).Msg("vote rejected")
		return
	}
	log.Debug().Str("module", "signal").Str("room", p.Room).Str("voter", p.Voter).Msg("vote received")
}
