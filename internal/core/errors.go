package core

import "errors"

var (
	// ErrRoomNotFound is returned when a referenced room code is absent
	// from the registry.
	ErrRoomNotFound = errors.New("room not found")

	// ErrUnauthorized is returned when a non-host session attempts a
	// host-only action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateVote is returned when a voter already cast a vote in
	// the current round.
	ErrDuplicateVote = errors.New("duplicate vote")

	// ErrNoActiveRound is returned when a vote arrives with no round in
	// progress.
	ErrNoActiveRound = errors.New("no active round")

	// ErrReconnectMismatch is returned when a reconnect attempt does not
	// match the stored host or participant record.
	ErrReconnectMismatch = errors.New("reconnect mismatch")

	// ErrNotEnoughVoters is returned when a round is started with fewer
	// eligible voters than the configured minimum.
	ErrNotEnoughVoters = errors.New("not enough voters")

	// ErrNotParticipant is returned when a vote names a voter or target
	// that is not a current non-host participant.
	ErrNotParticipant = errors.New("not a participant")

	// ErrRoomClosed is returned for operations on a room that has been
	// destroyed but not yet unreferenced.
	ErrRoomClosed = errors.New("room closed")
)
