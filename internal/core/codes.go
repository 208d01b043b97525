package core

import (
	"math/rand/v2"

	"github.com/dkeye/Ballot/internal/domain"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRoomCode produces a random base-36 code of the given length,
// already in canonical uppercase form. Uniqueness against live rooms is
// the registry's job; with 6 characters the space is ~2e9 so collisions
// are retried, not prevented.
func NewRoomCode(length int) domain.RoomCode {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return domain.RoomCode(b)
}
