package domain

import "strings"

// RoomCode identifies a voting room. Codes are short base-36 strings;
// the canonical form is uppercase, lookups are case-insensitive.
type RoomCode string

func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

func (c RoomCode) String() string { return string(c) }
