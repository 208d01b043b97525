// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxDisplayNameLen = 36

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

// Participant is the wire-facing view of a room member. Session tokens
// never leave the process, so only the display name is exposed.
type Participant struct {
	Name string `json:"name"`
}

// ValidateDisplayName keeps ad-hoc length checks out of adapters.
func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
