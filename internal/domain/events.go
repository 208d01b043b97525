package domain

// Outbound broadcast event names, scoped to a room's broadcast group.
const (
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventNewQuestion = "new-question"
	EventVoteUpdate  = "vote-update"
	EventQuestionEnd = "question-end"
	EventRoomClosed  = "room-closed"
)

// RosterEvent carries the non-host participant list after a membership
// change. Used for both user-joined and user-left.
type RosterEvent struct {
	Type  string        `json:"type"`
	Users []Participant `json:"users"`
}

// NewQuestionEvent opens a voting round. StartTime is unix milliseconds;
// clients derive the countdown from it, no further sync events are sent.
type NewQuestionEvent struct {
	Type      string        `json:"type"`
	Question  string        `json:"question"`
	Users     []Participant `json:"users"`
	StartTime int64         `json:"startTime"`
}

// VoteUpdateEvent carries the full current vote map, voter → target.
type VoteUpdateEvent struct {
	Type  string            `json:"type"`
	Votes map[string]string `json:"votes"`
}

// VoteCount is one ranked tally entry.
type VoteCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type QuestionEndEvent struct {
	Type    string      `json:"type"`
	Results []VoteCount `json:"results"`
}

type RoomClosedEvent struct {
	Type string `json:"type"`
}
