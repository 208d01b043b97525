package core

import "time"

// Round is one question/voting cycle. It is owned exclusively by its
// Room and only ever touched under the Room's lock. The deadline timer
// belongs to the round; every transition out of the active state must
// flip closed and stop the timer, so a stale callback can never fire
// against a newer round's state.
type Round struct {
	question  string
	startedAt time.Time
	deadline  time.Time

	votes map[string]string   // voter name → target name
	voted map[string]struct{} // invariant: voted == keys(votes)
	order []string            // voter names in acceptance order

	timer  *time.Timer
	closed bool
}

func newRound(question string, now time.Time, duration time.Duration) *Round {
	return &Round{
		question:  question,
		startedAt: now,
		deadline:  now.Add(duration),
		votes:     make(map[string]string),
		voted:     make(map[string]struct{}),
	}
}

// cancel stops the deadline timer and marks the round closed without
// tallying. Used when a new round supersedes this one or the room dies.
func (rd *Round) cancel() {
	rd.closed = true
	if rd.timer != nil {
		rd.timer.Stop()
	}
}

// targets returns vote targets in acceptance order, the shape Tally wants.
func (rd *Round) targets() []string {
	out := make([]string, 0, len(rd.order))
	for _, voter := range rd.order {
		out = append(out, rd.votes[voter])
	}
	return out
}
