package core

// Frame is a raw outbound payload (encoded JSON event).
type Frame []byte

// SessionID is the stable per-client identity. It is issued by the HTTP
// layer as a cookie token and survives transport reconnects, so host and
// participant reconciliation can compare against it.
type SessionID string

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
