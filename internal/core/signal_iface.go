package core

// Frame is a serialized outbound event.
type Frame []byte

// SignalConnection is the per-client messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend never blocks:
// a full send buffer is reported as an error, not waited out.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
