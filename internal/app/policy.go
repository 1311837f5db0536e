package app

// BackpressureAction decides what happens to a connection whose send buffer
// is full when a broadcast reaches it.
type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	CloseConn
)

type Policy interface {
	OnBackpressure(cid string) BackpressureAction
}

// SimplePolicy drops presence-grade frames silently; signaling must not
// block on one stuck client, and the sweeper repairs indicator drift.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(string) BackpressureAction { return DropFrame }
