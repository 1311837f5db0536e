package app

import (
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func newTestOrch() *Orchestrator {
	return NewOrchestrator(NewRegistry(), core.NewRoomStore())
}

// connect binds a fake connection under cid, as the WS adapter would on
// upgrade.
func connect(o *Orchestrator, cid domain.ConnectionID) *fakeConn {
	fc := &fakeConn{}
	o.Registry.Bind(cid, fc, nil)
	return fc
}
