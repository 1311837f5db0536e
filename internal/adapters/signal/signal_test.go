package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogakco/signal/internal/app"
	"github.com/mogakco/signal/internal/config"
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

type fakeConn struct {
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

// events decodes every recorded frame into a generic map keyed by index.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) last(t *testing.T) map[string]any {
	t.Helper()
	evts := f.events(t)
	require.NotEmpty(t, evts)
	return evts[len(evts)-1]
}

func newTestController() *Controller {
	orch := app.NewOrchestrator(app.NewRegistry(), core.NewRoomStore())
	return NewController(orch, &config.Config{ChatRate: 5, ChatBurst: 10})
}

func connect(ctl *Controller, cid domain.ConnectionID) *fakeConn {
	fc := &fakeConn{}
	ctl.Orch.Registry.Bind(cid, fc, nil)
	return fc
}

func TestCheckRoom_NotFound(t *testing.T) {
	ctl := newTestController()
	fc := connect(ctl, "c1")

	ctl.handleCheckRoom(fc, []byte(`{"type":"check-room","roomCode":"nope42"}`))
	assert.Equal(t, "room-not-found", fc.last(t)["type"])
}

func TestCreateThenCheckRoom(t *testing.T) {
	ctl := newTestController()
	fc := connect(ctl, "c1")

	ctl.handleCreateRoom(fc, []byte(`{"type":"create-room","name":"study","description":"focus","password":"pw","creator":"alice"}`))
	created := fc.last(t)
	require.Equal(t, "room-created", created["type"])
	roomID, _ := created["roomId"].(string)
	require.Len(t, roomID, 6)

	ctl.handleCheckRoom(fc, []byte(`{"roomCode":"`+roomID+`"}`))
	info := fc.last(t)
	assert.Equal(t, "room-info", info["type"])
	assert.Equal(t, "study", info["name"])
	assert.Equal(t, true, info["hasPassword"])
	assert.Equal(t, float64(0), info["participants"])
}

func TestJoin_ErrorScopedToRequester(t *testing.T) {
	ctl := newTestController()
	fc := connect(ctl, "c1")
	ctl.handleCreateRoom(fc, []byte(`{"name":"study","password":"pw","creator":"alice"}`))
	roomID := fc.last(t)["roomId"].(string)

	ctl.handleJoin("c1", fc, []byte(`{"username":"alice","roomCode":"`+roomID+`","password":"wrong"}`))
	errEvt := fc.last(t)
	assert.Equal(t, "join-error", errEvt["type"])
	assert.NotEmpty(t, errEvt["error"])
}

func TestJoin_SnapshotAndBroadcast(t *testing.T) {
	ctl := newTestController()
	first := connect(ctl, "c1")
	second := connect(ctl, "c2")

	ctl.handleCreateRoom(first, []byte(`{"name":"study","creator":"alice"}`))
	roomID := first.last(t)["roomId"].(string)

	ctl.handleJoin("c1", first, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	joinedEvt := first.last(t)
	require.Equal(t, "room-joined", joinedEvt["type"])

	ctl.handleJoin("c2", second, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))
	snapshot := second.last(t)
	require.Equal(t, "room-joined", snapshot["type"])
	assert.Len(t, snapshot["participants"], 2)

	// The existing member sees user-joined; the joiner does not.
	presence := first.last(t)
	assert.Equal(t, "user-joined", presence["type"])
	for _, e := range second.events(t) {
		assert.NotEqual(t, "user-joined", e["type"])
	}
}

func TestForceControl_ErrorToRequesterOnly(t *testing.T) {
	ctl := newTestController()
	owner := connect(ctl, "c1")
	other := connect(ctl, "c2")

	ctl.handleCreateRoom(owner, []byte(`{"name":"study","creator":"alice"}`))
	roomID := owner.last(t)["roomId"].(string)
	ctl.handleJoin("c1", owner, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c2", other, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))

	before := len(owner.frames)
	ctl.handleForceControl("c2", other, []byte(`{"targetConnectionId":"c1","action":"video","value":false}`))
	assert.Equal(t, "force-control-error", other.last(t)["type"])
	assert.Len(t, owner.frames, before, "owner got no broadcast for a rejected action")
}

func TestForceControl_CommandAndBroadcast(t *testing.T) {
	ctl := newTestController()
	owner := connect(ctl, "c1")
	target := connect(ctl, "c2")

	ctl.handleCreateRoom(owner, []byte(`{"name":"study","creator":"alice"}`))
	roomID := owner.last(t)["roomId"].(string)
	ctl.handleJoin("c1", owner, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c2", target, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))

	ctl.handleForceControl("c1", owner, []byte(`{"targetConnectionId":"c2","action":"video","value":false}`))

	var sawCommand bool
	for _, e := range target.events(t) {
		if e["type"] == "force-control-command" {
			sawCommand = true
			final := e["finalStates"].(map[string]any)
			assert.Equal(t, false, final["isVideoOn"])
			assert.Equal(t, true, final["isVideoForcedOff"])
		}
	}
	assert.True(t, sawCommand, "target never received force-control-command")
	assert.Equal(t, "force-control-applied", owner.last(t)["type"])
}

func TestRelay_OfferTaggedWithSender(t *testing.T) {
	ctl := newTestController()
	caller := connect(ctl, "c1")
	callee := connect(ctl, "c2")

	ctl.handleCreateRoom(caller, []byte(`{"name":"study","creator":"alice"}`))
	roomID := caller.last(t)["roomId"].(string)
	ctl.handleJoin("c1", caller, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c2", callee, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))

	ctl.handleRelay("c1", "offer", []byte(`{"targetConnectionId":"c2","offer":{"type":"offer","sdp":"v=0 fake"}}`))

	evt := callee.last(t)
	require.Equal(t, "offer", evt["type"])
	assert.Equal(t, "c1", evt["senderConnectionId"])
	assert.Equal(t, "alice", evt["senderUsername"])
	offer := evt["offer"].(map[string]any)
	assert.Equal(t, "v=0 fake", offer["sdp"], "payload passes through untouched")
}

func TestKick_VictimGetsDirectNotice(t *testing.T) {
	ctl := newTestController()
	owner := connect(ctl, "c1")
	victim := connect(ctl, "c2")

	ctl.handleCreateRoom(owner, []byte(`{"name":"study","creator":"alice"}`))
	roomID := owner.last(t)["roomId"].(string)
	ctl.handleJoin("c1", owner, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c2", victim, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))

	ctl.handleForceControl("c1", owner, []byte(`{"targetConnectionId":"c2","action":"kick","value":false}`))

	var sawEviction bool
	for _, e := range victim.events(t) {
		if e["type"] == "force-kicked" {
			sawEviction = true
		}
		assert.NotEqual(t, "user-kicked", e["type"], "victim is off the roster broadcast")
	}
	assert.True(t, sawEviction)

	roster := owner.last(t)
	require.Equal(t, "user-kicked", roster["type"])
	assert.Len(t, roster["participants"], 1)
	assert.Equal(t, "c2", roster["kickedConnectionId"])
}

func TestJoin_SwitchingRoomsNotifiesOldRoom(t *testing.T) {
	ctl := newTestController()
	mover := connect(ctl, "c1")
	stayer := connect(ctl, "c2")

	ctl.handleCreateRoom(mover, []byte(`{"name":"alpha","creator":"alice"}`))
	roomA := mover.last(t)["roomId"].(string)
	ctl.handleCreateRoom(mover, []byte(`{"name":"beta","creator":"alice"}`))
	roomB := mover.last(t)["roomId"].(string)

	ctl.handleJoin("c1", mover, []byte(`{"username":"alice","roomCode":"`+roomA+`"}`))
	ctl.handleJoin("c2", stayer, []byte(`{"username":"bob","roomCode":"`+roomA+`"}`))

	ctl.handleJoin("c1", mover, []byte(`{"username":"alice","roomCode":"`+roomB+`"}`))
	require.Equal(t, "room-joined", mover.last(t)["type"])

	left := stayer.last(t)
	require.Equal(t, "user-left", left["type"])
	assert.Equal(t, "c1", left["disconnectedConnectionId"])
	assert.Len(t, left["participants"], 1)
}

func TestJoin_RepeatedFromSameConnectionDedupes(t *testing.T) {
	ctl := newTestController()
	fc := connect(ctl, "c1")
	peer := connect(ctl, "c2")

	ctl.handleCreateRoom(fc, []byte(`{"name":"study","creator":"alice"}`))
	roomID := fc.last(t)["roomId"].(string)
	ctl.handleJoin("c1", fc, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c2", peer, []byte(`{"username":"bob","roomCode":"`+roomID+`"}`))
	ctl.handleJoin("c1", fc, []byte(`{"username":"alice","roomCode":"`+roomID+`"}`))

	snapshot := fc.last(t)
	require.Equal(t, "room-joined", snapshot["type"])
	roster, ok := snapshot["participants"].([]any)
	require.True(t, ok)
	require.Len(t, roster, 2)
	seen := 0
	for _, raw := range roster {
		p := raw.(map[string]any)
		if p["connectionId"] == "c1" {
			seen++
		}
	}
	assert.Equal(t, 1, seen, "one roster entry per connection")
}

func TestEventLabel_BoundsUnknownTypes(t *testing.T) {
	assert.Equal(t, "join-room", eventLabel("join-room"))
	assert.Equal(t, "toggle-headset", eventLabel("toggle-headset"))
	assert.Equal(t, "unknown", eventLabel("totally-made-up"))
	assert.Equal(t, "unknown", eventLabel(""))
}
