package domain

import "testing"

func TestAppendMessage_MonotonicIDs(t *testing.T) {
	r := NewRoom("ABC123", "study", "", "", "alice")
	a := r.AppendSystemMessage("one")
	b := r.AppendSystemMessage("two")
	c := r.AppendMessage("alice", "c1", "three")
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Errorf("ids not monotonic: %d, %d, %d", a.ID, b.ID, c.ID)
	}
	if len(r.Messages) != 3 {
		t.Errorf("log length = %d, want 3", len(r.Messages))
	}
}

func TestAppendSystemMessage_Sentinel(t *testing.T) {
	r := NewRoom("ABC123", "study", "", "", "alice")
	m := r.AppendSystemMessage("hello")
	if m.User != SystemUser {
		t.Errorf("User = %q, want %q", m.User, SystemUser)
	}
	if m.ConnectionID != "" {
		t.Errorf("ConnectionID = %q, want empty", m.ConnectionID)
	}
	if m.Time == "" {
		t.Error("Time is empty")
	}
}

func TestRemoveParticipant(t *testing.T) {
	r := NewRoom("ABC123", "study", "", "", "alice")
	r.Participants = append(r.Participants,
		NewParticipant("c1", "alice", Gradient{}, true),
		NewParticipant("c2", "bob", Gradient{}, false),
	)
	if !r.RemoveParticipant("c1") {
		t.Fatal("RemoveParticipant(c1) = false")
	}
	if r.RemoveParticipant("c1") {
		t.Error("RemoveParticipant(c1) twice = true")
	}
	if _, ok := r.Participant("c2"); !ok {
		t.Error("c2 missing after removing c1")
	}
}

func TestHasPassword(t *testing.T) {
	if NewRoom("A", "n", "", "", "u").HasPassword() {
		t.Error("empty password reported as set")
	}
	if !NewRoom("A", "n", "", "pw", "u").HasPassword() {
		t.Error("password not reported")
	}
}
