package gateway

import "testing"

func TestNewStateStartsWithNoAckPending(t *testing.T) {
	s := NewState("tok", nil)

	if s.AckPending() {
		t.Fatalf("new state must start with no ack pending so the first heartbeat tick sends")
	}

	if s.CanResume() {
		t.Fatalf("new state with no prior resume data must not resume")
	}
}

func TestStateSeedsPriorResume(t *testing.T) {
	prior := &ResumeData{Token: "tok", SessionID: "sid", Seq: 7}
	s := NewState("tok", prior)

	got := s.Resume()
	if got == nil || got.Seq != 7 || got.SessionID != "sid" {
		t.Fatalf("got %+v, want a copy of prior", got)
	}

	// Resume() must return a defensive copy.
	got.Seq = 99
	if s.Resume().Seq != 7 {
		t.Fatalf("mutating the returned copy must not affect state")
	}
}

func TestStateOnReadyThenAdvanceSeq(t *testing.T) {
	s := NewState("tok", nil)

	s.OnReady("sid-1", 1)
	s.AdvanceSeq(2)
	s.AdvanceSeq(3)

	got := s.Resume()
	if got == nil || got.Seq != 3 || got.SessionID != "sid-1" {
		t.Fatalf("got %+v, want seq 3 and session sid-1", got)
	}
}

func TestStateAdvanceSeqNoopWithoutResume(t *testing.T) {
	s := NewState("tok", nil)

	s.AdvanceSeq(5)

	if s.CanResume() {
		t.Fatalf("AdvanceSeq must not create resume data on its own")
	}
}

func TestStateClearResume(t *testing.T) {
	s := NewState("tok", &ResumeData{Token: "tok", SessionID: "sid", Seq: 1})

	s.ClearResume()

	if s.CanResume() {
		t.Fatalf("resume data must be gone after ClearResume")
	}
}

func TestStateAckCycle(t *testing.T) {
	s := NewState("tok", nil)

	s.SetAckPending(true)
	if !s.AckPending() {
		t.Fatalf("expected ack pending to be true after SetAckPending(true)")
	}

	s.OnHeartbeatAck()
	if s.AckPending() {
		t.Fatalf("expected ack pending to be false after OnHeartbeatAck")
	}

	s.SetAckPending(true)
	s.OnHello()
	if s.AckPending() {
		t.Fatalf("expected ack pending to be false after OnHello")
	}
}
