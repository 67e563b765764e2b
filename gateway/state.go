package gateway

import "sync"

// ResumeData is the information needed to resume a disconnected session.
// It is created from the first successfully decoded Ready dispatch,
// mutated only to advance Seq, and discarded once a session ends
// unresumably (spec.md §3).
type ResumeData struct {
	Token     string
	SessionID string
	Seq       int64
}

func (r *ResumeData) clone() *ResumeData {
	if r == nil {
		return nil
	}

	cp := *r

	return &cp
}

// State is the mutable record a Machine owns: the sole source of truth for
// whether a disconnect is resumable. All mutation happens on the machine's
// goroutines; the mutex exists because Outcome()/Resume() may be read from
// a supervisor goroutine concurrently with a live session (spec.md §4.3,
// §5), the same way wrapper/session.go guards Session with s.Lock().
type State struct {
	mu         sync.Mutex
	token      string
	resume     *ResumeData
	ackPending bool
}

// NewState constructs session state, optionally seeded with resume data
// from a prior, disconnected session.
func NewState(token string, prior *ResumeData) *State {
	return &State{
		token:  token,
		resume: prior.clone(),
		// ackPending starts false so the very first heartbeat tick
		// (scheduled with zero delay right after Hello) is permitted to
		// fire; there is nothing outstanding to be owed an ack for yet.
		ackPending: false,
	}
}

// Resume returns a copy of the current resume data, or nil if the session
// has never completed a Ready.
func (s *State) Resume() *ResumeData {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resume.clone()
}

// CanResume reports whether the state holds resume data.
func (s *State) CanResume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resume != nil
}

// LastSeq returns a pointer to the last observed sequence number, or nil
// if no resume data exists yet (used to populate outbound Heartbeats).
func (s *State) LastSeq() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resume == nil {
		return nil
	}

	seq := s.resume.Seq

	return &seq
}

// OnHello clears any pending ack so the first heartbeat after Identify/
// Resume is always permitted to send (spec.md §4.5, design note 9a).
func (s *State) OnHello() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ackPending = false
}

// OnReady installs fresh resume data from a successfully decoded Ready
// dispatch.
func (s *State) OnReady(sessionID string, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resume = &ResumeData{Token: s.token, SessionID: sessionID, Seq: seq}
}

// ClearResume discards resume data, used when a Ready dispatch's payload
// cannot be decoded (the session becomes unresumable, spec.md §4.5) or
// when the transport reports a non-resumable close code (see Machine.fail).
func (s *State) ClearResume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resume = nil
}

// AdvanceSeq updates resume.Seq to the given dispatch sequence number, a
// no-op if no resume data exists (spec.md §4.5's "Update resume.seq if
// resume is non-null").
func (s *State) AdvanceSeq(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resume != nil {
		s.resume.Seq = seq
	}
}

// AckPending reports whether the session is owed an ack for a heartbeat
// already sent (i.e. a tick sent one and no ack or Hello has cleared it
// since).
func (s *State) AckPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ackPending
}

// SetAckPending is used by the heartbeat timer after sending a heartbeat.
func (s *State) SetAckPending(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ackPending = v
}

// OnHeartbeatAck marks the pending heartbeat as acknowledged.
func (s *State) OnHeartbeatAck() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ackPending = false
}
