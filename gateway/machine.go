package gateway

import (
	"context"
	"errors"
	"io"

	json "github.com/goccy/go-json"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

// Sink is the dispatch-out contract (spec.md §1: "downstream application
// cache/dispatch routing ... specified only as a sink contract"). Dispatch
// receives every inbound message in arrival order, including control
// messages (the stage is a tee, not a filter). A Sink returns
// ErrDispatchClosed to signal the downstream consumer is gone; any other
// error is treated as an upstream failure of the session.
type Sink interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Machine is the session state machine of spec.md §4.5: it consumes
// inbound Gateway messages from a Transport, reacts per opcode, emits
// outbound control messages, tees every inbound message to a Sink, and
// completes with a resume-eligibility verdict. Grounded on
// wrapper/session_listener.go's onPayload/handleGatewayCloseError and
// wrapper/session_manager.go's errgroup-supervised manager.
type Machine struct {
	settings  GatewaySettings
	state     *State
	transport Transport
	sink      Sink
	external  <-chan Message

	control chan Message

	heartbeat *Heartbeat

	outcome *OneShot[Outcome]
	started *OneShot[error]

	cancel context.CancelFunc

	xid string
}

// NewMachine constructs a Machine ready to Run. prior carries resume data
// from an earlier, disconnected session; nil starts fresh. external is an
// application-owned channel of outbound control-plane sends (presence,
// voice state, request-guild-members) merged into the outbound stream
// alongside the machine's own control messages (spec.md §5's fan-in).
func NewMachine(settings GatewaySettings, prior *ResumeData, transport Transport, sink Sink, external <-chan Message) *Machine {
	return &Machine{
		settings:  settings,
		state:     NewState(settings.Token, prior),
		transport: transport,
		sink:      sink,
		external:  external,
		control:   make(chan Message),
		outcome:   NewOneShot[Outcome](),
		started:   NewOneShot[error](),
		xid:       xid.New().String(),
	}
}

// Outcome is the session's terminal future: resume data plus whether the
// supervisor should wait before reconnecting (spec.md §4.6).
func (m *Machine) Outcome() *OneShot[Outcome] { return m.outcome }

// Started fires on the first Ready or Resumed, or with an error if the
// session never got that far (spec.md §4.6).
func (m *Machine) Started() *OneShot[error] { return m.started }

// Run drives the session until it terminates. It returns once both the
// reader and writer goroutines have stopped; the authoritative result for
// callers is Outcome(), not this return value.
func (m *Machine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancel = cancel

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error { return m.reader(gctx, group) })
	group.Go(func() error { return m.writer(gctx) })

	err := group.Wait()
	if errors.Is(err, context.Canceled) && m.outcome.Done() {
		return nil
	}

	return err
}

// Abort forces an immediate, ungraceful teardown (e.g. the host process is
// exiting), completing both futures with AbruptTermination if they are
// still pending (spec.md §4.5's "Abrupt teardown" path).
func (m *Machine) Abort() {
	m.outcome.Complete(Outcome{Err: AbruptTerminationError{}})
	m.started.Complete(AbruptTerminationError{})
}

func (m *Machine) reader(ctx context.Context, group *errgroup.Group) error {
	defer m.cancel()

	helloSeen := false

	for {
		msg, err := readFrame(ctx, m.transport)
		if err != nil {
			if errors.Is(err, io.EOF) {
				m.finishGraceful()

				return nil
			}

			var decErr DecodeError
			if errors.As(err, &decErr) && decErr.Kind == DecodeErrorUnknownOp {
				Logger.Warn().Str(logCtxCorrelation, m.xid).Int(logCtxOpcode, decErr.Op).Msg("gateway: ignoring unknown opcode")

				continue
			}

			m.fail(err)

			return err
		}

		if !helloSeen {
			if _, ok := msg.(HelloMessage); !ok {
				err := ProtocolViolationError{Reason: "first inbound message was not Hello"}
				m.fail(err)

				return err
			}

			helloSeen = true
		}

		m.logReceived(msg)

		done, err := m.react(ctx, group, msg)
		if err != nil {
			m.fail(err)

			return err
		}

		if err := m.tee(ctx, msg); err != nil {
			if errors.Is(err, ErrDispatchClosed) {
				m.finishGraceful()

				return nil
			}

			m.fail(err)

			return err
		}

		if done {
			return nil
		}
	}
}

// react applies the per-opcode reaction table of spec.md §4.5, returning
// done=true once a termination path has completed the outcome future.
func (m *Machine) react(ctx context.Context, group *errgroup.Group, msg Message) (bool, error) {
	switch v := msg.(type) {
	case HelloMessage:
		m.state.OnHello()

		if resume := m.state.Resume(); resume != nil {
			if err := m.sendControl(ctx, ResumeMessage{Token: resume.Token, SessionID: resume.SessionID, Seq: resume.Seq}); err != nil {
				return false, err
			}
		} else {
			if err := m.sendControl(ctx, m.buildIdentify()); err != nil {
				return false, err
			}
		}

		m.heartbeat = NewHeartbeat(v.HeartbeatIntervalMS, m.state, func(ctx context.Context, hb HeartbeatMessage) error {
			return m.sendControl(ctx, hb)
		})
		group.Go(func() error {
			err := m.heartbeat.Run(ctx)

			// A ctx already cancelled means some other path (graceful end,
			// termination, another failure) already decided the outcome;
			// reporting context.Canceled here would wrongly fail a
			// successful-start future that a Ready/Resumed never reached.
			if err != nil && ctx.Err() == nil {
				m.fail(err)
			}

			return err
		})

	case DispatchMessage:
		if m.settings.LogReceivedWS {
			logDispatch(logSession(Logger.Debug(), m.xid, m.sessionID()), v.EventName).Msg("gateway: dispatch")
		}

		switch v.EventName {
		case EventNameReady:
			m.started.Complete(nil)

			ready, err := decodeReady(v.Raw)
			if err != nil {
				Logger.Warn().Str(logCtxCorrelation, m.xid).Err(err).Msg("gateway: could not decode Ready, session will be unresumable")
				m.state.ClearResume()
			} else {
				m.state.OnReady(ready.SessionID, v.Seq)
			}

		case EventNameResumed:
			m.started.Complete(nil)
			m.state.AdvanceSeq(v.Seq)

		default:
			m.state.AdvanceSeq(v.Seq)
		}

	case HeartbeatMessage:
		if m.heartbeat != nil {
			if err := m.heartbeat.tick(ctx); err != nil {
				return false, err
			}
		}

	case HeartbeatAckMessage:
		if m.heartbeat != nil {
			m.heartbeat.OnAck()
		} else {
			m.state.OnHeartbeatAck()
		}

	case ReconnectMessage:
		m.outcome.Complete(Outcome{Resume: m.state.Resume(), Wait: false})

		return true, nil

	case InvalidSessionMessage:
		resume := m.state.Resume()
		if !v.Resumable {
			resume = nil
		}

		m.outcome.Complete(Outcome{Resume: resume, Wait: true})

		return true, nil
	}

	return false, nil
}

// tee forwards msg to the dispatch sink, independent of whatever control
// reaction just ran (spec.md §3: "the stage is a tee, not a filter").
func (m *Machine) tee(ctx context.Context, msg Message) error {
	return m.sink.Dispatch(ctx, msg)
}

// writer merges the machine's own control messages with externally
// injected outbound messages, giving control absolute priority (spec.md
// §5), and pushes each onto the transport via the codec.
func (m *Machine) writer(ctx context.Context) error {
	external := m.external

	for {
		select {
		case msg := <-m.control:
			m.logSent(msg)

			if err := writeFrame(ctx, m.transport, msg); err != nil {
				m.fail(err)

				return err
			}

			continue
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-m.control:
			m.logSent(msg)

			if err := writeFrame(ctx, m.transport, msg); err != nil {
				m.fail(err)

				return err
			}

		case msg, ok := <-external:
			if !ok {
				external = nil

				continue
			}

			m.logSent(msg)

			if err := writeFrame(ctx, m.transport, msg); err != nil {
				m.fail(err)

				return err
			}
		}
	}
}

// logReceived logs an inbound message's opcode and payload at debug level
// when GatewaySettings.LogReceivedWS is set, mirroring wrapper/log.go's
// LogPayload usage on the read path.
func (m *Machine) logReceived(msg Message) {
	if !m.settings.LogReceivedWS {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	logPayload(logSession(Logger.Debug(), m.xid, m.sessionID()), msg.opcode(), data).Msg("gateway: received")
}

// logSent mirrors logReceived for the write path, gated by
// GatewaySettings.LogSentWS.
func (m *Machine) logSent(msg Message) {
	if !m.settings.LogSentWS {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	logPayload(logSession(Logger.Debug(), m.xid, m.sessionID()), msg.opcode(), data).Msg("gateway: sent")
}

// sessionID returns the current resume session id for logging, or "" if
// none has been established yet.
func (m *Machine) sessionID() string {
	if resume := m.state.Resume(); resume != nil {
		return resume.SessionID
	}

	return ""
}

// sendControl enqueues an outbound control message, used both directly by
// react and indirectly by the heartbeat timer.
func (m *Machine) sendControl(ctx context.Context, msg Message) error {
	select {
	case m.control <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine) buildIdentify() IdentifyMessage {
	return IdentifyMessage{
		Token:              m.settings.Token,
		Properties:         clientProperties(),
		LargeThreshold:     m.settings.LargeThreshold,
		Shard:              m.settings.Shard,
		Presence:           m.settings.Presence,
		GuildSubscriptions: m.settings.GuildSubscribe,
		Intents:            m.settings.Intents,
	}
}

// finishGraceful handles both a cleanly closed upstream and a closed
// downstream sink, which share the same outcome shape (spec.md §4.5).
func (m *Machine) finishGraceful() {
	m.outcome.Complete(Outcome{Resume: m.state.Resume(), Wait: false})
}

// fail handles an upstream or transport failure: the outcome completes
// with the error, and the successful-start future fails too if the
// session never got as far as Ready/Resumed.
func (m *Machine) fail(err error) {
	var nonResumable NonResumableCloseError
	if errors.As(err, &nonResumable) {
		m.state.ClearResume()
	}

	m.outcome.Complete(Outcome{Err: err, Resume: m.state.Resume(), Wait: false})
	m.started.Complete(err)
}
