package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/helios-home/helios/internal/domain/agent"
	"github.com/helios-home/helios/internal/shared/logger"
)

// PingReplyTimeout bounds how long a connection waits for the Pong answering
// its Ping before it is declared dead.
const PingReplyTimeout = 5 * time.Second

// ServerSession is the server end of one authenticated agent connection. It
// multiplexes inbound frames, unicast events and broadcast events, and is the
// single writer of its stream.
type ServerSession struct {
	stream      FrameStream
	logger      logger.Interface
	pingTimeout time.Duration

	inbound chan inboundFrame
}

type inboundFrame struct {
	msg Message
	err error
}

// NewServerSession wraps an authenticated stream. Call Run to drive it.
func NewServerSession(stream FrameStream, log logger.Interface) *ServerSession {
	return &ServerSession{
		stream:      stream,
		logger:      log,
		pingTimeout: PingReplyTimeout,
		inbound:     make(chan inboundFrame),
	}
}

// Run drives the steady-state loop until the stream fails, the context ends
// or a liveness round times out. The caller unregisters the connection after
// Run returns, whatever the exit path.
func (s *ServerSession) Run(ctx context.Context, receivers *agent.Receivers) error {
	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()
	go s.readLoop(readCtx)

	direct := receivers.Direct
	broadcast := receivers.Broadcast

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame := <-s.inbound:
			if frame.err != nil {
				return frame.err
			}
			if err := s.handleInbound(ctx, frame.msg); err != nil {
				return err
			}

		case ev, ok := <-direct:
			if !ok {
				return ErrStreamClosed
			}
			if err := s.handleEvent(ctx, ev); err != nil {
				return err
			}

		case ev, ok := <-broadcast:
			if !ok {
				return ErrStreamClosed
			}
			if err := s.handleEvent(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (s *ServerSession) readLoop(ctx context.Context) {
	for {
		msg, err := receive(ctx, s.stream)
		select {
		case s.inbound <- inboundFrame{msg: msg, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *ServerSession) handleEvent(ctx context.Context, ev agent.Event) error {
	switch ev.(type) {
	case agent.PingEvent:
		return s.pingRound(ctx)
	default:
		s.logger.Warnw("ignoring unknown connection event", "event", fmt.Sprintf("%T", ev))
		return nil
	}
}

// pingRound sends Ping and waits for the matching Pong. Frames with other ids
// arriving during the wait go through the default handler. A silent agent is
// told Err{InvalidMessage} and the connection is closed.
func (s *ServerSession) pingRound(ctx context.Context) error {
	ping := NewMessage(Ping{})
	if err := send(ctx, s.stream, ping); err != nil {
		return err
	}

	timer := time.NewTimer(s.pingTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			if err := send(ctx, s.stream, Respond(ping.ID, InvalidMessage{})); err != nil {
				return err
			}
			return ErrPingTimeout

		case frame := <-s.inbound:
			if frame.err != nil {
				return frame.err
			}
			if frame.msg.ID == ping.ID {
				if _, ok := frame.msg.Body.(Pong); ok {
					return nil
				}
				s.logger.Warnw("unexpected reply to ping", "command", frame.msg.Body.command())
				return nil
			}
			if err := s.handleInbound(ctx, frame.msg); err != nil {
				return err
			}
		}
	}
}

// handleInbound is the server's default handler for frames no caller awaits.
func (s *ServerSession) handleInbound(ctx context.Context, msg Message) error {
	switch msg.Body.(type) {
	case Authenticate, Challenge, ChallengeResponse, AuthenticationSuccess, HandshakeComplete:
		// Handshake traffic after the handshake is a peer bug.
		return send(ctx, s.stream, Respond(msg.ID, InvalidMessage{}))

	case Ping:
		return send(ctx, s.stream, Respond(msg.ID, Pong{}))

	case Pong:
		// Unsolicited Pong.
		return nil

	case UnexpectedOutOfBandMessage:
		s.logger.Warnw("agent reported out-of-band message", "id", msg.ID)
		return nil

	case InternalError:
		s.logger.Warnw("agent reported internal error", "id", msg.ID)
		return nil

	case InvalidMessage:
		s.logger.Warnw("agent reported invalid message", "id", msg.ID)
		return nil

	case AgentNotFound, AuthenticationFailed, AlreadyConnected:
		return send(ctx, s.stream, Respond(msg.ID, InvalidMessage{}))
	}
	return send(ctx, s.stream, Respond(msg.ID, InvalidMessage{}))
}
