package protocol

import (
	"context"

	"github.com/helios-home/helios/internal/shared/logger"
)

// AgentSession is the agent end of an authenticated connection. Its only
// steady-state duty is answering liveness pings; everything else it either
// logs or rejects.
type AgentSession struct {
	stream FrameStream
	logger logger.Interface
}

// NewAgentSession wraps an authenticated stream. Call Run to drive it.
func NewAgentSession(stream FrameStream, log logger.Interface) *AgentSession {
	return &AgentSession{stream: stream, logger: log}
}

// Run drives the loop until the stream fails, the context ends or the server
// reports the service id is already connected elsewhere.
func (s *AgentSession) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := receive(ctx, s.stream)
		if err != nil {
			return err
		}

		switch msg.Body.(type) {
		case Ping:
			if err := send(ctx, s.stream, Respond(msg.ID, Pong{})); err != nil {
				return err
			}

		case Pong:
			// Unsolicited Pong.

		case AlreadyConnected:
			// Another connection holds our service id; yield to it.
			return ErrAlreadyConnected

		case Authenticate, Challenge, ChallengeResponse, AuthenticationSuccess, HandshakeComplete:
			if err := send(ctx, s.stream, Respond(msg.ID, InvalidMessage{})); err != nil {
				return err
			}

		case UnexpectedOutOfBandMessage:
			s.logger.Warnw("server reported out-of-band message", "id", msg.ID)

		case InternalError:
			s.logger.Warnw("server reported internal error", "id", msg.ID)

		case InvalidMessage:
			s.logger.Warnw("server reported invalid message", "id", msg.ID)

		case AgentNotFound, AuthenticationFailed:
			s.logger.Warnw("server sent handshake error after handshake", "id", msg.ID, "command", msg.Body.command())

		default:
			if err := send(ctx, s.stream, Respond(msg.ID, InvalidMessage{})); err != nil {
				return err
			}
		}
	}
}
