package protocol

import "errors"

// Protocol errors. Connection-scoped: any of these terminates the one
// connection that raised it and nothing else.
var (
	ErrMalformedFrame    = errors.New("malformed frame")
	ErrUnknownNamespace  = errors.New("unknown namespace")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrBinaryFrame       = errors.New("binary frames are not part of the protocol")
	ErrUnexpectedMessage = errors.New("unexpected message")
	ErrHandshakeFailed   = errors.New("handshake failed")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrPingTimeout       = errors.New("agent did not answer ping in time")
	ErrAlreadyConnected  = errors.New("agent already connected")
	ErrStreamClosed      = errors.New("stream closed")
)
