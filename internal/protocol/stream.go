package protocol

import "context"

// FrameStream is the transport the protocol runs over: ordered text frames
// with single-writer semantics. The deployment adapter wraps a WebSocket;
// tests wrap channel pairs. WebSocket control frames (ping/pong/close) and
// binary frames never surface here: the adapter suppresses control frames,
// reports a binary frame as ErrBinaryFrame and turns close into an error from
// ReadFrame.
type FrameStream interface {
	// ReadFrame blocks until the next text frame or stream failure.
	ReadFrame(ctx context.Context) (string, error)

	// WriteFrame sends one text frame. Callers serialize writes.
	WriteFrame(ctx context.Context, frame string) error

	// Close tears the stream down; safe to call more than once.
	Close() error
}

// Send encodes and writes one message outside a running session. The server
// uses it for the terminal frame of a connection it refuses.
func Send(ctx context.Context, stream FrameStream, msg Message) error {
	return send(ctx, stream, msg)
}

// send encodes and writes one message.
func send(ctx context.Context, stream FrameStream, msg Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	return stream.WriteFrame(ctx, frame)
}

// receive reads and decodes one message.
func receive(ctx context.Context, stream FrameStream) (Message, error) {
	frame, err := stream.ReadFrame(ctx)
	if err != nil {
		return Message{}, err
	}
	return Decode(frame)
}
