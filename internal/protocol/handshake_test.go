package protocol

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeStream is an in-memory FrameStream half backed by unbuffered channels.
type pipeStream struct {
	in   <-chan string
	out  chan<- string
	done chan struct{}
	once sync.Once
}

func newPipe() (*pipeStream, *pipeStream) {
	a := make(chan string)
	b := make(chan string)
	done := make(chan struct{})
	left := &pipeStream{in: a, out: b, done: done}
	right := &pipeStream{in: b, out: a, done: done}
	return left, right
}

func (p *pipeStream) ReadFrame(ctx context.Context) (string, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	case <-p.done:
		return "", ErrStreamClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeStream) WriteFrame(ctx context.Context, frame string) error {
	select {
	case p.out <- frame:
		return nil
	case <-p.done:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeStream) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func staticResolver(known uuid.UUID, token string) ServiceResolver {
	return func(_ context.Context, serviceID uuid.UUID) (string, error) {
		if serviceID != known {
			return "", ErrAgentNotFound
		}
		return token, nil
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHandshake_Success(t *testing.T) {
	ctx := testContext(t)
	agentStream, serverStream := newPipe()
	serviceID := uuid.New()
	const token = "Aa1!bcdefghijklmnopqrstuvwxy0123"

	serverDone := make(chan error, 1)
	var authenticated uuid.UUID
	go func() {
		id, err := AcceptHandshake(ctx, serverStream, staticResolver(serviceID, token))
		authenticated = id
		serverDone <- err
	}()

	require.NoError(t, InitiateHandshake(ctx, agentStream, serviceID, token))
	require.NoError(t, <-serverDone)
	assert.Equal(t, serviceID, authenticated)
}

func TestHandshake_WrongToken(t *testing.T) {
	ctx := testContext(t)
	agentStream, serverStream := newPipe()
	serviceID := uuid.New()

	serverDone := make(chan error, 1)
	go func() {
		_, err := AcceptHandshake(ctx, serverStream, staticResolver(serviceID, "the-real-token"))
		serverDone <- err
	}()

	err := InitiateHandshake(ctx, agentStream, serviceID, "a-guessed-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeFailed)

	err = <-serverDone
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeFailed)
}

func TestHandshake_UnknownService(t *testing.T) {
	ctx := testContext(t)
	agentStream, serverStream := newPipe()

	serverDone := make(chan error, 1)
	go func() {
		_, err := AcceptHandshake(ctx, serverStream, staticResolver(uuid.New(), "token"))
		serverDone <- err
	}()

	err := InitiateHandshake(ctx, agentStream, uuid.New(), "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeFailed)
	assert.ErrorIs(t, <-serverDone, ErrAgentNotFound)
}

// An impostor server that never held the token cannot fake the proof, so the
// agent walks away even though the first challenge round "succeeded".
func TestHandshake_AgentRejectsImpostorServer(t *testing.T) {
	ctx := testContext(t)
	agentStream, serverStream := newPipe()
	serviceID := uuid.New()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- runImpostorServer(ctx, serverStream)
	}()

	err := InitiateHandshake(ctx, agentStream, serviceID, "the-real-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeFailed)
	require.NoError(t, <-serverDone)
}

// runImpostorServer follows the handshake shape but signs with a token it
// invented, then reports what the agent answered.
func runImpostorServer(ctx context.Context, stream FrameStream) error {
	first, err := receive(ctx, stream)
	if err != nil {
		return err
	}
	id := first.ID

	nonce, err := NewNonce()
	if err != nil {
		return err
	}
	if err := send(ctx, stream, Respond(id, Challenge{AgentNonce: nonce})); err != nil {
		return err
	}

	reply, err := receive(ctx, stream)
	if err != nil {
		return err
	}
	resp, ok := reply.Body.(ChallengeResponse)
	if !ok {
		return errors.New("expected ChallengeResponse")
	}

	// Sign the counter-challenge with a token the impostor made up.
	forged := ResolveChallenge(resp.ServerNonce, "not-the-token")
	if err := send(ctx, stream, Respond(id, AuthenticationSuccess{Response: forged})); err != nil {
		return err
	}

	final, err := receive(ctx, stream)
	if err != nil {
		return err
	}
	if _, ok := final.Body.(AuthenticationFailed); !ok {
		return errors.New("agent accepted a forged server proof")
	}
	return nil
}

func TestHandshake_OutOfBandFrameDuringWait(t *testing.T) {
	ctx := testContext(t)
	agentStream, serverStream := newPipe()
	serviceID := uuid.New()
	const token = "token"

	serverDone := make(chan error, 1)
	go func() {
		_, err := AcceptHandshake(ctx, serverStream, staticResolver(serviceID, token))
		serverDone <- err
	}()

	open := NewMessage(Authenticate{ServiceID: serviceID})
	require.NoError(t, send(ctx, agentStream, open))

	challenge, err := expectReply(ctx, agentStream, open.ID)
	require.NoError(t, err)
	ch, ok := challenge.Body.(Challenge)
	require.True(t, ok)

	// Inject a frame with a foreign id while the server awaits the response.
	stray := NewMessage(Ping{})
	require.NoError(t, send(ctx, agentStream, stray))

	strayReply, err := receive(ctx, agentStream)
	require.NoError(t, err)
	assert.Equal(t, stray.ID, strayReply.ID)
	assert.IsType(t, UnexpectedOutOfBandMessage{}, strayReply.Body)

	// The handshake still completes afterwards.
	serverNonce, err := NewNonce()
	require.NoError(t, err)
	resp := ChallengeResponse{
		Response:    ResolveChallenge(ch.AgentNonce, token),
		ServerNonce: serverNonce,
	}
	require.NoError(t, send(ctx, agentStream, Respond(open.ID, resp)))

	success, err := expectReply(ctx, agentStream, open.ID)
	require.NoError(t, err)
	require.IsType(t, AuthenticationSuccess{}, success.Body)
	require.NoError(t, send(ctx, agentStream, Respond(open.ID, HandshakeComplete{})))

	require.NoError(t, <-serverDone)
}

func TestResolveChallenge_Deterministic(t *testing.T) {
	var nonce Nonce
	nonce[0] = 1

	a := ResolveChallenge(nonce, "token")
	b := ResolveChallenge(nonce, "token")
	c := ResolveChallenge(nonce, "other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
