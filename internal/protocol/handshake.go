package protocol

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ResolveChallenge computes the proof of token possession for a nonce:
// lowercase hex of HMAC-SHA256 keyed by the token over the nonce bytes.
func ResolveChallenge(nonce Nonce, token string) string {
	mac := hmac.New(sha256.New, []byte(token))
	mac.Write(nonce[:])
	return hex.EncodeToString(mac.Sum(nil))
}

// NewNonce draws 32 cryptographically random bytes.
func NewNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

func challengeMatches(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}

// expectReply reads frames until one carrying the awaited id arrives. Frames
// with a foreign id are answered with Err{UnexpectedOutOfBandMessage} and the
// wait continues; the handshake admits no out-of-band traffic.
func expectReply(ctx context.Context, stream FrameStream, id uuid.UUID) (Message, error) {
	for {
		msg, err := receive(ctx, stream)
		if err != nil {
			return Message{}, err
		}
		if msg.ID == id {
			return msg, nil
		}
		if err := send(ctx, stream, Respond(msg.ID, UnexpectedOutOfBandMessage{})); err != nil {
			return Message{}, err
		}
	}
}

// ServiceResolver looks up the token of the service an agent claims to be.
// Absence is reported with ErrAgentNotFound.
type ServiceResolver func(ctx context.Context, serviceID uuid.UUID) (token string, err error)

// AcceptHandshake runs the server side of the mutual authentication. The
// whole exchange shares the correlation id of the agent's Authenticate frame.
// On success it returns the authenticated service id; on any failure the
// caller closes the connection and no partial state survives.
func AcceptHandshake(ctx context.Context, stream FrameStream, resolve ServiceResolver) (uuid.UUID, error) {
	first, err := receive(ctx, stream)
	if err != nil {
		return uuid.Nil, err
	}

	auth, ok := first.Body.(Authenticate)
	if !ok {
		if err := send(ctx, stream, Respond(first.ID, InvalidMessage{})); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("%w: expected Authenticate, got %s", ErrHandshakeFailed, first.Body.command())
	}
	id := first.ID

	token, err := resolve(ctx, auth.ServiceID)
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			if sendErr := send(ctx, stream, Respond(id, AgentNotFound{})); sendErr != nil {
				return uuid.Nil, sendErr
			}
			return uuid.Nil, err
		}
		if sendErr := send(ctx, stream, Respond(id, InternalError{})); sendErr != nil {
			return uuid.Nil, sendErr
		}
		return uuid.Nil, err
	}

	agentNonce, err := NewNonce()
	if err != nil {
		return uuid.Nil, err
	}
	expected := ResolveChallenge(agentNonce, token)

	if err := send(ctx, stream, Respond(id, Challenge{AgentNonce: agentNonce})); err != nil {
		return uuid.Nil, err
	}

	reply, err := expectReply(ctx, stream, id)
	if err != nil {
		return uuid.Nil, err
	}
	challengeResp, ok := reply.Body.(ChallengeResponse)
	if !ok {
		if err := send(ctx, stream, Respond(id, InvalidMessage{})); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("%w: expected ChallengeResponse, got %s", ErrHandshakeFailed, reply.Body.command())
	}

	if !challengeMatches(expected, challengeResp.Response) {
		if err := send(ctx, stream, Respond(id, AuthenticationFailed{})); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("%w: challenge response mismatch", ErrHandshakeFailed)
	}

	serverProof := ResolveChallenge(challengeResp.ServerNonce, token)
	if err := send(ctx, stream, Respond(id, AuthenticationSuccess{Response: serverProof})); err != nil {
		return uuid.Nil, err
	}

	final, err := expectReply(ctx, stream, id)
	if err != nil {
		return uuid.Nil, err
	}
	switch final.Body.(type) {
	case HandshakeComplete:
		return auth.ServiceID, nil
	case AuthenticationFailed:
		return uuid.Nil, fmt.Errorf("%w: agent rejected server proof", ErrHandshakeFailed)
	default:
		return uuid.Nil, fmt.Errorf("%w: expected HandshakeComplete, got %s", ErrUnexpectedMessage, final.Body.command())
	}
}

// InitiateHandshake runs the agent side of the mutual authentication.
func InitiateHandshake(ctx context.Context, stream FrameStream, serviceID uuid.UUID, token string) error {
	open := NewMessage(Authenticate{ServiceID: serviceID})
	id := open.ID
	if err := send(ctx, stream, open); err != nil {
		return err
	}

	reply, err := expectReply(ctx, stream, id)
	if err != nil {
		return err
	}
	challenge, ok := reply.Body.(Challenge)
	if !ok {
		switch reply.Body.(type) {
		case AgentNotFound:
			return fmt.Errorf("%w: %v", ErrHandshakeFailed, ErrAgentNotFound)
		case AuthenticationFailed:
			return fmt.Errorf("%w: server rejected authentication", ErrHandshakeFailed)
		}
		return fmt.Errorf("%w: expected Challenge, got %s", ErrHandshakeFailed, reply.Body.command())
	}

	serverNonce, err := NewNonce()
	if err != nil {
		return err
	}
	expected := ResolveChallenge(serverNonce, token)

	resp := ChallengeResponse{
		Response:    ResolveChallenge(challenge.AgentNonce, token),
		ServerNonce: serverNonce,
	}
	if err := send(ctx, stream, Respond(id, resp)); err != nil {
		return err
	}

	reply, err = expectReply(ctx, stream, id)
	if err != nil {
		return err
	}
	success, ok := reply.Body.(AuthenticationSuccess)
	if !ok {
		if _, failed := reply.Body.(AuthenticationFailed); failed {
			return fmt.Errorf("%w: server rejected challenge response", ErrHandshakeFailed)
		}
		return fmt.Errorf("%w: expected AuthenticationSuccess, got %s", ErrHandshakeFailed, reply.Body.command())
	}

	if !challengeMatches(expected, success.Response) {
		if err := send(ctx, stream, Respond(id, AuthenticationFailed{})); err != nil {
			return err
		}
		return fmt.Errorf("%w: server challenge response mismatch", ErrHandshakeFailed)
	}

	return send(ctx, stream, Respond(id, HandshakeComplete{}))
}
