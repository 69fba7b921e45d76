// Package protocol implements the agent control-plane wire protocol: the JSON
// message codec, the mutual HMAC handshake and the steady-state session loops
// for both peers.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NamespaceCore is the only namespace currently spoken. The codec dispatches
// on the namespace tag so additional namespaces can be added without touching
// the envelope format.
const NamespaceCore = "core"

const (
	statusOK    = "ok"
	statusError = "error"
)

// Nonce is the 32-byte random challenge of one handshake direction. It
// serializes as a JSON array of numbers.
type Nonce [32]byte

// Message is a decoded protocol frame. The id correlates a response to its
// request: a freshly originated message carries a new id, every reply echoes
// the id it answers.
type Message struct {
	ID   uuid.UUID
	Body Body
}

// Body is one variant of the core tagged union.
type Body interface {
	command() string
	isError() bool
}

// Success variants.
type (
	// Authenticate opens the handshake and names the service the agent
	// claims to be.
	Authenticate struct {
		ServiceID uuid.UUID `json:"service_id"`
	}

	// Challenge carries the nonce the agent must prove possession of the
	// token against.
	Challenge struct {
		AgentNonce Nonce `json:"agent_nonce"`
	}

	// ChallengeResponse answers the server's challenge and issues the
	// counter-challenge.
	ChallengeResponse struct {
		Response    string `json:"response"`
		ServerNonce Nonce  `json:"server_nonce"`
	}

	// AuthenticationSuccess proves the server also holds the token.
	AuthenticationSuccess struct {
		Response string `json:"response"`
	}

	// HandshakeComplete is the agent's final acknowledgment.
	HandshakeComplete struct{}

	// Ping requests a liveness reply.
	Ping struct{}

	// Pong answers a ping, echoing its id.
	Pong struct{}
)

// Error variants.
type (
	// AgentNotFound: no service exists for the authenticated id.
	AgentNotFound struct{}

	// AuthenticationFailed: a challenge response did not match.
	AuthenticationFailed struct{}

	// UnexpectedOutOfBandMessage: a frame arrived with a foreign id while a
	// specific reply was awaited.
	UnexpectedOutOfBandMessage struct{}

	// InternalError: the peer hit a server-side failure.
	InternalError struct{}

	// InvalidMessage: the frame was understood but not allowed here.
	InvalidMessage struct{}

	// AlreadyConnected: another live connection holds this service id.
	AlreadyConnected struct{}
)

func (Authenticate) command() string          { return "Authenticate" }
func (Challenge) command() string             { return "Challenge" }
func (ChallengeResponse) command() string     { return "ChallengeResponse" }
func (AuthenticationSuccess) command() string { return "AuthenticationSuccess" }
func (HandshakeComplete) command() string     { return "HandshakeComplete" }
func (Ping) command() string                  { return "Ping" }
func (Pong) command() string                  { return "Pong" }

func (Authenticate) isError() bool          { return false }
func (Challenge) isError() bool             { return false }
func (ChallengeResponse) isError() bool     { return false }
func (AuthenticationSuccess) isError() bool { return false }
func (HandshakeComplete) isError() bool     { return false }
func (Ping) isError() bool                  { return false }
func (Pong) isError() bool                  { return false }

func (AgentNotFound) command() string              { return "AgentNotFound" }
func (AuthenticationFailed) command() string       { return "AuthenticationFailed" }
func (UnexpectedOutOfBandMessage) command() string { return "UnexpectedOutOfBandMessage" }
func (InternalError) command() string              { return "InternalError" }
func (InvalidMessage) command() string             { return "InvalidMessage" }
func (AlreadyConnected) command() string           { return "AlreadyConnected" }

func (AgentNotFound) isError() bool              { return true }
func (AuthenticationFailed) isError() bool       { return true }
func (UnexpectedOutOfBandMessage) isError() bool { return true }
func (InternalError) isError() bool              { return true }
func (InvalidMessage) isError() bool             { return true }
func (AlreadyConnected) isError() bool           { return true }

// NewMessage originates a message with a fresh time-ordered id.
func NewMessage(body Body) Message {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; a v4 id still
		// correlates fine.
		id = uuid.New()
	}
	return Message{ID: id, Body: body}
}

// Respond builds a reply echoing the id of the message it answers.
func Respond(id uuid.UUID, body Body) Message {
	return Message{ID: id, Body: body}
}

// envelope is the raw three-tag wire form.
type envelope struct {
	ID        uuid.UUID       `json:"id"`
	Namespace string          `json:"namespace"`
	Status    string          `json:"status"`
	Command   string          `json:"command"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes a message to its wire form.
func Encode(msg Message) (string, error) {
	env := envelope{
		ID:        msg.ID,
		Namespace: NamespaceCore,
		Command:   msg.Body.command(),
	}
	if msg.Body.isError() {
		env.Status = statusError
	} else {
		env.Status = statusOK
	}

	payload, err := json.Marshal(msg.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	// Unit variants carry no payload field.
	if string(payload) != "{}" {
		env.Payload = payload
	}

	frame, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return string(frame), nil
}

// Decode parses a wire frame. Malformed JSON, an unknown namespace, an
// unknown command or a payload that does not fit its variant are protocol
// violations.
func Decode(frame string) (Message, error) {
	var env envelope
	if err := json.Unmarshal([]byte(frame), &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Namespace != NamespaceCore {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownNamespace, env.Namespace)
	}

	var body Body
	switch env.Status {
	case statusOK:
		switch env.Command {
		case "Authenticate":
			body = &Authenticate{}
		case "Challenge":
			body = &Challenge{}
		case "ChallengeResponse":
			body = &ChallengeResponse{}
		case "AuthenticationSuccess":
			body = &AuthenticationSuccess{}
		case "HandshakeComplete":
			body = &HandshakeComplete{}
		case "Ping":
			body = &Ping{}
		case "Pong":
			body = &Pong{}
		default:
			return Message{}, fmt.Errorf("%w: ok/%q", ErrUnknownCommand, env.Command)
		}
	case statusError:
		switch env.Command {
		case "AgentNotFound":
			body = &AgentNotFound{}
		case "AuthenticationFailed":
			body = &AuthenticationFailed{}
		case "UnexpectedOutOfBandMessage":
			body = &UnexpectedOutOfBandMessage{}
		case "InternalError":
			body = &InternalError{}
		case "InvalidMessage":
			body = &InvalidMessage{}
		case "AlreadyConnected":
			body = &AlreadyConnected{}
		default:
			return Message{}, fmt.Errorf("%w: error/%q", ErrUnknownCommand, env.Command)
		}
	default:
		return Message{}, fmt.Errorf("%w: status %q", ErrMalformedFrame, env.Status)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, body); err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
	}

	return Message{ID: env.ID, Body: deref(body)}, nil
}

// deref returns the value form so callers can type-switch on non-pointer
// variants.
func deref(b Body) Body {
	switch v := b.(type) {
	case *Authenticate:
		return *v
	case *Challenge:
		return *v
	case *ChallengeResponse:
		return *v
	case *AuthenticationSuccess:
		return *v
	case *HandshakeComplete:
		return *v
	case *Ping:
		return *v
	case *Pong:
		return *v
	case *AgentNotFound:
		return *v
	case *AuthenticationFailed:
		return *v
	case *UnexpectedOutOfBandMessage:
		return *v
	case *InternalError:
		return *v
	case *InvalidMessage:
		return *v
	case *AlreadyConnected:
		return *v
	}
	return b
}
