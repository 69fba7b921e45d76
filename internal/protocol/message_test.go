package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_AuthenticateWireForm(t *testing.T) {
	id := uuid.MustParse("0190a6c2-3b6e-7c1d-9a4f-0242ac120002")
	serviceID := uuid.MustParse("7f9c24e8-3b12-4b8f-a1b2-111111111111")

	frame, err := Encode(Message{ID: id, Body: Authenticate{ServiceID: serviceID}})
	require.NoError(t, err)

	want := `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"ok","command":"Authenticate","payload":{"service_id":"7f9c24e8-3b12-4b8f-a1b2-111111111111"}}`
	assert.Equal(t, want, frame)
}

func TestEncode_UnitVariantOmitsPayload(t *testing.T) {
	id := uuid.MustParse("0190a6c2-3b6e-7c1d-9a4f-0242ac120002")

	frame, err := Encode(Message{ID: id, Body: Ping{}})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"ok","command":"Ping"}`, frame)

	frame, err = Encode(Message{ID: id, Body: InvalidMessage{}})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"error","command":"InvalidMessage"}`, frame)
}

func TestEncode_NonceAsNumberArray(t *testing.T) {
	var nonce Nonce
	for i := range nonce {
		nonce[i] = byte(i)
	}

	frame, err := Encode(Message{ID: uuid.New(), Body: Challenge{AgentNonce: nonce}})
	require.NoError(t, err)

	var env struct {
		Payload struct {
			AgentNonce []int `json:"agent_nonce"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(frame), &env))
	require.Len(t, env.Payload.AgentNonce, 32)
	assert.Equal(t, 0, env.Payload.AgentNonce[0])
	assert.Equal(t, 31, env.Payload.AgentNonce[31])
}

func TestDecode_RoundTrip(t *testing.T) {
	var agentNonce, serverNonce Nonce
	agentNonce[0] = 0xAA
	serverNonce[31] = 0xBB

	bodies := []Body{
		Authenticate{ServiceID: uuid.New()},
		Challenge{AgentNonce: agentNonce},
		ChallengeResponse{Response: "abc123", ServerNonce: serverNonce},
		AuthenticationSuccess{Response: "def456"},
		HandshakeComplete{},
		Ping{},
		Pong{},
		AgentNotFound{},
		AuthenticationFailed{},
		UnexpectedOutOfBandMessage{},
		InternalError{},
		InvalidMessage{},
		AlreadyConnected{},
	}

	for _, body := range bodies {
		t.Run(body.command(), func(t *testing.T) {
			msg := NewMessage(body)
			frame, err := Encode(msg)
			require.NoError(t, err)

			got, err := Decode(frame)
			require.NoError(t, err)
			assert.Equal(t, msg.ID, got.ID)
			assert.Equal(t, body, got.Body)
		})
	}
}

func TestDecode_Violations(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  error
	}{
		{
			name:  "malformed json",
			frame: `{"id":`,
			want:  ErrMalformedFrame,
		},
		{
			name:  "unknown namespace",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"metrics","status":"ok","command":"Ping"}`,
			want:  ErrUnknownNamespace,
		},
		{
			name:  "unknown ok command",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"ok","command":"Reboot"}`,
			want:  ErrUnknownCommand,
		},
		{
			name:  "unknown error command",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"error","command":"Panic"}`,
			want:  ErrUnknownCommand,
		},
		{
			name:  "status mismatch",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"error","command":"Ping"}`,
			want:  ErrUnknownCommand,
		},
		{
			name:  "unknown status",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"maybe","command":"Ping"}`,
			want:  ErrMalformedFrame,
		},
		{
			name:  "payload does not fit variant",
			frame: `{"id":"0190a6c2-3b6e-7c1d-9a4f-0242ac120002","namespace":"core","status":"ok","command":"Authenticate","payload":{"service_id":42}}`,
			want:  ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.frame)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestNewMessage_FreshIDs(t *testing.T) {
	a := NewMessage(Ping{})
	b := NewMessage(Ping{})
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
