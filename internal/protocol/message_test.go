package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/startups/internal/apperrors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeJoinLobby, JoinLobbyPayload{PersistentID: "pid-1", Name: "Alice"})
	require.NoError(t, err)

	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeJoinLobby, decoded.Type)

	payload, err := ParsePayload[JoinLobbyPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "pid-1", payload.PersistentID)
	assert.Equal(t, "Alice", payload.Name)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err, "missing type must be rejected")
}

func TestIsKnownType(t *testing.T) {
	assert.True(t, IsKnownType(TypePing))
	assert.True(t, IsKnownType(TypeUpdateGameState))
	assert.False(t, IsKnownType("teleport"))
	assert.False(t, IsKnownType(""))
}

func TestParsePayloadEmpty(t *testing.T) {
	msg, err := NewMessage(TypeRequestState, nil)
	require.NoError(t, err)

	payload, err := ParsePayload[JoinLobbyPayload](msg)
	require.NoError(t, err)
	assert.Empty(t, payload.PersistentID)
}

func TestParsePayloadBadShape(t *testing.T) {
	msg := &Message{Type: TypeJoinLobby, Payload: []byte(`[1,2,3]`)}
	_, err := ParsePayload[JoinLobbyPayload](msg)
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(apperrors.ErrNotHost)
	require.Equal(t, TypeError, msg.Type)

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrNotHost.Code, payload.Code)
	assert.Equal(t, apperrors.ErrNotHost.Message, payload.Message)
}

func TestNewErrorMessageWrapsUnknownErrors(t *testing.T) {
	msg := NewErrorMessage(errors.New("内部崩了"))
	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)

	// internal details must not leak to the client
	assert.Equal(t, apperrors.ErrInvalidMessage.Code, payload.Code)
	assert.NotContains(t, payload.Message, "内部崩了")
}
