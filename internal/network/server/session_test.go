package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionIssuesToken(t *testing.T) {
	sm := NewSessionManager(time.Minute)

	session := sm.CreateSession("net-1")
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ReconnectToken)
	assert.True(t, session.IsOnline)

	assert.Same(t, session, sm.GetSession("net-1"))
	assert.Same(t, session, sm.GetSessionByToken(session.ReconnectToken))
}

func TestTokensAreUnique(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	a := sm.CreateSession("net-a")
	b := sm.CreateSession("net-b")
	assert.NotEqual(t, a.ReconnectToken, b.ReconnectToken)
}

func TestBindPersistentID(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	session := sm.CreateSession("net-1")

	sm.BindPersistentID("net-1", "pid-1")
	assert.Equal(t, "pid-1", session.PersistentID)

	// unknown network id is a no-op
	sm.BindPersistentID("net-missing", "pid-x")
}

func TestCanReconnectWithinWindow(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	session := sm.CreateSession("net-1")

	assert.True(t, sm.CanReconnect(session.ReconnectToken))

	sm.SetOffline("net-1")
	assert.True(t, sm.CanReconnect(session.ReconnectToken))

	// past the reconnect window the token dies
	session.mu.Lock()
	session.DisconnectedAt = time.Now().Add(-3 * time.Minute)
	session.mu.Unlock()
	assert.False(t, sm.CanReconnect(session.ReconnectToken))

	assert.False(t, sm.CanReconnect("bogus"))
}

func TestSetOnlineClearsDisconnect(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	session := sm.CreateSession("net-1")

	sm.SetOffline("net-1")
	assert.False(t, session.IsOnline)

	sm.SetOnline("net-1")
	assert.True(t, session.IsOnline)
	assert.True(t, session.DisconnectedAt.IsZero())
}

func TestDeleteSessionInvalidatesToken(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	session := sm.CreateSession("net-1")

	sm.DeleteSession("net-1")
	assert.Nil(t, sm.GetSession("net-1"))
	assert.Nil(t, sm.GetSessionByToken(session.ReconnectToken))
}

func TestCleanupRemovesExpiredSessions(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	stale := sm.CreateSession("net-stale")
	fresh := sm.CreateSession("net-fresh")

	sm.SetOffline("net-stale")
	stale.mu.Lock()
	stale.DisconnectedAt = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	sm.cleanup()

	assert.Nil(t, sm.GetSession("net-stale"))
	assert.Same(t, fresh, sm.GetSession("net-fresh"))
}
