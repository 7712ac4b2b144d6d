package lobby

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/startups/internal/apperrors"
)

func TestUpsertFirstJoinerIsHost(t *testing.T) {
	m := NewManager()

	first, err := m.Upsert("net-a", "pid-a", "Alice")
	require.NoError(t, err)
	assert.True(t, first.IsHost)

	second, err := m.Upsert("net-b", "pid-b", "Bob")
	require.NoError(t, err)
	assert.False(t, second.IsHost)

	assert.True(t, m.IsHost("pid-a"))
	assert.False(t, m.IsHost("pid-b"))
}

func TestUpsertDedupByPersistentID(t *testing.T) {
	m := NewManager()
	_, err := m.Upsert("net-a", "pid-a", "Alice")
	require.NoError(t, err)
	_, err = m.Upsert("net-b", "pid-b", "Bob")
	require.NoError(t, err)

	// rejoining keeps the seat and host flag, refreshes name and link
	updated, err := m.Upsert("net-a2", "pid-a", "Alice2")
	require.NoError(t, err)
	assert.True(t, updated.IsHost)
	assert.Equal(t, "net-a2", updated.NetworkID)
	assert.Equal(t, "Alice2", updated.Name)

	roster := m.Snapshot()
	require.Len(t, roster, 2)
	assert.Equal(t, "pid-a", roster[0].PersistentID)
}

func TestUpsertLobbyFull(t *testing.T) {
	m := NewManager()
	for i := 0; i < MaxPlayers; i++ {
		_, err := m.Upsert(fmt.Sprintf("net-%d", i), fmt.Sprintf("pid-%d", i), fmt.Sprintf("P%d", i))
		require.NoError(t, err)
	}

	_, err := m.Upsert("net-x", "pid-x", "Late")
	assert.ErrorIs(t, err, apperrors.ErrLobbyFull)

	// a seated player can still rejoin a full lobby
	_, err = m.Upsert("net-0b", "pid-0", "P0")
	assert.NoError(t, err)
}

func TestUpdateNetworkID(t *testing.T) {
	m := NewManager()
	_, err := m.Upsert("net-a", "pid-a", "Alice")
	require.NoError(t, err)

	assert.True(t, m.UpdateNetworkID("pid-a", "net-a2"))
	assert.Equal(t, "net-a2", m.Snapshot()[0].NetworkID)

	assert.False(t, m.UpdateNetworkID("pid-missing", "net-z"))
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewManager()
	_, err := m.Upsert("net-a", "pid-a", "Alice")
	require.NoError(t, err)

	snap := m.Snapshot()
	snap[0].Name = "Mallory"

	assert.Equal(t, "Alice", m.Snapshot()[0].Name)
}

func TestCanStart(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.CanStart(), apperrors.ErrNotEnoughPlayer)

	for i := 0; i < MinPlayers; i++ {
		_, err := m.Upsert(fmt.Sprintf("net-%d", i), fmt.Sprintf("pid-%d", i), fmt.Sprintf("P%d", i))
		require.NoError(t, err)
	}
	assert.NoError(t, m.CanStart())
}
