package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/protocol"
)

// newTestServer 起一个带 miniredis 的服务器，不监听端口。
// 大厅广播窗口拉到很大，避免异步广播干扰单播断言。
func newTestServer(t *testing.T) *Server {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	cfg.Game.JoinBatchDelayMs = 60_000

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.redis.Close() })
	return s
}

// newFakeClient 构造只带发送缓冲的客户端，不启动读写泵
func newFakeClient(s *Server, id string) *Client {
	c := &Client{
		ID:     id,
		server: s,
		send:   make(chan []byte, 16),
	}
	s.registerClient(c)
	return c
}

// recv 阻塞取出一条已编码消息
func recv(t *testing.T, c *Client) *protocol.Message {
	t.Helper()
	select {
	case data := <-c.send:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("等待消息超时")
		return nil
	}
}

// assertSilent 断言客户端没有收到任何消息
func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("收到了不该有的消息: %s", data)
	default:
	}
}

func stateWithVersion(version int) *engine.GameState {
	return &engine.GameState{Version: version, Phase: engine.PhaseDraw}
}

func TestApplyStateUpdateVersionGate(t *testing.T) {
	s := newTestServer(t)

	accepted, _ := s.applyStateUpdate(stateWithVersion(2))
	assert.True(t, accepted)

	accepted, prev := s.applyStateUpdate(stateWithVersion(2))
	assert.False(t, accepted)
	assert.Equal(t, engine.PhaseDraw, prev)

	accepted, _ = s.applyStateUpdate(stateWithVersion(1))
	assert.False(t, accepted)
	assert.Equal(t, 2, s.CurrentState().Version)

	accepted, _ = s.applyStateUpdate(stateWithVersion(3))
	assert.True(t, accepted)
	assert.Equal(t, 3, s.CurrentState().Version)
}

func TestSetStateBypassesGate(t *testing.T) {
	s := newTestServer(t)
	s.setState(stateWithVersion(9))

	// a new game restarts the version line
	s.setState(stateWithVersion(1))
	assert.Equal(t, 1, s.CurrentState().Version)
}

func TestBroadcastSkipsOriginator(t *testing.T) {
	s := newTestServer(t)
	origin := newFakeClient(s, "net-origin")
	other := newFakeClient(s, "net-other")

	msg, err := protocol.NewMessage(protocol.TypePong, nil)
	require.NoError(t, err)
	s.Broadcast(msg, origin.ID)

	got := recv(t, other)
	assert.Equal(t, protocol.TypePong, got.Type)
	assertSilent(t, origin)
}

func TestBroadcastPrunesClosedClients(t *testing.T) {
	s := newTestServer(t)
	alive := newFakeClient(s, "net-alive")
	dead := newFakeClient(s, "net-dead")
	dead.Close()

	msg, err := protocol.NewMessage(protocol.TypePong, nil)
	require.NoError(t, err)
	s.Broadcast(msg, "")

	recv(t, alive)
	assert.Nil(t, s.GetClientByID("net-dead"))
	assert.Equal(t, 1, s.GetOnlineCount())
}

func TestRebindClient(t *testing.T) {
	s := newTestServer(t)
	old := newFakeClient(s, "net-old")
	fresh := newFakeClient(s, "net-fresh")

	s.rebindClient(fresh, "net-old")

	assert.Equal(t, "net-old", fresh.ID)
	assert.Same(t, fresh, s.GetClientByID("net-old"))
	assert.Nil(t, s.GetClientByID("net-fresh"))
	assert.True(t, old.IsClosed())
}

func TestRestoreFromSnapshots(t *testing.T) {
	s := newTestServer(t)

	// seed a lobby and a game through the first server's store
	roster := []struct{ net, pid, name string }{
		{"net-0", "pid-0", "Alice"},
		{"net-1", "pid-1", "Bob"},
		{"net-2", "pid-2", "Carol"},
	}
	for _, r := range roster {
		_, err := s.roster.Upsert(r.net, r.pid, r.name)
		require.NoError(t, err)
	}
	ctxState := stateWithVersion(5)
	s.setState(ctxState)

	ctx := context.Background()
	require.NoError(t, s.store.SaveLobby(ctx, s.roster.Snapshot()))
	require.NoError(t, s.store.SaveGame(ctx, ctxState))

	// a second server on the same Redis picks both up
	cfg := config.Default()
	cfg.Redis.Addr = s.config.Redis.Addr
	cfg.Game.JoinBatchDelayMs = 60_000
	restarted, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.redis.Close() })

	assert.Equal(t, 3, restarted.roster.Size())
	assert.True(t, restarted.roster.IsHost("pid-0"))
	require.NotNil(t, restarted.CurrentState())
	assert.Equal(t, 5, restarted.CurrentState().Version)
}

func TestLobbyBroadcastBatching(t *testing.T) {
	s := newTestServer(t)
	s.config.Game.JoinBatchDelayMs = 20

	a := newFakeClient(s, "net-a")
	b := newFakeClient(s, "net-b")
	_, err := s.roster.Upsert("net-a", "pid-a", "Alice")
	require.NoError(t, err)
	_, err = s.roster.Upsert("net-b", "pid-b", "Bob")
	require.NoError(t, err)

	// two joins inside the window coalesce into one broadcast
	s.scheduleLobbyBroadcast()
	s.scheduleLobbyBroadcast()
	time.Sleep(100 * time.Millisecond)

	for _, c := range []*Client{a, b} {
		msg := recv(t, c)
		require.Equal(t, protocol.TypeUpdateLobby, msg.Type)
		payload, err := protocol.ParsePayload[protocol.UpdateLobbyPayload](msg)
		require.NoError(t, err)
		assert.Len(t, payload.Players, 2)
		assertSilent(t, c)
	}
}
