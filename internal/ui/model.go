package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/game/lobby"
	netclient "github.com/palemoky/startups/internal/network/client"
	"github.com/palemoky/startups/internal/protocol"
	"github.com/palemoky/startups/internal/sound"
)

// Model 客户端主模型。对局状态统一放在 client.States 里，
// UI 只读取缓存，所有修改都走「引擎计算 → 提交 → 落缓存」。
type Model struct {
	client *netclient.Client
	prefs  *config.Prefs
	sound  *sound.SoundManager
	events chan tea.Msg // 网络回调桥接到 tea 消息循环

	phase  Phase
	input  textinput.Model
	width  int
	height int

	roster   []lobby.Entry
	stats    *engine.FinalStats
	advice   string
	errMsg   string
	status   string
	selected int // 选中的手牌序号，-1 为未选中
}

// NewModel 创建客户端模型
func NewModel(serverURL string, prefs *config.Prefs) *Model {
	input := textinput.New()
	input.Placeholder = "输入昵称后回车"
	input.SetValue(prefs.Name)
	input.CharLimit = 16
	input.Focus()

	sm := sound.NewSoundManager()
	_ = sm.Init()

	m := &Model{
		client:   netclient.NewClient(serverURL),
		prefs:    prefs,
		sound:    sm,
		events:   make(chan tea.Msg, 64),
		phase:    PhaseLogin,
		input:    input,
		selected: -1,
	}

	// 回调走独立通道，链路重建后依然有效
	m.client.OnMessage = func(msg *protocol.Message) {
		m.events <- ServerMessage{Msg: msg}
	}
	m.client.OnReconnecting = func(attempt, max int) {
		m.events <- ReconnectingMsg{Attempt: attempt, MaxTries: max}
	}
	m.client.OnReconnect = func() {
		m.events <- ReconnectSuccessMsg{}
	}
	m.client.OnClose = func() {
		m.events <- ConnectionClosedMsg{}
	}

	return m
}

// Init 实现 tea.Model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// connect 建立连接
func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		m.client.StartHeartbeat()
		return ConnectedMsg{}
	}
}

// listen 等待下一条网络事件
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// state 当前缓存的对局状态
func (m *Model) state() *engine.GameState {
	return m.client.States.Get()
}

// mySeat 自己的座位号，-1 表示不在对局中
func (m *Model) mySeat() int {
	state := m.state()
	if state == nil {
		return -1
	}
	if p := state.PlayerByPersistentID(m.prefs.PersistentID); p != nil {
		return p.Seat
	}
	return -1
}

// isMyTurn 是否轮到自己
func (m *Model) isMyTurn() bool {
	state := m.state()
	if state == nil {
		return false
	}
	active := state.ActivePlayer()
	return active != nil && active.PersistentID == m.prefs.PersistentID
}

// isHost 自己是否是房主
func (m *Model) isHost() bool {
	for _, e := range m.roster {
		if e.PersistentID == m.prefs.PersistentID {
			return e.IsHost
		}
	}
	return false
}
