package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/protocol"
	"github.com/palemoky/startups/internal/sound"
)

// Update 实现 tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg:
		m.status = "已连接，正在加入大厅..."
		_ = m.client.JoinLobby(m.prefs.PersistentID, m.prefs.Name)
		return m, m.listen()

	case ConnectionErrorMsg:
		m.phase = PhaseLogin
		m.errMsg = "连接失败: " + msg.Err.Error()
		return m, nil

	case ReconnectingMsg:
		m.status = "连接断开，正在重连 (" + strconv.Itoa(msg.Attempt) + "/" + strconv.Itoa(msg.MaxTries) + ")..."
		return m, m.listen()

	case ReconnectSuccessMsg:
		m.status = "重连成功，正在对齐状态..."
		// 重放加入与对齐握手
		_ = m.client.JoinLobby(m.prefs.PersistentID, m.prefs.Name)
		_ = m.client.RequestState()
		return m, m.listen()

	case ConnectionClosedMsg:
		m.phase = PhaseLogin
		m.errMsg = "连接已断开"
		return m, nil

	case ServerMessage:
		m.handleServer(msg.Msg)
		return m, m.listen()
	}

	if m.phase == PhaseLogin {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey 按阶段处理键盘输入
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.sound.Close()
		return m, tea.Quit
	}

	switch m.phase {
	case PhaseLogin:
		if key == "enter" {
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return m, nil
			}
			m.prefs.Name = name
			_ = config.SavePrefs(m.prefs)
			m.phase = PhaseConnecting
			m.status = "连接中..."
			m.errMsg = ""
			return m, m.connect()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case PhaseLobby:
		switch key {
		case "q":
			m.sound.Close()
			return m, tea.Quit
		case "g":
			m.startGame()
		}

	case PhaseGame:
		m.handleGameKey(key)

	case PhaseScoring:
		switch key {
		case "q":
			m.sound.Close()
			return m, tea.Quit
		case "g":
			m.startGame() // 房主再来一局
		}
	}
	return m, nil
}

// startGame 房主本地算出初始状态并提交
func (m *Model) startGame() {
	if !m.isHost() {
		m.errMsg = "只有房主才能开始游戏"
		return
	}
	state, err := engine.InitializeGame(m.roster)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if err := m.client.StartGame(state); err != nil {
		m.errMsg = "提交失败，请重试: " + err.Error()
		return
	}
	m.client.States.Reset(state)
	m.stats = nil
	m.errMsg = ""
	m.phase = PhaseGame
	m.sound.Play(sound.CueStart)
}

// handleGameKey 对局中的操作键
func (m *Model) handleGameKey(key string) {
	state := m.state()
	if state == nil {
		return
	}

	switch key {
	case "a":
		if err := m.client.GetAdvice(m.prefs.PersistentID); err == nil {
			m.advice = ""
			m.status = "顾问思考中..."
		}
		return
	case "y":
		_ = m.client.RequestState()
		return
	case "f":
		if m.isHost() {
			m.propose(engine.ForceFinish(state))
		}
		return
	case "r":
		if state.Phase == engine.PhaseReadyToScore {
			m.propose(engine.BeginScoring(state))
		}
		return
	}

	if !m.isMyTurn() {
		return
	}

	switch state.Phase {
	case engine.PhaseDraw:
		if key == "d" {
			m.propose(engine.ApplyDrawFromDeck(state))
			return
		}
		if idx, err := strconv.Atoi(key); err == nil && idx >= 1 {
			m.propose(engine.ApplyTakeFromMarket(state, idx-1))
		}

	case engine.PhasePlay:
		if idx, err := strconv.Atoi(key); err == nil && idx >= 1 {
			if seat := m.mySeat(); seat >= 0 && idx <= len(state.Players[seat].Hand) {
				m.selected = idx - 1
				m.errMsg = ""
			}
			return
		}
		if m.selected < 0 {
			return
		}
		seat := m.mySeat()
		if seat < 0 || m.selected >= len(state.Players[seat].Hand) {
			m.selected = -1
			return
		}
		cardID := state.Players[seat].Hand[m.selected].ID
		switch key {
		case "t":
			m.propose(engine.ApplyPlayCard(state, cardID, engine.DestTableau))
		case "m":
			m.propose(engine.ApplyPlayCard(state, cardID, engine.DestMarket))
		}
	}
}

// propose 把引擎算出的新状态提交给主机。
// 只有发送被接受后才替换本地缓存，链路不通时提示重试、本地不动。
func (m *Model) propose(next *engine.GameState, err error) {
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if err := m.client.PushState(next); err != nil {
		m.errMsg = "提交失败，请重试: " + err.Error()
		return
	}
	m.client.States.Apply(next)
	m.errMsg = ""
	m.selected = -1
	m.afterStateChange()
}

// handleServer 处理服务端消息
func (m *Model) handleServer(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeUpdateLobby:
		if payload, err := protocol.ParsePayload[protocol.UpdateLobbyPayload](msg); err == nil {
			m.roster = payload.Players
			if m.phase == PhaseConnecting {
				m.phase = PhaseLobby
				m.status = ""
			}
		}

	case protocol.TypeStartGame:
		m.stats = nil
		m.phase = PhaseGame
		m.status = ""
		m.sound.Play(sound.CueStart)

	case protocol.TypeUpdateGameState:
		m.afterStateChange()
		if m.phase == PhaseGame && m.isMyTurn() {
			m.sound.Play(sound.CueTurn)
		}

	case protocol.TypeAdviceResult:
		if payload, err := protocol.ParsePayload[protocol.AdviceResultPayload](msg); err == nil {
			m.advice = payload.Text
			m.status = ""
		}

	case protocol.TypeError:
		if payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.errMsg = payload.Message
		}
	}
}

// afterStateChange 根据缓存状态切换 UI 阶段
func (m *Model) afterStateChange() {
	state := m.state()
	if state == nil {
		return
	}
	if state.Phase == engine.PhaseScoring {
		if m.phase != PhaseScoring {
			m.stats = engine.FinalizeScores(state.Players)
			m.phase = PhaseScoring
			m.sound.Play(sound.CueScore)
		}
		return
	}
	m.phase = PhaseGame
}
