// Package ui 参与者终端界面：登录 → 大厅 → 对局 → 结算。
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/startups/internal/protocol"
)

// Phase UI 阶段
type Phase int

const (
	PhaseLogin Phase = iota
	PhaseConnecting
	PhaseLobby
	PhaseGame
	PhaseScoring
)

// --- Tea Messages ---

// ServerMessage 包装一条服务端消息
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接失败
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg 正在重连
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg 重连成功
type ReconnectSuccessMsg struct{}

// ConnectionClosedMsg 链路彻底关闭
type ConnectionClosedMsg struct{}

// --- Styles ---

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	adviceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Italic(true)
)
