package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/logger"
	"github.com/palemoky/startups/internal/ui"
)

func main() {
	_ = godotenv.Load()

	serverAddr := flag.String("server", "", "服务器地址")
	name := flag.String("name", "", "昵称")
	flag.Parse()

	// TUI 占用终端，日志写文件
	if err := logger.Init(); err != nil {
		log.Printf("日志初始化失败: %v", err)
	}
	defer logger.Close()

	prefs, err := config.LoadPrefs()
	if err != nil {
		logger.LogError("读取本地偏好失败: %v", err)
	}
	if *serverAddr != "" {
		prefs.Server = *serverAddr
	}
	if *name != "" {
		prefs.Name = *name
	}
	_ = config.SavePrefs(prefs)

	serverURL := fmt.Sprintf("ws://%s/ws", prefs.Server)

	model := ui.NewModel(serverURL, prefs)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
