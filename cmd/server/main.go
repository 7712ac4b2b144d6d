package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/palemoky/startups/internal/advisor"
	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/network/server"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	var adv advisor.Provider
	if key := os.Getenv("ADVISOR_API_KEY"); key != "" {
		adv = advisor.NewOpenAIProvider(key, cfg.Advisor.BaseURL, cfg.Advisor.Model, cfg.Advisor.TimeoutDuration())
	} else {
		log.Println("未配置 ADVISOR_API_KEY，顾问将只返回兜底建议")
	}

	srv, err := server.NewServer(cfg, adv)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("收到退出信号，正在关闭...")
		srv.Shutdown()
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("服务器退出: %v", err)
	}
}
