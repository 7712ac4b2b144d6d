package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Game    GameConfig    `yaml:"game"`
	Advisor AdvisorConfig `yaml:"advisor"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置。密码优先取 REDIS_PASSWORD 环境变量。
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	JoinBatchDelayMs int `yaml:"join_batch_delay_ms"` // 合并广播大厅名单的延迟（毫秒）
	SessionTTL       int `yaml:"session_ttl"`         // 掉线会话保留时长（分钟）
}

// JoinBatchDelay 返回大厅广播合并窗口
func (c *GameConfig) JoinBatchDelay() time.Duration {
	return time.Duration(c.JoinBatchDelayMs) * time.Millisecond
}

// SessionTTLDuration 返回掉线会话保留时长
func (c *GameConfig) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}

// AdvisorConfig 顾问服务配置。API Key 只从 ADVISOR_API_KEY 环境变量读取。
type AdvisorConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout int    `yaml:"timeout"` // 请求超时（秒）
}

// TimeoutDuration 返回顾问请求超时时长
func (c *AdvisorConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1988
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if cfg.Game.JoinBatchDelayMs == 0 {
		cfg.Game.JoinBatchDelayMs = 200
	}
	if cfg.Game.SessionTTL == 0 {
		cfg.Game.SessionTTL = 10
	}
	if cfg.Advisor.BaseURL == "" {
		cfg.Advisor.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "gpt-4o-mini"
	}
	if cfg.Advisor.Timeout == 0 {
		cfg.Advisor.Timeout = 15
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 1988,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Game: GameConfig{
			JoinBatchDelayMs: 200,
			SessionTTL:       10,
		},
		Advisor: AdvisorConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 15,
		},
	}
}
