package config

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Prefs 客户端本地偏好，保存在 ~/.startups/prefs.yaml。
// PersistentID 首次启动时生成，之后保持不变，是跨连接识别玩家的依据。
type Prefs struct {
	PersistentID string `yaml:"persistent_id"`
	Name         string `yaml:"name"`
	Server       string `yaml:"server"`
}

func prefsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, ".startups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "prefs.yaml"), nil
}

// LoadPrefs 读取本地偏好，文件不存在时返回新生成的默认值
func LoadPrefs() (*Prefs, error) {
	prefs := &Prefs{
		PersistentID: uuid.New().String(),
		Server:       "localhost:1988",
	}

	path, err := prefsPath()
	if err != nil {
		return prefs, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, err
	}

	if err := yaml.Unmarshal(data, prefs); err != nil {
		return prefs, err
	}
	if prefs.PersistentID == "" {
		prefs.PersistentID = uuid.New().String()
	}
	if prefs.Server == "" {
		prefs.Server = "localhost:1988"
	}
	return prefs, nil
}

// SavePrefs 写回本地偏好
func SavePrefs(prefs *Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
