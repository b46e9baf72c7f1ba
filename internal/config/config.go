// Package config 负责加载和管理 faust 的配置。
// 配置来源优先级（从高到低）：
// 1. 环境变量（GOOGLE_API_KEY, ANTHROPIC_API_KEY, FAUST_PROVIDER 等）
// 2. 工作目录下的 .env 文件
// 3. --config flag 指定的配置文件路径
// 4. ~/.config/faust/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/faust-ai/faust/internal/session"
)

// ErrMissingAPIKey is returned by Validate when the selected provider has
// no API key configured. The message tells the user exactly what to set.
var ErrMissingAPIKey = errors.New("missing API key")

// ProviderConfig 单个 provider 的配置
type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Config 是 faust 的完整配置结构
type Config struct {
	// Provider 当前使用的 provider 名称（"gemini" 或 "anthropic"）
	Provider string `yaml:"provider"`

	// Model 当前使用的模型（覆盖 provider 默认模型）
	Model string `yaml:"model"`

	// Providers 各 provider 的具体配置
	Providers map[string]*ProviderConfig `yaml:"providers"`

	// DefaultLevel 新用户/新会话的默认难度（"child" | "normal" | "academic"）
	DefaultLevel string `yaml:"default_level"`

	// DataDir 数据库目录（空则使用 ~/.local/share/faust）
	DataDir string `yaml:"data_dir"`

	// MaxTokens 单次回复的 token 上限（0 = provider 默认）
	MaxTokens int `yaml:"max_tokens"`

	// HistoryBudget 发送给模型的历史上限（字符数，0 = 不裁剪）
	HistoryBudget int `yaml:"history_budget"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Provider:      "gemini",
		DefaultLevel:  "normal",
		HistoryBudget: 48000,
		Providers:     make(map[string]*ProviderConfig),
	}
}

// Load 加载配置文件，合并 .env 和环境变量覆盖
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// .env 只补充尚未设置的环境变量，不覆盖
	_ = godotenv.Load()

	// 确定配置文件路径
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".config", "faust", "config.yaml")
		}
	}

	// 读取配置文件（不存在时使用默认配置）
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	// 环境变量覆盖
	applyEnvOverrides(cfg)

	// 初始化 providers map
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}

	return cfg, nil
}

// GetProviderConfig 获取指定 provider 的配置，不存在时返回空配置
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return &ProviderConfig{}
}

// DBPath returns the database file path, creating no directories.
func (c *Config) DBPath() (string, error) {
	if c.DataDir != "" {
		return filepath.Join(c.DataDir, "faust.db"), nil
	}
	return session.DefaultDBPath()
}

// Validate checks that the selected provider has an API key, returning an
// ErrMissingAPIKey that names the environment variable to set.
func (c *Config) Validate() error {
	pc := c.GetProviderConfig(c.Provider)
	if pc.APIKey != "" {
		return nil
	}
	switch c.Provider {
	case "gemini":
		return fmt.Errorf("%w: set GOOGLE_API_KEY (get one at https://aistudio.google.com/apikey)", ErrMissingAPIKey)
	case "anthropic":
		return fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingAPIKey)
	default:
		return fmt.Errorf("%w for provider %q", ErrMissingAPIKey, c.Provider)
	}
}

// applyEnvOverrides 将环境变量覆盖到配置中
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		if cfg.Providers["gemini"] == nil {
			cfg.Providers["gemini"] = &ProviderConfig{}
		}
		cfg.Providers["gemini"].APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		if cfg.Providers["anthropic"] == nil {
			cfg.Providers["anthropic"] = &ProviderConfig{}
		}
		cfg.Providers["anthropic"].APIKey = v
	}

	if v := os.Getenv("FAUST_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("FAUST_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FAUST_LEVEL"); v != "" {
		cfg.DefaultLevel = v
	}
	if v := os.Getenv("FAUST_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
}
