package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL = "http://localhost:8080/v1"
	DefaultPushURL = "ws://localhost:8080/v1/ws"
	DefaultMode    = "chat"
	DefaultTimeout = 60 * time.Second
)

const DefaultCelebrationTemplate = `{{name}} just reached {{score}}/100{{#verdict}} ({{verdict}}){{/verdict}}. It is now eligible for certification. Run "proofa certify {{id}}" to lock it in.`

// Modes accepted by the interact endpoint
var Modes = []string{"chat", "art", "video", "music", "voice"}

type Config struct {
	BaseURL             string
	PushURL             string
	Token               string
	Mode                string
	LogFile             string // Optional JSON log destination; logging is off without it
	CelebrationTemplate string
	RequestTimeout      time.Duration
}

type tomlConfig struct {
	BaseURL             string `toml:"base_url"`
	PushURL             string `toml:"push_url"`
	Token               string `toml:"token"`
	Mode                string `toml:"mode"`
	LogFile             string `toml:"log_file"`
	CelebrationTemplate string `toml:"celebration_template"`
	RequestTimeout      int    `toml:"request_timeout_seconds"`
}

// Dir returns ~/.config/proofa, or "" when there is no home directory
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "proofa")
}

// Load reads config from ~/.config/proofa/
func Load() (*Config, error) {
	dir := Dir()
	if dir == "" {
		cfg := defaults()
		applyEnv(cfg)
		return cfg, nil // Use defaults
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom reads the TOML file at path. A missing or unreadable file falls
// back to defaults. Environment variables override both.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(path, &tc); err == nil {
			cfg.merge(tc)
		}
	}

	// A standalone template file wins over the inline key
	templatePath := filepath.Join(filepath.Dir(path), "celebration.txt")
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.CelebrationTemplate = string(data)
	}

	applyEnv(cfg)
	return cfg, nil
}

// ValidMode reports whether mode is one the backend accepts
func ValidMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func defaults() *Config {
	return &Config{
		BaseURL:             DefaultBaseURL,
		PushURL:             DefaultPushURL,
		Mode:                DefaultMode,
		CelebrationTemplate: DefaultCelebrationTemplate,
		RequestTimeout:      DefaultTimeout,
	}
}

func (c *Config) merge(tc tomlConfig) {
	if tc.BaseURL != "" {
		c.BaseURL = tc.BaseURL
	}
	if tc.PushURL != "" {
		c.PushURL = tc.PushURL
	}
	if tc.Token != "" {
		c.Token = tc.Token
	}
	if tc.Mode != "" && ValidMode(strings.ToLower(tc.Mode)) {
		c.Mode = strings.ToLower(tc.Mode)
	}
	if tc.LogFile != "" {
		c.LogFile = expandHome(tc.LogFile)
	}
	if tc.CelebrationTemplate != "" {
		c.CelebrationTemplate = tc.CelebrationTemplate
	}
	if tc.RequestTimeout > 0 {
		c.RequestTimeout = time.Duration(tc.RequestTimeout) * time.Second
	}
}

func applyEnv(c *Config) {
	c.BaseURL = getenv("PROOFA_BASE_URL", c.BaseURL)
	c.PushURL = getenv("PROOFA_PUSH_URL", c.PushURL)
	c.Token = getenv("PROOFA_TOKEN", c.Token)
	c.LogFile = getenv("PROOFA_LOG_FILE", c.LogFile)
	if secs := getenvInt("PROOFA_REQUEST_TIMEOUT_SECONDS", 0); secs > 0 {
		c.RequestTimeout = time.Duration(secs) * time.Second
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
