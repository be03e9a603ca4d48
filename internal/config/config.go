package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/mdw/internal/document"
)

type WatchConfig struct {
	DebounceMs    int `yaml:"debounce_ms"    json:"debounce_ms"`
	ResubscribeMs int `yaml:"resubscribe_ms" json:"resubscribe_ms"`
}

type PreviewConfig struct {
	Style          string `yaml:"style"           json:"style"`
	WordWrap       int    `yaml:"word_wrap"       json:"word_wrap"`
	HighlightStyle string `yaml:"highlight_style" json:"highlight_style"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type LogConfig struct {
	Level      string `yaml:"level"       json:"level"`
	File       string `yaml:"file"        json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

type Config struct {
	ViewMode        string        `yaml:"view_mode"         json:"view_mode"`
	SuggestedName   string        `yaml:"suggested_name"    json:"suggested_name"`
	StatusTimeoutMs int           `yaml:"status_timeout_ms" json:"status_timeout_ms"`
	Watch           WatchConfig   `yaml:"watch"             json:"watch"`
	Preview         PreviewConfig `yaml:"preview"           json:"preview"`
	Server          ServerConfig  `yaml:"server"            json:"server"`
	Log             LogConfig     `yaml:"log"               json:"log"`

	home string `yaml:"-"`
}

const (
	defaultSuggestedName   = "note.md"
	defaultStatusTimeoutMs = 2200
	defaultDebounceMs      = 250
	defaultResubscribeMs   = 500
	defaultPreviewStyle    = "dracula"
	defaultWordWrap        = 100
	defaultHighlightStyle  = "github"
	defaultServerAddr      = "127.0.0.1:7777"
	defaultLogLevel        = "info"
	defaultLogFile         = "mdw.log"
	defaultLogMaxSizeMB    = 5
	defaultLogMaxBackups   = 3
)

var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func ValidateLogLevel(level string) error {
	if _, valid := ValidLogLevels[level]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid log level: %q. Please choose from 'debug', 'info', 'warn', or 'error'",
		level,
	)
}

// Default returns a config with every setting at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.ensureDefaults()
	return cfg
}

func (cfg *Config) ensureDefaults() {
	cfg.ViewMode = document.ParseViewMode(cfg.ViewMode).String()
	if strings.TrimSpace(cfg.SuggestedName) == "" {
		cfg.SuggestedName = defaultSuggestedName
	}
	if cfg.StatusTimeoutMs <= 0 {
		cfg.StatusTimeoutMs = defaultStatusTimeoutMs
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = defaultDebounceMs
	}
	if cfg.Watch.ResubscribeMs <= 0 {
		cfg.Watch.ResubscribeMs = defaultResubscribeMs
	}
	if cfg.Preview.Style == "" {
		cfg.Preview.Style = defaultPreviewStyle
	}
	if cfg.Preview.WordWrap <= 0 {
		cfg.Preview.WordWrap = defaultWordWrap
	}
	if cfg.Preview.HighlightStyle == "" {
		cfg.Preview.HighlightStyle = defaultHighlightStyle
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogFile
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = defaultLogMaxSizeMB
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = defaultLogMaxBackups
	}
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.home = home
	cfg.ensureDefaults()

	if err := ValidateLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	syncViper(cfg)
	return cfg, nil
}

// syncViper mirrors the file into viper as defaults, so flags and MDW_*
// environment variables still take precedence.
func syncViper(cfg *Config) {
	viper.SetDefault("view_mode", cfg.ViewMode)
	viper.SetDefault("suggested_name", cfg.SuggestedName)
	viper.SetDefault("status_timeout_ms", cfg.StatusTimeoutMs)
	viper.SetDefault("watch.debounce_ms", cfg.Watch.DebounceMs)
	viper.SetDefault("watch.resubscribe_ms", cfg.Watch.ResubscribeMs)
	viper.SetDefault("preview.style", cfg.Preview.Style)
	viper.SetDefault("preview.word_wrap", cfg.Preview.WordWrap)
	viper.SetDefault("preview.highlight_style", cfg.Preview.HighlightStyle)
	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.file", cfg.Log.File)
	viper.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	viper.SetDefault("log.max_backups", cfg.Log.MaxBackups)
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

// LogPath resolves the log file next to the config file unless it is absolute.
func (cfg *Config) LogPath() string {
	if filepath.IsAbs(cfg.Log.File) {
		return cfg.Log.File
	}
	return filepath.Join(filepath.Dir(cfg.GetConfigPath()), cfg.Log.File)
}

// SetViewMode persists the preferred view mode.
func (cfg *Config) SetViewMode(mode document.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid view mode: %q. Please choose from 'edit' or 'render'", mode)
	}

	cfg.ViewMode = mode.String()
	return cfg.Save()
}

func (cfg *Config) Save() error {
	if err := ValidateLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	syncViper(cfg)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("unable to resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
