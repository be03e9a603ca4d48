package state

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/config"
	"github.com/Paintersrp/mdw/internal/constants"
	"github.com/Paintersrp/mdw/internal/document"
	"github.com/Paintersrp/mdw/internal/handler"
	"github.com/Paintersrp/mdw/internal/logging"
	"github.com/Paintersrp/mdw/internal/render"
	"github.com/Paintersrp/mdw/internal/watch"
)

type State struct {
	Config   *config.Config
	Home     string
	Logger   *slog.Logger
	Handler  *handler.FileHandler
	HTML     *render.HTML
	Terminal *render.Terminal

	logLevel *slog.LevelVar
	logSink  io.Closer
}

// Settings are the effective values after config file, MDW_* environment
// variables and flags have been layered by viper.
type Settings struct {
	ViewMode         document.ViewMode
	SuggestedName    string
	StatusTimeout    time.Duration
	Debounce         time.Duration
	ResubscribeDelay time.Duration
	PreviewStyle     string
	WordWrap         int
	HighlightStyle   string
	ServerAddr       string
}

func CurrentSettings() Settings {
	return Settings{
		ViewMode:         document.ParseViewMode(viper.GetString("view_mode")),
		SuggestedName:    viper.GetString("suggested_name"),
		StatusTimeout:    time.Duration(viper.GetInt("status_timeout_ms")) * time.Millisecond,
		Debounce:         time.Duration(viper.GetInt("watch.debounce_ms")) * time.Millisecond,
		ResubscribeDelay: time.Duration(viper.GetInt("watch.resubscribe_ms")) * time.Millisecond,
		PreviewStyle:     viper.GetString("preview.style"),
		WordWrap:         viper.GetInt("preview.word_wrap"),
		HighlightStyle:   viper.GetString("preview.highlight_style"),
		ServerAddr:       viper.GetString("server.addr"),
	}
}

func NewState(verbose bool) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	logger, sink, err := logging.New(logging.Options{
		Level:      viper.GetString("log.level"),
		Verbose:    verbose,
		File:       cfg.LogPath(),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		LevelVar:   level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	settings := CurrentSettings()
	logger.Debug("state initialized", "config", cfg.GetConfigPath(), "mode", settings.ViewMode)

	return &State{
		Config:   cfg,
		Home:     home,
		Logger:   logger,
		Handler:  handler.NewFileHandler(logger.With("component", "files")),
		HTML:     render.NewHTML(settings.HighlightStyle),
		Terminal: render.NewTerminal(settings.PreviewStyle, settings.WordWrap),
		logLevel: level,
		logSink:  sink,
	}, nil
}

// SetVerbose switches the log level to debug after flags are parsed.
func (s *State) SetVerbose(verbose bool) {
	if !verbose || s.logLevel == nil {
		return
	}
	s.logLevel.Set(slog.LevelDebug)
}

// NewWatchController builds the single document watch with the configured
// timings.
func (s *State) NewWatchController(onChange func(watch.ChangeEvent)) *watch.Controller {
	settings := CurrentSettings()
	logger := s.Logger.With("component", "watch")
	return watch.NewController(watch.NewFSNotify(logger), onChange, watch.Options{
		Debounce:         settings.Debounce,
		ResubscribeDelay: settings.ResubscribeDelay,
		Logger:           logger,
	})
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close flushes and releases the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.logSink != nil {
		if err := s.logSink.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logSink = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
