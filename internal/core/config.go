package core

import (
	"errors"
	"fmt"
	"time"

	"borgir/internal/i18n"
	"borgir/internal/store"
	"borgir/pkg/text"
)

const (
	// DefaultServerPort is the port of the health and metrics server
	DefaultServerPort = 8080
	// DefaultFloodLimitPerMinute is how many commands a user may send per minute
	DefaultFloodLimitPerMinute = 20
	// DefaultPollIntervalMs is how often the player checks whether a song finished
	DefaultPollIntervalMs = 1000
	// DefaultResolveTimeoutSecs bounds a single song metadata lookup
	DefaultResolveTimeoutSecs = 30
)

// ExtensionPlay provides the playback commands.
const ExtensionPlay = "play"

// ExtensionHelp provides the help command.
const ExtensionHelp = "help"

var (
	// ErrMissingToken is returned when no Discord token is configured.
	ErrMissingToken = errors.New("discord token is required")
	// ErrMissingCommandChannel is returned when no command channel is configured.
	ErrMissingCommandChannel = errors.New("command channel is required")
)

type Config struct {
	Discord DiscordConfig
	Media   MediaConfig
	Player  PlayerConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type DiscordConfig struct {
	Token          string
	GuildName      string
	CommandChannel string
	CommandPrefix  string
	Extensions     []string
}

type MediaConfig struct {
	YTDLPPath          string
	FFmpegPath         string
	InstallYTDLP       bool
	ResolveTimeoutSecs int
	SongCacheSize      int
}

type PlayerConfig struct {
	PlaylistCapacity int // 0 means unbounded
	PollIntervalMs   int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Language            string
	FloodLimitPerMinute int
}

func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			CommandPrefix: text.DefaultPrefix,
			Extensions:    []string{ExtensionPlay, ExtensionHelp},
		},
		Media: MediaConfig{
			ResolveTimeoutSecs: DefaultResolveTimeoutSecs,
			SongCacheSize:      store.DefaultCapacity,
		},
		Player: PlayerConfig{
			PollIntervalMs: DefaultPollIntervalMs,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Language:            i18n.DefaultLanguage,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
		},
	}
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	if c.Discord.CommandChannel == "" {
		return ErrMissingCommandChannel
	}
	if c.Discord.CommandPrefix == "" {
		return errors.New("command prefix must not be empty")
	}
	for _, name := range c.Discord.Extensions {
		if _, ok := extensions[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownExtension, name)
		}
	}
	if c.Player.PlaylistCapacity < 0 {
		return errors.New("playlist capacity must not be negative")
	}
	if c.Player.PollIntervalMs <= 0 {
		return errors.New("poll interval must be positive")
	}
	if !i18n.IsSupported(c.App.Language) {
		return fmt.Errorf("unsupported language %q (supported: %v)", c.App.Language, i18n.GetSupportedLanguages())
	}
	return nil
}

// PollInterval returns the player poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Player.PollIntervalMs) * time.Millisecond
}

// ResolveTimeout returns the metadata lookup timeout, zero meaning none.
func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.Media.ResolveTimeoutSecs) * time.Second
}
