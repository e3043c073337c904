// Package main provides the borgir CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"borgir/internal/chat/discord"
	"borgir/internal/core"
	"borgir/internal/flood"
	httpserver "borgir/internal/http"
	"borgir/internal/i18n"
	"borgir/internal/media"
	"borgir/internal/store"
	"borgir/pkg/text"
)

const (
	envPrefix         = "BORGIR"
	defaultServerHost = "0.0.0.0"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "borgir",
	Short: "borgir - Discord voice channel music bot",
	Long: `borgir joins your Discord voice channel and plays the audio of the videos you queue
from the command channel.`,
	RunE: runBorgir,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("discord-token", "", "Discord bot token")
	flags.String("guild-name", "", "Discord server name (default is the first server the bot is in)")
	flags.String("command-channel", "", "Text channel the bot takes commands from")
	flags.String("command-prefix", text.DefaultPrefix, "Command prefix")
	flags.StringSlice("extensions", defaults.Discord.Extensions, "Command sets to load (play, help)")
	flags.String("ytdlp-path", "", "yt-dlp executable (default is yt-dlp from PATH)")
	flags.String("ffmpeg-path", media.DefaultFFmpegPath, "ffmpeg executable")
	flags.Bool("install-ytdlp", false, "Download yt-dlp into the user cache directory when missing")
	flags.Int("resolve-timeout-secs", defaults.Media.ResolveTimeoutSecs, "Song metadata lookup timeout in seconds (0 disables)")
	flags.Int("song-cache-size", defaults.Media.SongCacheSize, "Number of resolved songs to keep in memory")
	flags.Int("playlist-capacity", defaults.Player.PlaylistCapacity, "Maximum queued songs (0 is unbounded)")
	flags.Int("poll-interval-ms", defaults.Player.PollIntervalMs, "How often the player checks whether a song finished")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))
	flags.Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum commands per user per minute (0 disables)")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureDiscord(cfg)
	configureMedia(cfg)
	configurePlayer(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureDiscord(cfg *core.Config) {
	cfg.Discord.Token = viper.GetString("discord-token")
	cfg.Discord.GuildName = viper.GetString("guild-name")
	cfg.Discord.CommandChannel = strings.TrimPrefix(viper.GetString("command-channel"), "#")
	cfg.Discord.CommandPrefix = viper.GetString("command-prefix")
	cfg.Discord.Extensions = splitList(viper.GetStringSlice("extensions"))
}

func configureMedia(cfg *core.Config) {
	cfg.Media.YTDLPPath = viper.GetString("ytdlp-path")
	cfg.Media.FFmpegPath = viper.GetString("ffmpeg-path")
	cfg.Media.InstallYTDLP = viper.GetBool("install-ytdlp")
	cfg.Media.ResolveTimeoutSecs = viper.GetInt("resolve-timeout-secs")
	cfg.Media.SongCacheSize = viper.GetInt("song-cache-size")
	if cfg.Media.SongCacheSize <= 0 {
		cfg.Media.SongCacheSize = store.DefaultCapacity
	}
}

func configurePlayer(cfg *core.Config) {
	cfg.Player.PlaylistCapacity = viper.GetInt("playlist-capacity")
	cfg.Player.PollIntervalMs = viper.GetInt("poll-interval-ms")
	if cfg.Player.PollIntervalMs <= 0 {
		cfg.Player.PollIntervalMs = core.DefaultPollIntervalMs
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
}

// splitList accepts both repeated flags and a comma separated environment value.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, strings.ToLower(item))
			}
		}
	}
	return out
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runBorgir(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting borgir",
		zap.String("guild", config.Discord.GuildName),
		zap.String("command_channel", config.Discord.CommandChannel),
		zap.Strings("extensions", config.Discord.Extensions),
		zap.String("language", config.App.Language))

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	services, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer services.gate.Stop()

	return runServices(ctx, services)
}

type services struct {
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
	gate       *flood.Gate
}

func initializeServices(ctx context.Context) (*services, error) {
	ytdlpPath := config.Media.YTDLPPath
	if config.Media.InstallYTDLP && ytdlpPath == "" {
		installed, err := media.InstallDownloader(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("Using installed yt-dlp", zap.String("path", installed))
		ytdlpPath = installed
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpserver.NewMetrics(registry)

	resolver := core.NewSongResolver(
		store.NewCache[core.Song](config.Media.SongCacheSize),
		[]core.SongExtractor{
			core.NewYTDLPExtractor(media.NewExtractor(ytdlpPath)),
			core.NewOEmbedExtractor(),
		},
		config.ResolveTimeout(),
		metrics,
		logger.Named("resolver"),
	)

	frontend := discord.NewFrontend(&discord.Config{
		Token:          config.Discord.Token,
		GuildName:      config.Discord.GuildName,
		CommandChannel: config.Discord.CommandChannel,
	}, logger.Named("discord"))

	player := core.NewPlayer(
		core.NewPlaylist(config.Player.PlaylistCapacity),
		frontend,
		core.NewDecoderSource(media.NewDecoder(ytdlpPath, config.Media.FFmpegPath, logger.Named("decoder"))),
		config.PollInterval(),
		i18n.NewLocalizer(config.App.Language),
		metrics,
		logger.Named("player"),
	)

	metrics.ObserveSongCache(resolver.CacheStats)

	gate := flood.New(config.App.FloodLimitPerMinute)
	metrics.ObserveFloodGate(gate.Stats)
	dispatcher, err := core.NewDispatcher(config, frontend, resolver, player, gate, metrics,
		logger.Named("dispatcher"))
	if err != nil {
		gate.Stop()
		return nil, err
	}

	httpServer := httpserver.NewServer(&config.Server, registry, dispatcher.Ready, logger.Named("http"))

	return &services{
		httpServer: httpServer,
		dispatcher: dispatcher,
		gate:       gate,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("borgir started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("borgir stopped with error", zap.Error(err))
		return err
	}

	logger.Info("borgir stopped gracefully")
	return nil
}
