package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"borgir/internal/chat"
	"borgir/internal/flood"
	"borgir/internal/i18n"
	"borgir/pkg/text"
)

var (
	// ErrUnknownExtension is returned for extension names no command set is registered under.
	ErrUnknownExtension = errors.New("unknown extension")
)

// Resolver turns a URL into a song.
type Resolver interface {
	Resolve(ctx context.Context, url string) (Song, error)
}

// command is a chat command and its aliases.
type command struct {
	name    string
	aliases []string
	usage   string // argument placeholder shown in help, empty when none
	helpKey string
	handler func(ctx context.Context, msg *chat.Message, cmd text.Command) string
}

// extensions maps extension names to the commands they add.
var extensions = map[string]func(d *Dispatcher) []*command{
	ExtensionPlay: playCommands,
	ExtensionHelp: helpCommands,
}

// Dispatcher routes chat commands from the command channel to their handlers.
type Dispatcher struct {
	config    *Config
	frontend  chat.Frontend
	resolver  Resolver
	player    *Player
	parser    *text.Parser
	gate      *flood.Gate
	localizer *i18n.Localizer
	recorder  Recorder
	logger    *zap.Logger

	commands map[string]*command // keyed by name and every alias
	ordered  []*command
	ready    atomic.Bool
}

// NewDispatcher creates a dispatcher with the commands of the configured extensions.
func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	resolver Resolver,
	player *Player,
	gate *flood.Gate,
	recorder Recorder,
	logger *zap.Logger,
) (*Dispatcher, error) {
	d := &Dispatcher{
		config:    config,
		frontend:  frontend,
		resolver:  resolver,
		player:    player,
		parser:    text.NewParser(config.Discord.CommandPrefix),
		gate:      gate,
		localizer: i18n.NewLocalizer(config.App.Language),
		recorder:  recorder,
		logger:    logger,
		commands:  make(map[string]*command),
	}

	for _, name := range config.Discord.Extensions {
		register, ok := extensions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, name)
		}
		for _, cmd := range register(d) {
			if err := d.register(cmd); err != nil {
				return nil, fmt.Errorf("extension %s: %w", name, err)
			}
		}
		logger.Debug("Loaded extension", zap.String("extension", name))
	}

	return d, nil
}

func (d *Dispatcher) register(cmd *command) error {
	for _, key := range append([]string{cmd.name}, cmd.aliases...) {
		if _, exists := d.commands[key]; exists {
			return fmt.Errorf("command %q registered twice", key)
		}
		d.commands[key] = cmd
	}
	d.ordered = append(d.ordered, cmd)
	return nil
}

// Start starts the chat frontend and serves commands and playback until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting command dispatcher",
		zap.String("prefix", d.parser.Prefix()),
		zap.Strings("extensions", d.config.Discord.Extensions))

	if err := d.frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat frontend: %w", err)
	}
	d.ready.Store(true)
	defer d.ready.Store(false)

	// The session stays open until the player has left voice.
	listenCtx, stopListening := context.WithCancel(context.Background())
	defer stopListening()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopListening()
		return d.player.Run(gctx)
	})
	g.Go(func() error {
		return d.frontend.Listen(listenCtx, d.handleMessage)
	})
	return g.Wait()
}

// Ready reports whether the chat frontend is connected and commands are being served.
func (d *Dispatcher) Ready() bool {
	return d.ready.Load()
}

// handleMessage processes incoming chat messages.
func (d *Dispatcher) handleMessage(msg *chat.Message) {
	// Commands are only accepted from the command channel; anything else is ignored silently.
	if msg.ChatID != d.frontend.CommandChannel() {
		return
	}

	parsed, ok := d.parser.ParseCommand(msg.Text)
	if !ok {
		return
	}

	cmd, ok := d.commands[parsed.Name]
	if !ok {
		d.logger.Debug("Unknown command",
			zap.String("command", parsed.Name),
			zap.String("sender", msg.SenderName))
		return
	}

	if !d.gate.Allow(msg.SenderID) {
		d.logger.Debug("Command rate limited",
			zap.String("command", cmd.name),
			zap.String("sender", msg.SenderName))
		d.recorder.CommandHandled(cmd.name, StatusLimited)
		return
	}

	d.logger.Debug("Handling command",
		zap.String("command", cmd.name),
		zap.String("arg", parsed.Arg),
		zap.String("sender", msg.SenderName))

	status := cmd.handler(context.Background(), msg, parsed)
	d.recorder.CommandHandled(cmd.name, status)
}
