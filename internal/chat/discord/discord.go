// Package discord provides the Discord implementation of the chat frontend using discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"borgir/internal/chat"
)

const (
	// readyTimeout bounds how long Start waits for the gateway Ready event
	readyTimeout = 30 * time.Second
)

var (
	// ErrGuildNotFound is returned when the bot is not a member of the configured guild.
	ErrGuildNotFound = errors.New("guild not found")
	// ErrChannelNotFound is returned when the command channel does not exist in the guild.
	ErrChannelNotFound = errors.New("command channel not found")
)

// Config holds Discord-specific configuration
type Config struct {
	Token          string
	GuildName      string // Empty selects the first guild the bot is in.
	CommandChannel string // Name of the text channel commands are read from.
}

// Frontend implements chat.Frontend for Discord
type Frontend struct {
	config  *Config
	logger  *zap.Logger
	session *discordgo.Session

	guildID   string
	channelID string

	handlerMu sync.RWMutex
	handler   func(*chat.Message)
}

// NewFrontend creates a new Discord frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start opens the gateway session and resolves the guild and command channel.
// A missing guild or channel is fatal and closes the session.
func (f *Frontend) Start(ctx context.Context) error {
	f.logger.Info("Starting Discord frontend",
		zap.String("guild", f.config.GuildName),
		zap.String("command_channel", f.config.CommandChannel))

	session, err := discordgo.New("Bot " + f.config.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	readyCh := make(chan *discordgo.Ready, 1)
	session.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		readyCh <- r
	})
	session.AddHandler(f.onMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	f.session = session

	if err := f.resolveTargets(ctx, readyCh); err != nil {
		_ = session.Close()
		return err
	}

	f.logger.Info("Discord frontend started successfully",
		zap.String("guild_id", f.guildID),
		zap.String("channel_id", f.channelID))
	return nil
}

func (f *Frontend) resolveTargets(ctx context.Context, readyCh <-chan *discordgo.Ready) error {
	timer := time.NewTimer(readyTimeout)
	defer timer.Stop()

	var ready *discordgo.Ready
	select {
	case ready = <-readyCh:
	case <-timer.C:
		return errors.New("timed out waiting for discord ready event")
	case <-ctx.Done():
		return ctx.Err()
	}

	guilds := make([]*discordgo.Guild, 0, len(ready.Guilds))
	for _, g := range ready.Guilds {
		// Ready only carries guild IDs; fetch names.
		full, err := f.session.Guild(g.ID, discordgo.WithContext(ctx))
		if err != nil {
			f.logger.Warn("Failed to fetch guild", zap.String("guild_id", g.ID), zap.Error(err))
			continue
		}
		guilds = append(guilds, full)
	}

	guild, err := findGuild(guilds, f.config.GuildName)
	if err != nil {
		return err
	}

	channels, err := f.session.GuildChannels(guild.ID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list channels of guild %s: %w", guild.Name, err)
	}

	channel, err := findTextChannel(channels, f.config.CommandChannel)
	if err != nil {
		return fmt.Errorf("%w: %s in guild %s", err, f.config.CommandChannel, guild.Name)
	}

	f.guildID = guild.ID
	f.channelID = channel.ID
	return nil
}

// findGuild picks the guild with the given name, or the first one when name is empty.
func findGuild(guilds []*discordgo.Guild, name string) (*discordgo.Guild, error) {
	if len(guilds) == 0 {
		return nil, fmt.Errorf("%w: bot is not a member of any guild", ErrGuildNotFound)
	}
	if name == "" {
		return guilds[0], nil
	}
	for _, g := range guilds {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGuildNotFound, name)
}

// findTextChannel returns the text channel called name, accepting a leading '#'.
func findTextChannel(channels []*discordgo.Channel, name string) (*discordgo.Channel, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == name {
			return c, nil
		}
	}
	return nil, ErrChannelNotFound
}

// Listen delivers messages to handler until ctx is done, then closes the session.
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	f.handlerMu.Lock()
	f.handler = handler
	f.handlerMu.Unlock()

	<-ctx.Done()

	f.logger.Info("Closing Discord session")
	if err := f.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// SendText sends a text message to the specified channel, optionally as a reply
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	var (
		msg *discordgo.Message
		err error
	)

	if replyToID != "" {
		ref := &discordgo.MessageReference{
			MessageID: replyToID,
			ChannelID: chatID,
			GuildID:   f.guildID,
		}
		msg, err = f.session.ChannelMessageSendReply(chatID, text, ref, discordgo.WithContext(ctx))
	} else {
		msg, err = f.session.ChannelMessageSend(chatID, text, discordgo.WithContext(ctx))
	}
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return msg.ID, nil
}

// CommandChannel returns the ID of the configured command channel
func (f *Frontend) CommandChannel() string {
	return f.channelID
}

// JoinVoice joins the voice channel the sender of msg is in
func (f *Frontend) JoinVoice(_ context.Context, msg *chat.Message) (chat.VoiceConnection, error) {
	vs, err := f.session.State.VoiceState(f.guildID, msg.SenderID)
	if err != nil || vs.ChannelID == "" {
		return nil, chat.ErrNotInVoice
	}

	vc, err := f.session.ChannelVoiceJoin(f.guildID, vs.ChannelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	f.logger.Info("Joined voice channel",
		zap.String("channel_id", vs.ChannelID),
		zap.String("requested_by", msg.SenderName))

	return newVoiceConnection(vc, f.logger.Named("voice")), nil
}

func (f *Frontend) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	message, ok := toChatMessage(m, f.guildID)
	if !ok {
		return
	}

	f.handlerMu.RLock()
	handler := f.handler
	f.handlerMu.RUnlock()

	if handler != nil {
		handler(message)
	}
}

// toChatMessage converts a gateway message, dropping bot messages and other guilds.
func toChatMessage(m *discordgo.MessageCreate, guildID string) (*chat.Message, bool) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return nil, false
	}
	if guildID != "" && m.GuildID != guildID {
		return nil, false
	}

	return &chat.Message{
		ID:         m.ID,
		ChatID:     m.ChannelID,
		GuildID:    m.GuildID,
		SenderID:   m.Author.ID,
		SenderName: displayName(m),
		Text:       m.Content,
		Raw:        m.Message,
	}, true
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.Username
}

var _ chat.Frontend = (*Frontend)(nil)
