// Package chat provides the interface the bot core uses to talk to a chat platform.
package chat

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotInVoice is returned by JoinVoice when the sender is not in a voice channel.
	ErrNotInVoice = errors.New("sender is not in a voice channel")
)

// Message represents a normalized chat message from the frontend
type Message struct {
	ID         string
	ChatID     string // Text channel the message was posted in.
	GuildID    string
	SenderID   string
	SenderName string
	Text       string
	Raw        any // underlying library message struct
}

// Frontend defines the chat platform operations the bot needs
type Frontend interface {
	// Start connects to the platform and resolves the guild and command channel.
	Start(ctx context.Context) error

	// Listen calls handler for every incoming message until ctx is done.
	Listen(ctx context.Context, handler func(*Message)) error

	// SendText sends a text message to the specified chat, optionally as a reply
	SendText(ctx context.Context, chatID, replyToID, text string) (string, error)

	// CommandChannel returns the ID of the channel commands are accepted from.
	CommandChannel() string

	// JoinVoice joins the voice channel the sender of msg is currently in.
	// It returns ErrNotInVoice when the sender is not in one.
	JoinVoice(ctx context.Context, msg *Message) (VoiceConnection, error)
}

// VoiceConnection is an open voice channel connection.
type VoiceConnection interface {
	// Play starts streaming an Ogg/Opus source and returns without waiting for it to end.
	// Any previous playback is stopped first.
	Play(source io.Reader) error

	// IsPlaying reports whether the current source is still being streamed.
	IsPlaying() bool

	// Stop ends the current playback. It is a no-op when nothing is playing.
	Stop()

	// Disconnect stops playback and leaves the voice channel.
	Disconnect(ctx context.Context) error
}
