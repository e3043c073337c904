package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"borgir/internal/chat"
)

// reply posts text to the channel msg came from
func (d *Dispatcher) reply(ctx context.Context, msg *chat.Message, text string) {
	if _, err := d.frontend.SendText(ctx, msg.ChatID, "", text); err != nil {
		d.logger.Warn("Failed to send message",
			zap.String("chat_id", msg.ChatID),
			zap.Error(err))
	}
}

// formatDuration renders a song duration like 3m32s, or a localized "unknown".
func (d *Dispatcher) formatDuration(song Song) string {
	if song.Duration <= 0 {
		return d.localizer.T("format.duration_unknown")
	}
	return song.Duration.Round(time.Second).String()
}

// songLine renders a song with its duration when known.
func (d *Dispatcher) songLine(song Song) string {
	if song.Duration <= 0 {
		return song.Label()
	}
	return song.Label() + " (" + d.formatDuration(song) + ")"
}

// formatQueue renders the current song and the queue, or the empty queue message.
func (d *Dispatcher) formatQueue(snap Snapshot) string {
	if snap.Current == nil && len(snap.Queue) == 0 {
		return d.localizer.T("bot.queue_empty")
	}

	var lines []string
	if snap.Current != nil {
		lines = append(lines, d.localizer.T("bot.queue_current", d.songLine(*snap.Current)))
	}
	if len(snap.Queue) > 0 {
		lines = append(lines, d.localizer.T("bot.queue_next"))
		for i, song := range snap.Queue {
			lines = append(lines, d.localizer.T("format.queue_item", i+1, d.songLine(song)))
		}
	}
	return strings.Join(lines, "\n")
}

// commandSyntax renders "!p, !play <url>" for help output.
func (d *Dispatcher) commandSyntax(cmd *command) string {
	prefix := d.parser.Prefix()
	names := make([]string, 0, len(cmd.aliases)+1)
	for _, name := range append([]string{cmd.name}, cmd.aliases...) {
		names = append(names, prefix+name)
	}

	syntax := strings.Join(names, ", ")
	if cmd.usage != "" {
		syntax += " " + cmd.usage
	}
	return syntax
}
