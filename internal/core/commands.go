package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"borgir/internal/chat"
	"borgir/pkg/text"
)

func playCommands(d *Dispatcher) []*command {
	return []*command{
		{name: "p", aliases: []string{"play"}, usage: "<url>", helpKey: "help.play", handler: d.handlePlay},
		{name: "n", aliases: []string{"next", "skip"}, helpKey: "help.next", handler: d.handleNext},
		{name: "l", aliases: []string{"list", "queue"}, helpKey: "help.list", handler: d.handleList},
		{name: "s", aliases: []string{"stop"}, helpKey: "help.stop", handler: d.handleStop},
		{name: "d", aliases: []string{"disconnect"}, helpKey: "help.disconnect", handler: d.handleDisconnect},
	}
}

func helpCommands(d *Dispatcher) []*command {
	return []*command{
		{name: "h", aliases: []string{"help"}, helpKey: "help.help", handler: d.handleHelp},
	}
}

// handlePlay resolves the URL argument and queues the song.
func (d *Dispatcher) handlePlay(ctx context.Context, msg *chat.Message, cmd text.Command) string {
	url := cmd.Arg
	if len(cmd.URLs) > 0 {
		url = cmd.URLs[0]
	}
	if url == "" {
		d.reply(ctx, msg, d.localizer.T("prompt.play_usage", d.parser.Prefix()+cmd.Name))
		return StatusError
	}

	song, err := d.resolver.Resolve(ctx, url)
	if err != nil {
		d.logger.Warn("Failed to resolve song",
			zap.String("url", url),
			zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.resolve"))
		return StatusError
	}

	if err := d.player.Enqueue(ctx, msg, song); err != nil {
		switch {
		case errors.Is(err, chat.ErrNotInVoice):
			d.reply(ctx, msg, d.localizer.T("error.not_in_voice"))
		case errors.Is(err, ErrPlaylistFull):
			d.reply(ctx, msg, d.localizer.T("error.playlist_full", d.config.Player.PlaylistCapacity))
		default:
			d.logger.Error("Failed to enqueue song", zap.String("url", song.URL), zap.Error(err))
			d.reply(ctx, msg, d.localizer.T("error.generic"))
		}
		return StatusError
	}

	d.logger.Info("Song queued",
		zap.String("url", song.URL),
		zap.String("title", song.Title),
		zap.String("requested_by", msg.SenderName))
	d.reply(ctx, msg, d.localizer.T("success.song_added", song.Label(), d.formatDuration(song)))
	return StatusOK
}

// handleNext skips the current song.
func (d *Dispatcher) handleNext(ctx context.Context, msg *chat.Message, _ text.Command) string {
	song, skipped, err := d.player.Skip(ctx)
	if err != nil {
		d.logger.Error("Failed to skip", zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.generic"))
		return StatusError
	}

	if !skipped {
		d.reply(ctx, msg, d.localizer.T("bot.nothing_to_skip"))
		return StatusOK
	}

	d.reply(ctx, msg, d.localizer.T("success.skipped", song.Label()))
	return StatusOK
}

// handleList shows the current song followed by the queue.
func (d *Dispatcher) handleList(ctx context.Context, msg *chat.Message, _ text.Command) string {
	snap, err := d.player.Snapshot(ctx)
	if err != nil {
		d.logger.Error("Failed to read player state", zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.generic"))
		return StatusError
	}

	d.reply(ctx, msg, d.formatQueue(snap))
	return StatusOK
}

// handleStop stops playback and clears the queue.
func (d *Dispatcher) handleStop(ctx context.Context, msg *chat.Message, _ text.Command) string {
	if err := d.player.Stop(ctx); err != nil {
		d.logger.Error("Failed to stop", zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.generic"))
		return StatusError
	}

	d.reply(ctx, msg, d.localizer.T("success.stopped"))
	return StatusOK
}

// handleDisconnect stops playback and leaves the voice channel.
func (d *Dispatcher) handleDisconnect(ctx context.Context, msg *chat.Message, _ text.Command) string {
	connected, err := d.player.Disconnect(ctx)
	if err != nil {
		d.logger.Error("Failed to disconnect", zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.generic"))
		return StatusError
	}

	if !connected {
		d.reply(ctx, msg, d.localizer.T("bot.not_connected"))
		return StatusOK
	}

	d.reply(ctx, msg, d.localizer.T("success.disconnected"))
	return StatusOK
}

// handleHelp lists the loaded commands.
func (d *Dispatcher) handleHelp(ctx context.Context, msg *chat.Message, _ text.Command) string {
	var b strings.Builder
	b.WriteString(d.localizer.T("bot.help_header"))
	for _, cmd := range d.ordered {
		b.WriteString("\n")
		b.WriteString(d.localizer.T("format.help_line", d.commandSyntax(cmd), d.localizer.T(cmd.helpKey)))
	}

	d.reply(ctx, msg, b.String())
	return StatusOK
}
