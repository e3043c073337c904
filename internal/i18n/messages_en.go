package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":       "Something went wrong. Please try again.",
	"error.resolve":       "I couldn't get anything playable out of that link.",
	"error.not_in_voice":  "Join a voice channel first, then ask again.",
	"error.playlist_full": "The queue is full (%d songs). Try again once something has played.",
	"error.play_failed":   "Couldn't play %s, moving on.",

	// Usage prompts
	"prompt.play_usage": "Usage: %s <url>",

	// Formatting helpers
	"format.duration_unknown": "unknown",
	"format.queue_item":       "%d. %s",
	"format.help_line":        "%s - %s",

	// Success messages
	"success.song_added":   "\"%s\" added to queue (duration: %s).",
	"success.stopped":      "Stopped playing and cleared the queue.",
	"success.disconnected": "Left the voice channel.",
	"success.skipped":      "Skipping %s.",

	// Bot status messages
	"bot.now_playing":     "Currently playing: %s.",
	"bot.nothing_to_skip": "Nothing to skip...",
	"bot.queue_empty":     "The queue is empty.",
	"bot.queue_current":   "Now playing: %s",
	"bot.queue_next":      "Up next:",
	"bot.not_connected":   "I'm not in a voice channel.",
	"bot.help_header":     "Available commands:",

	// Command descriptions
	"help.play":       "queue a video's audio",
	"help.next":       "skip the current song",
	"help.list":       "show the current song and the queue",
	"help.stop":       "stop playing and clear the queue",
	"help.disconnect": "stop and leave the voice channel",
	"help.help":       "show this message",
}
