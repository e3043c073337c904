package core

import (
	"context"
	"io"
	"time"
)

// Song is a resolved, playable video URL. It is immutable once resolved.
// An empty Title or zero Duration means the value is unknown.
type Song struct {
	URL      string
	Title    string
	Duration time.Duration
}

// Label returns the title, or the URL when the title is unknown.
func (s Song) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

// SongExtractor looks up song metadata for a URL.
type SongExtractor interface {
	ExtractSong(ctx context.Context, url string) (Song, error)
}

// AudioSource opens the Ogg/Opus audio stream of a URL. Closing the stream must release
// every resource acquired by Open, including external processes.
type AudioSource interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Command status values reported to the Recorder.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusLimited = "limited"
)

// Resolution results reported to the Recorder.
const (
	ResolutionHit   = "hit"
	ResolutionMiss  = "miss"
	ResolutionError = "error"
)

// Playback outcomes reported to the Recorder.
const (
	OutcomeFinished = "finished"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
	OutcomeStopped  = "stopped"
)

// Recorder receives operational events, typically to export them as metrics.
type Recorder interface {
	CommandHandled(command, status string)
	Resolution(result string)
	SongPlayed(outcome string)
	PlaylistSize(size int)
	PlaybackActive(active bool)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) CommandHandled(string, string) {}
func (NopRecorder) Resolution(string)             {}
func (NopRecorder) SongPlayed(string)             {}
func (NopRecorder) PlaylistSize(int)              {}
func (NopRecorder) PlaybackActive(bool)           {}
