// Package media runs the external downloader and transcoder that turn a video URL into
// song metadata and an Ogg/Opus audio stream.
package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// metadataTemplate is the yt-dlp output template used for metadata lookups.
const metadataTemplate = "%(title)s\t%(duration)s"

// notAvailable is what yt-dlp prints for missing template fields.
const notAvailable = "NA"

var (
	// ErrNoMetadata is returned when yt-dlp printed nothing usable.
	ErrNoMetadata = errors.New("no metadata in yt-dlp output")
)

// Metadata is what the extractor learns about a URL.
// An empty Title or zero Duration means the field is unknown.
type Metadata struct {
	Title    string
	Duration time.Duration
}

// Extractor looks up video metadata with yt-dlp.
type Extractor struct {
	executable string
}

// NewExtractor creates an extractor. An empty executable uses yt-dlp from PATH.
func NewExtractor(executable string) *Extractor {
	return &Extractor{executable: executable}
}

// Extract returns the title and duration of the video at url without downloading it.
func (e *Extractor) Extract(ctx context.Context, url string) (Metadata, error) {
	cmd := ytdlp.New().
		Print(metadataTemplate).
		SkipDownload().
		NoPlaylist().
		NoWarnings().
		IgnoreConfig()
	if e.executable != "" {
		cmd.SetExecutable(e.executable)
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			return Metadata{}, fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(res.Stderr))
		}
		return Metadata{}, fmt.Errorf("yt-dlp failed: %w", err)
	}

	return parseMetadata(res.Stdout)
}

// parseMetadata reads the first "title<TAB>duration" line of yt-dlp output.
func parseMetadata(stdout string) (Metadata, error) {
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		title, rawDuration, ok := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if !ok {
			continue
		}

		md := Metadata{Duration: parseDuration(rawDuration)}
		if title = strings.TrimSpace(title); title != notAvailable {
			md.Title = title
		}
		return md, nil
	}

	return Metadata{}, ErrNoMetadata
}

// parseDuration converts yt-dlp's seconds field, which may be fractional or NA.
func parseDuration(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == notAvailable {
		return 0
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
