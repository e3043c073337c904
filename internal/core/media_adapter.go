package core

import (
	"context"
	"io"

	"borgir/internal/media"
)

// ytdlpExtractor adapts media.Extractor to SongExtractor.
type ytdlpExtractor struct {
	extractor *media.Extractor
}

// NewYTDLPExtractor creates a SongExtractor backed by yt-dlp.
func NewYTDLPExtractor(extractor *media.Extractor) SongExtractor {
	return &ytdlpExtractor{extractor: extractor}
}

// ExtractSong looks up title and duration with yt-dlp.
func (a *ytdlpExtractor) ExtractSong(ctx context.Context, url string) (Song, error) {
	md, err := a.extractor.Extract(ctx, url)
	if err != nil {
		return Song{}, err
	}
	return Song{URL: url, Title: md.Title, Duration: md.Duration}, nil
}

// decoderSource adapts media.Decoder to AudioSource.
type decoderSource struct {
	decoder *media.Decoder
}

// NewDecoderSource creates an AudioSource that pipes yt-dlp into ffmpeg.
func NewDecoderSource(decoder *media.Decoder) AudioSource {
	return &decoderSource{decoder: decoder}
}

// Open starts the decode pipe for url.
func (a *decoderSource) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	pipe, err := a.decoder.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return pipe, nil
}
