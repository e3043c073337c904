package media

import (
	"context"
	"os/exec"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// DefaultFFmpegPath is the transcoder looked up in PATH when none is configured.
const DefaultFFmpegPath = "ffmpeg"

// ffmpegArgs transcode whatever yt-dlp writes to stdin into Ogg/Opus at 48kHz stereo,
// one 20ms Opus frame per Ogg page.
var ffmpegArgs = []string{
	"-hide_banner",
	"-loglevel", "error",
	"-i", "pipe:0",
	"-vn",
	"-c:a", "libopus",
	"-b:a", "128k",
	"-ar", "48000",
	"-ac", "2",
	"-frame_duration", "20",
	"-page_duration", "20000",
	"-f", "ogg",
	"pipe:1",
}

// Decoder opens audio streams by piping yt-dlp into ffmpeg.
type Decoder struct {
	ytdlpPath  string
	ffmpegPath string
	grace      time.Duration
	logger     *zap.Logger
}

// NewDecoder creates a decoder. Empty paths use the binaries from PATH.
func NewDecoder(ytdlpPath, ffmpegPath string, logger *zap.Logger) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpegPath
	}
	return &Decoder{
		ytdlpPath:  ytdlpPath,
		ffmpegPath: ffmpegPath,
		grace:      DefaultGracePeriod,
		logger:     logger,
	}
}

// Open starts the download and transcode processes for url and returns their Ogg/Opus
// output. The caller must Close the returned Pipe.
func (d *Decoder) Open(ctx context.Context, url string) (*Pipe, error) {
	downloader := d.downloadCommand(ctx, url)
	transcoder := exec.CommandContext(ctx, d.ffmpegPath, ffmpegArgs...)

	pipe, err := StartPipe(d.grace, downloader, transcoder)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Decode pipe started",
		zap.String("url", url),
		zap.Ints("pids", pipe.PIDs()))

	return pipe, nil
}

func (d *Decoder) downloadCommand(ctx context.Context, url string) *exec.Cmd {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		Output("-").
		NoPlaylist().
		NoPart().
		Quiet().
		NoWarnings().
		IgnoreConfig()
	if d.ytdlpPath != "" {
		cmd.SetExecutable(d.ytdlpPath)
	}
	return cmd.BuildCommand(ctx, url)
}
