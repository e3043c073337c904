package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pion/webrtc/v3/pkg/media/oggreader"
	"go.uber.org/zap"
)

// opusTagsMagic starts the Ogg/Opus comment header page, which carries no audio.
var opusTagsMagic = []byte("OpusTags")

// voiceConnection streams Ogg/Opus pages into a discordgo voice connection.
// The source must carry one Opus packet per Ogg page.
type voiceConnection struct {
	opus       chan<- []byte
	speaking   func(bool) error
	disconnect func() error
	logger     *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func newVoiceConnection(vc *discordgo.VoiceConnection, logger *zap.Logger) *voiceConnection {
	return &voiceConnection{
		opus:       vc.OpusSend,
		speaking:   vc.Speaking,
		disconnect: vc.Disconnect,
		logger:     logger,
	}
}

// Play starts streaming source in the background and returns at once. The Ogg header is
// read by the stream goroutine, so a source that has not produced data yet can still be
// stopped; an invalid source ends playback.
func (v *voiceConnection) Play(source io.Reader) error {
	v.Stop()
	v.waitIdle()

	stop := make(chan struct{})
	done := make(chan struct{})

	v.mu.Lock()
	v.stop = stop
	v.done = done
	v.mu.Unlock()

	go v.stream(source, stop, done)
	return nil
}

func (v *voiceConnection) stream(source io.Reader, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	reader, _, err := oggreader.NewWith(source)
	if err != nil {
		select {
		case <-stop:
		default:
			if !isEndOfStream(err) {
				v.logger.Warn("Invalid ogg/opus stream", zap.Error(err))
			}
		}
		return
	}

	select {
	case <-stop:
		return
	default:
	}

	if err := v.speaking(true); err != nil {
		v.logger.Debug("Failed to set speaking state", zap.Error(err))
	}
	defer func() {
		if err := v.speaking(false); err != nil {
			v.logger.Debug("Failed to clear speaking state", zap.Error(err))
		}
	}()

	for {
		payload, _, err := reader.ParseNextPage()
		if err != nil {
			if !isEndOfStream(err) {
				v.logger.Warn("Audio stream ended with error", zap.Error(err))
			}
			return
		}
		if len(payload) == 0 || bytes.HasPrefix(payload, opusTagsMagic) {
			continue
		}

		select {
		case v.opus <- payload:
		case <-stop:
			return
		}
	}
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, os.ErrClosed)
}

// IsPlaying reports whether a stream goroutine is still running and has not been stopped
func (v *voiceConnection) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.done == nil {
		return false
	}
	select {
	case <-v.done:
		return false
	case <-v.stop:
		return false
	default:
		return true
	}
}

// Stop signals the stream goroutine to end. A goroutine blocked reading the source
// exits once the source is closed.
func (v *voiceConnection) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stop == nil {
		return
	}
	select {
	case <-v.stop:
	default:
		close(v.stop)
	}
}

// waitIdle waits for the previous stream goroutine to exit
func (v *voiceConnection) waitIdle() {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Disconnect stops playback and leaves the voice channel
func (v *voiceConnection) Disconnect(_ context.Context) error {
	v.Stop()
	if err := v.disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from voice: %w", err)
	}
	return nil
}
