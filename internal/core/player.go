package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"borgir/internal/chat"
	"borgir/internal/i18n"
)

// disconnectTimeout bounds leaving the voice channel on shutdown
const disconnectTimeout = 5 * time.Second

var (
	// ErrPlayerStopped is returned by calls made after Run has returned.
	ErrPlayerStopped = errors.New("player is not running")
)

// PlayerState describes what the player is doing.
type PlayerState int

const (
	// PlayerIdle means no streaming task exists.
	PlayerIdle PlayerState = iota
	// PlayerWaiting means the streaming task is waiting for the next song.
	PlayerWaiting
	// PlayerStreaming means a song is playing.
	PlayerStreaming
)

func (s PlayerState) String() string {
	switch s {
	case PlayerIdle:
		return "idle"
	case PlayerWaiting:
		return "waiting"
	case PlayerStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the player.
type Snapshot struct {
	State     PlayerState
	Current   *Song
	Queue     []Song
	Connected bool
}

// playerState is owned by the Run goroutine.
type playerState struct {
	current *Song
	voice   chat.VoiceConnection
	task    *streamTask
}

// streamTask is the background consumer of the playlist.
type streamTask struct {
	ctx    context.Context
	cancel context.CancelFunc
	skip   chan struct{} // holds at most one pending skip, drained at the start of every song
	done   chan struct{}
}

type eventKind int

const (
	eventStarted eventKind = iota
	eventFinished
)

type taskEvent struct {
	kind eventKind
	task *streamTask
	song Song
}

// Player owns the voice connection, the current song and the streaming task.
// All state changes happen on the goroutine running Run; the exported methods send it a
// request and wait for the reply.
type Player struct {
	playlist     *Playlist
	frontend     chat.Frontend
	source       AudioSource
	recorder     Recorder
	localizer    *i18n.Localizer
	logger       *zap.Logger
	pollInterval time.Duration

	requests chan func(*playerState)
	events   chan taskEvent
	stopped  chan struct{}
}

// NewPlayer creates a player. Run must be called for it to serve requests.
func NewPlayer(
	playlist *Playlist,
	frontend chat.Frontend,
	source AudioSource,
	pollInterval time.Duration,
	localizer *i18n.Localizer,
	recorder Recorder,
	logger *zap.Logger,
) *Player {
	return &Player{
		playlist:     playlist,
		frontend:     frontend,
		source:       source,
		recorder:     recorder,
		localizer:    localizer,
		logger:       logger,
		pollInterval: pollInterval,
		requests:     make(chan func(*playerState)),
		events:       make(chan taskEvent),
		stopped:      make(chan struct{}),
	}
}

// Run serves requests until ctx is done, then stops playback and leaves the voice channel.
// It must be called exactly once.
func (p *Player) Run(ctx context.Context) error {
	defer close(p.stopped)

	st := &playerState{}
	p.logger.Info("Player started",
		zap.Int("playlist_capacity", p.playlist.Capacity()),
		zap.Duration("poll_interval", p.pollInterval))

	for {
		select {
		case <-ctx.Done():
			p.shutdown(st)
			p.logger.Info("Player stopped")
			return nil
		case req := <-p.requests:
			req(st)
		case ev := <-p.events:
			p.handleEvent(st, ev)
		}
	}
}

func (p *Player) shutdown(st *playerState) {
	p.stopAll(st)
	if st.voice == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := st.voice.Disconnect(ctx); err != nil {
		p.logger.Warn("Failed to leave voice channel", zap.Error(err))
	}
	st.voice = nil
}

// call runs fn on the Run goroutine and waits for it to finish.
func (p *Player) call(ctx context.Context, fn func(*playerState)) error {
	done := make(chan struct{})
	req := func(st *playerState) {
		defer close(done)
		fn(st)
	}

	select {
	case p.requests <- req:
	case <-p.stopped:
		return ErrPlayerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-done
	return nil
}

// Enqueue queues song, first joining the voice channel of the message sender when the
// player is not connected, and starts the streaming task if it is not running.
// Nothing is queued when joining fails or the playlist is full.
func (p *Player) Enqueue(ctx context.Context, msg *chat.Message, song Song) error {
	var err error
	callErr := p.call(ctx, func(st *playerState) {
		if p.playlist.Full() {
			err = ErrPlaylistFull
			return
		}

		if st.voice == nil {
			voice, joinErr := p.frontend.JoinVoice(ctx, msg)
			if joinErr != nil {
				err = joinErr
				return
			}
			st.voice = voice
		}

		if err = p.playlist.Enqueue(song); err != nil {
			return
		}
		p.recorder.PlaylistSize(p.playlist.Len())

		if st.task == nil {
			st.task = p.startTask(st.voice)
		}
	})
	if callErr != nil {
		return callErr
	}
	return err
}

// Skip asks the streaming task to move on to the next song. It reports false when
// nothing is playing, in which case no skip is recorded.
func (p *Player) Skip(ctx context.Context) (Song, bool, error) {
	var (
		song    Song
		skipped bool
	)
	err := p.call(ctx, func(st *playerState) {
		if st.current == nil || st.task == nil {
			return
		}
		select {
		case st.task.skip <- struct{}{}:
		default:
		}
		song = *st.current
		skipped = true
	})
	return song, skipped, err
}

// Stop ends playback, waits for the streaming task to exit and clears the playlist.
// The decode pipe of the current song is closed before Stop returns.
func (p *Player) Stop(ctx context.Context) error {
	return p.call(ctx, p.stopAll)
}

// Disconnect stops playback and leaves the voice channel. It reports false when the
// player was not connected.
func (p *Player) Disconnect(ctx context.Context) (bool, error) {
	var (
		connected bool
		err       error
	)
	callErr := p.call(ctx, func(st *playerState) {
		p.stopAll(st)
		if st.voice == nil {
			return
		}
		connected = true
		err = st.voice.Disconnect(ctx)
		st.voice = nil
	})
	if callErr != nil {
		return false, callErr
	}
	return connected, err
}

// Snapshot returns the current song, the queued songs and the player state.
func (p *Player) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := p.call(ctx, func(st *playerState) {
		snap.Queue = p.playlist.PeekAll()
		snap.Connected = st.voice != nil
		switch {
		case st.task == nil:
			snap.State = PlayerIdle
		case st.current == nil:
			snap.State = PlayerWaiting
		default:
			snap.State = PlayerStreaming
			current := *st.current
			snap.Current = &current
		}
	})
	return snap, err
}

func (p *Player) stopAll(st *playerState) {
	if st.task != nil {
		st.task.cancel()
		<-st.task.done
		st.task = nil
	}

	p.playlist.Clear()
	st.current = nil
	p.recorder.PlaylistSize(0)
	p.recorder.PlaybackActive(false)
}

func (p *Player) handleEvent(st *playerState, ev taskEvent) {
	if ev.task != st.task {
		return
	}

	switch ev.kind {
	case eventStarted:
		song := ev.song
		st.current = &song
		p.recorder.PlaybackActive(true)
		p.recorder.PlaylistSize(p.playlist.Len())
	case eventFinished:
		st.current = nil
		p.recorder.PlaybackActive(false)
	}
}

func (p *Player) startTask(voice chat.VoiceConnection) *streamTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &streamTask{
		ctx:    ctx,
		cancel: cancel,
		skip:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	go p.runTask(t, voice)
	p.logger.Debug("Streaming task started")
	return t
}

// emit delivers ev to the Run goroutine unless the task has been cancelled.
func (p *Player) emit(t *streamTask, ev taskEvent) bool {
	select {
	case p.events <- ev:
		return true
	case <-t.ctx.Done():
		return false
	}
}

func (p *Player) runTask(t *streamTask, voice chat.VoiceConnection) {
	defer close(t.done)
	defer p.logger.Debug("Streaming task exited")

	for {
		song, err := p.playlist.Dequeue(t.ctx)
		if err != nil {
			return
		}

		select {
		case <-t.skip:
		default:
		}

		if !p.emit(t, taskEvent{kind: eventStarted, task: t, song: song}) {
			p.recorder.SongPlayed(OutcomeStopped)
			return
		}

		outcome := p.streamSong(t, voice, song)
		p.recorder.SongPlayed(outcome)
		p.logger.Info("Song ended",
			zap.String("url", song.URL),
			zap.String("outcome", outcome))

		if !p.emit(t, taskEvent{kind: eventFinished, task: t, song: song}) {
			return
		}
	}
}

// streamSong plays one song and returns how it ended. The audio stream is closed on
// every path; a stream that ends on its own but fails to close cleanly counts as an error.
func (p *Player) streamSong(t *streamTask, voice chat.VoiceConnection, song Song) (outcome string) {
	p.notify(t.ctx, p.localizer.T("bot.now_playing", song.URL))

	src, err := p.source.Open(t.ctx, song.URL)
	if err != nil {
		if t.ctx.Err() != nil {
			return OutcomeStopped
		}
		p.playFailed(t.ctx, song, err)
		return OutcomeError
	}

	defer func() {
		voice.Stop()
		closeErr := src.Close()
		if closeErr != nil && outcome == OutcomeFinished {
			p.playFailed(t.ctx, song, closeErr)
			outcome = OutcomeError
		}
	}()

	if err := voice.Play(src); err != nil {
		if t.ctx.Err() != nil {
			return OutcomeStopped
		}
		p.playFailed(t.ctx, song, err)
		return OutcomeError
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return OutcomeStopped
		case <-t.skip:
			return OutcomeSkipped
		case <-ticker.C:
			if !voice.IsPlaying() {
				return OutcomeFinished
			}
		}
	}
}

func (p *Player) playFailed(ctx context.Context, song Song, err error) {
	p.logger.Warn("Failed to play song",
		zap.String("url", song.URL),
		zap.Error(err))
	p.notify(ctx, p.localizer.T("error.play_failed", song.Label()))
}

// notify posts text to the command channel
func (p *Player) notify(ctx context.Context, text string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.frontend.SendText(ctx, p.frontend.CommandChannel(), "", text); err != nil {
		p.logger.Warn("Failed to send message", zap.Error(err))
	}
}
