package core

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"borgir/internal/chat"
)

const (
	testCommandChannel = "commands"
	testTimeout        = 2 * time.Second
	testPollInterval   = 5 * time.Millisecond
)

// fakeFrontend records sent messages and hands out a fake voice connection
type fakeFrontend struct {
	mu      sync.Mutex
	channel string
	sent    []string
	sentCh  chan string
	voice   *fakeVoice
	joinErr error
	joins   int
}

func newFakeFrontend() *fakeFrontend {
	return &fakeFrontend{
		channel: testCommandChannel,
		sentCh:  make(chan string, 100),
		voice:   newFakeVoice(),
	}
}

func (f *fakeFrontend) Start(_ context.Context) error {
	return nil
}

func (f *fakeFrontend) Listen(ctx context.Context, _ func(*chat.Message)) error {
	<-ctx.Done()
	return nil
}

func (f *fakeFrontend) SendText(_ context.Context, _, _, text string) (string, error) {
	f.mu.Lock()
	f.sent = append(f.sent, text)
	f.mu.Unlock()

	select {
	case f.sentCh <- text:
	default:
	}
	return "msg", nil
}

func (f *fakeFrontend) CommandChannel() string {
	return f.channel
}

func (f *fakeFrontend) JoinVoice(_ context.Context, _ *chat.Message) (chat.VoiceConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.joins++
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.voice, nil
}

func (f *fakeFrontend) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeFrontend) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeFrontend) joinCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joins
}

// waitFor consumes sent messages until one contains want
func (f *fakeFrontend) waitFor(t *testing.T, want string) {
	t.Helper()
	timeout := time.After(testTimeout)
	for {
		select {
		case msg := <-f.sentCh:
			if strings.Contains(msg, want) {
				return
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for message containing %q, sent so far: %v", want, f.messages())
		}
	}
}

// waitSent waits until some sent message equals want, in any order
func (f *fakeFrontend) waitSent(t *testing.T, want string) {
	t.Helper()
	waitUntil(t, "message "+want+" is sent", func() bool {
		for _, msg := range f.messages() {
			if msg == want {
				return true
			}
		}
		return false
	})
}

// fakeVoice simulates playback: a source plays until finish, Stop or Disconnect
type fakeVoice struct {
	mu          sync.Mutex
	playing     bool
	plays       int
	stops       int
	disconnects int
	playErr     error
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{}
}

func (v *fakeVoice) Play(_ io.Reader) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.playErr != nil {
		return v.playErr
	}
	v.playing = true
	v.plays++
	return nil
}

func (v *fakeVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.stops++
}

func (v *fakeVoice) Disconnect(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.disconnects++
	return nil
}

// finish ends the current source as if it ran out of audio
func (v *fakeVoice) finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
}

func (v *fakeVoice) playCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.plays
}

func (v *fakeVoice) disconnectCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disconnects
}

// fakeStream is an audio stream that only tracks whether it was closed
type fakeStream struct {
	url      string
	closed   atomic.Bool
	closeErr error
}

func (s *fakeStream) Read(_ []byte) (int, error) {
	return 0, io.EOF
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return s.closeErr
}

// fakeSource opens fakeStreams, failing for URLs listed in openErrs
type fakeSource struct {
	mu        sync.Mutex
	streams   []*fakeStream
	openErrs  map[string]error
	closeErrs map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		openErrs:  make(map[string]error),
		closeErrs: make(map[string]error),
	}
}

func (s *fakeSource) Open(_ context.Context, url string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openErrs[url]; err != nil {
		return nil, err
	}
	stream := &fakeStream{url: url, closeErr: s.closeErrs[url]}
	s.streams = append(s.streams, stream)
	return stream, nil
}

func (s *fakeSource) opened() []*fakeStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeStream(nil), s.streams...)
}

// sourceFunc adapts a function to AudioSource
type sourceFunc func(ctx context.Context, url string) (io.ReadCloser, error)

func (f sourceFunc) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// fakeExtractor returns canned songs and counts lookups
type fakeExtractor struct {
	calls atomic.Int32
	songs map[string]Song
	err   error
	block chan struct{} // when set, lookups wait for it to close
}

func (e *fakeExtractor) ExtractSong(ctx context.Context, url string) (Song, error) {
	e.calls.Add(1)

	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return Song{}, ctx.Err()
		}
	}

	if e.err != nil {
		return Song{}, e.err
	}
	if song, ok := e.songs[url]; ok {
		return song, nil
	}
	return Song{URL: url, Title: "Title of " + url, Duration: time.Minute}, nil
}

// recordingRecorder counts every event it receives
type recordingRecorder struct {
	mu       sync.Mutex
	counts   map[string]int
	size     int
	isActive bool
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{counts: make(map[string]int)}
}

func (r *recordingRecorder) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
}

func (r *recordingRecorder) CommandHandled(command, status string) {
	r.inc("command:" + command + ":" + status)
}

func (r *recordingRecorder) Resolution(result string) {
	r.inc("resolution:" + result)
}

func (r *recordingRecorder) SongPlayed(outcome string) {
	r.inc("played:" + outcome)
}

func (r *recordingRecorder) PlaylistSize(size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = size
}

func (r *recordingRecorder) PlaybackActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isActive = active
}

func (r *recordingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

// waitUntil polls cond until it holds or the test times out
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting until %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
