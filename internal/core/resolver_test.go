package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"borgir/internal/store"
)

func newTestResolver(extractors ...SongExtractor) (*SongResolver, *recordingRecorder) {
	recorder := newRecordingRecorder()
	r := NewSongResolver(store.NewCache[Song](store.DefaultCapacity), extractors, time.Second, recorder, zap.NewNop())
	return r, recorder
}

func TestSongResolver_CachesByURL(t *testing.T) {
	extractor := &fakeExtractor{songs: map[string]Song{
		"https://youtu.be/a": {Title: "Song A", Duration: 212 * time.Second},
	}}
	r, recorder := newTestResolver(extractor)

	for i := 0; i < 2; i++ {
		s, err := r.Resolve(context.Background(), "https://youtu.be/a")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if s.Title != "Song A" || s.Duration != 212*time.Second || s.URL != "https://youtu.be/a" {
			t.Errorf("Unexpected song: %+v", s)
		}
	}

	if calls := extractor.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 extractor call, got %d", calls)
	}
	if recorder.count("resolution:"+ResolutionHit) != 1 || recorder.count("resolution:"+ResolutionMiss) != 1 {
		t.Errorf("Expected one hit and one miss, got %v", recorder.counts)
	}
}

func TestSongResolver_TrackingParamsShareCacheEntry(t *testing.T) {
	extractor := &fakeExtractor{}
	r, _ := newTestResolver(extractor)

	urls := []string{
		"https://www.youtube.com/watch?v=abc",
		"https://www.youtube.com/watch?v=abc&si=tracking",
		"<https://www.youtube.com/watch?v=abc&utm_source=chat>",
	}
	for _, url := range urls {
		if _, err := r.Resolve(context.Background(), url); err != nil {
			t.Fatalf("Resolve(%s) failed: %v", url, err)
		}
	}

	if calls := extractor.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 extractor call, got %d", calls)
	}
}

func TestSongResolver_EvictsLeastRecentlyUsed(t *testing.T) {
	extractor := &fakeExtractor{}
	r, _ := newTestResolver(extractor)
	ctx := context.Background()

	for i := 0; i <= store.DefaultCapacity; i++ {
		if _, err := r.Resolve(ctx, fmt.Sprintf("https://youtu.be/%d", i)); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if calls := extractor.calls.Load(); calls != 101 {
		t.Fatalf("Expected 101 extractor calls, got %d", calls)
	}

	// The first URL was evicted by the 101st
	if _, err := r.Resolve(ctx, "https://youtu.be/0"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if calls := extractor.calls.Load(); calls != 102 {
		t.Errorf("Expected evicted URL to be looked up again, got %d calls", calls)
	}

	// The most recent one is still cached
	if _, err := r.Resolve(ctx, "https://youtu.be/100"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if calls := extractor.calls.Load(); calls != 102 {
		t.Errorf("Expected cache hit for recent URL, got %d calls", calls)
	}
}

func TestSongResolver_FailureIsNotCached(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("video unavailable")}
	r, recorder := newTestResolver(extractor)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "https://youtu.be/gone")
		if !errors.Is(err, ErrResolution) {
			t.Fatalf("Expected ErrResolution, got %v", err)
		}
	}

	if calls := extractor.calls.Load(); calls != 2 {
		t.Errorf("Expected failures to be retried, got %d calls", calls)
	}
	if recorder.count("resolution:"+ResolutionError) != 2 {
		t.Errorf("Expected 2 error resolutions, got %v", recorder.counts)
	}
}

func TestSongResolver_FallsBackToNextExtractor(t *testing.T) {
	primary := &fakeExtractor{err: errors.New("yt-dlp missing")}
	fallback := &fakeExtractor{songs: map[string]Song{
		"https://youtu.be/a": {Title: "From oEmbed"},
	}}
	r, _ := newTestResolver(primary, fallback)

	s, err := r.Resolve(context.Background(), "https://youtu.be/a")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.Title != "From oEmbed" || s.Duration != 0 {
		t.Errorf("Unexpected song: %+v", s)
	}
	if primary.calls.Load() != 1 || fallback.calls.Load() != 1 {
		t.Errorf("Expected both extractors to be tried once")
	}
}

func TestSongResolver_InvalidURL(t *testing.T) {
	extractor := &fakeExtractor{}
	r, _ := newTestResolver(extractor)

	for _, input := range []string{"", "not a url", "ftp://example.com/file"} {
		if _, err := r.Resolve(context.Background(), input); !errors.Is(err, ErrResolution) {
			t.Errorf("Resolve(%q): expected ErrResolution, got %v", input, err)
		}
	}
	if calls := extractor.calls.Load(); calls != 0 {
		t.Errorf("Extractor should not be called for invalid URLs, got %d calls", calls)
	}
}

func TestSongResolver_ConcurrentLookupsShareExtraction(t *testing.T) {
	extractor := &fakeExtractor{block: make(chan struct{})}
	r, _ := newTestResolver(extractor)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "https://youtu.be/same")
			errs <- err
		}()
	}

	waitUntil(t, "the extractor is called", func() bool { return extractor.calls.Load() > 0 })
	time.Sleep(20 * time.Millisecond)
	close(extractor.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Resolve failed: %v", err)
		}
	}
	if calls := extractor.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 extractor call, got %d", calls)
	}
}

func TestSongResolver_Timeout(t *testing.T) {
	extractor := &fakeExtractor{block: make(chan struct{})}
	recorder := newRecordingRecorder()
	r := NewSongResolver(store.NewCache[Song](10), []SongExtractor{extractor}, 20*time.Millisecond, recorder, zap.NewNop())

	_, err := r.Resolve(context.Background(), "https://youtu.be/slow")
	if !errors.Is(err, ErrResolution) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected resolution timeout, got %v", err)
	}
}

func TestSongResolver_NoExtractors(t *testing.T) {
	r, _ := newTestResolver()

	if _, err := r.Resolve(context.Background(), "https://youtu.be/a"); !errors.Is(err, ErrResolution) {
		t.Errorf("Expected ErrResolution, got %v", err)
	}
}
