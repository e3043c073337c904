package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func song(name string) Song {
	return Song{URL: "https://youtu.be/" + name, Title: name}
}

func TestPlaylist_FIFO(t *testing.T) {
	p := NewPlaylist(0)
	for _, name := range []string{"a", "b", "c"} {
		if err := p.Enqueue(song(name)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := p.Dequeue(context.Background())
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if got.Title != want {
			t.Errorf("Expected %s, got %s", want, got.Title)
		}
	}

	if p.Len() != 0 {
		t.Errorf("Expected empty playlist, got %d songs", p.Len())
	}
}

func TestPlaylist_DequeueBlocksUntilEnqueue(t *testing.T) {
	p := NewPlaylist(0)
	result := make(chan Song, 1)

	go func() {
		s, err := p.Dequeue(context.Background())
		if err == nil {
			result <- s
		}
	}()

	select {
	case <-result:
		t.Fatal("Dequeue returned before anything was queued")
	case <-time.After(50 * time.Millisecond):
	}

	if err := p.Enqueue(song("a")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case s := <-result:
		if s.Title != "a" {
			t.Errorf("Expected a, got %s", s.Title)
		}
	case <-time.After(testTimeout):
		t.Fatal("Dequeue was not woken by Enqueue")
	}
}

func TestPlaylist_DequeueHonorsContext(t *testing.T) {
	p := NewPlaylist(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestPlaylist_ClearKeepsDequeuerBlocked(t *testing.T) {
	p := NewPlaylist(0)
	_ = p.Enqueue(song("a"))
	_ = p.Enqueue(song("b"))

	p.Clear()
	if got := p.PeekAll(); len(got) != 0 {
		t.Fatalf("Expected empty playlist after Clear, got %v", got)
	}

	result := make(chan Song, 1)
	go func() {
		s, err := p.Dequeue(context.Background())
		if err == nil {
			result <- s
		}
	}()

	p.Clear()
	select {
	case s := <-result:
		t.Fatalf("Dequeue returned %v after Clear", s)
	case <-time.After(50 * time.Millisecond):
	}

	_ = p.Enqueue(song("c"))
	select {
	case s := <-result:
		if s.Title != "c" {
			t.Errorf("Expected c, got %s", s.Title)
		}
	case <-time.After(testTimeout):
		t.Fatal("Dequeue was not woken after Clear and Enqueue")
	}
}

func TestPlaylist_PeekAllIsACopy(t *testing.T) {
	p := NewPlaylist(0)
	_ = p.Enqueue(song("a"))
	_ = p.Enqueue(song("b"))

	peek := p.PeekAll()
	peek[0].Title = "changed"

	again := p.PeekAll()
	if again[0].Title != "a" || again[1].Title != "b" {
		t.Errorf("PeekAll exposed internal state: %v", again)
	}
	if p.Len() != 2 {
		t.Errorf("PeekAll should not remove songs, got %d", p.Len())
	}
}

func TestPlaylist_Capacity(t *testing.T) {
	p := NewPlaylist(2)

	_ = p.Enqueue(song("a"))
	if p.Full() {
		t.Error("Playlist with one song should not be full")
	}
	_ = p.Enqueue(song("b"))
	if !p.Full() {
		t.Error("Playlist should be full at capacity")
	}

	if err := p.Enqueue(song("c")); !errors.Is(err, ErrPlaylistFull) {
		t.Errorf("Expected ErrPlaylistFull, got %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Rejected song should not be queued, got %d songs", p.Len())
	}

	if _, err := p.Dequeue(context.Background()); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if err := p.Enqueue(song("c")); err != nil {
		t.Errorf("Enqueue should succeed after a dequeue, got %v", err)
	}
}

func TestPlaylist_UnboundedByDefault(t *testing.T) {
	p := NewPlaylist(-1)
	for i := 0; i < 1000; i++ {
		if err := p.Enqueue(song("x")); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	if p.Full() {
		t.Error("Unbounded playlist should never be full")
	}
	if p.Capacity() != 0 {
		t.Errorf("Expected capacity 0, got %d", p.Capacity())
	}
}
