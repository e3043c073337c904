package core

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPlaylistFull is returned by Enqueue when the configured capacity is reached.
	ErrPlaylistFull = errors.New("playlist is full")
)

// Playlist is a FIFO of songs with a blocking Dequeue.
// Enqueue never blocks; Dequeue waits until a song arrives or its context ends.
type Playlist struct {
	mu       sync.Mutex
	songs    []Song
	capacity int
	// notify is closed and replaced whenever a song is added, waking blocked dequeuers.
	notify chan struct{}
}

// NewPlaylist creates a playlist. A capacity of zero or less means unbounded.
func NewPlaylist(capacity int) *Playlist {
	if capacity < 0 {
		capacity = 0
	}
	return &Playlist{
		capacity: capacity,
		notify:   make(chan struct{}),
	}
}

// Enqueue appends song to the end of the playlist.
func (p *Playlist) Enqueue(song Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity > 0 && len(p.songs) >= p.capacity {
		return ErrPlaylistFull
	}

	p.songs = append(p.songs, song)
	close(p.notify)
	p.notify = make(chan struct{})
	return nil
}

// Dequeue removes and returns the first song, waiting for one if the playlist is empty.
func (p *Playlist) Dequeue(ctx context.Context) (Song, error) {
	for {
		p.mu.Lock()
		if len(p.songs) > 0 {
			song := p.songs[0]
			p.songs[0] = Song{}
			p.songs = p.songs[1:]
			p.mu.Unlock()
			return song, nil
		}
		wait := p.notify
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return Song{}, ctx.Err()
		}
	}
}

// PeekAll returns a copy of the queued songs in arrival order.
func (p *Playlist) PeekAll() []Song {
	p.mu.Lock()
	defer p.mu.Unlock()

	songs := make([]Song, len(p.songs))
	copy(songs, p.songs)
	return songs
}

// Clear removes every queued song. Blocked dequeuers keep waiting.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.songs = nil
}

// Len returns the number of queued songs.
func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.songs)
}

// Full reports whether Enqueue would fail with ErrPlaylistFull.
func (p *Playlist) Full() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity > 0 && len(p.songs) >= p.capacity
}

// Capacity returns the configured capacity, zero meaning unbounded.
func (p *Playlist) Capacity() int {
	return p.capacity
}
