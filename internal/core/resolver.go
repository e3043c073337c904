package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"borgir/internal/store"
	"borgir/pkg/text"
)

var (
	// ErrResolution is returned when a URL cannot be turned into a song.
	ErrResolution = errors.New("failed to resolve song")
	// errInvalidURL is wrapped in ErrResolution for text that is not an http(s) URL.
	errInvalidURL = errors.New("not a valid http(s) URL")
)

// SongResolver turns URLs into songs, caching successful lookups.
type SongResolver struct {
	cache      *store.Cache[Song]
	extractors []SongExtractor
	timeout    time.Duration
	group      singleflight.Group
	recorder   Recorder
	logger     *zap.Logger
}

// NewSongResolver creates a resolver trying extractors in order until one succeeds.
// A zero timeout disables the per-lookup deadline.
func NewSongResolver(
	cache *store.Cache[Song],
	extractors []SongExtractor,
	timeout time.Duration,
	recorder Recorder,
	logger *zap.Logger,
) *SongResolver {
	return &SongResolver{
		cache:      cache,
		extractors: extractors,
		timeout:    timeout,
		recorder:   recorder,
		logger:     logger,
	}
}

// Resolve returns the song behind rawURL. Cached songs are returned without any lookup;
// concurrent lookups of the same URL share a single extraction.
func (r *SongResolver) Resolve(ctx context.Context, rawURL string) (Song, error) {
	key := text.CleanURL(rawURL)
	if key == "" {
		r.recorder.Resolution(ResolutionError)
		return Song{}, fmt.Errorf("%w: %w", ErrResolution, errInvalidURL)
	}

	if song, ok := r.cache.Get(key); ok {
		r.recorder.Resolution(ResolutionHit)
		return song, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Another caller may have filled the cache while we waited for the group.
		if song, ok := r.cache.Get(key); ok {
			return song, nil
		}

		song, err := r.extract(ctx, key)
		if err != nil {
			return Song{}, err
		}
		r.cache.Add(key, song)
		return song, nil
	})
	if err != nil {
		r.recorder.Resolution(ResolutionError)
		return Song{}, err
	}

	r.recorder.Resolution(ResolutionMiss)
	return v.(Song), nil
}

func (r *SongResolver) extract(ctx context.Context, url string) (Song, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var errs []error
	for _, extractor := range r.extractors {
		song, err := extractor.ExtractSong(ctx, url)
		if err == nil {
			song.URL = url
			r.logger.Debug("Resolved song",
				zap.String("url", url),
				zap.String("title", song.Title),
				zap.Duration("duration", song.Duration))
			return song, nil
		}

		r.logger.Debug("Extractor failed", zap.String("url", url), zap.Error(err))
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return Song{}, fmt.Errorf("%w: no extractor configured", ErrResolution)
	}
	return Song{}, fmt.Errorf("%w: %w", ErrResolution, errors.Join(errs...))
}

// CacheStats exposes the song cache counters.
func (r *SongResolver) CacheStats() store.Stats {
	return r.cache.Stats()
}
