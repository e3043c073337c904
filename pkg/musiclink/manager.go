package musiclink

import (
	"context"
	"errors"
)

// ErrNoResolver is returned when no provider recognises a URL.
var ErrNoResolver = errors.New("no resolver found for URL")

// Manager coordinates the provider resolvers.
type Manager struct {
	resolvers []Resolver
}

// NewManager creates a new manager with all supported resolvers.
func NewManager() *Manager {
	return &Manager{
		resolvers: []Resolver{
			NewYouTubeResolver(),
			NewSoundCloudResolver(),
		},
	}
}

// Resolve resolves a link using the first resolver that accepts it.
func (m *Manager) Resolve(ctx context.Context, url string) (*TrackInfo, error) {
	for _, resolver := range m.resolvers {
		if resolver.CanResolve(url) {
			return resolver.Resolve(ctx, url)
		}
	}

	return nil, ErrNoResolver
}

// CanResolve checks if any resolver can handle the given URL.
func (m *Manager) CanResolve(url string) bool {
	for _, resolver := range m.resolvers {
		if resolver.CanResolve(url) {
			return true
		}
	}
	return false
}
