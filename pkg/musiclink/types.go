// Package musiclink resolves video links to basic metadata through public oEmbed endpoints.
// It is used as a fallback when the downloader cannot extract metadata itself.
package musiclink

import (
	"context"
)

// TrackInfo holds the metadata an oEmbed provider exposes for a link.
// oEmbed does not report durations.
type TrackInfo struct {
	Title  string // Video or track title.
	Author string // Channel or uploader name.
}

// Resolver defines the interface for resolving links from a single provider.
type Resolver interface {
	// Resolve fetches metadata for a provider URL.
	Resolve(ctx context.Context, url string) (*TrackInfo, error)

	// CanResolve checks if this resolver can handle the given URL.
	CanResolve(url string) bool
}
