package core

import (
	"context"

	"borgir/pkg/musiclink"
)

// oEmbedExtractor adapts pkg/musiclink to SongExtractor. oEmbed has no durations.
type oEmbedExtractor struct {
	resolver musiclink.Resolver
}

// NewOEmbedExtractor creates a SongExtractor backed by YouTube and SoundCloud oEmbed.
func NewOEmbedExtractor() SongExtractor {
	return &oEmbedExtractor{
		resolver: musiclink.NewManager(),
	}
}

// ExtractSong looks up the title of a YouTube or SoundCloud link.
// Uploads without a title are labelled with the uploader's name.
func (a *oEmbedExtractor) ExtractSong(ctx context.Context, url string) (Song, error) {
	info, err := a.resolver.Resolve(ctx, url)
	if err != nil {
		return Song{}, err
	}

	title := info.Title
	if title == "" {
		title = info.Author
	}
	return Song{URL: url, Title: title}, nil
}
